package bomfile

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/paduszym/bomtool/internal/interfaces"
)

type fixedSource struct {
	records []interfaces.NodeRecord
}

func (s fixedSource) Nodes() ([]interfaces.NodeRecord, error) {
	return s.records, nil
}

func TestBuildThenDumpRoundTrips(t *testing.T) {
	svc := New()
	source := fixedSource{records: []interfaces.NodeRecord{
		{Path: "a", Mode: 0o100644, UID: 501, GID: 20, Size: 3, Checksum: 0xDEADBEEF},
	}}

	var built bytes.Buffer
	result, err := svc.Build(context.Background(), source, &built)
	require.NoError(t, err)
	require.Equal(t, 1, result.PathCount)
	require.NotEmpty(t, result.RunID.String())

	var report bytes.Buffer
	require.NoError(t, svc.Dump(context.Background(), &built, &report))
	require.Contains(t, report.String(), "index1.name = a")
}

func TestBuildFromManifest(t *testing.T) {
	svc := New()
	manifestText := "a\t100644\t501/20\t3\t3735928559\n"

	var built bytes.Buffer
	result, err := svc.BuildFromManifest(context.Background(), strings.NewReader(manifestText), &built)
	require.NoError(t, err)
	require.Equal(t, 1, result.PathCount)
}

func TestBuildAndCompressProducesValidZstdFrame(t *testing.T) {
	svc := New()
	source := fixedSource{records: []interfaces.NodeRecord{
		{Path: "a", Mode: 0o100644, Size: 1},
	}}

	var compressed bytes.Buffer
	result, err := svc.BuildAndCompress(context.Background(), source, &compressed)
	require.NoError(t, err)
	require.Equal(t, 1, result.PathCount)

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed.Bytes(), nil)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, []byte("BOMStore")))
}

func TestBuildRespectsCancelledContext(t *testing.T) {
	svc := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := svc.Build(ctx, fixedSource{}, &out)
	require.Error(t, err)
}
