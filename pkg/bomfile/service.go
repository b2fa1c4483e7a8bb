// Package bomfile is the facade cmd/ calls into: it wires internal/bom's
// Builder and Dumper together with the concrete NodeSource
// implementations and an optional zstd compression step, mirroring the
// NewXxxService/context-checked-loop shape go-apfs's pkg/services uses
// in front of its own internal parsers.
package bomfile

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/paduszym/bomtool/internal/bom"
	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/container"
	"github.com/paduszym/bomtool/internal/interfaces"
	"github.com/paduszym/bomtool/internal/manifest"
)

// BuildResult summarizes one Build/BuildFromManifest/BuildAndCompress call.
// RunID exists purely for the caller's own log correlation; it is never
// written into the BOM's own bytes.
type BuildResult struct {
	RunID      uuid.UUID
	PathCount  int
	BlockCount uint32
	Bytes      int
}

// Service is the facade cmd/ drives: build a BOM from any NodeSource or a
// textual manifest, optionally zstd-compress the result, and dump an
// existing image back into a human-readable report.
type Service interface {
	Build(ctx context.Context, source interfaces.NodeSource, w io.Writer) (BuildResult, error)
	BuildFromManifest(ctx context.Context, r io.Reader, w io.Writer) (BuildResult, error)
	BuildAndCompress(ctx context.Context, source interfaces.NodeSource, w io.Writer) (BuildResult, error)
	Dump(ctx context.Context, r io.Reader, w io.Writer) error
}

type service struct {
	builder interfaces.Builder
	dumper  interfaces.Dumper
}

// New returns the default Service, backed by internal/bom's Builder and
// Dumper.
func New() Service {
	return &service{builder: bom.Builder{}, dumper: bom.Dumper{}}
}

func (s *service) Build(ctx context.Context, source interfaces.NodeSource, w io.Writer) (BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return BuildResult{}, err
	}

	var buf bytes.Buffer
	count, err := s.builder.Build(source, &buf)
	if err != nil {
		return BuildResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return BuildResult{}, err
	}

	blockCount, err := blockCountOf(buf.Bytes())
	if err != nil {
		return BuildResult{}, err
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return BuildResult{}, &bomerr.IoError{Op: "write bom output", Cause: err}
	}

	return BuildResult{
		RunID:      uuid.New(),
		PathCount:  count,
		BlockCount: blockCount,
		Bytes:      n,
	}, nil
}

func (s *service) BuildFromManifest(ctx context.Context, r io.Reader, w io.Writer) (BuildResult, error) {
	return s.Build(ctx, manifest.NewSource(r), w)
}

// BuildAndCompress builds source's BOM into an in-memory buffer, then
// writes a zstd-compressed copy to w. The compressed stream is an
// archival convenience only; it is never itself a valid BOM image.
func (s *service) BuildAndCompress(ctx context.Context, source interfaces.NodeSource, w io.Writer) (BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return BuildResult{}, err
	}

	var raw bytes.Buffer
	count, err := s.builder.Build(source, &raw)
	if err != nil {
		return BuildResult{}, err
	}

	blockCount, err := blockCountOf(raw.Bytes())
	if err != nil {
		return BuildResult{}, err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return BuildResult{}, &bomerr.IoError{Op: "create zstd encoder", Cause: err}
	}
	n, err := enc.Write(raw.Bytes())
	if err != nil {
		_ = enc.Close()
		return BuildResult{}, &bomerr.IoError{Op: "zstd-compress bom output", Cause: err}
	}
	if err := enc.Close(); err != nil {
		return BuildResult{}, &bomerr.IoError{Op: "close zstd encoder", Cause: err}
	}

	return BuildResult{
		RunID:      uuid.New(),
		PathCount:  count,
		BlockCount: blockCount,
		Bytes:      n,
	}, nil
}

// blockCountOf reopens a freshly built image just to read back its own
// header's NumberOfBlocks, rather than threading a second return value
// through the interfaces.Builder signature.
func blockCountOf(built []byte) (uint32, error) {
	r, err := container.Open(built)
	if err != nil {
		return 0, &bomerr.FormatError{Reason: "re-parse freshly built bom image", Cause: err}
	}
	return r.Header().NumberOfBlocks, nil
}

func (s *service) Dump(ctx context.Context, r io.Reader, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return &bomerr.IoError{Op: "read bom input", Cause: err}
	}
	return s.dumper.Dump(data, w)
}
