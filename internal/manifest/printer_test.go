package manifest

import (
	"bytes"
	"testing"

	"github.com/paduszym/bomtool/internal/interfaces"
)

func TestPrintAndReparseRoundTrip(t *testing.T) {
	records := []interfaces.NodeRecord{
		{Path: "d", Mode: 0o40755, UID: 0, GID: 0},
		{Path: "d/a", Mode: 0o100644, UID: 501, GID: 20, Size: 3, Checksum: 0xDEADBEEF},
		{Path: "d/l", Mode: 0o120777, UID: 0, GID: 0, Size: 6, Checksum: 1, LinkTarget: "target"},
	}

	var buf bytes.Buffer
	if err := Print(&buf, records); err != nil {
		t.Fatalf("Print: %v", err)
	}

	reparsed, err := NewSource(&buf).Nodes()
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(reparsed) != len(records) {
		t.Fatalf("len(reparsed) = %d, want %d", len(reparsed), len(records))
	}

	byPath := make(map[string]interfaces.NodeRecord, len(reparsed))
	for _, r := range reparsed {
		byPath[r.Path] = r
	}
	for _, want := range records {
		got, ok := byPath[want.Path]
		if !ok {
			t.Fatalf("missing reparsed record for %q", want.Path)
		}
		if got != want {
			t.Fatalf("record for %q = %+v, want %+v", want.Path, got, want)
		}
	}
}

func TestPrintSortsByPath(t *testing.T) {
	records := []interfaces.NodeRecord{
		{Path: "b", Mode: 0o40755},
		{Path: "a", Mode: 0o40755},
	}
	var buf bytes.Buffer
	if err := Print(&buf, records); err != nil {
		t.Fatalf("Print: %v", err)
	}
	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if !bytes.HasPrefix(lines[0], []byte("a\t")) || !bytes.HasPrefix(lines[1], []byte("b\t")) {
		t.Fatalf("lines = %q, want a before b", lines)
	}
}
