package nodesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paduszym/bomtool/internal/interfaces"
)

func TestFileSystemSourceFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), []byte("hi!"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	src := NewFileSystemSource(dir)
	records, err := src.Nodes()
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	r := records[0]
	if r.Path != "a" {
		t.Fatalf("Path = %q, want %q", r.Path, "a")
	}
	if r.Mode&0xF000 != 0x8000 {
		t.Fatalf("Mode = 0%o, want regular file type bit set", r.Mode)
	}
	if r.Size != 3 {
		t.Fatalf("Size = %d, want 3", r.Size)
	}
}

func TestFileSystemSourceDirectoryAndFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "a"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	src := NewFileSystemSource(dir)
	records, err := src.Nodes()
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	seen := map[string]bool{}
	for _, r := range records {
		seen[r.Path] = true
	}
	if !seen["sub"] || !seen["sub/a"] {
		t.Fatalf("records = %+v, want sub and sub/a", records)
	}
}

func TestFileSystemSourceSymlink(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "target"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Symlink("target", filepath.Join(dir, "l")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	src := NewFileSystemSource(dir)
	records, err := src.Nodes()
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	byPath := map[string]interfaces.NodeRecord{}
	for _, r := range records {
		byPath[r.Path] = r
	}
	l, ok := byPath["l"]
	if !ok {
		t.Fatal("missing record for l")
	}
	if l.Mode&0xF000 != 0xA000 {
		t.Fatalf("Mode = 0%o, want symlink type bit set", l.Mode)
	}
	if l.LinkTarget != "target" {
		t.Fatalf("LinkTarget = %q, want %q", l.LinkTarget, "target")
	}
}

func TestFileSystemSourceUIDGIDOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	uid := uint32(501)
	gid := uint32(20)
	src := &FileSystemSource{Root: dir, UID: &uid, GID: &gid}
	records, err := src.Nodes()
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if records[0].UID != 501 || records[0].GID != 20 {
		t.Fatalf("UID/GID = %d/%d, want 501/20", records[0].UID, records[0].GID)
	}
}

func TestFileSystemSourceCRCCachedOnSecondWalk(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	src := NewFileSystemSource(dir)
	first, err := src.Nodes()
	if err != nil {
		t.Fatalf("Nodes (first): %v", err)
	}
	if len(src.cache.entries) != 1 {
		t.Fatalf("cache entries after first walk = %d, want 1", len(src.cache.entries))
	}
	second, err := src.Nodes()
	if err != nil {
		t.Fatalf("Nodes (second): %v", err)
	}
	if first[0].Checksum != second[0].Checksum {
		t.Fatalf("checksum changed across walks: %d != %d", first[0].Checksum, second[0].Checksum)
	}
}
