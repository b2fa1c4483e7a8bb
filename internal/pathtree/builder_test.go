package pathtree

import (
	"fmt"
	"testing"

	"github.com/paduszym/bomtool/internal/container"
	"github.com/paduszym/bomtool/internal/types"
)

func file(mode uint16, uid, gid, size, crc uint32) *Node {
	return &Node{Type: types.NodeTypeFile, Mode: mode, UID: uid, GID: gid, Size: size, Checksum: crc}
}

func TestBuildSingleFile(t *testing.T) {
	root := &Node{Type: 0, Children: map[string]*Node{
		"a": file(0o644, 501, 20, 3, 0xDEADBEEF),
	}}

	c := container.New()
	rootChild, count, err := Build(c, root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	entries, err := Walk(readerOf(t, c), rootChild)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Name != "a" || e.ParentID != 0 {
		t.Fatalf("entry = %+v, want name=a parent=0", e)
	}
	if e.Info.Type != types.NodeTypeFile || e.Info.Mode != 0o644 {
		t.Fatalf("info = %+v", e.Info)
	}
	if e.Info.Checksum != 0xDEADBEEF {
		t.Fatalf("checksum = 0x%X, want 0xDEADBEEF", e.Info.Checksum)
	}
}

func TestBuildDirectoryWithTwoFilesBFSOrder(t *testing.T) {
	d := NewDir(0o40755, 0, 0)
	d.Children["a"] = file(0o644, 0, 0, 1, 1)
	d.Children["b"] = file(0o644, 0, 0, 1, 2)
	root := &Node{Type: 0, Children: map[string]*Node{"d": d}}

	c := container.New()
	rootChild, count, err := Build(c, root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	entries, err := Walk(readerOf(t, c), rootChild)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	if byName["d"].ID != 1 || byName["a"].ID != 2 || byName["b"].ID != 3 {
		t.Fatalf("ids d/a/b = %d/%d/%d, want 1/2/3 (breadth-first, lexical)", byName["d"].ID, byName["a"].ID, byName["b"].ID)
	}
	if byName["d"].ParentID != 0 {
		t.Fatalf("d.parent = %d, want 0", byName["d"].ParentID)
	}
	if byName["a"].ParentID != byName["d"].ID {
		t.Fatalf("a.parent = %d, want d's id %d", byName["a"].ParentID, byName["d"].ID)
	}
	if byName["b"].ParentID != byName["d"].ID {
		t.Fatalf("b.parent = %d, want d's id %d", byName["b"].ParentID, byName["d"].ID)
	}
	if byName["a"].Path != "d/a" || byName["b"].Path != "d/b" {
		t.Fatalf("paths = %q, %q", byName["a"].Path, byName["b"].Path)
	}
}

func Test257TopLevelFilesSplitIntoTwoLeaves(t *testing.T) {
	root := &Node{Type: 0, Children: map[string]*Node{}}
	for i := 0; i < 257; i++ {
		root.Children[fmt.Sprintf("f%03d", i)] = file(0o644, 0, 0, 0, 0)
	}

	c := container.New()
	rootChild, count, err := Build(c, root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 257 {
		t.Fatalf("count = %d, want 257", count)
	}

	cr := readerOf(t, c)
	rootPage, err := decodePageFromReader(cr, rootChild)
	if err != nil {
		t.Fatalf("decode root page: %v", err)
	}
	if rootPage.IsLeaf != 0 {
		t.Fatalf("root page IsLeaf = %d, want 0 (interior)", rootPage.IsLeaf)
	}
	if len(rootPage.Indices) != 2 {
		t.Fatalf("interior page has %d children, want 2", len(rootPage.Indices))
	}

	leaf1, err := decodePageFromReader(cr, rootPage.Indices[0].Index0)
	if err != nil {
		t.Fatalf("decode leaf1: %v", err)
	}
	leaf2, err := decodePageFromReader(cr, rootPage.Indices[1].Index0)
	if err != nil {
		t.Fatalf("decode leaf2: %v", err)
	}
	if len(leaf1.Indices) != 256 {
		t.Fatalf("leaf1 count = %d, want 256", len(leaf1.Indices))
	}
	if len(leaf2.Indices) != 1 {
		t.Fatalf("leaf2 count = %d, want 1", len(leaf2.Indices))
	}
	if leaf1.Forward != rootPage.Indices[1].Index0 {
		t.Fatalf("leaf1.Forward = %d, want leaf2's id %d", leaf1.Forward, rootPage.Indices[1].Index0)
	}
	if leaf2.Backward != rootPage.Indices[0].Index0 {
		t.Fatalf("leaf2.Backward = %d, want leaf1's id %d", leaf2.Backward, rootPage.Indices[0].Index0)
	}

	entries, err := Walk(cr, rootChild)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 257 {
		t.Fatalf("len(entries) = %d, want 257", len(entries))
	}
}

func TestBuildSymlink(t *testing.T) {
	link := &Node{Type: types.NodeTypeLink, Mode: 0o120777, LinkTarget: "target"}
	root := &Node{Type: 0, Children: map[string]*Node{"l": link}}

	c := container.New()
	rootChild, _, err := Build(c, root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	entries, err := Walk(readerOf(t, c), rootChild)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	info := entries[0].Info
	if info.Type != types.NodeTypeLink {
		t.Fatalf("type = %d, want link", info.Type)
	}
	if info.LinkNameLength != 7 {
		t.Fatalf("LinkNameLength = %d, want 7", info.LinkNameLength)
	}
	if info.LinkName != "target" {
		t.Fatalf("LinkName = %q, want %q", info.LinkName, "target")
	}
}

func TestBuildEmptyTreeSingleEmptyLeafRoot(t *testing.T) {
	root := &Node{Type: 0, Children: map[string]*Node{}}
	c := container.New()
	rootChild, count, err := Build(c, root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	cr := readerOf(t, c)
	page, err := decodePageFromReader(cr, rootChild)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.IsLeaf != 1 || len(page.Indices) != 0 {
		t.Fatalf("page = %+v, want empty leaf", page)
	}
}

// readerOf serializes c and reopens it as a container.Reader so tests can
// exercise the real read path instead of peeking at builder internals.
func readerOf(t *testing.T, c *container.Container) *container.Reader {
	t.Helper()
	var buf writerBuf
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	r, err := container.Open(buf.data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

type writerBuf struct{ data []byte }

func (w *writerBuf) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func decodePageFromReader(cr *container.Reader, id uint32) (types.Paths, error) {
	data, err := cr.Block(id)
	if err != nil {
		return types.Paths{}, err
	}
	return DecodePaths(data)
}
