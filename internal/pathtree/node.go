// Package pathtree implements the paged, linked-leaf Paths structure:
// building one from an in-memory filesystem tree in breadth-first order,
// paging leaves in groups of up to 256, and walking one back into a flat
// list of entries on read.
package pathtree

import "github.com/paduszym/bomtool/internal/types"

// Node is one entry in the in-memory tree a Builder consumes. The virtual
// root passed to Build is never itself emitted; only its children (and
// their descendants) become PathInfo1/PathInfo2/FileRecord triples.
type Node struct {
	Type       uint8 // types.NodeTypeFile/Dir/Link
	Mode       uint16
	UID        uint32
	GID        uint32
	Size       uint32
	Checksum   uint32
	LinkTarget string
	Children   map[string]*Node
}

// NewDir returns an empty directory node ready to receive children.
func NewDir(mode uint16, uid, gid uint32) *Node {
	return &Node{
		Type:     types.NodeTypeDir,
		Mode:     mode,
		UID:      uid,
		GID:      gid,
		Children: make(map[string]*Node),
	}
}
