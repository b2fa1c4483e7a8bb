// Package bom orchestrates a complete BOM image: assembling NodeRecords
// into a tree, emitting the five standard variables in the fixed order
// the original mkbom/dumpbom tools use (BomInfo, Paths, HLIndex, VIndex,
// Size64), and dumping an opened image back into a readable report.
package bom

import (
	"fmt"
	"io"
	"strings"

	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/container"
	"github.com/paduszym/bomtool/internal/interfaces"
	"github.com/paduszym/bomtool/internal/pathtree"
	"github.com/paduszym/bomtool/internal/types"
)

// nodeTypeMask isolates the high nibble of a raw stat mode that encodes
// the node's type (directory/file/symlink).
const nodeTypeMask = 0xF000

const (
	modeDir  = 0x4000
	modeFile = 0x8000
	modeLink = 0xA000
)

// permMask strips the type nibble off a raw mode, leaving the
// permission and special bits stored in PathInfo2.Mode.
const permMask = 0x0FFF

// Builder implements interfaces.Builder: it assembles a NodeSource's
// records into an in-memory tree, then emits BomInfo, Paths, HLIndex,
// VIndex, and Size64 into a fresh container in that fixed order.
type Builder struct{}

var _ interfaces.Builder = Builder{}

// Build writes a complete BOM image for source to w.
func (Builder) Build(source interfaces.NodeSource, w io.Writer) (int, error) {
	records, err := source.Nodes()
	if err != nil {
		return 0, err
	}

	root, err := assembleTree(records)
	if err != nil {
		return 0, err
	}
	count := len(records)

	c := container.New()

	if err := emitBomInfo(c, count); err != nil {
		return 0, err
	}
	if err := emitPaths(c, root, count); err != nil {
		return 0, err
	}
	if err := emitEmptyTree(c, types.VarHLIndex, types.DefaultBlockSize); err != nil {
		return 0, err
	}
	if err := emitVIndex(c); err != nil {
		return 0, err
	}
	if err := emitEmptyTree(c, types.VarSize64, types.DefaultBlockSize); err != nil {
		return 0, err
	}

	if err := c.Write(w); err != nil {
		return 0, err
	}
	return count, nil
}

// assembleTree turns a flat, any-order set of NodeRecords into a rooted
// pathtree.Node, synthesizing the virtual root and failing if a record's
// parent directory is not itself present in the set.
func assembleTree(records []interfaces.NodeRecord) (*pathtree.Node, error) {
	byPath := make(map[string]interfaces.NodeRecord, len(records))
	for _, r := range records {
		byPath[cleanPath(r.Path)] = r
	}

	root := &pathtree.Node{Children: map[string]*pathtree.Node{}}
	for path := range byPath {
		if err := attach(root, byPath, path); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// attach walks path's components from the root, creating intermediate
// pathtree.Node entries from their already-assembled records. It is
// idempotent: a directory reached while attaching one child and later
// attached directly for its own record resolve to the same Node.
func attach(root *pathtree.Node, byPath map[string]interfaces.NodeRecord, path string) error {
	parts := strings.Split(path, "/")
	cur := root
	built := ""
	for i, name := range parts {
		if built == "" {
			built = name
		} else {
			built = built + "/" + name
		}
		child, ok := cur.Children[name]
		if ok {
			cur = child
			continue
		}
		rec, ok := byPath[built]
		if !ok {
			return &bomerr.ManifestError{Reason: fmt.Sprintf("parent directory of %q does not appear in the node list", path)}
		}
		node, err := recordToNode(rec)
		if err != nil {
			return err
		}
		if i != len(parts)-1 {
			node.Children = map[string]*pathtree.Node{}
		}
		cur.Children[name] = node
		cur = node
	}
	return nil
}

func recordToNode(rec interfaces.NodeRecord) (*pathtree.Node, error) {
	var nodeType uint8
	switch rec.Mode & nodeTypeMask {
	case modeDir:
		nodeType = types.NodeTypeDir
	case modeFile:
		nodeType = types.NodeTypeFile
	case modeLink:
		nodeType = types.NodeTypeLink
	default:
		return nil, &bomerr.FormatError{Reason: fmt.Sprintf("unsupported node type in mode 0%o for %q", rec.Mode, rec.Path)}
	}

	node := &pathtree.Node{
		Type:     nodeType,
		Mode:     rec.Mode & permMask,
		UID:      rec.UID,
		GID:      rec.GID,
		Size:     rec.Size,
		Checksum: rec.Checksum,
	}
	if nodeType == types.NodeTypeDir {
		node.Children = map[string]*pathtree.Node{}
	}
	if nodeType == types.NodeTypeLink {
		node.LinkTarget = rec.LinkTarget
	}
	return node, nil
}

func cleanPath(p string) string {
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}

func emitBomInfo(c interfaces.Container, count int) error {
	info := types.BomInfo{
		Version:       1,
		NumberOfPaths: uint32(count) + 1,
	}
	if count != 0 {
		info.NumberOfInfoEntries = 1
		info.Entries = []types.BomInfoEntry{{}}
	}
	id, err := c.AddBlock(EncodeBomInfo(info))
	if err != nil {
		return &bomerr.IoError{Op: "add BomInfo block", Cause: err}
	}
	return c.AddVar(types.VarBomInfo, id)
}

func emitPaths(c interfaces.Container, root *pathtree.Node, count int) error {
	rootChild, _, err := pathtree.Build(c, root)
	if err != nil {
		return err
	}
	tree := types.Tree{
		Tag:       types.TreeTag,
		Version:   types.TreeVersion,
		RootChild: rootChild,
		BlockSize: types.DefaultBlockSize,
		PathCount: uint32(count),
	}
	id, err := c.AddBlock(pathtree.EncodeTree(tree))
	if err != nil {
		return &bomerr.IoError{Op: "add Paths tree header", Cause: err}
	}
	return c.AddVar(types.VarPaths, id)
}

// emitEmptyTree writes a single empty leaf page and a Tree header
// pointing at it, then registers varName against the header block. This
// is the shape HLIndex and Size64 always have in files this builder
// produces: no hard link or size64 records are tracked.
func emitEmptyTree(c interfaces.Container, varName string, blockSize uint32) error {
	id, err := addEmptyLeaf(c)
	if err != nil {
		return err
	}
	tree := types.Tree{
		Tag:       types.TreeTag,
		Version:   types.TreeVersion,
		RootChild: id,
		BlockSize: blockSize,
	}
	headerID, err := c.AddBlock(pathtree.EncodeTree(tree))
	if err != nil {
		return &bomerr.IoError{Op: fmt.Sprintf("add %s tree header", varName), Cause: err}
	}
	return c.AddVar(varName, headerID)
}

func emitVIndex(c interfaces.Container) error {
	leafID, err := addEmptyLeaf(c)
	if err != nil {
		return err
	}
	tree := types.Tree{
		Tag:       types.TreeTag,
		Version:   types.TreeVersion,
		RootChild: leafID,
		BlockSize: types.VIndexBlockSize,
	}
	treeID, err := c.AddBlock(pathtree.EncodeTree(tree))
	if err != nil {
		return &bomerr.IoError{Op: "add VIndex inner tree header", Cause: err}
	}

	vindex := types.VIndex{Unknown0: 1, IndexToVTree: treeID}
	id, err := c.AddBlock(EncodeVIndex(vindex))
	if err != nil {
		return &bomerr.IoError{Op: "add VIndex block", Cause: err}
	}
	return c.AddVar(types.VarVIndex, id)
}

func addEmptyLeaf(c interfaces.Container) (uint32, error) {
	id, err := c.AddBlock(pathtree.EncodePaths(pathtree.NewEmptyLeaf()))
	if err != nil {
		return 0, &bomerr.IoError{Op: "add empty leaf", Cause: err}
	}
	return id, nil
}

