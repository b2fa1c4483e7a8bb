package pathtree

import (
	"sort"

	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/codec"
	"github.com/paduszym/bomtool/internal/interfaces"
	"github.com/paduszym/bomtool/internal/types"
)

type queueItem struct {
	parentID uint32
	node     *Node
}

// builderState accumulates the leaf currently being filled and the
// finalized leaves seen so far, so the interior root page (when needed)
// can be built once the breadth-first walk is done.
type builderState struct {
	c interfaces.Container

	currentEntries     []types.PathIndex
	currentLastFileRec uint32

	leafBlockIDs     []uint32
	leafLastFileRecs []uint32
	prevLeafBlockID  uint32
}

// Build serializes root's descendants into a Paths tree and returns the
// block id of the tree's root page (to be stored as a Tree.RootChild) and
// the total number of nodes emitted. root itself is the virtual root and
// is never emitted; only its children and their descendants are.
func Build(c interfaces.Container, root *Node) (rootChild uint32, pathCount int, err error) {
	st := &builderState{c: c}

	queue := []queueItem{{parentID: 0, node: root}}
	count := 0

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		names := sortedNames(item.node.Children)
		for _, name := range names {
			child := item.node.Children[name]
			count++
			id := uint32(count)

			if err := st.emit(id, item.parentID, name, child); err != nil {
				return 0, 0, err
			}
			if len(st.currentEntries) == types.MaxLeafEntries {
				if err := st.finalizeLeaf(); err != nil {
					return 0, 0, err
				}
			}

			queue = append(queue, queueItem{parentID: id, node: child})
		}
	}

	if len(st.currentEntries) > 0 || len(st.leafBlockIDs) == 0 {
		if err := st.finalizeLeaf(); err != nil {
			return 0, 0, err
		}
	}

	if len(st.leafBlockIDs) == 1 {
		return st.leafBlockIDs[0], count, nil
	}

	interior := types.Paths{IsLeaf: 0, Indices: make([]types.PathIndex, len(st.leafBlockIDs))}
	for i, leafID := range st.leafBlockIDs {
		interior.Indices[i] = types.PathIndex{Index0: leafID, Index1: st.leafLastFileRecs[i]}
	}
	interiorID, err := c.AddBlock(EncodePaths(interior))
	if err != nil {
		return 0, 0, &bomerr.IoError{Op: "add interior Paths page", Cause: err}
	}
	return interiorID, count, nil
}

func sortedNames(children map[string]*Node) []string {
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// emit allocates the three blocks describing one node and appends its
// (PathInfo1, FileRecord) pair to the leaf currently being filled.
func (st *builderState) emit(id, parentID uint32, name string, node *Node) error {
	info2 := types.PathInfo2{
		Type:         node.Type,
		Reserved0:    types.PathInfo2ReservedConstant,
		Architecture: types.PathInfo2ArchitectureConstant,
		Mode:         node.Mode,
		UID:          node.UID,
		GID:          node.GID,
		ModTime:      0,
		Size:         node.Size,
		Reserved1:    types.PathInfo2ReservedConstant,
		Checksum:     node.Checksum,
	}
	if node.LinkTarget != "" {
		info2.LinkName = node.LinkTarget + "\x00"
		info2.LinkNameLength = uint32(len(info2.LinkName))
	}

	info2ID, err := st.c.AddBlock(EncodePathInfo2(info2))
	if err != nil {
		return &bomerr.IoError{Op: "add PathInfo2", Cause: err}
	}
	info1ID, err := st.c.AddBlock(EncodePathInfo1(types.PathInfo1{ID: id, Index: info2ID}))
	if err != nil {
		return &bomerr.IoError{Op: "add PathInfo1", Cause: err}
	}
	fileRecordID, err := st.c.AddBlock(EncodeFileRecord(types.FileRecord{Parent: parentID, Name: name}))
	if err != nil {
		return &bomerr.IoError{Op: "add FileRecord", Cause: err}
	}

	st.currentEntries = append(st.currentEntries, types.PathIndex{Index0: info1ID, Index1: fileRecordID})
	st.currentLastFileRec = fileRecordID
	return nil
}

// finalizeLeaf allocates the leaf page built so far, links it to the
// previous leaf (if any), and resets the in-progress entry list.
func (st *builderState) finalizeLeaf() error {
	leaf := types.Paths{IsLeaf: 1, Backward: st.prevLeafBlockID, Indices: st.currentEntries}
	leafID, err := st.c.AddBlock(EncodePaths(leaf))
	if err != nil {
		return &bomerr.IoError{Op: "add Paths leaf", Cause: err}
	}

	if st.prevLeafBlockID != 0 {
		prev, err := st.c.GetBlock(st.prevLeafBlockID)
		if err != nil {
			return err
		}
		patchForward(prev, leafID)
	}

	st.leafBlockIDs = append(st.leafBlockIDs, leafID)
	st.leafLastFileRecs = append(st.leafLastFileRecs, st.currentLastFileRec)
	st.prevLeafBlockID = leafID
	st.currentEntries = nil
	st.currentLastFileRec = 0
	return nil
}

// forwardOffset is the byte offset of the forward field within an
// encoded Paths page: isLeaf(2) + count(2).
const forwardOffset = 4

func patchForward(leafBytes []byte, newForward uint32) {
	codec.WriteU32(leafBytes, forwardOffset, newForward)
}
