package pathtree

import (
	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/interfaces"
	"github.com/paduszym/bomtool/internal/types"
)

// Entry is one reconstructed node: its BFS id, its parent's id, its own
// name, the full slash-joined path from the tree's top-level entries, and
// its metadata.
type Entry struct {
	ID       uint32
	ParentID uint32
	Name     string
	Path     string
	Info     types.PathInfo2
}

type rawEntry struct {
	id     uint32
	parent uint32
	name   string
	info   types.PathInfo2
}

// Walk descends from rootChild to the leftmost leaf, then follows forward
// links to visit every leaf in order, dereferencing each entry's
// PathInfo1/PathInfo2/FileRecord and reconstructing full paths from the
// parent chain.
func Walk(cr interfaces.ContainerReader, rootChild uint32) ([]Entry, error) {
	leafID, err := leftmostLeaf(cr, rootChild)
	if err != nil {
		return nil, err
	}

	var raws []rawEntry
	for leafID != 0 {
		data, err := cr.Block(leafID)
		if err != nil {
			return nil, err
		}
		page, err := DecodePaths(data)
		if err != nil {
			return nil, err
		}
		if page.IsLeaf != 1 {
			return nil, &bomerr.FormatError{Reason: "expected a leaf page while following forward links"}
		}
		for _, idx := range page.Indices {
			r, err := resolveEntry(cr, idx)
			if err != nil {
				return nil, err
			}
			raws = append(raws, r)
		}
		leafID = page.Forward
	}

	byID := make(map[uint32]rawEntry, len(raws))
	for _, r := range raws {
		byID[r.id] = r
	}

	entries := make([]Entry, len(raws))
	for i, r := range raws {
		entries[i] = Entry{
			ID:       r.id,
			ParentID: r.parent,
			Name:     r.name,
			Path:     resolvePath(byID, r.id),
			Info:     r.info,
		}
	}
	return entries, nil
}

func leftmostLeaf(cr interfaces.ContainerReader, blockID uint32) (uint32, error) {
	for {
		data, err := cr.Block(blockID)
		if err != nil {
			return 0, err
		}
		page, err := DecodePaths(data)
		if err != nil {
			return 0, err
		}
		if page.IsLeaf == 1 {
			return blockID, nil
		}
		if len(page.Indices) == 0 {
			return 0, &bomerr.FormatError{Reason: "interior Paths page has no children"}
		}
		blockID = page.Indices[0].Index0
	}
}

func resolveEntry(cr interfaces.ContainerReader, idx types.PathIndex) (rawEntry, error) {
	info1Data, err := cr.Block(idx.Index0)
	if err != nil {
		return rawEntry{}, err
	}
	info1, err := DecodePathInfo1(info1Data)
	if err != nil {
		return rawEntry{}, err
	}
	info2Data, err := cr.Block(info1.Index)
	if err != nil {
		return rawEntry{}, err
	}
	info2, err := DecodePathInfo2(info2Data)
	if err != nil {
		return rawEntry{}, err
	}
	fileData, err := cr.Block(idx.Index1)
	if err != nil {
		return rawEntry{}, err
	}
	file, err := DecodeFileRecord(fileData)
	if err != nil {
		return rawEntry{}, err
	}
	return rawEntry{id: info1.ID, parent: file.Parent, name: file.Name, info: info2}, nil
}

func resolvePath(byID map[uint32]rawEntry, id uint32) string {
	if id == 0 {
		return ""
	}
	e, ok := byID[id]
	if !ok {
		return ""
	}
	parentPath := resolvePath(byID, e.parent)
	if parentPath == "" {
		return e.name
	}
	return parentPath + "/" + e.name
}
