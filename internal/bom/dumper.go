package bom

import (
	"fmt"
	"io"

	"github.com/paduszym/bomtool/internal/container"
	"github.com/paduszym/bomtool/internal/interfaces"
	"github.com/paduszym/bomtool/internal/pathtree"
)

// Dumper implements interfaces.Dumper: it opens a BOM image and writes a
// recursive, human-readable report of its header, variables, and the
// structure of every tree-shaped variable it recognizes.
type Dumper struct{}

var _ interfaces.Dumper = Dumper{}

// Dump writes a structural report of data to w.
func (Dumper) Dump(data []byte, w io.Writer) error {
	r, err := container.Open(data)
	if err != nil {
		return err
	}

	hdr := r.Header()
	fmt.Fprintf(w, "header:\n")
	fmt.Fprintf(w, "  magic = %q\n", string(hdr.Magic[:]))
	fmt.Fprintf(w, "  version = %d\n", hdr.Version)
	fmt.Fprintf(w, "  numberOfBlocks = %d\n", hdr.NumberOfBlocks)
	fmt.Fprintf(w, "  indexOffset = %d\n", hdr.IndexOffset)
	fmt.Fprintf(w, "  indexLength = %d\n", hdr.IndexLength)
	fmt.Fprintf(w, "  varsOffset = %d\n", hdr.VarsOffset)
	fmt.Fprintf(w, "  varsLength = %d\n", hdr.VarsLength)

	for _, name := range r.VarNames() {
		id, _ := r.Var(name)
		blockData, err := r.Block(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%q (block %d, %d bytes):\n", name, id, len(blockData))

		switch name {
		case "Paths", "HLIndex", "Size64":
			if err := dumpTreeVar(w, r, blockData); err != nil {
				return err
			}
		case "BomInfo":
			if err := dumpBomInfo(w, blockData); err != nil {
				return err
			}
		case "VIndex":
			if err := dumpVIndex(w, r, blockData); err != nil {
				return err
			}
		default:
			dumpRaw(w, blockData)
		}
	}
	return nil
}

func dumpBomInfo(w io.Writer, data []byte) error {
	info, err := DecodeBomInfo(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  version = %d\n", info.Version)
	fmt.Fprintf(w, "  numberOfPaths = %d\n", info.NumberOfPaths)
	fmt.Fprintf(w, "  numberOfInfoEntries = %d\n", info.NumberOfInfoEntries)
	for i, e := range info.Entries {
		fmt.Fprintf(w, "  entries[%d] = {%d %d %d %d}\n", i, e.Unknown0, e.Unknown1, e.Unknown2, e.Unknown3)
	}
	return nil
}

func dumpVIndex(w io.Writer, r *container.Reader, data []byte) error {
	v, err := DecodeVIndex(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  unknown0 = %d\n", v.Unknown0)
	fmt.Fprintf(w, "  indexToVTree = %d\n", v.IndexToVTree)
	fmt.Fprintf(w, "  unknown2 = %d\n", v.Unknown2)
	fmt.Fprintf(w, "  reserved = %d\n", v.Reserved)

	treeData, err := r.Block(v.IndexToVTree)
	if err != nil {
		return err
	}
	return dumpTreeVar(w, r, treeData)
}

func dumpTreeVar(w io.Writer, r *container.Reader, data []byte) error {
	tree, err := pathtree.DecodeTree(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  tag = %q\n", string(tree.Tag[:]))
	fmt.Fprintf(w, "  version = %d\n", tree.Version)
	fmt.Fprintf(w, "  child = %d\n", tree.RootChild)
	fmt.Fprintf(w, "  blockSize = %d\n", tree.BlockSize)
	fmt.Fprintf(w, "  pathCount = %d\n", tree.PathCount)

	pageData, err := r.Block(tree.RootChild)
	if err != nil {
		return err
	}
	return dumpPage(w, r, pageData, tree.RootChild)
}

func dumpPage(w io.Writer, r *container.Reader, data []byte, id uint32) error {
	page, err := pathtree.DecodePaths(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n  path id=%d\n", id)
	fmt.Fprintf(w, "  isLeaf = %d\n", page.IsLeaf)
	fmt.Fprintf(w, "  count = %d\n", page.Count())
	fmt.Fprintf(w, "  forward = %d\n", page.Forward)
	fmt.Fprintf(w, "  backward = %d\n", page.Backward)

	for i, idx := range page.Indices {
		fmt.Fprintf(w, "  indices[%d].index0 = %d\n", i, idx.Index0)
		if page.IsLeaf == 1 {
			fileData, err := r.Block(idx.Index1)
			if err != nil {
				return err
			}
			file, err := pathtree.DecodeFileRecord(fileData)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  indices[%d].index1.parent = %d\n", i, file.Parent)
			fmt.Fprintf(w, "  indices[%d].index1.name = %s\n", i, file.Name)
		}
	}

	if page.IsLeaf == 0 && len(page.Indices) > 0 {
		childData, err := r.Block(page.Indices[0].Index0)
		if err != nil {
			return err
		}
		if err := dumpPage(w, r, childData, page.Indices[0].Index0); err != nil {
			return err
		}
	}

	if page.Forward != 0 {
		fwdData, err := r.Block(page.Forward)
		if err != nil {
			return err
		}
		return dumpPage(w, r, fwdData, page.Forward)
	}
	return nil
}

func dumpRaw(w io.Writer, data []byte) {
	i := 0
	for ; i+4 <= len(data); i += 4 {
		word := uint32(data[i])<<24 | uint32(data[i+1])<<16 | uint32(data[i+2])<<8 | uint32(data[i+3])
		fmt.Fprintf(w, "  0x%08x\n", word)
	}
	for ; i < len(data); i++ {
		fmt.Fprintf(w, "  0x%02x\n", data[i])
	}
}
