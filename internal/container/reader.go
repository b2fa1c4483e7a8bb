package container

import (
	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/codec"
	"github.com/paduszym/bomtool/internal/interfaces"
	"github.com/paduszym/bomtool/internal/types"
)

// Reader is the read-only, opened view of a BOM container: the parsed
// block table and vars directory over the original byte buffer. No deep
// validation of block payloads is performed; that is left to whatever
// parses a given variable's contents.
type Reader struct {
	data       []byte
	header     types.Header
	blockTable []types.BlockPointer
	vars       []types.Var
	varIndex   map[string]uint32
}

var _ interfaces.ContainerReader = (*Reader)(nil)

// Open validates the magic and version and parses the header, block
// table, free list, and vars directory of buf. It does not copy buf;
// the returned Reader aliases it.
func Open(buf []byte) (*Reader, error) {
	if len(buf) < types.HeaderSize {
		return nil, &bomerr.FormatError{Reason: "file shorter than the 512-byte header"}
	}
	if string(codec.ReadTag(buf, 0, 8)) != string(types.HeaderMagic[:]) {
		return nil, &bomerr.FormatError{Reason: "bad magic"}
	}
	version := codec.ReadU32(buf, 8)
	if version != types.HeaderVersion {
		return nil, &bomerr.FormatError{Reason: "unsupported version"}
	}

	indexOffset := codec.ReadU32(buf, 16)
	indexLength := codec.ReadU32(buf, 20)
	varsOffset := codec.ReadU32(buf, 24)
	varsLength := codec.ReadU32(buf, 28)

	if !codec.Bounded(buf, int(indexOffset), int(indexLength)) {
		return nil, &bomerr.FormatError{Reason: "block index extends past end of file"}
	}
	if !codec.Bounded(buf, int(varsOffset), int(varsLength)) {
		return nil, &bomerr.FormatError{Reason: "vars section extends past end of file"}
	}

	blockTable, blockTableSize, err := parseBlockTable(buf, int(indexOffset))
	if err != nil {
		return nil, err
	}
	if _, err := parseFreeList(buf, int(indexOffset)+blockTableSize); err != nil {
		return nil, err
	}

	vars, err := parseVars(buf, int(varsOffset), int(varsLength))
	if err != nil {
		return nil, err
	}

	varIndex := make(map[string]uint32, len(vars))
	for _, v := range vars {
		varIndex[v.Name] = v.Index
	}

	hdr := types.Header{
		Version:        version,
		NumberOfBlocks: codec.ReadU32(buf, 12),
		IndexOffset:    indexOffset,
		IndexLength:    indexLength,
		VarsOffset:     varsOffset,
		VarsLength:     varsLength,
	}
	copy(hdr.Magic[:], codec.ReadTag(buf, 0, 8))

	return &Reader{
		data:       buf,
		header:     hdr,
		blockTable: blockTable,
		vars:       vars,
		varIndex:   varIndex,
	}, nil
}

// Header returns the parsed 512-byte file preamble.
func (r *Reader) Header() types.Header {
	return r.header
}

func parseBlockTable(buf []byte, off int) ([]types.BlockPointer, int, error) {
	if !codec.Bounded(buf, off, 4) {
		return nil, 0, &bomerr.FormatError{Reason: "truncated block table count"}
	}
	count := int(codec.ReadU32(buf, off))
	size := 4 + count*8
	if !codec.Bounded(buf, off, size) {
		return nil, 0, &bomerr.FormatError{Reason: "truncated block table"}
	}
	table := make([]types.BlockPointer, count)
	p := off + 4
	for i := 0; i < count; i++ {
		table[i] = types.BlockPointer{
			Address: codec.ReadU32(buf, p),
			Length:  codec.ReadU32(buf, p+4),
		}
		p += 8
	}
	return table, size, nil
}

func parseFreeList(buf []byte, off int) ([]types.BlockPointer, error) {
	if !codec.Bounded(buf, off, 4) {
		return nil, &bomerr.FormatError{Reason: "truncated free list count"}
	}
	count := int(codec.ReadU32(buf, off))
	size := 4 + count*8
	if !codec.Bounded(buf, off, size) {
		return nil, &bomerr.FormatError{Reason: "truncated free list"}
	}
	list := make([]types.BlockPointer, count)
	p := off + 4
	for i := 0; i < count; i++ {
		list[i] = types.BlockPointer{
			Address: codec.ReadU32(buf, p),
			Length:  codec.ReadU32(buf, p+4),
		}
		p += 8
	}
	return list, nil
}

func parseVars(buf []byte, off, length int) ([]types.Var, error) {
	end := off + length
	if !codec.Bounded(buf, off, 4) {
		return nil, &bomerr.FormatError{Reason: "truncated vars count"}
	}
	count := int(codec.ReadU32(buf, off))
	p := off + 4
	vars := make([]types.Var, 0, count)
	for i := 0; i < count; i++ {
		if !codec.Bounded(buf, p, 5) || p+5 > end {
			return nil, &bomerr.FormatError{Reason: "truncated var entry"}
		}
		index := codec.ReadU32(buf, p)
		nameLen := int(codec.ReadU8(buf, p+4))
		p += 5
		if !codec.Bounded(buf, p, nameLen) || p+nameLen > end {
			return nil, &bomerr.FormatError{Reason: "var name extends past vars region"}
		}
		name := string(codec.ReadTag(buf, p, nameLen))
		p += nameLen
		vars = append(vars, types.Var{Index: index, Name: name})
	}
	return vars, nil
}

// Var returns the block id registered under name.
func (r *Reader) Var(name string) (uint32, bool) {
	id, ok := r.varIndex[name]
	return id, ok
}

// VarNames returns the variable names in on-disk order.
func (r *Reader) VarNames() []string {
	names := make([]string, len(r.vars))
	for i, v := range r.vars {
		names[i] = v.Name
	}
	return names
}

// Block returns the payload bytes for block id, validated against the
// file's actual size.
func (r *Reader) Block(id uint32) ([]byte, error) {
	if int(id) >= len(r.blockTable) {
		return nil, &bomerr.FormatError{Reason: "block id out of range"}
	}
	ptr := r.blockTable[id]
	if !codec.Bounded(r.data, int(ptr.Address), int(ptr.Length)) {
		return nil, &bomerr.FormatError{Reason: "block pointer out of file range"}
	}
	return r.data[ptr.Address : ptr.Address+ptr.Length], nil
}

// BlockPointer returns the raw (address, length) pointer stored in the
// block table for id.
func (r *Reader) BlockPointer(id uint32) (types.BlockPointer, bool) {
	if int(id) >= len(r.blockTable) {
		return types.BlockPointer{}, false
	}
	return r.blockTable[id], true
}
