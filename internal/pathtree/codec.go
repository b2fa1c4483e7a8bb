package pathtree

import (
	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/codec"
	"github.com/paduszym/bomtool/internal/types"
)

// EncodePaths serializes one Paths page.
func EncodePaths(p types.Paths) []byte {
	buf := make([]byte, 0, 12+len(p.Indices)*8)
	buf = codec.AppendU16(buf, p.IsLeaf)
	buf = codec.AppendU16(buf, uint16(len(p.Indices)))
	buf = codec.AppendU32(buf, p.Forward)
	buf = codec.AppendU32(buf, p.Backward)
	for _, idx := range p.Indices {
		buf = codec.AppendU32(buf, idx.Index0)
		buf = codec.AppendU32(buf, idx.Index1)
	}
	return buf
}

// DecodePaths parses one Paths page.
func DecodePaths(data []byte) (types.Paths, error) {
	if !codec.Bounded(data, 0, 12) {
		return types.Paths{}, &bomerr.FormatError{Reason: "truncated Paths page header"}
	}
	isLeaf := codec.ReadU16(data, 0)
	count := int(codec.ReadU16(data, 2))
	forward := codec.ReadU32(data, 4)
	backward := codec.ReadU32(data, 8)
	if !codec.Bounded(data, 12, count*8) {
		return types.Paths{}, &bomerr.FormatError{Reason: "truncated Paths entries"}
	}
	indices := make([]types.PathIndex, count)
	off := 12
	for i := 0; i < count; i++ {
		indices[i] = types.PathIndex{
			Index0: codec.ReadU32(data, off),
			Index1: codec.ReadU32(data, off+4),
		}
		off += 8
	}
	return types.Paths{IsLeaf: isLeaf, Forward: forward, Backward: backward, Indices: indices}, nil
}

// EncodePathInfo1 serializes a PathInfo1 record.
func EncodePathInfo1(p types.PathInfo1) []byte {
	buf := make([]byte, 0, 8)
	buf = codec.AppendU32(buf, p.ID)
	buf = codec.AppendU32(buf, p.Index)
	return buf
}

// DecodePathInfo1 parses a PathInfo1 record.
func DecodePathInfo1(data []byte) (types.PathInfo1, error) {
	if !codec.Bounded(data, 0, 8) {
		return types.PathInfo1{}, &bomerr.FormatError{Reason: "truncated PathInfo1"}
	}
	return types.PathInfo1{ID: codec.ReadU32(data, 0), Index: codec.ReadU32(data, 4)}, nil
}

const pathInfo2FixedSize = 1 + 1 + 2 + 2 + 4 + 4 + 4 + 4 + 1 + 4 + 4

// EncodePathInfo2 serializes a node's metadata record. LinkNameLength and
// LinkName must already agree (LinkNameLength == 0 for non-links, or
// len(LinkTarget)+1 with LinkName == LinkTarget+"\x00" for links).
func EncodePathInfo2(p types.PathInfo2) []byte {
	buf := make([]byte, 0, pathInfo2FixedSize+int(p.LinkNameLength))
	buf = codec.AppendU8(buf, p.Type)
	buf = codec.AppendU8(buf, p.Reserved0)
	buf = codec.AppendU16(buf, p.Architecture)
	buf = codec.AppendU16(buf, p.Mode)
	buf = codec.AppendU32(buf, p.UID)
	buf = codec.AppendU32(buf, p.GID)
	buf = codec.AppendU32(buf, p.ModTime)
	buf = codec.AppendU32(buf, p.Size)
	buf = codec.AppendU8(buf, p.Reserved1)
	buf = codec.AppendU32(buf, p.Checksum)
	buf = codec.AppendU32(buf, p.LinkNameLength)
	if p.LinkNameLength > 0 {
		buf = append(buf, p.LinkName...)
	}
	return buf
}

// DecodePathInfo2 parses a node's metadata record.
func DecodePathInfo2(data []byte) (types.PathInfo2, error) {
	if !codec.Bounded(data, 0, pathInfo2FixedSize) {
		return types.PathInfo2{}, &bomerr.FormatError{Reason: "truncated PathInfo2"}
	}
	p := types.PathInfo2{
		Type:         codec.ReadU8(data, 0),
		Reserved0:    codec.ReadU8(data, 1),
		Architecture: codec.ReadU16(data, 2),
		Mode:         codec.ReadU16(data, 4),
		UID:          codec.ReadU32(data, 6),
		GID:          codec.ReadU32(data, 10),
		ModTime:      codec.ReadU32(data, 14),
		Size:         codec.ReadU32(data, 18),
		Reserved1:    codec.ReadU8(data, 22),
		Checksum:     codec.ReadU32(data, 23),
	}
	p.LinkNameLength = codec.ReadU32(data, 27)
	if p.LinkNameLength > 0 {
		if !codec.Bounded(data, pathInfo2FixedSize, int(p.LinkNameLength)) {
			return types.PathInfo2{}, &bomerr.FormatError{Reason: "truncated PathInfo2 link name"}
		}
		name, _ := codec.ReadCString(data, pathInfo2FixedSize)
		p.LinkName = name
	}
	return p, nil
}

// EncodeFileRecord serializes a name record.
func EncodeFileRecord(f types.FileRecord) []byte {
	buf := make([]byte, 0, 4+len(f.Name)+1)
	buf = codec.AppendU32(buf, f.Parent)
	buf = codec.AppendCString(buf, f.Name)
	return buf
}

// DecodeFileRecord parses a name record.
func DecodeFileRecord(data []byte) (types.FileRecord, error) {
	if !codec.Bounded(data, 0, 4) {
		return types.FileRecord{}, &bomerr.FormatError{Reason: "truncated FileRecord"}
	}
	parent := codec.ReadU32(data, 0)
	name, _ := codec.ReadCString(data, 4)
	return types.FileRecord{Parent: parent, Name: name}, nil
}

// EncodeTree serializes a Tree header.
func EncodeTree(t types.Tree) []byte {
	buf := make([]byte, 0, 4+4+4+4+4+1)
	buf = codec.AppendTag(buf, t.Tag[:])
	buf = codec.AppendU32(buf, t.Version)
	buf = codec.AppendU32(buf, t.RootChild)
	buf = codec.AppendU32(buf, t.BlockSize)
	buf = codec.AppendU32(buf, t.PathCount)
	buf = codec.AppendU8(buf, t.Reserved)
	return buf
}

const treeFixedSize = 4 + 4 + 4 + 4 + 4 + 1

// DecodeTree parses a Tree header.
func DecodeTree(data []byte) (types.Tree, error) {
	if !codec.Bounded(data, 0, treeFixedSize) {
		return types.Tree{}, &bomerr.FormatError{Reason: "truncated Tree header"}
	}
	var t types.Tree
	copy(t.Tag[:], codec.ReadTag(data, 0, 4))
	t.Version = codec.ReadU32(data, 4)
	t.RootChild = codec.ReadU32(data, 8)
	t.BlockSize = codec.ReadU32(data, 12)
	t.PathCount = codec.ReadU32(data, 16)
	t.Reserved = codec.ReadU8(data, 20)
	return t, nil
}

// NewEmptyLeaf returns the single-leaf page used by HLIndex, Size64, and
// VIndex's inner tree.
func NewEmptyLeaf() types.Paths {
	return types.Paths{IsLeaf: 1, Forward: 0, Backward: 0}
}
