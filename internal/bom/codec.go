package bom

import (
	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/codec"
	"github.com/paduszym/bomtool/internal/types"
)

const bomInfoEntrySize = 4 + 4 + 4 + 4

// EncodeBomInfo serializes the "BomInfo" variable's payload.
func EncodeBomInfo(info types.BomInfo) []byte {
	buf := make([]byte, 0, 12+len(info.Entries)*bomInfoEntrySize)
	buf = codec.AppendU32(buf, info.Version)
	buf = codec.AppendU32(buf, info.NumberOfPaths)
	buf = codec.AppendU32(buf, info.NumberOfInfoEntries)
	for _, e := range info.Entries {
		buf = codec.AppendU32(buf, e.Unknown0)
		buf = codec.AppendU32(buf, e.Unknown1)
		buf = codec.AppendU32(buf, e.Unknown2)
		buf = codec.AppendU32(buf, e.Unknown3)
	}
	return buf
}

// DecodeBomInfo parses the "BomInfo" variable's payload.
func DecodeBomInfo(data []byte) (types.BomInfo, error) {
	if !codec.Bounded(data, 0, 12) {
		return types.BomInfo{}, &bomerr.FormatError{Reason: "truncated BomInfo header"}
	}
	info := types.BomInfo{
		Version:             codec.ReadU32(data, 0),
		NumberOfPaths:       codec.ReadU32(data, 4),
		NumberOfInfoEntries: codec.ReadU32(data, 8),
	}
	off := 12
	for i := uint32(0); i < info.NumberOfInfoEntries; i++ {
		if !codec.Bounded(data, off, bomInfoEntrySize) {
			return types.BomInfo{}, &bomerr.FormatError{Reason: "truncated BomInfo entry"}
		}
		info.Entries = append(info.Entries, types.BomInfoEntry{
			Unknown0: codec.ReadU32(data, off),
			Unknown1: codec.ReadU32(data, off+4),
			Unknown2: codec.ReadU32(data, off+8),
			Unknown3: codec.ReadU32(data, off+12),
		})
		off += bomInfoEntrySize
	}
	return info, nil
}

const vIndexFixedSize = 4 + 4 + 4 + 1

// EncodeVIndex serializes the "VIndex" variable's payload.
func EncodeVIndex(v types.VIndex) []byte {
	buf := make([]byte, 0, vIndexFixedSize)
	buf = codec.AppendU32(buf, v.Unknown0)
	buf = codec.AppendU32(buf, v.IndexToVTree)
	buf = codec.AppendU32(buf, v.Unknown2)
	buf = codec.AppendU8(buf, v.Reserved)
	return buf
}

// DecodeVIndex parses the "VIndex" variable's payload.
func DecodeVIndex(data []byte) (types.VIndex, error) {
	if !codec.Bounded(data, 0, vIndexFixedSize) {
		return types.VIndex{}, &bomerr.FormatError{Reason: "truncated VIndex"}
	}
	return types.VIndex{
		Unknown0:     codec.ReadU32(data, 0),
		IndexToVTree: codec.ReadU32(data, 4),
		Unknown2:     codec.ReadU32(data, 8),
		Reserved:     codec.ReadU8(data, 12),
	}, nil
}
