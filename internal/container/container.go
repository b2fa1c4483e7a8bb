// Package container implements the block-indexed BOM file image: the
// header, the named Vars directory, the block table, and the (always
// empty, two-slot) free list the writer emits. Everything here is pure
// in-memory bookkeeping; byte-level encoding is delegated to
// internal/codec so that endianness stays isolated to Write/Open.
package container

import (
	"io"

	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/codec"
	"github.com/paduszym/bomtool/internal/interfaces"
	"github.com/paduszym/bomtool/internal/types"
)

// freeListReservedSlots is the number of zero pointers the writer always
// emits after the (always zero-length) free list. Their meaning on read
// is unspecified; we preserve the original tool's output shape.
const freeListReservedSlots = 2

// Container is the write-side, in-memory block store. Blocks are
// append-only: AddBlock never rewrites a prior payload, matching the
// container's append-only lifecycle.
type Container struct {
	payload [][]byte    // payload[i] is the data for block id i+1; block id 0 is reserved.
	vars    []types.Var
}

var _ interfaces.Container = (*Container)(nil)

// New returns an empty container: a reserved block 0, no vars, and the
// fixed two-slot free list.
func New() *Container {
	return &Container{}
}

// AddBlock appends data as a new block and returns its id (>= 1). The
// returned id is stable for the lifetime of the container; GetBlock can
// reopen the same block later by id.
func (c *Container) AddBlock(data []byte) (uint32, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	c.payload = append(c.payload, cp)
	return uint32(len(c.payload)), nil
}

// GetBlock returns a mutable view of block id's payload. Writes through
// the returned slice are visible in the final serialized container,
// which is how the Paths tree builder back-patches a leaf's forward
// pointer after a later sibling is allocated.
func (c *Container) GetBlock(id uint32) ([]byte, error) {
	if id == 0 || int(id) > len(c.payload) {
		return nil, &bomerr.StateError{Reason: "GetBlock: no such block id"}
	}
	return c.payload[id-1], nil
}

// AddVar records name as pointing at block id.
func (c *Container) AddVar(name string, id uint32) error {
	if id == 0 || int(id) > len(c.payload) {
		return &bomerr.StateError{Reason: "AddVar: block id was never added"}
	}
	c.vars = append(c.vars, types.Var{Index: id, Name: name})
	return nil
}

// NumberOfBlocks returns how many blocks have been added, not counting
// the reserved block 0.
func (c *Container) NumberOfBlocks() uint32 {
	return uint32(len(c.payload))
}

// Write serializes the container: header, vars, payload, block table,
// free list, in that order, with every multi-byte field encoded
// big-endian. Block table addresses are absolute file offsets, computed
// here rather than carried from AddBlock time.
func (c *Container) Write(w io.Writer) error {
	varsBuf := encodeVars(c.vars)
	varsLength := uint32(len(varsBuf))

	var payloadBuf []byte
	for _, p := range c.payload {
		payloadBuf = append(payloadBuf, p...)
	}
	payloadLength := uint32(len(payloadBuf))

	numBlocks := uint32(len(c.payload))
	indexOffset := types.HeaderSize + varsLength + payloadLength
	blockTableLength := 4 + (numBlocks+1)*8
	freeListLength := uint32(4 + freeListReservedSlots*8)
	indexLength := blockTableLength + freeListLength

	hdr := types.Header{
		Magic:          types.HeaderMagic,
		Version:        types.HeaderVersion,
		NumberOfBlocks: numBlocks,
		IndexOffset:    indexOffset,
		IndexLength:    indexLength,
		VarsOffset:     types.HeaderSize,
		VarsLength:     varsLength,
	}
	headerBuf := encodeHeader(hdr)

	blockTableBuf := make([]byte, 0, blockTableLength)
	blockTableBuf = codec.AppendU32(blockTableBuf, numBlocks+1)
	blockTableBuf = codec.AppendU32(blockTableBuf, 0) // reserved slot 0: address
	blockTableBuf = codec.AppendU32(blockTableBuf, 0) // reserved slot 0: length
	address := types.HeaderSize + varsLength
	for _, p := range c.payload {
		length := uint32(len(p))
		blockTableBuf = codec.AppendU32(blockTableBuf, address)
		blockTableBuf = codec.AppendU32(blockTableBuf, length)
		address += length
	}

	freeListBuf := make([]byte, 0, freeListLength)
	freeListBuf = codec.AppendU32(freeListBuf, 0)
	for i := 0; i < freeListReservedSlots; i++ {
		freeListBuf = codec.AppendU32(freeListBuf, 0)
		freeListBuf = codec.AppendU32(freeListBuf, 0)
	}

	for _, chunk := range [][]byte{headerBuf, varsBuf, payloadBuf, blockTableBuf, freeListBuf} {
		if _, err := w.Write(chunk); err != nil {
			return &bomerr.IoError{Op: "container write", Cause: err}
		}
	}
	return nil
}

func encodeHeader(h types.Header) []byte {
	buf := make([]byte, 0, types.HeaderSize)
	buf = codec.AppendTag(buf, h.Magic[:])
	buf = codec.AppendU32(buf, h.Version)
	buf = codec.AppendU32(buf, h.NumberOfBlocks)
	buf = codec.AppendU32(buf, h.IndexOffset)
	buf = codec.AppendU32(buf, h.IndexLength)
	buf = codec.AppendU32(buf, h.VarsOffset)
	buf = codec.AppendU32(buf, h.VarsLength)
	padded := make([]byte, types.HeaderSize)
	copy(padded, buf)
	return padded
}

func encodeVars(vars []types.Var) []byte {
	buf := make([]byte, 0, 4+len(vars)*8)
	buf = codec.AppendU32(buf, uint32(len(vars)))
	for _, v := range vars {
		buf = codec.AppendU32(buf, v.Index)
		buf = codec.AppendU8(buf, uint8(len(v.Name)))
		buf = append(buf, v.Name...)
	}
	return buf
}
