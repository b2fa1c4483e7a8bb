// Package codec implements the big-endian byte encoding the BOM container
// uses everywhere on disk. Every record is decoded field by field at an
// explicit offset; nothing here reinterprets a byte slice as a Go struct,
// so endianness and alignment never leak past this layer.
package codec

import "encoding/binary"

// ReadU8 returns the byte at off.
func ReadU8(buf []byte, off int) uint8 {
	return buf[off]
}

// ReadU16 returns the big-endian uint16 at off.
func ReadU16(buf []byte, off int) uint16 {
	return binary.BigEndian.Uint16(buf[off : off+2])
}

// ReadU32 returns the big-endian uint32 at off.
func ReadU32(buf []byte, off int) uint32 {
	return binary.BigEndian.Uint32(buf[off : off+4])
}

// ReadTag returns the n raw bytes at off, without NUL processing.
func ReadTag(buf []byte, off, n int) []byte {
	return buf[off : off+n]
}

// ReadCString returns the string starting at off up to (not including) the
// first NUL byte, and the offset immediately past that NUL.
func ReadCString(buf []byte, off int) (string, int) {
	end := off
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	next := end
	if next < len(buf) {
		next++ // skip the NUL
	}
	return string(buf[off:end]), next
}

// WriteU8 writes v at off.
func WriteU8(buf []byte, off int, v uint8) {
	buf[off] = v
}

// WriteU16 writes the big-endian encoding of v at off.
func WriteU16(buf []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(buf[off:off+2], v)
}

// WriteU32 writes the big-endian encoding of v at off.
func WriteU32(buf []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(buf[off:off+4], v)
}

// AppendU8 appends v to buf and returns the result.
func AppendU8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

// AppendU16 appends the big-endian encoding of v to buf and returns the
// result.
func AppendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// AppendU32 appends the big-endian encoding of v to buf and returns the
// result.
func AppendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// AppendTag appends the raw bytes of tag to buf and returns the result.
func AppendTag(buf []byte, tag []byte) []byte {
	return append(buf, tag...)
}

// AppendCString appends s followed by a trailing NUL to buf and returns
// the result.
func AppendCString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, 0)
}

// Bounded reports whether a field of length n starting at off fits within
// buf. Callers use this to turn a would-be out-of-range slice into a
// checked, recoverable condition before reading untrusted input.
func Bounded(buf []byte, off, n int) bool {
	return off >= 0 && n >= 0 && off+n <= len(buf)
}
