package interfaces

import "io"

// Builder constructs a BOM file from a NodeSource, following the fixed
// BomInfo/Paths/HLIndex/VIndex/Size64 variable sequence.
type Builder interface {
	// Build writes a complete BOM image for source to w and reports how
	// many path entries it contained.
	Build(source NodeSource, w io.Writer) (pathCount int, err error)
}

// Dumper parses an arbitrary BOM image and writes a human-readable,
// recursive structural dump of it.
type Dumper interface {
	Dump(data []byte, w io.Writer) error
}
