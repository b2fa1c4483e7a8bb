package interfaces

// NodeRecord is one filesystem entry as produced by a NodeSource: a path,
// its stat-like metadata, and (for symlinks) its target. NodeSource
// implementations may yield these in any order; the builder assembles
// them into a tree itself.
type NodeRecord struct {
	Path       string
	Mode       uint16
	UID        uint32
	GID        uint32
	Size       uint32
	Checksum   uint32
	LinkTarget string
}

// NodeSource produces the filesystem records a BOM is built from. This is
// the seam between the container format (this module's concern) and
// wherever those records actually come from: a real directory walk, a
// textual manifest, or a test fixture.
type NodeSource interface {
	// Nodes returns every record the source can produce. The builder does
	// not require any particular order.
	Nodes() ([]NodeRecord, error)
}
