package manifest

import (
	"fmt"
	"io"
	"sort"

	"github.com/paduszym/bomtool/internal/interfaces"
)

// Print writes records as a tab-separated manifest, one line per record,
// sorted by path for determinism. This is the inverse of Source: feeding
// Print's output back through NewSource reproduces the same records.
func Print(w io.Writer, records []interfaces.NodeRecord) error {
	sorted := make([]interfaces.NodeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, rec := range sorted {
		if _, err := fmt.Fprintf(w, "%s\t%o\t%d/%d", rec.Path, rec.Mode, rec.UID, rec.GID); err != nil {
			return err
		}
		switch rec.Mode & modeTypeMask {
		case modeFile:
			if _, err := fmt.Fprintf(w, "\t%d\t%d", rec.Size, rec.Checksum); err != nil {
				return err
			}
		case modeLink:
			if _, err := fmt.Fprintf(w, "\t%d\t%d\t%s", rec.Size, rec.Checksum, rec.LinkTarget); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
