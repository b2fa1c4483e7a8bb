package bomfile

import (
	"fmt"
	"io"
	"sort"

	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/container"
	"github.com/paduszym/bomtool/internal/pathtree"
	"github.com/paduszym/bomtool/internal/types"
)

// Diff compares the Paths variable of two opened BOM images, a and b, and
// writes a report of added paths, removed paths, and paths present in
// both whose metadata differs. It supplements the original mkbom/dumpbom
// pair with a comparison the original CLI never offered, built on the
// same container.Open reader dump uses and on pathtree.Walk's
// reconstruction of full paths.
func Diff(a, b []byte, w io.Writer) error {
	aEntries, err := pathsOf(a)
	if err != nil {
		return err
	}
	bEntries, err := pathsOf(b)
	if err != nil {
		return err
	}

	added, removed, changed := diffEntries(aEntries, bEntries)

	for _, p := range added {
		fmt.Fprintf(w, "+ %s\n", p)
	}
	for _, p := range removed {
		fmt.Fprintf(w, "- %s\n", p)
	}
	for _, c := range changed {
		fmt.Fprintf(w, "~ %s\n", c)
	}
	return nil
}

func pathsOf(data []byte) (map[string]types.PathInfo2, error) {
	r, err := container.Open(data)
	if err != nil {
		return nil, err
	}
	id, ok := r.Var(types.VarPaths)
	if !ok {
		return nil, &bomerr.FormatError{Reason: "Paths variable missing"}
	}
	treeData, err := r.Block(id)
	if err != nil {
		return nil, err
	}
	tree, err := pathtree.DecodeTree(treeData)
	if err != nil {
		return nil, err
	}
	if tree.PathCount == 0 {
		return map[string]types.PathInfo2{}, nil
	}
	entries, err := pathtree.Walk(r, tree.RootChild)
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.PathInfo2, len(entries))
	for _, e := range entries {
		out[e.Path] = e.Info
	}
	return out, nil
}

func diffEntries(a, b map[string]types.PathInfo2) (added, removed, changed []string) {
	for p, bi := range b {
		ai, ok := a[p]
		if !ok {
			added = append(added, p)
			continue
		}
		if !sameMetadata(ai, bi) {
			changed = append(changed, fmt.Sprintf("%s (mode 0%o->0%o size %d->%d crc %#x->%#x)",
				p, ai.Mode, bi.Mode, ai.Size, bi.Size, ai.Checksum, bi.Checksum))
		}
	}
	for p := range a {
		if _, ok := b[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)
	return added, removed, changed
}

func sameMetadata(a, b types.PathInfo2) bool {
	return a.Type == b.Type &&
		a.Mode == b.Mode &&
		a.UID == b.UID &&
		a.GID == b.GID &&
		a.Size == b.Size &&
		a.Checksum == b.Checksum &&
		a.LinkName == b.LinkName
}
