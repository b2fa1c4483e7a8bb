// Package manifest parses and prints the tab-separated textual node list
// format that mkbom's -i option and ls4mkbom both speak: one node per
// line, path<TAB>octal-mode<TAB>uid/gid[<TAB>size<TAB>crc[<TAB>linkTarget]].
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/interfaces"
)

const (
	modeTypeMask = 0xF000
	modeDir      = 0x4000
	modeFile     = 0x8000
	modeLink     = 0xA000
)

// Source parses NodeRecords from a textual manifest on Nodes.
type Source struct {
	r io.Reader
}

// NewSource returns a Source reading its manifest from r.
func NewSource(r io.Reader) *Source {
	return &Source{r: r}
}

// Nodes reads every line of the manifest, failing on the first malformed
// one.
func (s *Source) Nodes() ([]interfaces.NodeRecord, error) {
	var records []interfaces.NodeRecord
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()
		if text == "" {
			continue
		}
		rec, err := parseLine(text, lineNum)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &bomerr.IoError{Op: "read manifest", Cause: err}
	}
	return records, nil
}

func parseLine(text string, lineNum int) (interfaces.NodeRecord, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < 3 {
		return interfaces.NodeRecord{}, &bomerr.ManifestError{Line: lineNum, Reason: "expected at least path, mode, and owner fields"}
	}

	modeVal, err := strconv.ParseUint(fields[1], 8, 32)
	if err != nil {
		return interfaces.NodeRecord{}, &bomerr.ManifestError{Line: lineNum, Reason: fmt.Sprintf("invalid octal mode %q", fields[1]), Cause: err}
	}
	mode := uint16(modeVal)

	uid, gid, rest, err := parseOwner(fields[2:], lineNum)
	if err != nil {
		return interfaces.NodeRecord{}, err
	}

	rec := interfaces.NodeRecord{Path: fields[0], Mode: mode, UID: uid, GID: gid}

	switch mode & modeTypeMask {
	case modeDir:
		// no size/crc/link fields
	case modeFile:
		size, crc, _, err := parseSizeAndCRC(rest, lineNum)
		if err != nil {
			return interfaces.NodeRecord{}, err
		}
		rec.Size, rec.Checksum = size, crc
	case modeLink:
		size, crc, rest, err := parseSizeAndCRC(rest, lineNum)
		if err != nil {
			return interfaces.NodeRecord{}, err
		}
		if len(rest) < 1 {
			return interfaces.NodeRecord{}, &bomerr.ManifestError{Line: lineNum, Reason: "symlink entry missing target field"}
		}
		rec.Size, rec.Checksum = size, crc
		rec.LinkTarget = rest[0]
	default:
		return interfaces.NodeRecord{}, &bomerr.ManifestError{Line: lineNum, Reason: fmt.Sprintf("unsupported node type in mode 0%o", mode)}
	}
	return rec, nil
}

// parseOwner consumes either a single "uid/gid" field or two separate
// uid, gid fields, returning whatever fields remain after it.
func parseOwner(fields []string, lineNum int) (uid, gid uint32, rest []string, err error) {
	if len(fields) == 0 {
		return 0, 0, nil, &bomerr.ManifestError{Line: lineNum, Reason: "missing uid/gid"}
	}
	if strings.Contains(fields[0], "/") {
		parts := strings.SplitN(fields[0], "/", 2)
		u, e1 := strconv.ParseUint(parts[0], 10, 32)
		g, e2 := strconv.ParseUint(parts[1], 10, 32)
		if e1 != nil || e2 != nil {
			return 0, 0, nil, &bomerr.ManifestError{Line: lineNum, Reason: fmt.Sprintf("invalid uid/gid %q", fields[0])}
		}
		return uint32(u), uint32(g), fields[1:], nil
	}
	if len(fields) < 2 {
		return 0, 0, nil, &bomerr.ManifestError{Line: lineNum, Reason: "missing gid"}
	}
	u, e1 := strconv.ParseUint(fields[0], 10, 32)
	g, e2 := strconv.ParseUint(fields[1], 10, 32)
	if e1 != nil || e2 != nil {
		return 0, 0, nil, &bomerr.ManifestError{Line: lineNum, Reason: "invalid uid/gid fields"}
	}
	return uint32(u), uint32(g), fields[2:], nil
}

func parseSizeAndCRC(fields []string, lineNum int) (size, crc uint32, rest []string, err error) {
	if len(fields) < 2 {
		return 0, 0, nil, &bomerr.ManifestError{Line: lineNum, Reason: "missing size/crc fields"}
	}
	s, e1 := strconv.ParseUint(fields[0], 10, 32)
	c, e2 := strconv.ParseUint(fields[1], 10, 32)
	if e1 != nil || e2 != nil {
		return 0, 0, nil, &bomerr.ManifestError{Line: lineNum, Reason: "invalid size/crc fields"}
	}
	return uint32(s), uint32(c), fields[2:], nil
}
