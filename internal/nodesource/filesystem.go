// Package nodesource provides concrete interfaces.NodeSource
// implementations: a real filesystem walk (FileSystemSource) grounded on
// original_source's printnode.cpp traversal.
package nodesource

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cespare/xxhash/v2"

	"github.com/paduszym/bomtool/internal/bomerr"
	"github.com/paduszym/bomtool/internal/interfaces"
)

// FileSystemSource walks a real directory tree and reports every entry
// under it (excluding the root itself) as a NodeRecord.
type FileSystemSource struct {
	Root string

	// UID and GID, when non-nil, override every entry's owner/group,
	// mirroring mkbom's -u/-g flags.
	UID *uint32
	GID *uint32

	cache crcCache
}

// NewFileSystemSource returns a source rooted at root with no owner
// overrides.
func NewFileSystemSource(root string) *FileSystemSource {
	return &FileSystemSource{Root: root}
}

// Nodes walks the tree rooted at s.Root and returns one record per entry
// reachable from it, in filepath.WalkDir's lexical order. The root
// itself is never emitted.
func (s *FileSystemSource) Nodes() ([]interfaces.NodeRecord, error) {
	var records []interfaces.NodeRecord
	err := filepath.WalkDir(s.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		rec, err := s.recordFor(filepath.ToSlash(rel), path, info)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, &bomerr.IoError{Op: fmt.Sprintf("walk %s", s.Root), Cause: err}
	}
	return records, nil
}

func (s *FileSystemSource) recordFor(relPath, fullPath string, info os.FileInfo) (interfaces.NodeRecord, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return interfaces.NodeRecord{}, &bomerr.IoError{
			Op:    "stat " + fullPath,
			Cause: fmt.Errorf("raw stat_t unavailable on this platform"),
		}
	}

	rec := interfaces.NodeRecord{
		Path: relPath,
		Mode: uint16(stat.Mode),
		UID:  stat.Uid,
		GID:  stat.Gid,
	}
	if s.UID != nil {
		rec.UID = *s.UID
	}
	if s.GID != nil {
		rec.GID = *s.GID
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(fullPath)
		if err != nil {
			return interfaces.NodeRecord{}, &bomerr.IoError{Op: "readlink " + fullPath, Cause: err}
		}
		rec.Size = uint32(len(target))
		rec.Checksum = crc32.ChecksumIEEE([]byte(target))
		rec.LinkTarget = target

	case info.Mode().IsRegular():
		if crc, ok := s.cache.get(fullPath, info.Size()); ok {
			rec.Size = uint32(info.Size())
			rec.Checksum = crc
			break
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return interfaces.NodeRecord{}, &bomerr.IoError{Op: "read " + fullPath, Cause: err}
		}
		crc := crc32.ChecksumIEEE(data)
		s.cache.put(fullPath, info.Size(), crc)
		rec.Size = uint32(len(data))
		rec.Checksum = crc
	}

	return rec, nil
}

// crcCache memoizes a regular file's CRC-32 by (path, size), keyed with
// xxhash for a cheap, collision-resistant-enough lookup key. It lives on
// the FileSystemSource value, so repeated Nodes() calls on the same source
// reuse a file's CRC instead of re-reading its contents; separate sources
// (such as those the manifest and build commands each create) do not
// share it.
type crcCache struct {
	entries map[uint64]uint32
}

func (c *crcCache) key(path string, size int64) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(path)
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(size))
	_, _ = h.Write(sizeBuf[:])
	return h.Sum64()
}

func (c *crcCache) get(path string, size int64) (uint32, bool) {
	if c.entries == nil {
		return 0, false
	}
	v, ok := c.entries[c.key(path, size)]
	return v, ok
}

func (c *crcCache) put(path string, size int64, crc uint32) {
	if c.entries == nil {
		c.entries = make(map[uint64]uint32)
	}
	c.entries[c.key(path, size)] = crc
}
