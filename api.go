package bandtool

import (
	"os"
	"time"
)

// FileStat describes a single file system object. Drivers fill in every field
// their format supports and leave the rest at zero values.
type FileStat struct {
	InodeNumber  uint64
	Nlinks       uint64
	ModeFlags    uint32
	Uid          uint32
	Gid          uint32
	Size         int64
	BlockSize    int64
	NumBlocks    int64
	LastAccessed time.Time
	LastModified time.Time
	CreatedAt    time.Time
}

// IsDir returns true if the object is a directory.
func (stat *FileStat) IsDir() bool {
	return stat.ModeFlags&S_IFMT == S_IFDIR
}

// IsFile returns true if the object is a regular file.
func (stat *FileStat) IsFile() bool {
	return stat.ModeFlags&S_IFMT == S_IFREG
}

// DirectoryEntry represents a file, directory, device, or other entity
// encountered on the file system. It implements the os.FileInfo interface and
// additionally exposes the full stat information for the entry.
type DirectoryEntry interface {
	os.FileInfo
	Stat() FileStat
}

// FSStat describes the overall state of a mounted file system.
type FSStat struct {
	BlockSize     uint
	TotalBlocks   uint64
	BlocksFree    uint64
	FilesFree     uint64
	Label         string
	MaxNameLength uint
	LastUpdated   time.Time
}

// ReadingDriver is the interface for drivers supporting read operations.
type ReadingDriver interface {
	ReadDir(path string) ([]DirectoryEntry, error)
	// ReadFile returns the contents of the file at the given path.
	ReadFile(path string) ([]byte, error)
	// Stat returns information about the directory entry at the given path.
	Stat(path string) (FileStat, error)
	FSStat() FSStat
}
