package sysv

import (
	"fmt"
	"io"

	bandtool "github.com/dseagrav/bandtool"
)

// FileSystem is a handle to one opened band image. It owns the block device
// and the decoded superblock; there is no process-wide state, so any number
// of images can be open at once.
//
// All access is read-only and single-threaded: one handle performs one
// operation at a time.
type FileSystem struct {
	dev        *BlockDevice
	superblock SuperBlock
}

// Open validates the image's superblock and returns a handle for reading it.
// The stream must cover the whole image and remain open for the life of the
// handle.
func Open(stream io.ReadSeeker) (*FileSystem, error) {
	dev := NewBlockDevice(stream)
	superblock, err := LoadSuperBlock(dev)
	if err != nil {
		return nil, err
	}
	return &FileSystem{dev: dev, superblock: superblock}, nil
}

// SuperBlock returns the decoded superblock.
func (fs *FileSystem) SuperBlock() SuperBlock {
	return fs.superblock
}

// FSStat summarizes the volume in driver-independent form.
func (fs *FileSystem) FSStat() bandtool.FSStat {
	return bandtool.FSStat{
		BlockSize:     BlockSize,
		TotalBlocks:   uint64(fs.superblock.VolumeBlocks),
		BlocksFree:    uint64(fs.superblock.TotalFreeBlocks),
		FilesFree:     uint64(fs.superblock.TotalFreeInodes),
		Label:         fs.superblock.FilesystemName,
		MaxNameLength: NameLength,
		LastUpdated:   fs.superblock.LastUpdated,
	}
}

// Stat returns information about the object at the given path.
func (fs *FileSystem) Stat(path string) (bandtool.FileStat, error) {
	inode, err := fs.ResolvePath(path)
	if err != nil {
		return bandtool.FileStat{}, err
	}
	return inode.FileStat(), nil
}

// ReadDir enumerates the directory at the given path.
func (fs *FileSystem) ReadDir(path string) ([]bandtool.DirectoryEntry, error) {
	inode, err := fs.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	if !inode.IsDir() {
		return nil, bandtool.ErrNotADirectory.WithMessage(
			fmt.Sprintf("%q is not a directory", path))
	}

	entries, err := fs.ListDirectory(&inode)
	if err != nil {
		return nil, err
	}

	results := make([]bandtool.DirectoryEntry, len(entries))
	for i := range entries {
		results[i] = &entries[i]
	}
	return results, nil
}

// ReadFile returns the entire contents of the regular file at the given path.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	inode, err := fs.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	stream, err := fs.OpenFileStream(inode)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(stream)
}

// Extract streams the regular file at `path` to `sink`, block by block. On
// failure the sink is left holding whatever was written before the error;
// nothing is cleaned up.
func (fs *FileSystem) Extract(path string, sink io.Writer) (int64, error) {
	inode, err := fs.ResolvePath(path)
	if err != nil {
		return 0, err
	}

	stream, err := fs.OpenFileStream(inode)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(sink, stream)
	if err != nil {
		// io.Copy reports sink write errors and stream read errors the same
		// way; sink failures get wrapped so callers see an I/O error either
		// way.
		if _, isDriverError := err.(bandtool.DriverError); isDriverError {
			return written, err
		}
		return written, bandtool.ErrIOFailed.Wrap(err)
	}
	return written, nil
}

var _ bandtool.ReadingDriver = (*FileSystem)(nil)
