package sysv

import (
	"fmt"
	"io"

	bandtool "github.com/dseagrav/bandtool"
)

// BlockSize is the size of one logical disk block, in bytes.
const BlockSize = 1024

// PhysicalBlock is an absolute block address within the backing image.
type PhysicalBlock uint32

// LogicalBlock is the position of a block within a file's or directory's
// contents, counted from 0.
type LogicalBlock uint32

// Inumber identifies an inode within the inode table. Inumbers are 1-based.
type Inumber uint16

// BlockDevice reads fixed-size blocks from a flat image file. It is the sole
// I/O boundary to the backing image; there is no caching layer, so every call
// re-reads from the backing store.
type BlockDevice struct {
	stream io.ReadSeeker
}

func NewBlockDevice(stream io.ReadSeeker) *BlockDevice {
	return &BlockDevice{stream: stream}
}

// ReadBlock fills `buffer` with the contents of the given physical block.
// `buffer` must be exactly BlockSize bytes. A short read is an I/O error.
func (dev *BlockDevice) ReadBlock(block PhysicalBlock, buffer []byte) error {
	if len(buffer) != BlockSize {
		return bandtool.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("block buffer must be %d bytes, got %d", BlockSize, len(buffer)))
	}
	return dev.ReadAt(int64(block)*BlockSize, buffer)
}

// ReadAt fills `buffer` starting at an absolute byte offset in the image. The
// inode table is not block-aligned, so inode reads come through here.
func (dev *BlockDevice) ReadAt(offset int64, buffer []byte) error {
	_, err := dev.stream.Seek(offset, io.SeekStart)
	if err != nil {
		return bandtool.ErrIOFailed.Wrap(err)
	}

	_, err = io.ReadFull(dev.stream, buffer)
	if err != nil {
		return bandtool.ErrIOFailed.WithMessage(
			fmt.Sprintf("read of %d bytes at offset %d failed: %s",
				len(buffer), offset, err.Error()))
	}
	return nil
}
