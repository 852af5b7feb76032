package sysv

import (
	"fmt"
	"io"

	bandtool "github.com/dseagrav/bandtool"
)

// FileStream is a sequential read-only view of a regular file's contents,
// assembled block by block through the inode's address map. It implements
// io.Reader and truncates the final block to the inode's byte size, so
// copying the stream to a sink reproduces the file exactly.
type FileStream struct {
	fs    *FileSystem
	inode Inode

	// position is the next byte of the file to produce.
	position int64

	// block caches the most recently loaded content block so small reads
	// don't hit the image once per call.
	block       [BlockSize]byte
	loadedIndex LogicalBlock
	loaded      bool
}

// OpenFileStream returns a stream over the inode's contents. The inode must
// be a regular file.
func (fs *FileSystem) OpenFileStream(inode Inode) (*FileStream, error) {
	if inode.IsDir() {
		return nil, bandtool.ErrIsADirectory.WithMessage(
			fmt.Sprintf("inode %d is a directory", inode.Inumber))
	}
	if !inode.IsFile() {
		return nil, bandtool.ErrNotSupported.WithMessage(
			fmt.Sprintf("inode %d is a special file and has no contents to read",
				inode.Inumber))
	}
	return &FileStream{fs: fs, inode: inode}, nil
}

// Size returns the total number of bytes the stream will produce.
func (stream *FileStream) Size() int64 {
	return int64(stream.inode.Size)
}

// Read implements io.Reader. A missing block before the inode's size is
// satisfied means the size field and the address map disagree; that is image
// corruption and fails with ErrUnexpectedEOF rather than producing short
// data silently.
func (stream *FileStream) Read(p []byte) (int, error) {
	if stream.position >= stream.Size() {
		return 0, io.EOF
	}

	index := LogicalBlock(stream.position / BlockSize)
	if !stream.loaded || stream.loadedIndex != index {
		eof, err := stream.fs.ReadContentBlock(&stream.inode, index, stream.block[:])
		if err != nil {
			return 0, err
		}
		if eof {
			return 0, bandtool.ErrUnexpectedEOF.WithMessage(
				fmt.Sprintf(
					"inode %d claims %d bytes but its address map ends at byte %d",
					stream.inode.Inumber, stream.inode.Size, stream.position))
		}
		stream.loadedIndex = index
		stream.loaded = true
	}

	offsetInBlock := stream.position % BlockSize
	remainingInBlock := int64(BlockSize) - offsetInBlock
	remainingInFile := stream.Size() - stream.position

	n := remainingInBlock
	if remainingInFile < n {
		n = remainingInFile
	}
	if int64(len(p)) < n {
		n = int64(len(p))
	}

	copy(p, stream.block[offsetInBlock:offsetInBlock+n])
	stream.position += n
	return int(n), nil
}
