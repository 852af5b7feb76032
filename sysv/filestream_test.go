package sysv_test

import (
	"bytes"
	"testing"

	bandtool "github.com/dseagrav/bandtool"
	"github.com/dseagrav/bandtool/sysv"
	bandtest "github.com/dseagrav/bandtool/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patternBytes produces deterministic, non-repeating-per-block content so a
// misresolved block shows up as a mismatch.
func patternBytes(size int) []byte {
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i*7 + i/sysv.BlockSize)
	}
	return content
}

// addFile writes `content` into the image as a regular file at `inumber`.
func addFile(builder *bandtest.ImageBuilder, inumber uint16, content []byte) {
	spec := bandtest.InodeSpec{
		Type: uint8(sysv.TypeFile),
		Mode: 0o644,
	}
	builder.AddFileContent(&spec, content)
	builder.SetInode(inumber, spec)
}

func TestFileStreamRoundTripPartialBlock(t *testing.T) {
	// 2500 bytes: two full blocks plus a 452-byte tail. The bytes past the
	// tail in the final block must not be produced.
	content := patternBytes(2500)

	builder := newTestImage(t, 64, 32)
	addFile(builder, 5, content)
	fs := openTestImage(t, builder)

	inode, err := fs.ReadInode(5)
	require.NoError(t, err)

	stream, err := fs.OpenFileStream(inode)
	require.NoError(t, err)
	assert.EqualValues(t, 2500, stream.Size())

	var data []byte
	buffer := make([]byte, 600) // deliberately not block-aligned
	for {
		n, readErr := stream.Read(buffer)
		data = append(data, buffer[:n]...)
		if readErr != nil {
			break
		}
	}
	assert.Equal(t, content, data)
}

func TestFileStreamExactBlockMultiple(t *testing.T) {
	content := patternBytes(2 * sysv.BlockSize)

	builder := newTestImage(t, 64, 32)
	addFile(builder, 5, content)
	fs := openTestImage(t, builder)

	inode, err := fs.ReadInode(5)
	require.NoError(t, err)

	stream, err := fs.OpenFileStream(inode)
	require.NoError(t, err)

	var sink bytes.Buffer
	n, err := sink.ReadFrom(stream)
	require.NoError(t, err)
	assert.EqualValues(t, len(content), n)
	assert.Equal(t, content, sink.Bytes())
}

func TestFileStreamSingleIndirect(t *testing.T) {
	// 12 blocks of content: 10 direct plus 2 through the indirect table.
	content := patternBytes(12*sysv.BlockSize + 100)

	builder := newTestImage(t, 128, 32)
	addFile(builder, 5, content)
	fs := openTestImage(t, builder)

	inode, err := fs.ReadInode(5)
	require.NoError(t, err)
	assert.NotZero(t, inode.Addrs[10], "file this size needs the indirect slot")

	stream, err := fs.OpenFileStream(inode)
	require.NoError(t, err)

	var sink bytes.Buffer
	_, err = sink.ReadFrom(stream)
	require.NoError(t, err)
	assert.Equal(t, content, sink.Bytes())
}

func TestFileStreamDoubleIndirect(t *testing.T) {
	// 271 blocks: 10 direct, 256 single-indirect, 5 double-indirect.
	content := patternBytes(270*sysv.BlockSize + 123)

	builder := newTestImage(t, 350, 32)
	addFile(builder, 5, content)
	fs := openTestImage(t, builder)

	inode, err := fs.ReadInode(5)
	require.NoError(t, err)
	assert.NotZero(t, inode.Addrs[11], "file this size needs the double-indirect slot")

	var sink bytes.Buffer
	stream, err := fs.OpenFileStream(inode)
	require.NoError(t, err)

	_, err = sink.ReadFrom(stream)
	require.NoError(t, err)
	assert.Equal(t, content, sink.Bytes())
}

func TestFileStreamUnexpectedEOF(t *testing.T) {
	// The inode claims 3000 bytes but only maps two blocks. The stream must
	// fail loudly instead of returning short data.
	builder := newTestImage(t, 64, 32)
	blockA := builder.AllocBlock()
	blockB := builder.AllocBlock()
	builder.WriteBlock(blockA, patternBytes(sysv.BlockSize))
	builder.WriteBlock(blockB, patternBytes(sysv.BlockSize))
	builder.SetInode(5, bandtest.InodeSpec{
		Type:  uint8(sysv.TypeFile),
		Mode:  0o644,
		Size:  3000,
		Addrs: [13]uint32{blockA, blockB},
	})
	fs := openTestImage(t, builder)

	inode, err := fs.ReadInode(5)
	require.NoError(t, err)

	stream, err := fs.OpenFileStream(inode)
	require.NoError(t, err)

	var sink bytes.Buffer
	_, err = sink.ReadFrom(stream)
	assert.ErrorIs(t, err, bandtool.ErrUnexpectedEOF)
	assert.EqualValues(t, 2*sysv.BlockSize, sink.Len(),
		"both mapped blocks should be produced before the failure")
}

func TestOpenFileStreamRejectsNonFiles(t *testing.T) {
	builder := newTestImage(t, 64, 32)
	builder.SetInode(2, bandtest.InodeSpec{Type: uint8(sysv.TypeDir), Mode: 0o755})
	builder.SetInode(5, bandtest.InodeSpec{Type: uint8(sysv.TypeChar), Mode: 0o666})
	fs := openTestImage(t, builder)

	dir, err := fs.ReadInode(2)
	require.NoError(t, err)
	_, err = fs.OpenFileStream(dir)
	assert.ErrorIs(t, err, bandtool.ErrIsADirectory)

	special, err := fs.ReadInode(5)
	require.NoError(t, err)
	_, err = fs.OpenFileStream(special)
	assert.ErrorIs(t, err, bandtool.ErrNotSupported)
}
