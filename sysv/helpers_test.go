package sysv_test

import (
	"io"
	"testing"

	"github.com/dseagrav/bandtool/sysv"
	bandtest "github.com/dseagrav/bandtool/testing"
	"github.com/stretchr/testify/require"
)

// newTestImage creates an image builder with a valid superblock already in
// place.
func newTestImage(t *testing.T, totalBlocks, maxInodes uint) *bandtest.ImageBuilder {
	builder := bandtest.NewImageBuilder(t, totalBlocks, maxInodes)
	builder.SetSuperBlock(bandtest.SuperBlockSpec{
		InodeListBlocks: 2,
		VolumeBlocks:    uint32(totalBlocks),
		TotalFreeBlocks: 10,
		TotalFreeInodes: 20,
		FilesystemName:  "root",
		PackName:        "pack01",
		LastUpdated:     715000000,
		Magic:           sysv.SuperBlockMagic,
	})
	return builder
}

func openTestImage(t *testing.T, builder *bandtest.ImageBuilder) *sysv.FileSystem {
	fs, err := sysv.Open(builder.Stream())
	require.NoError(t, err, "mounting the synthetic image failed")
	return fs
}

// countingStream wraps a stream and counts Seek calls. The block device does
// exactly one seek per block or record read, so the count measures I/O.
type countingStream struct {
	io.ReadWriteSeeker
	seeks int
}

func (stream *countingStream) Seek(offset int64, whence int) (int64, error) {
	stream.seeks++
	return stream.ReadWriteSeeker.Seek(offset, whence)
}
