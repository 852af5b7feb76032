package sysv_test

import (
	"testing"

	bandtool "github.com/dseagrav/bandtool"
	"github.com/dseagrav/bandtool/sysv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func TestBlockDeviceReadBlock(t *testing.T) {
	image := make([]byte, 4*sysv.BlockSize)
	for i := range image {
		image[i] = byte(i / sysv.BlockSize)
	}
	dev := sysv.NewBlockDevice(bytesextra.NewReadWriteSeeker(image))

	buffer := make([]byte, sysv.BlockSize)
	require.NoError(t, dev.ReadBlock(2, buffer))
	for _, b := range buffer {
		require.EqualValues(t, 2, b)
	}
}

func TestBlockDeviceRejectsWrongBufferSize(t *testing.T) {
	dev := sysv.NewBlockDevice(bytesextra.NewReadWriteSeeker(make([]byte, sysv.BlockSize)))

	err := dev.ReadBlock(0, make([]byte, 512))
	assert.ErrorIs(t, err, bandtool.ErrInvalidArgument)
}

func TestBlockDeviceShortReadIsIOError(t *testing.T) {
	// Image holds two blocks; block 5 is past the end.
	dev := sysv.NewBlockDevice(bytesextra.NewReadWriteSeeker(make([]byte, 2*sysv.BlockSize)))

	err := dev.ReadBlock(5, make([]byte, sysv.BlockSize))
	assert.ErrorIs(t, err, bandtool.ErrIOFailed)
}

func TestBlockDeviceReadAt(t *testing.T) {
	image := make([]byte, 2*sysv.BlockSize)
	copy(image[1500:], []byte("marker"))
	dev := sysv.NewBlockDevice(bytesextra.NewReadWriteSeeker(image))

	buffer := make([]byte, 6)
	require.NoError(t, dev.ReadAt(1500, buffer))
	assert.Equal(t, "marker", string(buffer))
}
