package sysv_test

import (
	"testing"
	"time"

	bandtool "github.com/dseagrav/bandtool"
	"github.com/dseagrav/bandtool/sysv"
	bandtest "github.com/dseagrav/bandtool/testing"
	"github.com/stretchr/testify/assert"
)

func TestReadInode(t *testing.T) {
	builder := newTestImage(t, 64, 32)
	builder.SetInode(7, bandtest.InodeSpec{
		Type:   uint8(sysv.TypeFile),
		Mode:   0o644,
		Nlinks: 3,
		Uid:    100,
		Gid:    31,
		Size:   123456,
		Addrs: [13]uint32{
			// A 24-bit address needs all three packed bytes decoded.
			0x012345, 8, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		},
		Atime: 700000000,
		Mtime: 715000000,
		Ctime: 690000000,
	})
	fs := openTestImage(t, builder)

	inode, err := fs.ReadInode(7)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, inode.Inumber)
	assert.Equal(t, sysv.TypeFile, inode.Type)
	assert.EqualValues(t, 0o644, inode.Mode)
	assert.EqualValues(t, 3, inode.Nlinks)
	assert.EqualValues(t, 100, inode.Uid)
	assert.EqualValues(t, 31, inode.Gid)
	assert.EqualValues(t, 123456, inode.Size)
	assert.EqualValues(t, 0x012345, inode.Addrs[0])
	assert.EqualValues(t, 8, inode.Addrs[1])
	assert.EqualValues(t, 0, inode.Addrs[12])
	assert.Equal(t, time.Unix(700000000, 0), inode.LastAccessed)
	assert.Equal(t, time.Unix(715000000, 0), inode.LastModified)
	assert.Equal(t, time.Unix(690000000, 0), inode.CreatedAt)

	assert.True(t, inode.IsFile())
	assert.False(t, inode.IsDir())
}

func TestReadInodeTypes(t *testing.T) {
	builder := newTestImage(t, 64, 32)
	types := map[uint16]sysv.InodeType{
		3: sysv.TypeFIFO,
		4: sysv.TypeChar,
		5: sysv.TypeDir,
		6: sysv.TypeBlk,
		7: sysv.TypeFile,
	}
	for inumber, inodeType := range types {
		builder.SetInode(inumber, bandtest.InodeSpec{Type: uint8(inodeType), Mode: 0o777})
	}
	fs := openTestImage(t, builder)

	for inumber, inodeType := range types {
		inode, err := fs.ReadInode(sysv.Inumber(inumber))
		assert.NoError(t, err)
		assert.Equal(t, inodeType, inode.Type, "wrong type for inode %d", inumber)
		assert.EqualValues(t, 0o777, inode.Mode)
	}
}

func TestInodeFileStat(t *testing.T) {
	builder := newTestImage(t, 64, 32)
	builder.SetInode(5, bandtest.InodeSpec{
		Type:   uint8(sysv.TypeDir),
		Mode:   0o755,
		Nlinks: 2,
		Uid:    1,
		Gid:    2,
		Size:   2500,
	})
	fs := openTestImage(t, builder)

	inode, err := fs.ReadInode(5)
	assert.NoError(t, err)

	stat := inode.FileStat()
	assert.EqualValues(t, 5, stat.InodeNumber)
	assert.EqualValues(t, bandtool.S_IFDIR|0o755, stat.ModeFlags)
	assert.True(t, stat.IsDir())
	assert.False(t, stat.IsFile())
	assert.EqualValues(t, 2500, stat.Size)
	assert.EqualValues(t, sysv.BlockSize, stat.BlockSize)
	assert.EqualValues(t, 3, stat.NumBlocks, "2500 bytes occupy 3 blocks")
}
