// Package testing holds helpers for building and loading band images in unit
// tests. Nothing here is imported by the engine itself.
package testing

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"testing"

	bitmap "github.com/boljen/go-bitmap"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

const blockSize = 1024
const inodeTableOffset = 0x7C0
const inodeRecordSize = 0x40
const numBlockAddrs = 13
const addrsPerIndirectBlock = blockSize / 4

// LoadDiskImage takes a gzipped band image and returns a stream over the
// uncompressed data. Writes to the stream do not affect the compressed bytes.
func LoadDiskImage(
	t *testing.T, compressedImageBytes []byte, totalBlocks uint,
) io.ReadWriteSeeker {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	reader, err := gzip.NewReader(bytes.NewReader(compressedImageBytes))
	require.NoError(t, err, "couldn't open gzip stream")

	imageBytes, err := io.ReadAll(reader)
	require.NoError(t, err, "couldn't decompress image")
	require.NoError(t, reader.Close())

	require.Equal(
		t,
		totalBlocks*blockSize,
		uint(len(imageBytes)),
		"uncompressed image is wrong size",
	)
	return bytesextra.NewReadWriteSeeker(imageBytes)
}

// SuperBlockSpec carries the handful of superblock fields tests care about.
// Everything else in the raw superblock is written as zeroes.
type SuperBlockSpec struct {
	InodeListBlocks uint16
	VolumeBlocks    uint32
	TotalFreeBlocks uint32
	TotalFreeInodes uint16
	FilesystemName  string
	PackName        string
	LastUpdated     uint32
	Magic           uint32
	Type            uint32
}

// InodeSpec describes one inode to be encoded into a synthetic image.
type InodeSpec struct {
	Type   uint8
	Mode   uint16
	Nlinks uint16
	Uid    uint16
	Gid    uint16
	Size   uint32
	Addrs  [numBlockAddrs]uint32
	Atime  uint32
	Mtime  uint32
	Ctime  uint32
}

// DirentSpec describes one directory entry.
type DirentSpec struct {
	Inumber uint16
	Name    string
}

// ImageBuilder assembles a synthetic band image in memory. Blocks are handed
// out by an allocation bitmap so scenarios never collide with the reserved
// boot, superblock, and inode-table region.
type ImageBuilder struct {
	t           *testing.T
	data        []byte
	inUse       bitmap.Bitmap
	totalBlocks uint
}

// NewImageBuilder creates a builder for an image of `totalBlocks` blocks with
// room for inodes 1..maxInodes in the inode table.
func NewImageBuilder(t *testing.T, totalBlocks, maxInodes uint) *ImageBuilder {
	tableEnd := inodeTableOffset + (maxInodes+1)*inodeRecordSize
	reservedBlocks := (tableEnd + blockSize - 1) / blockSize
	require.Less(t, reservedBlocks, totalBlocks, "image too small for inode table")

	builder := &ImageBuilder{
		t:           t,
		data:        make([]byte, totalBlocks*blockSize),
		inUse:       bitmap.New(int(totalBlocks)),
		totalBlocks: totalBlocks,
	}
	for i := uint(0); i < reservedBlocks; i++ {
		builder.inUse.Set(int(i), true)
	}
	return builder
}

// AllocBlock reserves the lowest free physical block and returns its number.
func (builder *ImageBuilder) AllocBlock() uint32 {
	for i := 0; i < int(builder.totalBlocks); i++ {
		if !builder.inUse.Get(i) {
			builder.inUse.Set(i, true)
			return uint32(i)
		}
	}
	require.FailNow(builder.t, "image is out of blocks")
	return 0
}

// WriteBlock copies `data` into the given physical block. `data` must not be
// larger than one block; the remainder stays zeroed.
func (builder *ImageBuilder) WriteBlock(block uint32, data []byte) {
	require.LessOrEqual(builder.t, len(data), blockSize, "block data too large")
	copy(builder.blockSlice(block), data)
}

func (builder *ImageBuilder) blockSlice(block uint32) []byte {
	require.Less(builder.t, uint(block), builder.totalBlocks, "block out of range")
	start := int(block) * blockSize
	return builder.data[start : start+blockSize]
}

// SetSuperBlock encodes the superblock into block 1.
func (builder *ImageBuilder) SetSuperBlock(spec SuperBlockSpec) {
	writer := bytewriter.New(builder.blockSlice(1))

	write := func(value interface{}) {
		require.NoError(builder.t, binary.Write(writer, binary.BigEndian, value))
	}

	write(spec.InodeListBlocks)           // isize
	write(spec.VolumeBlocks)              // fsize
	write(uint16(0))                      // nfree
	write([50]uint32{})                   // free list
	write(uint16(0))                      // ninode
	write([100]uint16{})                  // free inode list
	write([4]uint8{})                     // flock, ilock, fmod, readonly
	write(spec.LastUpdated)               // time
	write([4]uint16{})                    // dinfo
	write(spec.TotalFreeBlocks)           // tfree
	write(spec.TotalFreeInodes)           // tinode
	write(paddedName(spec.FilesystemName, 6))
	write(paddedName(spec.PackName, 6))
	write(make([]byte, 572)) // fill
	write(spec.Magic)
	write(spec.Type)
}

// SetInode encodes an inode record into the fixed table.
func (builder *ImageBuilder) SetInode(inumber uint16, spec InodeSpec) {
	offset := inodeTableOffset + uint(inumber)*inodeRecordSize
	require.LessOrEqual(
		builder.t, offset+inodeRecordSize, uint(len(builder.data)),
		"inode table overruns image")

	writer := bytewriter.New(builder.data[offset : offset+inodeRecordSize])
	write := func(value interface{}) {
		require.NoError(builder.t, binary.Write(writer, binary.BigEndian, value))
	}

	write(uint16(spec.Type)<<12 | spec.Mode&0x0FFF)
	write(spec.Nlinks)
	write(spec.Uid)
	write(spec.Gid)
	write(spec.Size)

	var addrs [40]byte
	for i, addr := range spec.Addrs {
		addrs[i*3] = byte(addr >> 16)
		addrs[i*3+1] = byte(addr >> 8)
		addrs[i*3+2] = byte(addr)
	}
	write(addrs)

	write(spec.Atime)
	write(spec.Mtime)
	write(spec.Ctime)
}

// SetDirectoryBlock encodes up to 64 directory entries into a physical block.
func (builder *ImageBuilder) SetDirectoryBlock(block uint32, entries []DirentSpec) {
	require.LessOrEqual(builder.t, len(entries), blockSize/16, "too many dirents")

	target := builder.blockSlice(block)
	writer := bytewriter.New(target)
	for _, entry := range entries {
		require.NoError(builder.t,
			binary.Write(writer, binary.BigEndian, entry.Inumber))
		require.NoError(builder.t,
			binary.Write(writer, binary.BigEndian, paddedName(entry.Name, 14)))
	}
}

// SetIndirectBlock encodes a table of 32-bit block addresses into a physical
// block.
func (builder *ImageBuilder) SetIndirectBlock(block uint32, addrs []uint32) {
	require.LessOrEqual(builder.t, len(addrs), addrsPerIndirectBlock, "too many addresses")

	writer := bytewriter.New(builder.blockSlice(block))
	for _, addr := range addrs {
		require.NoError(builder.t, binary.Write(writer, binary.BigEndian, addr))
	}
}

// AddFileContent allocates blocks for `content`, writes it out, and fills in
// the spec's size and address slots, building indirect tables as needed. The
// spec can then be passed to SetInode.
func (builder *ImageBuilder) AddFileContent(spec *InodeSpec, content []byte) {
	numBlocks := (len(content) + blockSize - 1) / blockSize

	physical := make([]uint32, numBlocks)
	for i := 0; i < numBlocks; i++ {
		end := (i + 1) * blockSize
		if end > len(content) {
			end = len(content)
		}
		physical[i] = builder.AllocBlock()
		builder.WriteBlock(physical[i], content[i*blockSize:end])
	}

	spec.Size = uint32(len(content))
	builder.mapBlocks(spec, physical)
}

// mapBlocks wires a list of physical content blocks into an inode's address
// slots: first 10 direct, then one single-indirect table, then a two-level
// tree for the rest.
func (builder *ImageBuilder) mapBlocks(spec *InodeSpec, physical []uint32) {
	direct := len(physical)
	if direct > 10 {
		direct = 10
	}
	copy(spec.Addrs[:10], physical[:direct])
	remaining := physical[direct:]

	if len(remaining) == 0 {
		return
	}

	count := len(remaining)
	if count > addrsPerIndirectBlock {
		count = addrsPerIndirectBlock
	}
	indirect := builder.AllocBlock()
	builder.SetIndirectBlock(indirect, remaining[:count])
	spec.Addrs[10] = indirect
	remaining = remaining[count:]

	if len(remaining) == 0 {
		return
	}

	require.LessOrEqual(
		builder.t, len(remaining), addrsPerIndirectBlock*addrsPerIndirectBlock,
		"file too large for two levels of indirection")

	var firstLevel []uint32
	for len(remaining) > 0 {
		count = len(remaining)
		if count > addrsPerIndirectBlock {
			count = addrsPerIndirectBlock
		}
		secondLevel := builder.AllocBlock()
		builder.SetIndirectBlock(secondLevel, remaining[:count])
		firstLevel = append(firstLevel, secondLevel)
		remaining = remaining[count:]
	}

	root := builder.AllocBlock()
	builder.SetIndirectBlock(root, firstLevel)
	spec.Addrs[11] = root
}

// Bytes returns the raw image contents.
func (builder *ImageBuilder) Bytes() []byte {
	return builder.data
}

// Stream returns an in-memory ReadWriteSeeker over the image.
func (builder *ImageBuilder) Stream() io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(builder.data)
}

func paddedName(name string, width int) []byte {
	padded := make([]byte, width)
	copy(padded, name)
	return padded
}
