package sysv

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	bandtool "github.com/dseagrav/bandtool"
)

// SuperBlockMagic is the magic number identifying a valid file system. An
// image whose superblock doesn't carry it is rejected outright.
const SuperBlockMagic = 0x207E18FD

// superBlockLocation is the physical block holding the superblock. Block 0 is
// reserved for boot code.
const superBlockLocation = PhysicalBlock(1)

// SuperBlock is the decoded form of the on-disk superblock. The raw structure
// is exactly 1024 bytes; see the field offsets in decodeSuperBlock. Every
// multi-byte field is decoded big-endian, not just the magic.
type SuperBlock struct {
	// InodeListBlocks is the number of blocks occupied by the inode list.
	InodeListBlocks uint16
	// VolumeBlocks is the total size of the volume, in blocks.
	VolumeBlocks uint32
	// FreeBlockCount is the number of valid entries in FreeBlocks.
	FreeBlockCount uint16
	FreeBlocks     [50]PhysicalBlock
	// FreeInodeCount is the number of valid entries in FreeInodes.
	FreeInodeCount uint16
	FreeInodes     [100]Inumber

	FreeListLocked  bool
	InodeListLocked bool
	Modified        bool
	ReadOnly        bool

	LastUpdated time.Time
	DeviceInfo  [4]uint16

	TotalFreeBlocks uint32
	TotalFreeInodes uint16

	// FilesystemName and PackName are at most 6 bytes each on disk.
	FilesystemName string
	PackName       string

	Magic uint32
	Type  uint32
}

// LoadSuperBlock reads block 1 of the image and decodes it, rejecting the
// image if the magic number doesn't match.
func LoadSuperBlock(dev *BlockDevice) (SuperBlock, error) {
	buffer := make([]byte, BlockSize)
	err := dev.ReadBlock(superBlockLocation, buffer)
	if err != nil {
		return SuperBlock{}, err
	}

	superblock := decodeSuperBlock(buffer)
	if superblock.Magic != SuperBlockMagic {
		return SuperBlock{}, bandtool.ErrInvalidImage.WithMessage(
			fmt.Sprintf("bad superblock magic: expected 0x%08X, got 0x%08X",
				uint32(SuperBlockMagic), superblock.Magic))
	}
	return superblock, nil
}

// decodeSuperBlock interprets a raw 1024-byte superblock. Offsets follow the
// packed on-disk layout:
//
//	0    isize      2B   blocks in the inode list
//	2    fsize      4B   blocks in the volume
//	6    nfree      2B   entries in the free block list
//	8    free       200B 50 x 4B free block list
//	208  ninode     2B   entries in the free inode list
//	210  inode      200B 100 x 2B free inode list
//	410  flock      1B
//	411  ilock      1B
//	412  fmod       1B
//	413  readonly   1B
//	414  time       4B   last superblock update
//	418  dinfo      8B   4 x 2B device information
//	426  tfree      4B   total free blocks
//	430  tinode     2B   total free inodes
//	432  fname      6B   filesystem name
//	438  fpack      6B   disk pack name
//	444  fill       572B
//	1016 magic      4B
//	1020 type       4B
func decodeSuperBlock(raw []byte) SuperBlock {
	superblock := SuperBlock{
		InodeListBlocks: binary.BigEndian.Uint16(raw[0:2]),
		VolumeBlocks:    binary.BigEndian.Uint32(raw[2:6]),
		FreeBlockCount:  binary.BigEndian.Uint16(raw[6:8]),
		FreeInodeCount:  binary.BigEndian.Uint16(raw[208:210]),
		FreeListLocked:  raw[410] != 0,
		InodeListLocked: raw[411] != 0,
		Modified:        raw[412] != 0,
		ReadOnly:        raw[413] != 0,
		LastUpdated:     time.Unix(int64(binary.BigEndian.Uint32(raw[414:418])), 0),
		TotalFreeBlocks: binary.BigEndian.Uint32(raw[426:430]),
		TotalFreeInodes: binary.BigEndian.Uint16(raw[430:432]),
		FilesystemName:  decodeName(raw[432:438]),
		PackName:        decodeName(raw[438:444]),
		Magic:           binary.BigEndian.Uint32(raw[1016:1020]),
		Type:            binary.BigEndian.Uint32(raw[1020:1024]),
	}

	for i := 0; i < len(superblock.FreeBlocks); i++ {
		superblock.FreeBlocks[i] =
			PhysicalBlock(binary.BigEndian.Uint32(raw[8+i*4 : 12+i*4]))
	}
	for i := 0; i < len(superblock.FreeInodes); i++ {
		superblock.FreeInodes[i] =
			Inumber(binary.BigEndian.Uint16(raw[210+i*2 : 212+i*2]))
	}
	for i := 0; i < len(superblock.DeviceInfo); i++ {
		superblock.DeviceInfo[i] = binary.BigEndian.Uint16(raw[418+i*2 : 420+i*2])
	}
	return superblock
}

// decodeName converts a fixed-width name field to a string. The field is only
// null-terminated if the name is shorter than the field.
func decodeName(raw []byte) string {
	end := bytes.IndexByte(raw, 0)
	if end < 0 {
		end = len(raw)
	}
	return string(raw[:end])
}
