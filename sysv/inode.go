package sysv

import (
	"encoding/binary"
	"time"

	bandtool "github.com/dseagrav/bandtool"
)

// RootInumber is the inode number of the root directory. It is fixed by the
// format.
const RootInumber = Inumber(2)

// inodeTableOffset is the absolute byte offset of the inode table. The table
// is not block-aligned; it starts partway into the superblock's block.
const inodeTableOffset = 0x7C0

// inodeRecordSize is the size of one on-disk inode record, in bytes.
const inodeRecordSize = 0x40

// NumBlockAddrs is the number of block address slots in an inode. Slots 0-9
// are direct, slot 10 is singly indirect, slot 11 is doubly indirect, and
// slot 12 is unused.
const NumBlockAddrs = 13

// InodeType is the 4-bit file type subfield of an inode's mode word.
type InodeType uint8

const (
	TypeFIFO InodeType = 1
	TypeChar InodeType = 2
	TypeDir  InodeType = 4
	TypeBlk  InodeType = 6
	TypeFile InodeType = 8
)

// Inode is the in-memory form of one on-disk inode record. Inodes are decoded
// on demand and never cached; two reads of the same inumber re-read the image
// both times.
type Inode struct {
	Inumber Inumber
	// Mode holds the low 12 permission bits only; the type nibble is split
	// out into Type.
	Mode   uint16
	Type   InodeType
	Nlinks uint16
	Uid    uint16
	Gid    uint16
	// Size is the object's content size in bytes.
	Size uint32
	// Addrs holds the 13 block address slots, each reconstructed from 3
	// packed big-endian bytes. An address of 0 means "no block".
	Addrs        [NumBlockAddrs]PhysicalBlock
	LastAccessed time.Time
	LastModified time.Time
	CreatedAt    time.Time
}

func (inode *Inode) IsDir() bool {
	return inode.Type == TypeDir
}

func (inode *Inode) IsFile() bool {
	return inode.Type == TypeFile
}

// FileStat converts the inode to the driver-independent stat form. The type
// nibble maps directly onto the POSIX S_IFMT values, so ModeFlags is just the
// recombined mode word.
func (inode *Inode) FileStat() bandtool.FileStat {
	size := int64(inode.Size)
	return bandtool.FileStat{
		InodeNumber:  uint64(inode.Inumber),
		Nlinks:       uint64(inode.Nlinks),
		ModeFlags:    uint32(inode.Type)<<12 | uint32(inode.Mode),
		Uid:          uint32(inode.Uid),
		Gid:          uint32(inode.Gid),
		Size:         size,
		BlockSize:    BlockSize,
		NumBlocks:    (size + BlockSize - 1) / BlockSize,
		LastAccessed: inode.LastAccessed,
		LastModified: inode.LastModified,
		CreatedAt:    inode.CreatedAt,
	}
}

// ReadInode reads and decodes the inode record for the given inumber.
//
// The inumber is not bounds-checked against the inode list size; an
// out-of-range inumber decodes whatever bytes happen to be at the computed
// offset. Callers are expected to pass inumbers obtained from directory
// entries, which are valid by construction.
func (fs *FileSystem) ReadInode(number Inumber) (Inode, error) {
	raw := make([]byte, inodeRecordSize)
	offset := int64(inodeTableOffset) + int64(number)*inodeRecordSize
	err := fs.dev.ReadAt(offset, raw)
	if err != nil {
		return Inode{}, err
	}
	return decodeInode(number, raw), nil
}

// decodeInode interprets one raw 64-byte inode record:
//
//	0   mode    2B   type nibble in bits 12-15, permissions in bits 0-11
//	2   nlink   2B
//	4   uid     2B
//	6   gid     2B
//	8   size    4B
//	12  addr    40B  13 x 3B packed block addresses, 1 byte spare
//	52  atime   4B
//	56  mtime   4B
//	60  ctime   4B
func decodeInode(number Inumber, raw []byte) Inode {
	modeWord := binary.BigEndian.Uint16(raw[0:2])

	inode := Inode{
		Inumber:      number,
		Mode:         modeWord & 0x0FFF,
		Type:         InodeType(modeWord >> 12),
		Nlinks:       binary.BigEndian.Uint16(raw[2:4]),
		Uid:          binary.BigEndian.Uint16(raw[4:6]),
		Gid:          binary.BigEndian.Uint16(raw[6:8]),
		Size:         binary.BigEndian.Uint32(raw[8:12]),
		LastAccessed: time.Unix(int64(binary.BigEndian.Uint32(raw[52:56])), 0),
		LastModified: time.Unix(int64(binary.BigEndian.Uint32(raw[56:60])), 0),
		CreatedAt:    time.Unix(int64(binary.BigEndian.Uint32(raw[60:64])), 0),
	}

	for i := 0; i < NumBlockAddrs; i++ {
		addr := raw[12+i*3 : 15+i*3]
		inode.Addrs[i] = PhysicalBlock(
			uint32(addr[0])<<16 | uint32(addr[1])<<8 | uint32(addr[2]))
	}
	return inode
}
