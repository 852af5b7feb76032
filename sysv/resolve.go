package sysv

import (
	"encoding/binary"
	"fmt"

	bandtool "github.com/dseagrav/bandtool"
)

const (
	// numDirectBlocks is the number of direct address slots in an inode.
	numDirectBlocks = 10

	// addrsPerIndirectBlock is the number of 32-bit block addresses held by
	// one indirect block.
	addrsPerIndirectBlock = BlockSize / 4

	// singleIndirectLimit is the first logical index that needs two levels of
	// indirection: 10 + 256.
	singleIndirectLimit = numDirectBlocks + addrsPerIndirectBlock

	// doubleIndirectLimit is the first logical index that would need a third
	// level: 266 + 256*256. Nothing past it is supported.
	doubleIndirectLimit = singleIndirectLimit + addrsPerIndirectBlock*addrsPerIndirectBlock
)

// BlockAt maps a logical block index within the inode's contents to a
// physical block number. A result of 0 means there's no block there: end of
// data for a directory, a hole (or corruption) for a file.
//
// Direct indices cost no I/O. Indices in [10, 266) read one indirect block,
// indices in [266, 65802) read two. Indirection is chased with a loop bounded
// at two levels, never recursion.
func (fs *FileSystem) BlockAt(inode *Inode, index LogicalBlock) (PhysicalBlock, error) {
	if index < numDirectBlocks {
		return inode.Addrs[index], nil
	}

	var chain [2]uint32
	var depth int
	var block PhysicalBlock

	switch {
	case index < singleIndirectLimit:
		depth = 1
		block = inode.Addrs[10]
		chain[0] = uint32(index - numDirectBlocks)
	case index < doubleIndirectLimit:
		depth = 2
		block = inode.Addrs[11]
		relative := uint32(index - singleIndirectLimit)
		chain[0] = relative / addrsPerIndirectBlock
		chain[1] = relative % addrsPerIndirectBlock
	default:
		return 0, bandtool.ErrTooMuchIndirection.WithMessage(
			fmt.Sprintf(
				"logical block %d needs more than two levels of indirection"+
					" (maximum addressable index is %d)",
				index, doubleIndirectLimit-1))
	}

	buffer := make([]byte, BlockSize)
	for level := 0; level < depth; level++ {
		if block == 0 {
			return 0, nil
		}
		err := fs.dev.ReadBlock(block, buffer)
		if err != nil {
			return 0, err
		}
		entry := chain[level] * 4
		block = PhysicalBlock(binary.BigEndian.Uint32(buffer[entry : entry+4]))
	}
	return block, nil
}

// ReadContentBlock reads the logical block at `index` of the inode's contents
// into `buffer`. It returns true if there is no such block (end of data), in
// which case the buffer is left untouched.
func (fs *FileSystem) ReadContentBlock(
	inode *Inode, index LogicalBlock, buffer []byte,
) (eof bool, err error) {
	block, err := fs.BlockAt(inode, index)
	if err != nil {
		return false, err
	}
	if block == 0 {
		return true, nil
	}
	return false, fs.dev.ReadBlock(block, buffer)
}
