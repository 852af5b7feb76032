package sysv

// Swap32 reverses the byte order of a 32-bit word. Applied to a value read
// from the image in host order on a little-endian machine, it yields the
// big-endian value the disk actually stores.
func Swap32(x uint32) uint32 {
	return (x&0xFF000000)>>24 |
		(x&0x00FF0000)>>8 |
		(x&0x0000FF00)<<8 |
		(x&0x000000FF)<<24
}

// Swap16 reverses the byte order of a 16-bit word.
func Swap16(x uint16) uint16 {
	return (x&0xFF00)>>8 | (x&0x00FF)<<8
}
