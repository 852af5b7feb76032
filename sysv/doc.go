/*
Package sysv implements read-only access to the System V file system variant
found on band images from 68K-based TI and LMI workstations.

The on-disk format is big-endian: every multi-byte integer in the superblock,
inode table, directory entries, and indirect blocks must be converted before
use on a little-endian host. Blocks are 1024 bytes. The superblock lives in
block 1 and is validated by a 32-bit magic number. A fixed inode table starts
at byte offset 0x7C0 with one 64-byte record per inode; inode 2 is always the
root directory.

Each inode carries 13 block addresses packed as 3-byte big-endian integers.
Slots 0-9 address content blocks directly, slot 10 points at a block of 256
further addresses, and slot 11 points at a block of pointers to such blocks.
Slot 12 would provide a third level of indirection; no known band uses it and
this package rejects block indices that would require it.

The format carries no symlinks, and nothing here ever writes to the image.
*/
package sysv
