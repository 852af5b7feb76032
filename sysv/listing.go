package sysv

import (
	"fmt"

	bandtool "github.com/dseagrav/bandtool"
)

// permGlyphs maps S_IFMT type values to the leading character of a listing
// line. Regular files and anything unrecognized render as '-'.
var permGlyphs = map[uint32]byte{
	bandtool.S_IFDIR: 'd',
	bandtool.S_IFCHR: 'c',
	bandtool.S_IFBLK: 'b',
	bandtool.S_IFIFO: 'p',
}

// permMasks drives the rwxrwxrwx columns of the permission string, most
// significant bit first.
var permMasks = [9]struct {
	mask  uint32
	glyph byte
}{
	{0o400, 'r'}, {0o200, 'w'}, {0o100, 'x'},
	{0o040, 'r'}, {0o020, 'w'}, {0o010, 'x'},
	{0o004, 'r'}, {0o002, 'w'}, {0o001, 'x'},
}

// PermissionString renders the 10-character type-and-permissions column for a
// mode word, e.g. "drwxr-xr-x".
func PermissionString(modeFlags uint32) string {
	perms := []byte("----------")
	if glyph, ok := permGlyphs[modeFlags&bandtool.S_IFMT]; ok {
		perms[0] = glyph
	}
	for i, column := range permMasks {
		if modeFlags&column.mask != 0 {
			perms[i+1] = column.glyph
		}
	}
	return string(perms)
}

// FormatEntry renders one directory entry as a listing line: permissions,
// link count, owner and group in their on-disk numeric (octal) form, size,
// modification date, and name.
func FormatEntry(entry bandtool.DirectoryEntry) string {
	stat := entry.Stat()
	return fmt.Sprintf(
		"%s  %2d %.6o  %.6o  %7d %s %s",
		PermissionString(stat.ModeFlags),
		stat.Nlinks,
		stat.Uid,
		stat.Gid,
		stat.Size,
		stat.LastModified.Format("Jan _2  2006"),
		entry.Name(),
	)
}
