package sysv

import (
	"fmt"
	"strings"

	bandtool "github.com/dseagrav/bandtool"
)

// ResolvePath walks a slash-separated path from the root directory to the
// inode it names. Empty components are dropped, so "/bin//sh" and "bin/sh"
// both resolve the same way. The final component may be any object type; a
// non-directory anywhere before it fails with ErrNotADirectory.
//
// The format has no symlinks, and "." and ".." get no special handling beyond
// whatever literal entries the directory carries.
func (fs *FileSystem) ResolvePath(path string) (Inode, error) {
	current, err := fs.ReadInode(RootInumber)
	if err != nil {
		return Inode{}, err
	}

	for _, component := range strings.Split(path, "/") {
		if component == "" {
			continue
		}

		if !current.IsDir() {
			return Inode{}, bandtool.ErrNotADirectory.WithMessage(
				fmt.Sprintf("%q: component before %q is not a directory",
					path, component))
		}

		inumber, err := fs.Lookup(&current, component)
		if err != nil {
			return Inode{}, err
		}

		current, err = fs.ReadInode(inumber)
		if err != nil {
			return Inode{}, err
		}
	}
	return current, nil
}
