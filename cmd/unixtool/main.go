// unixtool reads the SysV file system on TI/LMI 68K band images: it can list
// directories, report volume information, and copy files out to the host.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	bandtool "github.com/dseagrav/bandtool"
	"github.com/dseagrav/bandtool/bands"
	"github.com/dseagrav/bandtool/sysv"
)

func main() {
	app := cli.App{
		Name:  "unixtool",
		Usage: "Read the SysV file system on TI/LMI band images",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List the given directory",
				Action:    listPath,
				ArgsUsage: "IMAGE  PATH",
			},
			{
				Name:      "read",
				Usage:     "Copy a file from the image to the host",
				Action:    extractFile,
				ArgsUsage: "IMAGE  SOURCE-PATH  DESTINATION",
			},
			{
				Name:      "info",
				Usage:     "Show superblock and volume information",
				Action:    showInfo,
				ArgsUsage: "IMAGE",
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

// openImage opens the band image named by the command's first argument and
// mounts the file system on it.
func openImage(context *cli.Context) (*sysv.FileSystem, *os.File, error) {
	imagePath := context.Args().Get(0)
	if imagePath == "" {
		return nil, nil, fmt.Errorf("band image file name is required")
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return nil, nil, err
	}

	fs, err := sysv.Open(file)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return fs, file, nil
}

// checkPath rejects paths that don't start with a slash before the engine
// ever sees them.
func checkPath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid path %q: must start with /", path)
	}
	return nil
}

// reportLookupFailure prints recoverable lookup failures (missing entry, file
// used as a directory, over-long name) as a plain "no such file" outcome and
// swallows them, so the process exits cleanly. Everything else propagates.
func reportLookupFailure(path string, err error) error {
	if errors.Is(err, bandtool.ErrNotFound) ||
		errors.Is(err, bandtool.ErrNotADirectory) ||
		errors.Is(err, bandtool.ErrNameTooLong) {
		fmt.Fprintf(os.Stderr, "unixtool: %s: No such file or directory (in image)\n", path)
		return nil
	}
	return err
}

func listPath(context *cli.Context) error {
	path := context.Args().Get(1)
	if path == "" {
		return fmt.Errorf("ls: directory path is required")
	}
	if err := checkPath(path); err != nil {
		return err
	}

	fs, file, err := openImage(context)
	if err != nil {
		return err
	}
	defer file.Close()

	entries, err := fs.ReadDir(path)
	if err != nil {
		return reportLookupFailure(path, err)
	}

	fmt.Printf("%s:\n", path)
	for _, entry := range entries {
		fmt.Println(sysv.FormatEntry(entry))
	}
	return nil
}

func extractFile(context *cli.Context) error {
	sourcePath := context.Args().Get(1)
	destination := context.Args().Get(2)
	if sourcePath == "" {
		return fmt.Errorf("read: source path is required")
	}
	if destination == "" {
		return fmt.Errorf("read: destination path is required")
	}
	if err := checkPath(sourcePath); err != nil {
		return err
	}

	fs, file, err := openImage(context)
	if err != nil {
		return err
	}
	defer file.Close()

	sink, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o660)
	if err != nil {
		return err
	}
	defer sink.Close()

	// On failure the destination keeps whatever was written before the
	// error; no cleanup.
	written, err := fs.Extract(sourcePath, sink)
	if err != nil {
		return reportLookupFailure(sourcePath, err)
	}

	fmt.Printf("Wrote %d bytes\n", written)
	return nil
}

func showInfo(context *cli.Context) error {
	fs, file, err := openImage(context)
	if err != nil {
		return err
	}
	defer file.Close()

	superblock := fs.SuperBlock()
	stat := fs.FSStat()

	fmt.Printf("Filesystem name:   %s\n", superblock.FilesystemName)
	fmt.Printf("Pack name:         %s\n", superblock.PackName)
	fmt.Printf("Volume size:       %d blocks (%d bytes)\n",
		superblock.VolumeBlocks, uint64(superblock.VolumeBlocks)*sysv.BlockSize)
	fmt.Printf("Inode list size:   %d blocks\n", superblock.InodeListBlocks)
	fmt.Printf("Free blocks:       %d\n", superblock.TotalFreeBlocks)
	fmt.Printf("Free inodes:       %d\n", superblock.TotalFreeInodes)
	fmt.Printf("Last updated:      %s\n", stat.LastUpdated.Format("Jan _2 15:04:05 2006"))

	size, err := imageSize(file)
	if err != nil {
		return err
	}
	for _, geometry := range bands.MatchImageSize(size) {
		fmt.Printf("Matches band:      %s (%s)\n", geometry.Name, geometry.Machine)
	}
	return nil
}

func imageSize(file *os.File) (int64, error) {
	return file.Seek(0, io.SeekEnd)
}
