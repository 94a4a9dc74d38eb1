package tectonic

import (
	"errors"
	"os"
	"syscall"
)

// copyFile copies the contents of srcPath into a newly created file at
// destPath.
func copyFile(srcPath string, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = destFile.ReadFrom(srcFile)
	return err
}

// moveFile renames srcPath to destPath. If the source lives on a
// different filesystem, it falls back to copying the contents into
// place and removing the source.
func moveFile(srcPath string, destPath string) error {
	if err := os.Rename(srcPath, destPath); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && linkErr.Err == syscall.EXDEV {
			if copyErr := copyFile(srcPath, destPath); copyErr != nil {
				return copyErr
			}

			// Best-effort cleanup of the source; ignore ENOENT in case
			// something else already removed it.
			if rmErr := os.Remove(srcPath); rmErr != nil && !os.IsNotExist(rmErr) {
				return rmErr
			}
			return nil
		}
		return err
	}

	return nil
}
