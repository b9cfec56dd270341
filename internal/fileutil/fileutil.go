// Package fileutil holds file copy helpers.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Exists reports whether path exists. A stat failure other than "not exist" is returned
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// CopyFilePreserve streams src to dst, then applies the source permission bits
// and modification time to dst. A partially written dst is removed on failure.
// It returns the number of bytes copied
func CopyFilePreserve(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, fmt.Errorf("copy %s: not a regular file", src)
	}

	written, err := copyFileMode(src, dst, srcInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return written, fmt.Errorf("chmod %s: %w", dst, err)
	}
	mtime := srcInfo.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return written, fmt.Errorf("chtimes %s: %w", dst, err)
	}
	return written, nil
}

// copyFileMode creates dst exclusively so an existing file is never truncated.
// Only a dst created here is removed on failure
func copyFileMode(src, dst string, mode os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return 0, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return written, nil
}
