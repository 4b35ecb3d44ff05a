package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cocodsk/rsdos"
)

// loadImage reads a whole .DSK file. Short images load with a warning; the
// read-only commands still work on them.
func loadImage(path string, warn io.Writer) (*rsdos.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img := rsdos.NewImage(data)
	if img.Short() {
		fmt.Fprintf(warn, "WARNING: %s is %s (%d bytes), expected %d bytes for a 35 track disk\n",
			path, human(int64(img.Len())), img.Len(), rsdos.NominalSize)
	}
	return img, nil
}

// backupImage copies path to path.bak, keeping its mode and timestamps.
func backupImage(path string) (string, error) {
	bak := path + ".bak"
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(bak, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	_ = os.Chmod(bak, fi.Mode().Perm())
	_ = os.Chtimes(bak, fi.ModTime(), fi.ModTime())
	return bak, nil
}

// writeInPlace overwrites the image at path while holding an exclusive lock
// on it.
func writeInPlace(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open for write: %w", err)
	}
	defer f.Close()

	unlock, err := lockImage(f)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := f.Truncate(int64(len(data))); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return f.Sync()
}

// writeNew creates (or truncates) path and writes data to it.
func writeNew(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
