package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the narrow backing-store interface the pipeline components
// write through. Keeping it small lets tests substitute an in-memory
// implementation and count writes.
type Store interface {
	// Exists reports whether a file exists at path.
	Exists(path string) bool
	// Size returns the byte size of the file at path.
	Size(path string) (int64, error)
	// ReadFile returns the full contents of the file at path.
	ReadFile(path string) ([]byte, error)
	// WriteFile writes data to path, creating parent directories.
	WriteFile(path string, data []byte) error
	// Remove deletes the file at path. Removing a missing file is not
	// an error (already-deleted is treated as deleted).
	Remove(path string) error
}

// Disk is the production Store backed by the local filesystem.
type Disk struct{}

// NewDisk returns a filesystem-backed Store.
func NewDisk() *Disk {
	return &Disk{}
}

func (d *Disk) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (d *Disk) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}

func (d *Disk) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (d *Disk) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (d *Disk) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
