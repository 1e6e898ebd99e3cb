// Package storage abstracts where uploaded files (product images) live.
//
// Two drivers are available:
//   - "local" — local filesystem (default)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// The driver is chosen once at startup from config and injected where
// needed:
//
//	disk, err := storage.New(cfg)
//	disk.Put("products/42/cover.jpg", data)
//	url := disk.URL("products/42/cover.jpg")
package storage

import (
	"fmt"
	"io"

	"github.com/shashiranjanraj/vyapar/config"
)

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Delete removes the file at path. Deleting a missing file is not
	// an error.
	Delete(path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// New builds the Disk selected by cfg.StorageDisk.
func New(cfg *config.Config) (Disk, error) {
	switch cfg.StorageDisk {
	case "local", "":
		return newLocalDisk(cfg), nil
	case "s3":
		return newS3Disk(cfg)
	default:
		return nil, fmt.Errorf("storage: unknown STORAGE_DISK %q (supported: local, s3)", cfg.StorageDisk)
	}
}
