package fileio

import (
	"fmt"
	"os"
	"path"
)

// Reader reads files from the device
type Reader struct {
	// rootDir is the root directory for the reader, useful for testing
	rootDir string
}

// NewReader creates a new reader
func NewReader() *Reader {
	return &Reader{}
}

// SetRootdir sets the root directory for the reader, useful for testing
func (r *Reader) SetRootdir(path string) {
	r.rootDir = path
}

// PathFor returns the full path for the provided file
func (r *Reader) PathFor(filePath string) string {
	return path.Join(r.rootDir, filePath)
}

// ReadFile reads the file at the provided path
func (r *Reader) ReadFile(filePath string) ([]byte, error) {
	return os.ReadFile(r.PathFor(filePath))
}

// CheckPathExists returns an error if the path does not exist
func (r *Reader) CheckPathExists(filePath string) error {
	if _, err := os.Stat(r.PathFor(filePath)); err != nil {
		return fmt.Errorf("checking path: %w", err)
	}
	return nil
}
