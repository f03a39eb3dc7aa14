package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ScratchSpace handles the local directory that holds downloaded files
// while they are being processed.
type ScratchSpace struct {
	Dir string
}

// NewScratchSpace creates a scratch space rooted at dir ("" means the working directory).
func NewScratchSpace(dir string) *ScratchSpace {
	if dir == "" {
		dir = "."
	}
	return &ScratchSpace{Dir: dir}
}

// Ensure creates the scratch directory if it doesn't exist
func (s *ScratchSpace) Ensure() error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return nil
}

// Path returns the location of a scratch file. Any directory part of name is dropped.
func (s *ScratchSpace) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

// Exists reports whether a regular file is present at path.
func (s *ScratchSpace) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Size returns the size of a file in bytes
func (s *ScratchSpace) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Remove deletes path. A file that is already gone is not an error.
func (s *ScratchSpace) Remove(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to remove scratch file %s: %w", path, err)
}
