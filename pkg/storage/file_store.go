package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resxai/internal/util"
)

// FileStore stages uploaded files on disk until they are extracted.
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Stage writes r under a unique name and returns the path and byte count.
// A partially written file is removed on error.
func (f *FileStore) Stage(filename string, r io.Reader) (string, int64, error) {
	target := filepath.Join(f.basePath, util.NewID()+"-"+safeFilename(filename))
	out, err := os.Create(target)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	return target, n, nil
}

func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "resume.pdf"
	}
	return name
}
