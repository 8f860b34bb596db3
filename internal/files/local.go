package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local is a Storage implementation that works with the local disk
type Local struct {
	maxFileSize int // Maximum number of bytes for files
	basePath    string
}

// NewLocal creates a new Local filesystem with the given base path
// basePath is the base directory to save the files to
// maxSize is the max number of bytes that a file can be
func NewLocal(basePath string, maxSize int) (*Local, error) {
	p, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	return &Local{basePath: p, maxFileSize: maxSize}, nil
}

// Save writes contents to path. The file only becomes visible once it has
// been fully written and is within the size limit.
func (l *Local) Save(path string, contents io.Reader) error {
	fp, err := l.fullPath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(fp)

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("unable to create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "temp-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	// read one byte past the limit so oversized uploads can be detected
	written, err := io.Copy(tempFile, io.LimitReader(contents, int64(l.maxFileSize)+1))
	if err != nil {
		tempFile.Close()
		return fmt.Errorf("unable to write to file: %w", err)
	}

	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if written > int64(l.maxFileSize) {
		return fmt.Errorf("%w of %d bytes", ErrFileTooLarge, l.maxFileSize)
	}

	if err := os.Rename(tempPath, fp); err != nil {
		return fmt.Errorf("unable to move temporary file to final location: %w", err)
	}

	return nil
}

// Get opens the file at path for reading
func (l *Local) Get(path string) (*os.File, error) {
	fp, err := l.fullPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("unable to open the file: %w", err)
	}

	return f, nil
}

// fullPath joins path onto the base path, refusing anything that escapes it
func (l *Local) fullPath(path string) (string, error) {
	fp := filepath.Join(l.basePath, path)
	if fp == l.basePath || !strings.HasPrefix(fp, l.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return fp, nil
}
