package files

import (
	"errors"
	"io"
	"os"
)

// ErrInvalidPath is returned for paths that would resolve outside the store.
var ErrInvalidPath = errors.New("invalid file path")

// ErrFileTooLarge is returned when saved contents exceed the size limit.
var ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

// Storage defines the behaviour for product image file operations
type Storage interface {
	Save(path string, contents io.Reader) error
	Get(path string) (*os.File, error)
}
