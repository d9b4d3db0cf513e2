package documents

import "errors"

var (
	// ErrNotFound covers both a nonexistent id and an owner mismatch so that
	// callers cannot distinguish another owner's document from no document.
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	ErrFileType     = errors.New("file type not allowed")
)
