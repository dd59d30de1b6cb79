package validators

import (
	"errors"
	"slices"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameEmpty       = errors.New("no file name provided")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrSizeInvalid         = errors.New("invalid file size")
)

const maxFileNameSize = 255

// UploadValidator checks the values a client declares at intake against the
// configured limits. The declared size and type are re-checked later against
// the finalized object, this only rejects obviously bad requests early.
func UploadValidator(fileName string, size, maxSize int64, contentType string, allowedTypes []string) error {
	if fileName == "" {
		return ErrFileNameEmpty
	}

	if len(fileName) > maxFileNameSize {
		return ErrFileNameTooLong
	}

	if size <= 0 {
		return ErrSizeInvalid
	}

	if size > maxSize {
		return ErrFileTooLarge
	}

	if len(allowedTypes) > 0 && !slices.Contains(allowedTypes, contentType) {
		return ErrFileTypeUnsupported
	}

	return nil
}
