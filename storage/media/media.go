package media

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	MaxFileURLLength   = 200
	MaxMediaTypeLength = 10
)

// Record references an uploaded asset. Records are created once, after a
// successful upload, and never modified afterwards.
type Record struct {
	ID        int64  `json:"id"`
	FileURL   string `json:"file_url"`
	MediaType string `json:"media_type"`
}

type Store interface {
	// Create validates and persists a new record, returning it with its
	// freshly assigned id. Duplicate URLs are allowed.
	Create(ctx context.Context, fileURL string, mediaType string) (Record, error)

	// ListByType returns every record with the given media type in the order
	// the records were created. The slice is never nil.
	ListByType(ctx context.Context, mediaType string) ([]Record, error)

	Close() error
}

var ErrInvalidRecord = errors.New("invalid media record")

// StorageError reports a failed read or write against the backing store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("media store %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

// ValidateRecordInput checks the bounds enforced by the media table.
func ValidateRecordInput(fileURL string, mediaType string) error {
	switch {
	case fileURL == "":
		return fmt.Errorf("%w: file url is required", ErrInvalidRecord)
	case mediaType == "":
		return fmt.Errorf("%w: media type is required", ErrInvalidRecord)
	case utf8.RuneCountInString(fileURL) > MaxFileURLLength:
		return fmt.Errorf("%w: file url exceeds %d characters", ErrInvalidRecord, MaxFileURLLength)
	case utf8.RuneCountInString(mediaType) > MaxMediaTypeLength:
		return fmt.Errorf("%w: media type exceeds %d characters", ErrInvalidRecord, MaxMediaTypeLength)
	}

	return nil
}
