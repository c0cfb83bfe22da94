package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/indieinfra/gallery/storage/media"
)

// Payload is a single file received from a client, prior to upload.
type Payload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader is implemented by every upload backend. Put stores the payload and
// returns a durable public URL for it.
type Uploader interface {
	Put(ctx context.Context, p *Payload) (string, error)
}

// ValidationError reports a payload that was rejected before any upload was
// attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid upload: " + e.Reason
}

// UploadError reports a failure of the upload backend.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

var (
	errEmptyURL   = errors.New("backend returned an empty url")
	errURLTooLong = fmt.Errorf("backend returned a url longer than %d characters", media.MaxFileURLLength)
)

// Gateway validates payloads and forwards accepted ones to an Uploader.
type Gateway struct {
	backend Uploader
}

func NewGateway(backend Uploader) *Gateway {
	return &Gateway{backend: backend}
}

// Upload checks that the payload is an image and hands it to the backend. No
// bytes reach the backend unless validation passes.
func (g *Gateway) Upload(ctx context.Context, p *Payload) (string, error) {
	if p == nil || p.Body == nil {
		return "", &ValidationError{Reason: "no file provided"}
	}

	if !IsImage(p.ContentType) {
		return "", &ValidationError{Reason: fmt.Sprintf("content type %q is not an image", p.ContentType)}
	}

	url, err := g.backend.Put(ctx, p)
	if err != nil {
		return "", &UploadError{Err: err}
	}

	if url == "" {
		return "", &UploadError{Err: errEmptyURL}
	}

	// The record column cannot hold a longer url.
	if utf8.RuneCountInString(url) > media.MaxFileURLLength {
		return "", &UploadError{Err: errURLTooLong}
	}

	return url, nil
}

// IsImage reports whether a declared content type is in the image/ family.
// Parameters such as charset are ignored, and the type is matched without
// regard to case (RFC 2045), so "Image/PNG" is an image.
func IsImage(contentType string) bool {
	ct := strings.TrimSpace(contentType)
	if ct == "" {
		return false
	}

	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}

	return strings.HasPrefix(strings.ToLower(ct), "image/")
}
