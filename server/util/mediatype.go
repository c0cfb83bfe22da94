package util

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/indieinfra/gallery/server/resp"
)

var ErrMissingContentType = errors.New("Content-Type must be specified")

// ExtractMediaType returns the request's media type without parameters.
func ExtractMediaType(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return "", ErrMissingContentType
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("invalid Content-Type: %w", err)
	}

	return mediaType, nil
}

// IsMultipart reports whether the request carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	mediaType, err := ExtractMediaType(r)
	return err == nil && mediaType == "multipart/form-data"
}

// RequireMultipart writes a 415 and returns false unless the request is a
// multipart/form-data submission.
func RequireMultipart(w http.ResponseWriter, r *http.Request) bool {
	mediaType, err := ExtractMediaType(r)
	if err != nil {
		resp.WriteUnsupportedMediaType(w, err.Error())
		return false
	}

	if mediaType != "multipart/form-data" {
		resp.WriteUnsupportedMediaType(w, "only multipart/form-data allowed")
		return false
	}

	return true
}
