package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractMediaType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=abc")

	mediaType, err := ExtractMediaType(req)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("unexpected result: %q %v", mediaType, err)
	}
}

func TestExtractMediaTypeErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if _, err := ExtractMediaType(req); err != ErrMissingContentType {
		t.Fatalf("expected ErrMissingContentType, got %v", err)
	}

	req.Header.Set("Content-Type", "multipart/form-data; boundary")
	if _, err := ExtractMediaType(req); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRequireMultipart(t *testing.T) {
	tests := []struct {
		contentType string
		ok          bool
	}{
		{"multipart/form-data; boundary=xyz", true},
		{"application/json", false},
		{"", false},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/image", nil)
		if tc.contentType != "" {
			req.Header.Set("Content-Type", tc.contentType)
		}
		rr := httptest.NewRecorder()

		if got := RequireMultipart(rr, req); got != tc.ok {
			t.Errorf("%q: expected %v, got %v", tc.contentType, tc.ok, got)
		}

		if !tc.ok && rr.Code != http.StatusUnsupportedMediaType {
			t.Errorf("%q: expected 415, got %d", tc.contentType, rr.Code)
		}

		if IsMultipart(req) != tc.ok {
			t.Errorf("%q: IsMultipart disagrees", tc.contentType)
		}
	}
}
