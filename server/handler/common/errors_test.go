package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/indieinfra/gallery/server/resp"
	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/storage/media"
	"github.com/indieinfra/gallery/storage/upload"
)

func TestLogAndWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"validation", &upload.ValidationError{Reason: "not an image"}, http.StatusBadRequest, "bad_request"},
		{"upload", &upload.UploadError{Err: errors.New("timeout")}, http.StatusBadGateway, "bad_gateway"},
		{"storage", &media.StorageError{Op: "create", Err: errors.New("disk full")}, http.StatusInternalServerError, "internal_server_error"},
		{"wrapped storage", fmt.Errorf("outer: %w", &media.StorageError{Op: "list", Err: errors.New("x")}), http.StatusInternalServerError, "internal_server_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/image", nil)

			LogAndWriteError(rr, req, "upload image", tc.err)

			if rr.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rr.Code)
			}

			var body resp.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tc.kind {
				t.Fatalf("expected %s, got %+v", tc.kind, body)
			}
		})
	}
}

func TestLogAndWriteError_DoesNotLeakCause(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/image", nil)

	LogAndWriteError(rr, req, "create record", &media.StorageError{Op: "create", Err: errors.New("password=hunter2")})

	if strings.Contains(rr.Body.String(), "hunter2") {
		t.Fatalf("storage cause leaked into response: %s", rr.Body.String())
	}
}

type stubUploader struct {
	url   string
	err   error
	calls int
}

func (s *stubUploader) Put(ctx context.Context, p *upload.Payload) (string, error) {
	s.calls++
	return s.url, s.err
}

func TestIngest_StoresUploadedURL(t *testing.T) {
	store := media.NewMemoryMediaStore()
	st := &state.GalleryState{
		MediaStore: store,
		Gateway:    upload.NewGateway(&stubUploader{url: "https://cdn.example/a.png"}),
	}

	rec, err := Ingest(context.Background(), st, &upload.Payload{ContentType: "image/png", Body: strings.NewReader("x")}, "image")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if rec.FileURL != "https://cdn.example/a.png" || rec.MediaType != "image" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestIngest_NoRecordWhenUploadFails(t *testing.T) {
	store := media.NewMemoryMediaStore()
	backend := &stubUploader{err: errors.New("down")}
	st := &state.GalleryState{MediaStore: store, Gateway: upload.NewGateway(backend)}

	if _, err := Ingest(context.Background(), st, &upload.Payload{ContentType: "image/png", Body: strings.NewReader("x")}, "image"); err == nil {
		t.Fatalf("expected error")
	}

	records, _ := store.ListByType(context.Background(), "image")
	if len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestIngest_RejectsNonImage(t *testing.T) {
	backend := &stubUploader{url: "https://cdn.example/a.pdf"}
	st := &state.GalleryState{MediaStore: media.NewMemoryMediaStore(), Gateway: upload.NewGateway(backend)}

	_, err := Ingest(context.Background(), st, &upload.Payload{ContentType: "application/pdf", Body: strings.NewReader("x")}, "image")

	var ve *upload.ValidationError
	if !errors.As(err, &ve) || backend.calls != 0 {
		t.Fatalf("expected ValidationError without backend call, got %v (calls=%d)", err, backend.calls)
	}
}
