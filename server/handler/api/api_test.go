package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/storage/media"
	"github.com/indieinfra/gallery/storage/upload"
)

type stubUploader struct {
	url   string
	err   error
	calls int
}

func (s *stubUploader) Put(ctx context.Context, p *upload.Payload) (string, error) {
	s.calls++
	return s.url, s.err
}

func newTestState(store media.Store, backend upload.Uploader) *state.GalleryState {
	return &state.GalleryState{
		Cfg: &config.Config{
			Server: config.Server{Limits: config.ServerLimits{MaxFileSize: 1 << 20, MaxMultipartMem: 1 << 20}},
			Media:  config.Media{Types: []string{"image", "video"}},
		},
		MediaStore: store,
		Gateway:    upload.NewGateway(backend),
	}
}

func uploadRequest(t *testing.T, filename, contentType string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	head := textproto.MIMEHeader{}
	head.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	head.Set("Content-Type", contentType)
	part, _ := w.CreatePart(head)
	_, _ = part.Write([]byte("data"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleList_DefaultsToImages(t *testing.T) {
	store := media.NewMemoryMediaStore()
	_, _ = store.Create(context.Background(), "https://cdn.example/a.png", "image")
	_, _ = store.Create(context.Background(), "https://cdn.example/v.mp4", "video")

	rr := httptest.NewRecorder()
	HandleList(newTestState(store, &stubUploader{}))(rr, httptest.NewRequest(http.MethodGet, "/api/media", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body listResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Type != "image" || len(body.Items) != 1 || body.Items[0].FileURL != "https://cdn.example/a.png" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHandleList_EmptyIsArray(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleList(newTestState(media.NewMemoryMediaStore(), &stubUploader{}))(rr, httptest.NewRequest(http.MethodGet, "/api/media?type=video", nil))

	if !bytes.Contains(rr.Body.Bytes(), []byte(`"items":[]`)) {
		t.Fatalf("expected empty items array, got %s", rr.Body.String())
	}
}

func TestHandleList_UnknownType(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleList(newTestState(media.NewMemoryMediaStore(), &stubUploader{}))(rr, httptest.NewRequest(http.MethodGet, "/api/media?type=audio", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandleCreateImage_Created(t *testing.T) {
	store := media.NewMemoryMediaStore()
	rr := httptest.NewRecorder()
	HandleCreateImage(newTestState(store, &stubUploader{url: "https://cdn.example/new.png"}))(rr, uploadRequest(t, "new.png", "image/png"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Location") != "https://cdn.example/new.png" {
		t.Fatalf("unexpected location %q", rr.Header().Get("Location"))
	}

	var rec media.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ID == 0 || rec.MediaType != "image" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestHandleCreateImage_Rejections(t *testing.T) {
	t.Run("non image", func(t *testing.T) {
		backend := &stubUploader{url: "https://cdn.example/x"}
		rr := httptest.NewRecorder()
		HandleCreateImage(newTestState(media.NewMemoryMediaStore(), backend))(rr, uploadRequest(t, "doc.pdf", "application/pdf"))

		if rr.Code != http.StatusBadRequest || backend.calls != 0 {
			t.Fatalf("expected 400 without upload, got %d (calls=%d)", rr.Code, backend.calls)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/image", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		HandleCreateImage(newTestState(media.NewMemoryMediaStore(), &stubUploader{}))(rr, req)

		if rr.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected 415, got %d", rr.Code)
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleCreateImage(newTestState(media.NewMemoryMediaStore(), &stubUploader{err: errors.New("down")}))(rr, uploadRequest(t, "a.png", "image/png"))

		if rr.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rr.Code)
		}
	})
}
