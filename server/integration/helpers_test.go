package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/server/flash"
	"github.com/indieinfra/gallery/server/handler/api"
	"github.com/indieinfra/gallery/server/handler/image"
	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/server/view"
	"github.com/indieinfra/gallery/storage/media"
	"github.com/indieinfra/gallery/storage/upload"
)

func stringPtr(s string) *string {
	return &s
}

func newState(tb testing.TB, store media.Store, backend upload.Uploader) *state.GalleryState {
	tb.Helper()

	views, err := view.New()
	if err != nil {
		tb.Fatalf("failed to parse views: %v", err)
	}

	codec, err := flash.NewCodec("integration-secret")
	if err != nil {
		tb.Fatalf("failed to create flash codec: %v", err)
	}

	tb.Cleanup(func() { _ = store.Close() })

	return &state.GalleryState{
		Cfg: &config.Config{
			Server: config.Server{Limits: config.ServerLimits{MaxFileSize: 1 << 20, MaxMultipartMem: 1 << 20}},
			Media:  config.Media{Types: []string{"image", "video"}},
		},
		MediaStore: store,
		Gateway:    upload.NewGateway(backend),
		Views:      views,
		Flash:      codec,
	}
}

func newMux(st *state.GalleryState) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /image/see", image.HandleSee(st))
	mux.Handle("GET /image/add", image.HandleAddForm(st))
	mux.Handle("POST /image/add", image.HandleAddSubmit(st))
	mux.Handle("GET /api/media", api.HandleList(st))
	mux.Handle("POST /api/image", api.HandleCreateImage(st))
	return mux
}

func uploadRequest(tb testing.TB, target, filename, contentType string, data []byte) *http.Request {
	tb.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	head := textproto.MIMEHeader{}
	head.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	head.Set("Content-Type", contentType)
	part, err := w.CreatePart(head)
	if err != nil {
		tb.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		tb.Fatalf("failed to write part: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// postImage submits the HTML form and returns the redirect target.
func postImage(tb testing.TB, h http.Handler, filename, contentType string, data []byte) string {
	tb.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(tb, "/image/add", filename, contentType, data))

	if rec.Code != http.StatusSeeOther {
		tb.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}

	return rec.Header().Get("Location")
}

func listMedia(tb testing.TB, h http.Handler, mediaType string) []media.Record {
	tb.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/media?type="+mediaType, nil))

	if rec.Code != http.StatusOK {
		tb.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Items []media.Record `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		tb.Fatalf("failed to decode list: %v", err)
	}

	return body.Items
}

func seePage(tb testing.TB, h http.Handler) string {
	tb.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/image/see", nil))

	if rec.Code != http.StatusOK {
		tb.Fatalf("expected 200, got %d", rec.Code)
	}

	return rec.Body.String()
}

// exerciseMediaStore runs the create/list contract shared by every backend.
func exerciseMediaStore(t *testing.T, store media.Store) {
	t.Helper()

	ctx := context.Background()

	first, err := store.Create(ctx, "https://cdn.example/one.png", "image")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := store.Create(ctx, "https://cdn.example/clip.mp4", "video"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	dup, err := store.Create(ctx, "https://cdn.example/one.png", "image")
	if err != nil {
		t.Fatalf("duplicate create failed: %v", err)
	}

	if dup.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, dup.ID)
	}

	images, err := store.ListByType(ctx, "image")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(images) != 2 || images[0] != first || images[1] != dup {
		t.Fatalf("unexpected images: %+v", images)
	}

	empty, err := store.ListByType(ctx, "audio")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}

	if _, err := store.Create(ctx, "https://cdn.example/"+strings.Repeat("x", media.MaxFileURLLength), "image"); err == nil {
		t.Fatalf("expected over-long url to be rejected")
	}
}
