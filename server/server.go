package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/server/flash"
	"github.com/indieinfra/gallery/server/handler/api"
	"github.com/indieinfra/gallery/server/handler/image"
	"github.com/indieinfra/gallery/server/handler/pages"
	"github.com/indieinfra/gallery/server/middleware"
	"github.com/indieinfra/gallery/server/resp"
	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/server/view"
	"github.com/indieinfra/gallery/storage/media"
	mediafactory "github.com/indieinfra/gallery/storage/media/factory"
	"github.com/indieinfra/gallery/storage/upload"
	uploadfactory "github.com/indieinfra/gallery/storage/upload/factory"
)

const shutdownTimeout = 10 * time.Second

// StartServer builds the stores, serves HTTP until SIGINT or SIGTERM and then
// shuts down gracefully.
func StartServer(cfg *config.Config) error {
	st, err := initializeState(cfg)
	if err != nil {
		return err
	}
	defer cleanup(st)

	bindAddress := fmt.Sprintf("%v:%v", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", bindAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: %w", bindAddress, err)
	}

	if cfg.Server.Limits.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.Server.Limits.MaxConnections)
	}

	srv := &http.Server{
		Handler:           buildHandler(st),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("serving http requests on %q", listener.Addr().String())
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

func initializeState(cfg *config.Config) (*state.GalleryState, error) {
	mediaStore, err := initializeMediaStore(&cfg.Media)
	if err != nil {
		return nil, err
	}

	backend, err := initializeUploader(&cfg.Upload)
	if err != nil {
		_ = mediaStore.Close()
		return nil, err
	}

	views, err := view.New()
	if err != nil {
		_ = mediaStore.Close()
		return nil, err
	}

	codec, err := flash.NewCodec(cfg.Server.SecretKey)
	if err != nil {
		_ = mediaStore.Close()
		return nil, err
	}

	if cfg.Server.SecretKey == config.DefaultSecretKey {
		log.Println("warning: using the default secret key, set SECRET_KEY in production")
	}

	return &state.GalleryState{
		Cfg:        cfg,
		MediaStore: mediaStore,
		Gateway:    upload.NewGateway(backend),
		Views:      views,
		Flash:      codec,
	}, nil
}

func initializeMediaStore(cfg *config.Media) (media.Store, error) {
	store, err := mediafactory.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}

	log.Printf("media store initialized with strategy %q", cfg.Strategy)
	return store, nil
}

func initializeUploader(cfg *config.Upload) (upload.Uploader, error) {
	backend, err := uploadfactory.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload backend: %w", err)
	}

	log.Printf("upload backend initialized with strategy %q", cfg.Strategy)
	return backend, nil
}

func routes(st *state.GalleryState) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", pages.HandleHome(st))
	mux.Handle("GET /image", pages.HandleImage(st))
	mux.Handle("GET /video", pages.HandleVideo(st))

	mux.Handle("GET /image/see", image.HandleSee(st))
	mux.Handle("GET /image/add", image.HandleAddForm(st))
	mux.Handle("POST /image/add", image.HandleAddSubmit(st))

	mux.Handle("GET /api/media", api.HandleList(st))
	mux.Handle("POST /api/image", api.HandleCreateImage(st))

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		resp.WriteOK(w, map[string]string{"status": "ok"})
	})

	if st.Cfg.Upload.Strategy == "filesystem" && st.Cfg.Upload.Filesystem != nil {
		files := http.FileServer(http.Dir(st.Cfg.Upload.Filesystem.Path))
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", files))
	}

	return mux
}

// buildHandler wraps the routes as metrics -> CORS -> request logging -> mux.
func buildHandler(st *state.GalleryState) http.Handler {
	var h http.Handler = routes(st)
	h = middleware.RequestLogging(log.Default())(h)
	h = middleware.CORS(st.Cfg.Server.Cors)(h)
	h = middleware.Metrics()(h)
	return h
}

func cleanup(st *state.GalleryState) {
	if st == nil || st.MediaStore == nil {
		return
	}

	if err := st.MediaStore.Close(); err != nil {
		log.Printf("error closing media store: %v", err)
	}
}
