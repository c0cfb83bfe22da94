package pages

import (
	"net/http"

	"github.com/indieinfra/gallery/server/handler/common"
	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/server/view"
)

func HandleHome(st *state.GalleryState) http.HandlerFunc {
	return renderStatic(st, view.PageFront)
}

func HandleImage(st *state.GalleryState) http.HandlerFunc {
	return renderStatic(st, view.PageImage)
}

// HandleVideo lists stored videos. Videos cannot be uploaded through the
// server; records of type "video" come from other writers of the store.
func HandleVideo(st *state.GalleryState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos, err := st.MediaStore.ListByType(r.Context(), "video")
		if err != nil {
			common.LogAndWriteError(w, r, "list videos", err)
			return
		}

		if err := st.Views.Render(w, http.StatusOK, view.PageVideo, view.Data{Videos: videos}); err != nil {
			common.Logger(r).Errorf("render video: %v", err)
		}
	}
}

func renderStatic(st *state.GalleryState, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Views.Render(w, http.StatusOK, page, view.Data{}); err != nil {
			common.Logger(r).Errorf("render %s: %v", page, err)
		}
	}
}
