package api

import (
	"net/http"
	"slices"

	"github.com/indieinfra/gallery/server/handler/common"
	"github.com/indieinfra/gallery/server/resp"
	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/server/util"
	"github.com/indieinfra/gallery/storage/media"
)

const defaultListType = "image"

type listResponse struct {
	Type  string         `json:"type"`
	Items []media.Record `json:"items"`
}

// HandleList returns every record of the requested type as JSON.
func HandleList(st *state.GalleryState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType := r.URL.Query().Get("type")
		if mediaType == "" {
			mediaType = defaultListType
		}

		if !slices.Contains(st.Cfg.Media.Types, mediaType) {
			resp.WriteBadRequest(w, "unknown media type "+mediaType)
			return
		}

		records, err := st.MediaStore.ListByType(r.Context(), mediaType)
		if err != nil {
			common.LogAndWriteError(w, r, "list media", err)
			return
		}

		resp.WriteOK(w, listResponse{Type: mediaType, Items: records})
	}
}

// HandleCreateImage accepts a multipart upload and answers with the new
// record, its hosted URL in the Location header.
func HandleCreateImage(st *state.GalleryState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !util.RequireMultipart(w, r) {
			return
		}

		limits := st.Cfg.Server.Limits
		form, err := util.ParseUpload(w, r, int64(limits.MaxMultipartMem), int64(limits.MaxFileSize), "file")
		if err != nil {
			common.LogAndWriteError(w, r, "upload image", err)
			return
		}
		defer form.Close()

		rec, err := common.Ingest(r.Context(), st, form.Payload, "image")
		if err != nil {
			common.LogAndWriteError(w, r, "upload image", err)
			return
		}

		resp.WriteCreated(w, rec.FileURL, rec)
	}
}
