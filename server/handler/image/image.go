package image

import (
	"errors"
	"net/http"

	"github.com/indieinfra/gallery/server/handler/common"
	"github.com/indieinfra/gallery/server/resp"
	"github.com/indieinfra/gallery/server/state"
	"github.com/indieinfra/gallery/server/util"
	"github.com/indieinfra/gallery/server/view"
	"github.com/indieinfra/gallery/storage/upload"
)

const (
	MediaType = "image"

	// UploadFailedMessage is flashed when a submission is not a usable image.
	UploadFailedMessage = "Upload failed. Please select a valid image file."

	seePath = "/image/see"
	addPath = "/image/add"
)

// HandleSee lists every stored image in creation order.
func HandleSee(st *state.GalleryState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		images, err := st.MediaStore.ListByType(r.Context(), MediaType)
		if err != nil {
			common.LogAndWriteError(w, r, "list images", err)
			return
		}

		if err := st.Views.Render(w, http.StatusOK, view.PageSee, view.Data{Images: images}); err != nil {
			common.Logger(r).Errorf("render see: %v", err)
		}
	}
}

// HandleAddForm renders the upload form along with any pending flash messages.
func HandleAddForm(st *state.GalleryState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages := st.Flash.Pop(w, r)

		if err := st.Views.Render(w, http.StatusOK, view.PageAddImage, view.Data{Messages: messages}); err != nil {
			common.Logger(r).Errorf("render add: %v", err)
		}
	}
}

// HandleAddSubmit uploads the posted file and records it. Rejected files send
// the user back to the form with a flash message. Upload and storage failures
// are reported as errors and never redirect to the listing.
func HandleAddSubmit(st *state.GalleryState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limits := st.Cfg.Server.Limits
		form, err := util.ParseUpload(w, r, int64(limits.MaxMultipartMem), int64(limits.MaxFileSize), "file")
		if err != nil {
			rejectOrFail(w, r, st, err)
			return
		}
		defer form.Close()

		rec, err := common.Ingest(r.Context(), st, form.Payload, MediaType)
		if err != nil {
			rejectOrFail(w, r, st, err)
			return
		}

		common.Logger(r).Infof("stored image %d at %s", rec.ID, rec.FileURL)
		resp.WriteSeeOther(w, r, seePath)
	}
}

func rejectOrFail(w http.ResponseWriter, r *http.Request, st *state.GalleryState, err error) {
	var ve *upload.ValidationError
	if !errors.As(err, &ve) {
		common.LogAndWriteError(w, r, "upload image", err)
		return
	}

	common.Logger(r).Infof("rejected upload: %s", ve.Reason)

	if ferr := st.Flash.Add(w, r, UploadFailedMessage); ferr != nil {
		common.Logger(r).Errorf("set flash: %v", ferr)
	}

	resp.WriteSeeOther(w, r, addPath)
}
