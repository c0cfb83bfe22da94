package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/indieinfra/gallery/server/resp"
	"github.com/indieinfra/gallery/server/util"
	"github.com/indieinfra/gallery/storage/media"
	"github.com/indieinfra/gallery/storage/upload"
)

// Logger returns the request-scoped logger, falling back to the default log.
func Logger(r *http.Request) *util.RequestLogger {
	if rl := util.FromContext(r.Context()); rl != nil {
		return rl
	}

	return util.WithRequest(log.Default(), r)
}

// LogAndWriteError logs an error with request context and maps known conditions to client responses.
func LogAndWriteError(w http.ResponseWriter, r *http.Request, op string, err error) {
	Logger(r).Errorf("%s failed: %v", op, err)

	var (
		validationErr *upload.ValidationError
		uploadErr     *upload.UploadError
		storageErr    *media.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		resp.WriteBadRequest(w, validationErr.Reason)
	case errors.As(err, &uploadErr):
		resp.WriteBadGateway(w, "the upload service could not store the file")
	case errors.As(err, &storageErr):
		resp.WriteInternalServerError(w, "the media record could not be saved or read")
	default:
		resp.WriteInternalServerError(w, fmt.Sprintf("%s failed", op))
	}
}
