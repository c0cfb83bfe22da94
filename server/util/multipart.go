package util

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/indieinfra/gallery/storage/upload"
)

// UploadForm is a parsed single-file form submission. Payload is nil when the
// form carried no file under the expected field.
type UploadForm struct {
	Payload *upload.Payload
	file    multipart.File
}

// Close releases the uploaded file and any temporary storage behind it.
func (uf *UploadForm) Close() {
	if uf == nil || uf.file == nil {
		return
	}

	_ = uf.file.Close()
	uf.file = nil
}

// ParseUpload reads a multipart/form-data request and opens the file posted
// under field. A zero maxFileSize accepts files of any size. Malformed or
// oversized submissions are reported as *upload.ValidationError so they are
// handled like any other rejected upload.
func ParseUpload(w http.ResponseWriter, r *http.Request, maxMemory, maxFileSize int64, field string) (*UploadForm, error) {
	if !IsMultipart(r) {
		return nil, &upload.ValidationError{Reason: "expected a multipart/form-data submission"}
	}

	if maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+maxMemory)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &upload.ValidationError{Reason: fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit)}
		}

		return nil, &upload.ValidationError{Reason: fmt.Sprintf("malformed multipart body: %v", err)}
	}

	form := &UploadForm{}
	if r.MultipartForm == nil {
		return form, nil
	}

	headers := r.MultipartForm.File[field]
	switch len(headers) {
	case 0:
		return form, nil
	case 1:
	default:
		return nil, &upload.ValidationError{Reason: "only one file may be uploaded at a time"}
	}

	fh := headers[0]
	if maxFileSize > 0 && fh.Size > maxFileSize {
		return nil, &upload.ValidationError{Reason: fmt.Sprintf("file exceeds %d bytes", maxFileSize)}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open uploaded file: %w", err)
	}

	form.file = f
	form.Payload = &upload.Payload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}

	return form, nil
}
