package resp

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

func WriteOK(w http.ResponseWriter, object any) {
	writeResp(w, http.StatusOK, object)
}

// WriteCreated writes a 201 with an optional Location header and body.
func WriteCreated(w http.ResponseWriter, location string, object any) {
	if location != "" {
		w.Header().Add("Location", location)
	}

	writeResp(w, http.StatusCreated, object)
}

// WriteSeeOther redirects a form submission so a reload does not resubmit it.
func WriteSeeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func WriteBadRequest(w http.ResponseWriter, description string) {
	writeError(w, http.StatusBadRequest, "bad_request", description)
}

func WriteUnsupportedMediaType(w http.ResponseWriter, description string) {
	writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", description)
}

func WriteInternalServerError(w http.ResponseWriter, description string) {
	writeError(w, http.StatusInternalServerError, "internal_server_error", description)
}

func WriteBadGateway(w http.ResponseWriter, description string) {
	writeError(w, http.StatusBadGateway, "bad_gateway", description)
}

func WriteNotFound(w http.ResponseWriter, description string) {
	writeError(w, http.StatusNotFound, "not_found", description)
}

func writeError(w http.ResponseWriter, status int, err string, description string) {
	writeResp(w, status, ErrorResponse{
		Error:       err,
		Description: description,
	})
}

func writeResp(w http.ResponseWriter, status int, object any) {
	haveObject := object != nil

	if haveObject {
		w.Header().Add("Content-Type", "application/json")
	}

	w.WriteHeader(status)

	if haveObject {
		err := json.NewEncoder(w).Encode(object)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to write standard HTTP response: %v", err), http.StatusInternalServerError)
		}
	}
}
