package controllers

import (
	"dailytrack/internal/providers"
	"dailytrack/internal/services"
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respond(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, gson)
}

// statusOf maps engine errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrAlreadyFasting), errors.Is(err, services.ErrNotFasting):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnknownMedication):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEndBeforeStart),
		errors.Is(err, services.ErrDoseIndex),
		errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(w http.ResponseWriter, logger providers.Logger, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "Error while handling %s: %s", r.URL.Path, err)
		respond(w, status, errorResponse{Error: "internal error"})
		return
	}
	respond(w, status, errorResponse{Error: err.Error()})
}

// decodeBody reads a JSON body into v and runs its validate tags. An empty
// body is accepted when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			respond(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
			return false
		}
	}

	vd := validate.Struct(v)
	if !vd.Validate() {
		respond(w, http.StatusBadRequest, errorResponse{Error: vd.Errors.One()})
		return false
	}
	return true
}
