package handlers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"playtrack/internal/development"
	"playtrack/internal/logging"
	"playtrack/internal/service"
	"playtrack/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondWithError logs err (when set) and writes userMsg as a JSON error body
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		entry := logging.Log.WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error(logMsg)
		} else {
			entry.Debug(logMsg)
		}
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Log.WithError(err).Error("Failed to encode response")
	}
}

// respondWithServiceError maps service and engine errors to HTTP statuses
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var verr validation.ValidationError
	var stateErr *development.InvalidStateError

	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Error(), logMsg, err)
	case errors.Is(err, service.ErrChildNotFound):
		respondWithError(w, http.StatusNotFound, ErrChildNotFoundMsg, logMsg, err)
	case errors.Is(err, service.ErrPlayNotFound),
		errors.Is(err, service.ErrRecordNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrNoGuardianEmail):
		respondWithError(w, http.StatusBadRequest, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrWriteConflict):
		respondWithError(w, http.StatusConflict, "record is being changed elsewhere, try again", logMsg, err)
	case errors.As(err, &stateErr):
		respondWithError(w, http.StatusUnprocessableEntity, stateErr.Error(), logMsg, err)
	case errors.Is(err, development.ErrInvalidActivity):
		respondWithError(w, http.StatusUnprocessableEntity, "stored play data is malformed", logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a size limited JSON body into dst
func decodeJSON(r *http.Request, w http.ResponseWriter, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
