package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/boardsvc/internal/apperror"
	"github.com/sakif/boardsvc/internal/repository"
)

// ErrorResponse is the body of every JSON error:
//
//	{"error": "not_found", "message": "board not found: 7"}
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind
	Message string `json:"message"` // human-readable description
}

// writeJSON sends data as JSON with status.
// Headers must be set before WriteHeader; anything set after is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are gone; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status.
//
// errors.Is walks the wrap chain, so a service error like
//
//	fmt.Errorf("service/board: getting board 7: %w", apperror.NotFound("board", 7))
//
// still maps to 404. Errors that are not an *apperror.AppError become a
// generic 500 whose message never leaks internals.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{Error: errorType, Message: appErr.Message})
		return
	}

	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// pageRequest reads ?page= and ?size=. Missing or malformed values fall back
// to page 0 and the default size; the store clamps the rest.
func pageRequest(r *http.Request) repository.PageRequest {
	q := r.URL.Query()
	req := repository.PageRequest{Page: 0, Size: repository.DefaultPageSize}
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		req.Page = p
	}
	if s, err := strconv.Atoi(q.Get("size")); err == nil {
		req.Size = s
	}
	return req.Normalize()
}
