package api

import (
	"errors"
	"net/http"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	service "github.com/upskillhq/portfolio-engine/internal/app"
	"github.com/upskillhq/portfolio-engine/internal/domain/lifecycle"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

// ErrBadRequest marks malformed request bodies.
var ErrBadRequest = errors.New("bad request")

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a domain error to its HTTP status and stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "invalid_transition"
	case errors.Is(err, service.ErrSync):
		return http.StatusBadGateway, "sync_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeDomainError translates err via statusFor.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError && err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeError reports a non-domain failure with an explicit status.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
