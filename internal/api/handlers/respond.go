package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/focoshop/focoshop-be/internal/auth"
	"github.com/focoshop/focoshop-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	respondJSON(w, r, status, ErrorResponse{Detail: detail})
}

// respondServiceError maps service errors to statuses. conflictStatus lets
// registration keep its historical 400 while profile edits answer 409.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, conflictStatus int, msg string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, r, http.StatusNotFound, msg+" not found")
	case errors.Is(err, services.ErrConflict):
		respondError(w, r, conflictStatus, err.Error())
	case errors.Is(err, services.ErrValidation):
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		auth.Unauthorized(w, r, err.Error())
	default:
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("Request failed")
		respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body. Unknown fields are rejected when strict.
func decodeJSON(r *http.Request, dst any, strict bool) error {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}
