package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/focoshop/focoshop-be/internal/auth"
	"github.com/focoshop/focoshop-be/internal/metrics"
	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
}

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service        services.UserServiceProvider
	authenticator  Authenticator
	tokens         TokenIssuer
	metrics        *metrics.Metrics
	maxUploadBytes int64
}

// NewUserHandler creates a new UserHandler. m may be nil.
func NewUserHandler(service services.UserServiceProvider, authenticator Authenticator, tokens TokenIssuer, m *metrics.Metrics, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		service:        service,
		authenticator:  authenticator,
		tokens:         tokens,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
	}
}

// TokenResponse is the OAuth2-style login answer.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Token handles form login and issues a bearer token.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid form body")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.LoginAttempt(metrics.LoginFailure)
			log.Warn().Msg("Failed authentication attempt")
			auth.Unauthorized(w, r, "incorrect email or password")
			return
		}
		respondServiceError(w, r, err, http.StatusBadRequest, "user")
		return
	}

	token, _, err := h.tokens.Issue(user.Email)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	h.metrics.LoginAttempt(metrics.LoginSuccess)

	respondJSON(w, r, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload services.RegisterInput
	if err := decodeJSON(r, &payload, false); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		respondServiceError(w, r, err, http.StatusBadRequest, "user")
		return
	}
	respondJSON(w, r, http.StatusCreated, user)
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.Unauthorized(w, r, "not authenticated")
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// List handles the admin listing with skip/limit paging.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", services.DefaultListLimit)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	users, err := h.service.ListUsers(r.Context(), skip, limit)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}
	respondJSON(w, r, http.StatusOK, users)
}

// GetByEmail handles retrieving a user by email.
func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	caller, _ := auth.UserFromContext(r.Context())
	if caller.Email != email && !caller.IsAdmin() {
		respondError(w, r, http.StatusForbidden, services.ErrForbidden.Error())
		return
	}

	user, err := h.service.GetUserByEmail(r.Context(), email)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// Update handles updating a user's profile information.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	var patch models.UserPatch
	if err := decodeJSON(r, &patch, true); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, patch)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// ChangePassword handles changing the caller's own password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	caller, _ := auth.UserFromContext(r.Context())
	if caller.ID != id {
		respondError(w, r, http.StatusForbidden, services.ErrForbidden.Error())
		return
	}

	var payload struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(r, &payload, true); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ChangePassword(r.Context(), id, payload.CurrentPassword, payload.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, r, http.StatusBadRequest, "current password is incorrect")
			return
		}
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"message": "password updated"})
}

// UpdateRole handles the admin-only role change.
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var payload struct {
		Rol string `json:"rol"`
	}
	if err := decodeJSON(r, &payload, true); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateRole(r.Context(), id, payload.Rol)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}
	respondJSON(w, r, http.StatusOK, user)
}

// UploadImage handles a multipart profile image upload in field "foto".
func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}

	// Room for the multipart envelope on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respondError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("foto")
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, "field foto is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		respondError(w, r, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	user, err := h.service.UpdateImage(r.Context(), id, header.Filename, file)
	if err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}

	fotoURL := ""
	if user.Imagen != nil {
		fotoURL = *user.Imagen
	}
	respondJSON(w, r, http.StatusOK, map[string]string{
		"message":  "profile image updated",
		"foto_url": fotoURL,
	})
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.selfOrAdmin(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, r, err, http.StatusConflict, "user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// selfOrAdmin parses {id} and checks the caller owns it or is an admin.
func (h *UserHandler) selfOrAdmin(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return 0, false
	}
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.Unauthorized(w, r, "not authenticated")
		return 0, false
	}
	if caller.ID != id && !caller.IsAdmin() {
		respondError(w, r, http.StatusForbidden, services.ErrForbidden.Error())
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("query parameter " + key + " must be a non-negative integer")
	}
	return v, nil
}
