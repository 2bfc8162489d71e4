package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/focoshop/focoshop-be/internal/auth"
	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Paging limits for ListUsers.
const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	UpdateRole(ctx context.Context, id int64, rol string) (models.User, error)
	UpdateImage(ctx context.Context, id int64, filename string, r io.Reader) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserRepository is the credential store as seen by the service.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	Create(ctx context.Context, nu models.NewUser) (models.User, error)
	UpdateFields(ctx context.Context, id int64, f models.UserFields) (models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// ImageStore keeps profile images.
type ImageStore interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Nombre   string  `json:"nombre" validate:"required,max=50"`
	Apellido *string `json:"apellido" validate:"omitempty,max=50"`
	Email    string  `json:"email" validate:"required,email,max=100"`
	Password string  `json:"password" validate:"required,maxbytes=72"`
}

type passwordInput struct {
	Password string `json:"new_password" validate:"required,maxbytes=72"`
}

type roleInput struct {
	Rol string `json:"rol" validate:"required,oneof=user admin"`
}

// UserService provides business logic for user management.
type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	images ImageStore
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users UserRepository, hasher PasswordHasher, images ImageStore) *UserService {
	return &UserService{users: users, hasher: hasher, images: images, now: time.Now}
}

// Register creates a "user" account with a freshly hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	const op = "services.Register"

	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return models.User{}, ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.Create(ctx, models.NewUser{
		Nombre:       in.Nombre,
		Apellido:     in.Apellido,
		Email:        in.Email,
		PasswordHash: hash,
		Rol:          models.RoleUser,
	})
	if err != nil {
		return models.User{}, mapStoreErr(op, err)
	}
	log.Info().Int64("user_id", user.ID).Msg("User registered")
	return user, nil
}

// GetUser retrieves a single user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, mapStoreErr("services.GetUser", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, mapStoreErr("services.GetUserByEmail", err)
	}
	return user, nil
}

// ListUsers returns a page of users. Out-of-range paging values are clamped.
func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	users, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("services.ListUsers: %w", err)
	}
	return users, nil
}

// UpdateUser applies a validated profile patch.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	const op = "services.UpdateUser"

	if err := validateStruct(patch); err != nil {
		return models.User{}, err
	}
	if patch.Nombre != nil && strings.TrimSpace(*patch.Nombre) == "" {
		return models.User{}, fmt.Errorf("%w: field nombre must not be blank", ErrValidation)
	}
	if patch.Empty() {
		return s.GetUser(ctx, id)
	}

	if patch.Email != nil {
		existing, err := s.users.GetByEmail(ctx, *patch.Email)
		switch {
		case err == nil && existing.ID != id:
			return models.User{}, ErrConflict
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	user, err := s.users.UpdateFields(ctx, id, models.UserFields{UserPatch: patch})
	if err != nil {
		return models.User{}, mapStoreErr(op, err)
	}
	return user, nil
}

// ChangePassword verifies the current password, then stores a hash of the new one.
func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	const op = "services.ChangePassword"

	if err := validateStruct(passwordInput{Password: next}); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapStoreErr(op, err)
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return auth.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.users.UpdateFields(ctx, id, models.UserFields{PasswordHash: &hash}); err != nil {
		return mapStoreErr(op, err)
	}
	log.Info().Int64("user_id", id).Msg("Password changed")
	return nil
}

// UpdateRole sets the account role to "user" or "admin".
func (s *UserService) UpdateRole(ctx context.Context, id int64, rol string) (models.User, error) {
	if err := validateStruct(roleInput{Rol: rol}); err != nil {
		return models.User{}, err
	}
	user, err := s.users.UpdateFields(ctx, id, models.UserFields{Rol: &rol})
	if err != nil {
		return models.User{}, mapStoreErr("services.UpdateRole", err)
	}
	log.Info().Int64("user_id", id).Str("rol", rol).Msg("Role updated")
	return user, nil
}

// UpdateImage stores a new profile image and replaces the previous one.
func (s *UserService) UpdateImage(ctx context.Context, id int64, filename string, r io.Reader) (models.User, error) {
	const op = "services.UpdateImage"

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, mapStoreErr(op, err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return models.User{}, fmt.Errorf("%w: unsupported image extension %q", ErrValidation, ext)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return models.User{}, fmt.Errorf("%w: file is not an image", ErrValidation)
	}

	key := fmt.Sprintf("perfiles/user_%d_%d_%s%s", id, s.now().Unix(), uuid.NewString()[:8], ext)
	ref, err := s.images.Save(ctx, key, io.MultiReader(bytes.NewReader(head), r), contentType)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.users.UpdateFields(ctx, id, models.UserFields{Imagen: &ref})
	if err != nil {
		s.removeImage(ctx, ref)
		return models.User{}, mapStoreErr(op, err)
	}

	if user.Imagen != nil && *user.Imagen != ref {
		s.removeImage(ctx, *user.Imagen)
	}
	return updated, nil
}

// DeleteUser removes the account and then its profile image.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	const op = "services.DeleteUser"

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapStoreErr(op, err)
	}
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !deleted {
		return ErrNotFound
	}
	if user.Imagen != nil {
		s.removeImage(ctx, *user.Imagen)
	}
	log.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}

// removeImage deletes an image best-effort; failures are only logged.
func (s *UserService) removeImage(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("Failed to delete profile image")
	}
}

func mapStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrDuplicateEmail):
		return ErrConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
