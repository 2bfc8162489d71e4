package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/store"
)

// ErrInvalidCredentials covers both an unknown account and a wrong password.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// UserLookup resolves an email to a stored user.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// Authenticator validates login attempts against the credential store.
type Authenticator struct {
	users     UserLookup
	hasher    *Hasher
	dummyHash string
}

// NewAuthenticator creates an Authenticator. It hashes a throwaway password
// once so lookups of unknown accounts pay the same bcrypt cost.
func NewAuthenticator(users UserLookup, hasher *Hasher) (*Authenticator, error) {
	dummy, err := hasher.Hash("focoshop-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("auth.NewAuthenticator: %w", err)
	}
	return &Authenticator{users: users, hasher: hasher, dummyHash: dummy}, nil
}

// Authenticate returns the user matching email and password, or
// ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	const op = "auth.Authenticate"

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.hasher.Verify(password, a.dummyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
