// Package admin holds maintenance tasks run from focoshopctl.
package admin

import (
	"context"
	"fmt"

	"github.com/focoshop/focoshop-be/internal/auth"
	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Accounts is the slice of the user service admin tasks drive.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (models.User, error)
	UpdateRole(ctx context.Context, id int64, rol string) (models.User, error)
}

// CredentialStore exposes stored password hashes for bulk maintenance.
type CredentialStore interface {
	ListCredentials(ctx context.Context) ([]models.Credential, error)
	UpdateFields(ctx context.Context, id int64, f models.UserFields) (models.User, error)
}

// Admin runs operator tasks against the user store.
type Admin struct {
	accounts    Accounts
	credentials CredentialStore
	hasher      *auth.Hasher
}

// New creates a new Admin.
func New(accounts Accounts, credentials CredentialStore, hasher *auth.Hasher) *Admin {
	return &Admin{accounts: accounts, credentials: credentials, hasher: hasher}
}

// CreateAdmin registers an account and promotes it to the admin role.
func (a *Admin) CreateAdmin(ctx context.Context, in services.RegisterInput) (models.User, error) {
	const op = "admin.CreateAdmin"

	u, err := a.accounts.Register(ctx, in)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	promoted, err := a.accounts.UpdateRole(ctx, u.ID, models.RoleAdmin)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: promote user %d: %w", op, u.ID, err)
	}
	log.Info().Int64("user_id", promoted.ID).Str("email", promoted.Email).Msg("Admin account created")
	return promoted, nil
}

// RehashPasswords replaces every stored password that is not a bcrypt hash
// with its bcrypt hash. Values bcrypt cannot hash, such as plaintext over 72
// bytes, are logged and skipped. It returns how many accounts were updated
// and how many were skipped.
func (a *Admin) RehashPasswords(ctx context.Context) (updated, skipped int, err error) {
	const op = "admin.RehashPasswords"

	creds, err := a.credentials.ListCredentials(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, c := range creds {
		if auth.IsHash(c.PasswordHash) {
			if a.hasher.NeedsRehash(c.PasswordHash) {
				log.Debug().Int64("user_id", c.ID).Msg("Password hash uses a different bcrypt cost, left unchanged")
			}
			continue
		}
		hashed, err := a.hasher.Hash(c.PasswordHash)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", c.ID).Str("email", c.Email).Msg("Legacy password cannot be hashed, skipped")
			skipped++
			continue
		}
		if _, err := a.credentials.UpdateFields(ctx, c.ID, models.UserFields{PasswordHash: &hashed}); err != nil {
			return updated, skipped, fmt.Errorf("%s: user %d: %w", op, c.ID, err)
		}
		log.Info().Int64("user_id", c.ID).Str("email", c.Email).Msg("Legacy password rehashed")
		updated++
	}
	return updated, skipped, nil
}
