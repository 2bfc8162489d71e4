// Package store persists users and categories through database/sql. Queries
// use `?` placeholders, which both SQLite and MySQL accept.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/focoshop/focoshop-be/internal/database"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type base struct {
	db database.DBTX
}

// q picks the request-scoped session when one is bound to ctx.
func (b base) q(ctx context.Context) database.DBTX {
	return database.Conn(ctx, b.db)
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
