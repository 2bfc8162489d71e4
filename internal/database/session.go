package database

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/rs/zerolog/log"
)

// DBTX is the query surface shared by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type contextKey string

const sessionKey = contextKey("dbSession")

// WithSession returns a context carrying conn as the request's database session.
func WithSession(ctx context.Context, conn DBTX) context.Context {
	return context.WithValue(ctx, sessionKey, conn)
}

// Conn returns the session bound to ctx, or fallback when there is none.
func Conn(ctx context.Context, fallback DBTX) DBTX {
	if conn, ok := ctx.Value(sessionKey).(DBTX); ok && conn != nil {
		return conn
	}
	return fallback
}

// Session acquires one pooled connection per request and releases it when the
// handler returns, whatever the outcome.
func Session(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := db.Conn(r.Context())
			if err != nil {
				log.Error().Err(err).Msg("Failed to acquire database session")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"detail":"database unavailable"}`))
				return
			}
			defer func() {
				if err := conn.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to release database session")
				}
			}()

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), conn)))
		})
	}
}
