package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/store"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
)

type contextKey string

// UserContextKey is the context key for the authenticated user.
const UserContextKey = contextKey("authUser")

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the user stored by the Guard.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(models.User)
	return user, ok
}

// Guard protects routes with a bearer token and resolves it to a live user.
type Guard struct {
	tokens *TokenIssuer
	users  UserLookup
}

// NewGuard creates a new Guard.
func NewGuard(tokens *TokenIssuer, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Unauthorized writes the 401 answer shared by login and protected routes.
func Unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"detail": detail})
}

const credentialsDetail = "could not validate credentials"

// Handler is the middleware form of the Guard.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r)
		if !ok {
			Unauthorized(w, r, "not authenticated")
			return
		}

		email, err := g.tokens.Verify(tokenStr)
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected access token")
			Unauthorized(w, r, credentialsDetail)
			return
		}

		user, err := g.users.GetByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Debug().Str("email", email).Msg("Token subject no longer exists")
				Unauthorized(w, r, credentialsDetail)
				return
			}
			log.Error().Err(err).Msg("Failed to resolve token subject")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"detail": "internal server error"})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireRole rejects authenticated callers whose role differs from role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				Unauthorized(w, r, "not authenticated")
				return
			}
			if user.Rol != role {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, map[string]string{"detail": "not enough permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
