package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/focoshop/focoshop-be/internal/database"
	"github.com/focoshop/focoshop-be/internal/models"
)

const userColumns = "id_usuario, nombre, apellido, email, contrasena, telefono, imagen, rol, fecha_registro"

// UserStore is the credential store: user records keyed by id and email.
type UserStore struct {
	base
}

// NewUserStore creates a new UserStore.
func NewUserStore(db database.DBTX) *UserStore {
	return &UserStore{base{db: db}}
}

func scanUser(scanner rowScanner) (models.User, error) {
	var u models.User
	var apellido, telefono, imagen sql.NullString
	err := scanner.Scan(&u.ID, &u.Nombre, &apellido, &u.Email, &u.PasswordHash,
		&telefono, &imagen, &u.Rol, &u.FechaRegistro)
	if err != nil {
		return models.User{}, err
	}
	u.Apellido = nullString(apellido)
	u.Telefono = nullString(telefono)
	u.Imagen = nullString(imagen)
	return u, nil
}

func (s *UserStore) getOne(ctx context.Context, op, where string, arg any) (models.User, error) {
	row := s.q(ctx).QueryRowContext(ctx, "SELECT "+userColumns+" FROM usuarios WHERE "+where, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email, including the password hash.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getOne(ctx, "store.GetByEmail", "email = ?", email)
}

// GetByID retrieves a user by id, including the password hash.
func (s *UserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	return s.getOne(ctx, "store.GetByID", "id_usuario = ?", id)
}

// Create inserts a user. The password hash must already be computed.
func (s *UserStore) Create(ctx context.Context, nu models.NewUser) (models.User, error) {
	const op = "store.Create"

	if nu.Rol == "" {
		nu.Rol = models.RoleUser
	}
	now := time.Now().UTC().Truncate(time.Second)

	res, err := s.q(ctx).ExecContext(ctx,
		"INSERT INTO usuarios (nombre, apellido, email, contrasena, rol, fecha_registro) VALUES (?, ?, ?, ?, ?, ?)",
		nu.Nombre, toNull(nu.Apellido), nu.Email, nu.PasswordHash, nu.Rol, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.User{
		ID:            id,
		Nombre:        nu.Nombre,
		Apellido:      nu.Apellido,
		Email:         nu.Email,
		PasswordHash:  nu.PasswordHash,
		Rol:           nu.Rol,
		FechaRegistro: now,
	}, nil
}

// UpdateFields writes the non-nil fields and returns the updated record.
func (s *UserStore) UpdateFields(ctx context.Context, id int64, f models.UserFields) (models.User, error) {
	const op = "store.UpdateFields"

	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("nombre", f.Nombre)
	add("apellido", f.Apellido)
	add("email", f.Email)
	add("telefono", f.Telefono)
	add("contrasena", f.PasswordHash)
	add("rol", f.Rol)
	add("imagen", f.Imagen)

	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE usuarios SET " + strings.Join(sets, ", ") + " WHERE id_usuario = ?"
		if _, err := s.q(ctx).ExecContext(ctx, query, args...); err != nil {
			if database.IsUniqueViolation(err) {
				return models.User{}, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
			}
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	// MySQL reports zero affected rows for no-op updates, so existence is
	// decided by reading the row back.
	return s.GetByID(ctx, id)
}

// Delete removes a user. It reports false when no such user existed.
func (s *UserStore) Delete(ctx context.Context, id int64) (bool, error) {
	const op = "store.Delete"
	res, err := s.q(ctx).ExecContext(ctx, "DELETE FROM usuarios WHERE id_usuario = ?", id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// List returns users ordered by id.
func (s *UserStore) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	const op = "store.List"
	rows, err := s.q(ctx).QueryContext(ctx,
		"SELECT "+userColumns+" FROM usuarios ORDER BY id_usuario LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// ListImages returns every profile image reference currently in use.
func (s *UserStore) ListImages(ctx context.Context) ([]string, error) {
	const op = "store.ListImages"
	rows, err := s.q(ctx).QueryContext(ctx, "SELECT imagen FROM usuarios WHERE imagen IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return refs, nil
}

// ListCredentials returns id, email and stored hash for every account.
func (s *UserStore) ListCredentials(ctx context.Context) ([]models.Credential, error) {
	const op = "store.ListCredentials"
	rows, err := s.q(ctx).QueryContext(ctx, "SELECT id_usuario, email, contrasena FROM usuarios ORDER BY id_usuario")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var creds []models.Credential
	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(&c.ID, &c.Email, &c.PasswordHash); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return creds, nil
}
