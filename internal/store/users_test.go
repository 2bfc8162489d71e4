package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/focoshop/focoshop-be/internal/database"
	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	s := NewUserStore(newTestDB(t))
	ctx := context.Background()

	created, err := s.Create(ctx, models.NewUser{
		Nombre:       "Ana",
		Apellido:     ptr("Diaz"),
		Email:        "ana@example.com",
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.RoleUser, created.Rol)
	assert.False(t, created.FechaRegistro.IsZero())

	byEmail, err := s.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "$2a$10$hash", byEmail.PasswordHash)
	require.NotNil(t, byEmail.Apellido)
	assert.Equal(t, "Diaz", *byEmail.Apellido)
	assert.Nil(t, byEmail.Telefono)
	assert.Nil(t, byEmail.Imagen)
	assert.WithinDuration(t, created.FechaRegistro, byEmail.FechaRegistro, time.Second)

	byID, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", byID.Email)
}

func TestUserStore_GetMissing(t *testing.T) {
	s := NewUserStore(newTestDB(t))

	_, err := s.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	s := NewUserStore(newTestDB(t))
	ctx := context.Background()

	nu := models.NewUser{Nombre: "Ana", Email: "ana@example.com", PasswordHash: "h"}
	_, err := s.Create(ctx, nu)
	require.NoError(t, err)

	_, err = s.Create(ctx, nu)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// a differently-cased address is a distinct account
	nu.Email = "ANA@example.com"
	_, err = s.Create(ctx, nu)
	assert.NoError(t, err)
}

func TestUserStore_UpdateFields(t *testing.T) {
	s := NewUserStore(newTestDB(t))
	ctx := context.Background()

	ana, err := s.Create(ctx, models.NewUser{Nombre: "Ana", Email: "ana@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	bob, err := s.Create(ctx, models.NewUser{Nombre: "Bob", Email: "bob@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	updated, err := s.UpdateFields(ctx, ana.ID, models.UserFields{
		UserPatch: models.UserPatch{Telefono: ptr("555-1234")},
		Rol:       ptr(models.RoleAdmin),
		Imagen:    ptr("perfiles/user_1.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Nombre)
	assert.Equal(t, models.RoleAdmin, updated.Rol)
	require.NotNil(t, updated.Telefono)
	assert.Equal(t, "555-1234", *updated.Telefono)
	require.NotNil(t, updated.Imagen)
	assert.Equal(t, "perfiles/user_1.png", *updated.Imagen)

	// empty update just reads back
	same, err := s.UpdateFields(ctx, ana.ID, models.UserFields{})
	require.NoError(t, err)
	assert.Equal(t, updated, same)

	_, err = s.UpdateFields(ctx, bob.ID, models.UserFields{UserPatch: models.UserPatch{Email: ptr("ana@example.com")}})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = s.UpdateFields(ctx, 999, models.UserFields{UserPatch: models.UserPatch{Nombre: ptr("x")}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_DeleteAndList(t *testing.T) {
	s := NewUserStore(newTestDB(t))
	ctx := context.Background()

	var ids []int64
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u, err := s.Create(ctx, models.NewUser{Nombre: "U", Email: email, PasswordHash: "h"})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	_, err := s.UpdateFields(ctx, ids[1], models.UserFields{Imagen: ptr("perfiles/b.png")})
	require.NoError(t, err)

	page, err := s.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b@example.com", page[0].Email)

	images, err := s.ListImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"perfiles/b.png"}, images)

	creds, err := s.ListCredentials(ctx)
	require.NoError(t, err)
	assert.Len(t, creds, 3)

	ok, err := s.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserStore_UsesRequestSession(t *testing.T) {
	db := newTestDB(t)
	s := NewUserStore(db)

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	ctx := database.WithSession(context.Background(), conn)
	u, err := s.Create(ctx, models.NewUser{Nombre: "Ana", Email: "ana@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}

func TestUserStore_MockErrors(t *testing.T) {
	db, mock := newMock(t)
	s := NewUserStore(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO usuarios`).
		WithArgs("Ana", nil, "ana@example.com", "h", models.RoleUser, sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))
	_, err := s.Create(ctx, models.NewUser{Nombre: "Ana", Email: "ana@example.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.Create: db down")

	mock.ExpectQuery(`SELECT .+ FROM usuarios WHERE email = \?`).
		WithArgs("ana@example.com").
		WillReturnError(errors.New("timeout"))
	_, err = s.GetByEmail(ctx, "ana@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(`DELETE FROM usuarios WHERE id_usuario = \?`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := s.Delete(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT .+ FROM usuarios ORDER BY id_usuario LIMIT \? OFFSET \?`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario", "nombre", "apellido", "email", "contrasena", "telefono", "imagen", "rol", "fecha_registro"}).
			AddRow(int64(1), "Ana", nil, "ana@example.com", "h", "555", nil, "user", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	users, err := s.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Nil(t, users[0].Apellido)
	require.NotNil(t, users[0].Telefono)
	assert.Equal(t, "555", *users[0].Telefono)

	assert.NoError(t, mock.ExpectationsWereMet())
}
