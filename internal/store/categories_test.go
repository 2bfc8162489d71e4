package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryStore_CRUD(t *testing.T) {
	s := NewCategoryStore(newTestDB(t))
	ctx := context.Background()

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	c, err := s.Create(ctx, "Libros")
	require.NoError(t, err)
	assert.Equal(t, "Libros", c.Nombre)

	_, err = s.Create(ctx, "Juegos")
	require.NoError(t, err)

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	renamed, err := s.Update(ctx, c.ID, "Comics")
	require.NoError(t, err)
	assert.Equal(t, "Comics", renamed.Nombre)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Comics", all[0].Nombre)

	ok, err := s.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(ctx, c.ID, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = s.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoryStore_MockErrors(t *testing.T) {
	db, mock := newMock(t)
	s := NewCategoryStore(db)

	mock.ExpectQuery(`SELECT id_categoria, nombre FROM categorias ORDER BY id_categoria`).
		WillReturnError(errors.New("db down"))
	_, err := s.List(context.Background())
	assert.ErrorContains(t, err, "db down")

	mock.ExpectExec(`INSERT INTO categorias`).
		WithArgs("Libros").
		WillReturnResult(sqlmock.NewResult(3, 1))
	c, err := s.Create(context.Background(), "Libros")
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
