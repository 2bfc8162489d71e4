package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/focoshop/focoshop-be/internal/database"
	"github.com/focoshop/focoshop-be/internal/models"
)

// CategoryStore persists the product category catalog.
type CategoryStore struct {
	base
}

// NewCategoryStore creates a new CategoryStore.
func NewCategoryStore(db database.DBTX) *CategoryStore {
	return &CategoryStore{base{db: db}}
}

// List retrieves all categories ordered by id.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	const op = "store.ListCategories"
	rows, err := s.q(ctx).QueryContext(ctx, "SELECT id_categoria, nombre FROM categorias ORDER BY id_categoria")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Nombre); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

// Get retrieves a single category by id.
func (s *CategoryStore) Get(ctx context.Context, id int64) (models.Category, error) {
	const op = "store.GetCategory"
	var c models.Category
	err := s.q(ctx).QueryRowContext(ctx, "SELECT id_categoria, nombre FROM categorias WHERE id_categoria = ?", id).
		Scan(&c.ID, &c.Nombre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Create inserts a category.
func (s *CategoryStore) Create(ctx context.Context, nombre string) (models.Category, error) {
	const op = "store.CreateCategory"
	res, err := s.q(ctx).ExecContext(ctx, "INSERT INTO categorias (nombre) VALUES (?)", nombre)
	if err != nil {
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.Category{ID: id, Nombre: nombre}, nil
}

// Update renames a category.
func (s *CategoryStore) Update(ctx context.Context, id int64, nombre string) (models.Category, error) {
	const op = "store.UpdateCategory"
	if _, err := s.q(ctx).ExecContext(ctx, "UPDATE categorias SET nombre = ? WHERE id_categoria = ?", nombre, id); err != nil {
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx, id)
}

// Delete removes a category. It reports false when nothing was deleted.
func (s *CategoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	const op = "store.DeleteCategory"
	res, err := s.q(ctx).ExecContext(ctx, "DELETE FROM categorias WHERE id_categoria = ?", id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}
