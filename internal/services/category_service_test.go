package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCategoryRepo)
	cache := new(mockCache)
	svc := NewCategoryService(repo, cache, nil)

	cats := []models.Category{{ID: 1, Nombre: "Libros"}}
	cache.On("GetCategories", ctx).Return(nil, false).Once()
	repo.On("List", ctx).Return(cats, nil).Once()
	cache.On("SetCategories", ctx, cats).Once()

	got, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, cats, got)

	cache.On("GetCategories", ctx).Return(cats, true).Once()
	got, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, cats, got)

	repo.AssertNumberOfCalls(t, "List", 1)
	cache.AssertExpectations(t)
}

func TestCategoryService_WithoutCache(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCategoryRepo)
	svc := NewCategoryService(repo, nil, nil)

	repo.On("List", ctx).Return([]models.Category{}, nil).Twice()
	_, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	_, err = svc.ListCategories(ctx)
	require.NoError(t, err)
	repo.AssertExpectations(t)

	failing := new(mockCategoryRepo)
	failing.On("List", ctx).Return([]models.Category(nil), errors.New("db down"))
	_, err = NewCategoryService(failing, nil, nil).ListCategories(ctx)
	assert.Error(t, err)
}

func TestCategoryService_Mutations(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCategoryRepo)
	cache := new(mockCache)
	pub := &recordingPublisher{}
	svc := NewCategoryService(repo, cache, pub)

	cache.On("InvalidateCategories", ctx)
	repo.On("Create", ctx, "Libros").Return(models.Category{ID: 1, Nombre: "Libros"}, nil).Once()
	repo.On("Update", ctx, int64(1), "Comics").Return(models.Category{ID: 1, Nombre: "Comics"}, nil).Once()
	repo.On("Delete", ctx, int64(1)).Return(true, nil).Once()

	c, err := svc.CreateCategory(ctx, CategoryInput{Nombre: "Libros"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	c, err = svc.UpdateCategory(ctx, 1, CategoryInput{Nombre: "Comics"})
	require.NoError(t, err)
	assert.Equal(t, "Comics", c.Nombre)

	require.NoError(t, svc.DeleteCategory(ctx, 1))

	assert.Equal(t, []string{ActionCategoryCreated, ActionCategoryUpdated, ActionCategoryDeleted}, pub.actions)
	cache.AssertNumberOfCalls(t, "InvalidateCategories", 3)
	repo.AssertExpectations(t)
}

func TestCategoryService_Errors(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCategoryRepo)
	pub := &recordingPublisher{}
	svc := NewCategoryService(repo, nil, pub)

	_, err := svc.CreateCategory(ctx, CategoryInput{})
	assert.ErrorIs(t, err, ErrValidation)

	repo.On("Get", ctx, int64(5)).Return(models.Category{}, fmt.Errorf("x: %w", store.ErrNotFound))
	_, err = svc.GetCategory(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	repo.On("Update", ctx, int64(5), "X").Return(models.Category{}, fmt.Errorf("x: %w", store.ErrNotFound))
	_, err = svc.UpdateCategory(ctx, 5, CategoryInput{Nombre: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	repo.On("Delete", ctx, int64(5)).Return(false, nil)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, 5), ErrNotFound)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, pub.actions)
}
