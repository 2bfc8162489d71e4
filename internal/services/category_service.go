package services

import (
	"context"
	"fmt"

	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Catalog feed actions.
const (
	ActionCategoryCreated = "category.created"
	ActionCategoryUpdated = "category.updated"
	ActionCategoryDeleted = "category.deleted"
)

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error)
	UpdateCategory(ctx context.Context, id int64, in CategoryInput) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id int64) (models.Category, error)
	Create(ctx context.Context, nombre string) (models.Category, error)
	Update(ctx context.Context, id int64, nombre string) (models.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// CategoryCache holds the full category list between mutations.
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]models.Category, bool)
	SetCategories(ctx context.Context, categories []models.Category)
	InvalidateCategories(ctx context.Context)
}

// Publisher broadcasts catalog changes to live subscribers.
type Publisher interface {
	Publish(action string, payload any)
}

// CategoryInput is the create/update payload.
type CategoryInput struct {
	Nombre string `json:"nombre" validate:"required,max=100"`
}

// CategoryService provides business logic for the category catalog.
type CategoryService struct {
	repo      CategoryRepository
	cache     CategoryCache
	publisher Publisher
}

// NewCategoryService creates a new CategoryService. cache and publisher may be nil.
func NewCategoryService(repo CategoryRepository, cache CategoryCache, publisher Publisher) *CategoryService {
	return &CategoryService{repo: repo, cache: cache, publisher: publisher}
}

// ListCategories returns all categories, from the cache when possible.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetCategories(ctx); ok {
			return cached, nil
		}
	}
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("services.ListCategories: %w", err)
	}
	if s.cache != nil {
		s.cache.SetCategories(ctx, categories)
	}
	return categories, nil
}

// GetCategory retrieves a single category by id.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Category{}, mapStoreErr("services.GetCategory", err)
	}
	return c, nil
}

// CreateCategory adds a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	if err := validateStruct(in); err != nil {
		return models.Category{}, err
	}
	c, err := s.repo.Create(ctx, in.Nombre)
	if err != nil {
		return models.Category{}, fmt.Errorf("services.CreateCategory: %w", err)
	}
	s.changed(ctx, ActionCategoryCreated, c)
	return c, nil
}

// UpdateCategory renames an existing category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (models.Category, error) {
	if err := validateStruct(in); err != nil {
		return models.Category{}, err
	}
	c, err := s.repo.Update(ctx, id, in.Nombre)
	if err != nil {
		return models.Category{}, mapStoreErr("services.UpdateCategory", err)
	}
	s.changed(ctx, ActionCategoryUpdated, c)
	return c, nil
}

// DeleteCategory removes a category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("services.DeleteCategory: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.changed(ctx, ActionCategoryDeleted, map[string]int64{"id_categoria": id})
	return nil
}

func (s *CategoryService) changed(ctx context.Context, action string, payload any) {
	if s.cache != nil {
		s.cache.InvalidateCategories(ctx)
	}
	if s.publisher != nil {
		s.publisher.Publish(action, payload)
	}
	log.Debug().Str("action", action).Msg("Category catalog changed")
}
