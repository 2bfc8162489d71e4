package services

import (
	"context"
	"io"

	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, nu models.NewUser) (models.User, error) {
	args := m.Called(ctx, nu)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserRepo) UpdateFields(ctx context.Context, id int64, f models.UserFields) (models.User, error) {
	args := m.Called(ctx, id, f)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

type mockImageStore struct {
	mock.Mock
	saved []byte
}

func (m *mockImageStore) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved = data
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *mockCategoryRepo) Get(ctx context.Context, id int64) (models.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *mockCategoryRepo) Create(ctx context.Context, nombre string) (models.Category, error) {
	args := m.Called(ctx, nombre)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *mockCategoryRepo) Update(ctx context.Context, id int64, nombre string) (models.Category, error) {
	args := m.Called(ctx, id, nombre)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetCategories(ctx context.Context) ([]models.Category, bool) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]models.Category)
	return cats, args.Bool(1)
}

func (m *mockCache) SetCategories(ctx context.Context, categories []models.Category) {
	m.Called(ctx, categories)
}

func (m *mockCache) InvalidateCategories(ctx context.Context) {
	m.Called(ctx)
}

type recordingPublisher struct {
	actions []string
}

func (p *recordingPublisher) Publish(action string, _ any) {
	p.actions = append(p.actions, action)
}
