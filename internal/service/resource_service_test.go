package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
	"github.com/aeroclubhq/membership-backend/internal/repository"
)

type mockResourceStore struct {
	mock.Mock
}

func (m *mockResourceStore) Create(ctx context.Context, resource *models.Resource) error {
	args := m.Called(ctx, resource)
	if args.Error(0) == nil {
		resource.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockResourceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Resource), args.Error(1)
}

func (m *mockResourceStore) List(ctx context.Context, limit, offset int) ([]models.Resource, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Resource), args.Error(1)
}

func (m *mockResourceStore) Search(ctx context.Context, q string, limit, offset int) ([]models.Resource, error) {
	args := m.Called(ctx, q, limit, offset)
	return args.Get(0).([]models.Resource), args.Error(1)
}

func (m *mockResourceStore) Update(ctx context.Context, resource *models.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *mockResourceStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestResourceService_CreateResource_Success(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	createdBy := uuid.New()
	store.On("Create", ctx, mock.AnythingOfType("*models.Resource")).Return(nil)

	resource, err := svc.CreateResource(ctx, createdBy, "Методика полётов по кругу", "Разбор схемы захода и типичных ошибок.", nil)

	assert.NoError(t, err)
	assert.NotNil(t, resource)
	assert.Equal(t, createdBy, resource.CreatedBy)
	assert.NotEqual(t, uuid.Nil, resource.ID)
}

func TestResourceService_CreateResource_EmptyTitle(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	_, err := svc.CreateResource(ctx, uuid.New(), "", "текст", nil)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
	store.AssertNotCalled(t, "Create")
}

func TestResourceService_ListResources_NoQuery(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	expected := []models.Resource{{ID: uuid.New()}, {ID: uuid.New()}}
	store.On("List", ctx, 20, 0).Return(expected, nil)

	resources, err := svc.ListResources(ctx, "   ", 20, 0)
	assert.NoError(t, err)
	assert.Len(t, resources, 2)
	store.AssertNotCalled(t, "Search")
}

func TestResourceService_ListResources_SearchQuery(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	expected := []models.Resource{{ID: uuid.New()}}
	store.On("Search", ctx, "штопор", 20, 0).Return(expected, nil)

	resources, err := svc.ListResources(ctx, "  штопор ", 20, 0)
	assert.NoError(t, err)
	assert.Len(t, resources, 1)
	store.AssertNotCalled(t, "List")
}

func TestResourceService_ListResources_LimitNormalized(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	store.On("List", ctx, 20, 0).Return([]models.Resource{}, nil)

	_, err := svc.ListResources(ctx, "", 500, -3)
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestResourceService_GetResource_NotFound(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	id := uuid.New()
	store.On("GetByID", ctx, id).Return(nil, repository.ErrResourceNotFound)

	_, err := svc.GetResource(ctx, id)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeNotFound, apperror.CodeOf(err))
}

func TestResourceService_UpdateResource_Success(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	id := uuid.New()
	existing := &models.Resource{ID: id, Title: "Старое название", Body: "старый текст"}
	store.On("GetByID", ctx, id).Return(existing, nil)
	store.On("Update", ctx, mock.AnythingOfType("*models.Resource")).Return(nil)

	updated, err := svc.UpdateResource(ctx, id, "Новое название", "новый текст", nil)
	assert.NoError(t, err)
	assert.Equal(t, "Новое название", updated.Title)
	assert.Equal(t, "новый текст", updated.Body)
}

func TestResourceService_DeleteResource_NotFound(t *testing.T) {
	store := new(mockResourceStore)
	svc := NewResourceService(store)
	ctx := context.Background()

	id := uuid.New()
	store.On("Delete", ctx, id).Return(repository.ErrResourceNotFound)

	err := svc.DeleteResource(ctx, id)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeNotFound, apperror.CodeOf(err))
}
