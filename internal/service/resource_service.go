package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
	"github.com/aeroclubhq/membership-backend/internal/repository"
	"github.com/aeroclubhq/membership-backend/internal/validation"
)

// ResourceStore описывает зависимости сервиса материалов от хранилища.
type ResourceStore interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	List(ctx context.Context, limit, offset int) ([]models.Resource, error)
	Search(ctx context.Context, q string, limit, offset int) ([]models.Resource, error)
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResourceService — каталог материалов клуба.
type ResourceService struct {
	store ResourceStore
}

// NewResourceService создаёт сервис материалов.
func NewResourceService(store ResourceStore) *ResourceService {
	return &ResourceService{store: store}
}

// CreateResource сохраняет материал.
func (s *ResourceService) CreateResource(ctx context.Context, createdBy uuid.UUID, title, body string, url *string) (*models.Resource, error) {
	if err := validation.ValidateLength("название", title, validation.MinResourceTitleLength, validation.MaxResourceTitleLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	resource := &models.Resource{
		Title:     title,
		Body:      body,
		URL:       url,
		CreatedBy: createdBy,
	}

	if err := s.store.Create(ctx, resource); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить материал")
	}

	return resource, nil
}

// GetResource возвращает материал по идентификатору.
func (s *ResourceService) GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	resource, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrResourceNotFound) {
			return nil, apperror.ErrResourceNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить материал")
	}

	return resource, nil
}

// ListResources возвращает материалы; при непустом q — результаты
// полнотекстового поиска по убыванию релевантности.
func (s *ResourceService) ListResources(ctx context.Context, q string, limit, offset int) ([]models.Resource, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var (
		resources []models.Resource
		err       error
	)
	if strings.TrimSpace(q) == "" {
		resources, err = s.store.List(ctx, limit, offset)
	} else {
		resources, err = s.store.Search(ctx, strings.TrimSpace(q), limit, offset)
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить материалы")
	}

	return resources, nil
}

// UpdateResource меняет материал.
func (s *ResourceService) UpdateResource(ctx context.Context, id uuid.UUID, title, body string, url *string) (*models.Resource, error) {
	if err := validation.ValidateLength("название", title, validation.MinResourceTitleLength, validation.MaxResourceTitleLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}

	resource.Title = title
	resource.Body = body
	resource.URL = url

	if err := s.store.Update(ctx, resource); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить материал")
	}

	return resource, nil
}

// DeleteResource удаляет материал.
func (s *ResourceService) DeleteResource(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrResourceNotFound) {
			return apperror.ErrResourceNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить материал")
	}

	return nil
}
