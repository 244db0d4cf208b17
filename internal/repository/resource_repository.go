package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aeroclubhq/membership-backend/internal/models"
)

// ErrResourceNotFound возвращается, когда материал не найден.
var ErrResourceNotFound = errors.New("resource not found")

// ResourceRepository отвечает за каталог материалов клуба.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository создаёт экземпляр репозитория.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create сохраняет материал.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	query := `
		INSERT INTO resources (title, body, url, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		resource.Title,
		resource.Body,
		resource.URL,
		resource.CreatedBy,
	).Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt); err != nil {
		return fmt.Errorf("resource repository: create %w", err)
	}

	return nil
}

// GetByID возвращает материал по идентификатору.
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	var resource models.Resource
	query := `SELECT id, title, body, url, created_by, created_at, updated_at FROM resources WHERE id = $1`
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("resource repository: get by id %w", err)
	}

	return &resource, nil
}

// List возвращает материалы, новые первыми.
func (r *ResourceRepository) List(ctx context.Context, limit, offset int) ([]models.Resource, error) {
	var resources []models.Resource
	query := `
		SELECT id, title, body, url, created_by, created_at, updated_at
		FROM resources ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &resources, query, limit, offset); err != nil {
		return nil, fmt.Errorf("resource repository: list %w", err)
	}

	return resources, nil
}

// Search выполняет полнотекстовый поиск по заголовку и тексту материала.
func (r *ResourceRepository) Search(ctx context.Context, q string, limit, offset int) ([]models.Resource, error) {
	var resources []models.Resource
	query := `
		SELECT id, title, body, url, created_by, created_at, updated_at
		FROM resources
		WHERE search @@ websearch_to_tsquery('simple', $1)
		ORDER BY ts_rank(search, websearch_to_tsquery('simple', $1)) DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &resources, query, q, limit, offset); err != nil {
		return nil, fmt.Errorf("resource repository: search %w", err)
	}

	return resources, nil
}

// Update меняет материал.
func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resources SET title = $1, body = $2, url = $3, updated_at = NOW() WHERE id = $4`,
		resource.Title, resource.Body, resource.URL, resource.ID)
	if err != nil {
		return fmt.Errorf("resource repository: update %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resource repository: update rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrResourceNotFound
	}

	return nil
}

// Delete удаляет материал.
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("resource repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resource repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrResourceNotFound
	}

	return nil
}
