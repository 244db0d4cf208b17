package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/repository/common"
)

// ErrMediaNotFound возвращается, когда файл не найден.
var ErrMediaNotFound = errors.New("media not found")

// MediaRepository отвечает за метаданные загруженных файлов.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository создаёт экземпляр репозитория.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create сохраняет метаданные файла.
func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	query := `
		INSERT INTO media (owner_id, filename, content_type, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		media.OwnerID,
		media.Filename,
		media.ContentType,
		media.SizeBytes,
	).Scan(&media.ID, &media.CreatedAt); err != nil {
		return fmt.Errorf("media repository: create %w", err)
	}

	return nil
}

// GetByID возвращает метаданные файла.
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	return common.GetByID[models.Media](ctx, r.db, "media", id, ErrMediaNotFound)
}

// Delete удаляет метаданные файла.
func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("media repository: delete %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("media repository: delete rows affected %w", err)
	}
	if rows == 0 {
		return ErrMediaNotFound
	}

	return nil
}

// ListForOwner возвращает файлы участника.
func (r *MediaRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Media, error) {
	files := make([]models.Media, 0)
	query := `SELECT * FROM media WHERE owner_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &files, query, ownerID); err != nil {
		return nil, fmt.Errorf("media repository: list for owner %w", err)
	}

	return files, nil
}
