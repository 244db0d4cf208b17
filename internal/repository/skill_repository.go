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

// ErrSkillNotFound возвращается, когда навык не найден.
var ErrSkillNotFound = errors.New("skill not found")

// Уровень считается занятым теми, кто держит ровно этот уровень: продвижение
// держателя выше освобождает место.
const levelsWithHoldersQuery = `
	SELECT sl.skill_id, sl.level, sl.is_open, sl.capacity,
	       COALESCE(h.holders, 0) AS holders
	FROM skill_levels sl
	LEFT JOIN (
		SELECT skill_id, level, COUNT(*) AS holders
		FROM member_skills
		GROUP BY skill_id, level
	) h ON h.skill_id = sl.skill_id AND h.level = sl.level
	WHERE sl.skill_id = $1
	ORDER BY sl.level
`

// SkillRepository отвечает за каталог навыков и политику уровней.
type SkillRepository struct {
	db *sqlx.DB
}

// NewSkillRepository создаёт экземпляр репозитория.
func NewSkillRepository(db *sqlx.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// Create создаёт навык вместе с политикой его уровней.
func (r *SkillRepository) Create(ctx context.Context, skill *models.Skill, levels []models.SkillLevel) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("skill repository: begin tx %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO skills (slug, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	if err := tx.QueryRowxContext(
		ctx,
		query,
		skill.Slug,
		skill.Name,
		skill.Description,
		skill.IsActive,
	).Scan(&skill.ID, &skill.CreatedAt, &skill.UpdatedAt); err != nil {
		return fmt.Errorf("skill repository: create %w", err)
	}

	for i := range levels {
		levels[i].SkillID = skill.ID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skill_levels (skill_id, level, is_open, capacity) VALUES ($1, $2, $3, $4)`,
			skill.ID, levels[i].Level, levels[i].IsOpen, levels[i].Capacity,
		); err != nil {
			return fmt.Errorf("skill repository: create level %d %w", levels[i].Level, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("skill repository: commit %w", err)
	}

	return nil
}

// GetByID возвращает навык по идентификатору.
func (r *SkillRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	var skill models.Skill
	if err := r.db.GetContext(ctx, &skill, `SELECT * FROM skills WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("skill repository: get by id %w", err)
	}

	return &skill, nil
}

// GetBySlug возвращает навык по slug.
func (r *SkillRepository) GetBySlug(ctx context.Context, slug string) (*models.Skill, error) {
	var skill models.Skill
	if err := r.db.GetContext(ctx, &skill, `SELECT * FROM skills WHERE slug = $1`, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("skill repository: get by slug %w", err)
	}

	return &skill, nil
}

// List возвращает все активные навыки.
func (r *SkillRepository) List(ctx context.Context) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, `SELECT * FROM skills WHERE is_active = TRUE ORDER BY name`); err != nil {
		return nil, fmt.Errorf("skill repository: list %w", err)
	}

	return skills, nil
}

// Levels возвращает политику уровней навыка с актуальным числом держателей.
// Занятость считается на момент вызова: результат нельзя кешировать между
// подачей заявки и её рассмотрением.
func (r *SkillRepository) Levels(ctx context.Context, skillID uuid.UUID) ([]models.SkillLevel, error) {
	var levels []models.SkillLevel
	if err := r.db.SelectContext(ctx, &levels, levelsWithHoldersQuery, skillID); err != nil {
		return nil, fmt.Errorf("skill repository: levels %w", err)
	}

	return levels, nil
}

// UpdateLevel меняет политику одного уровня навыка.
func (r *SkillRepository) UpdateLevel(ctx context.Context, skillID uuid.UUID, level int, isOpen bool, capacity *int) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO skill_levels (skill_id, level, is_open, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (skill_id, level) DO UPDATE SET is_open = $3, capacity = $4
	`, skillID, level, isOpen, capacity)
	if err != nil {
		return fmt.Errorf("skill repository: update level %w", err)
	}

	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("skill repository: update level rows affected %w", err)
	}

	return nil
}
