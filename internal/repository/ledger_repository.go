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

// LedgerRepository — реестр текущих уровней участников по навыкам.
// Запись создаётся неявно (уровень 0) и только повышается.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository создаёт экземпляр репозитория.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LevelOf возвращает текущий уровень участника по навыку (0, если записи нет).
func (r *LedgerRepository) LevelOf(ctx context.Context, memberID, skillID uuid.UUID) (int, error) {
	var level int
	query := `SELECT level FROM member_skills WHERE member_id = $1 AND skill_id = $2`
	if err := r.db.GetContext(ctx, &level, query, memberID, skillID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LevelNone, nil
		}
		return 0, fmt.Errorf("ledger repository: level of %w", err)
	}

	return level, nil
}

// LevelsFor возвращает все записи реестра участника.
func (r *LedgerRepository) LevelsFor(ctx context.Context, memberID uuid.UUID) ([]models.MemberSkill, error) {
	var entries []models.MemberSkill
	query := `SELECT * FROM member_skills WHERE member_id = $1 ORDER BY skill_id`
	if err := r.db.SelectContext(ctx, &entries, query, memberID); err != nil {
		return nil, fmt.Errorf("ledger repository: levels for %w", err)
	}

	return entries, nil
}

// RaiseLevel повышает уровень участника по навыку. Монотонная запись:
// если newLevel не больше текущего, уровень остаётся прежним.
func (r *LedgerRepository) RaiseLevel(ctx context.Context, memberID, skillID uuid.UUID, newLevel int) error {
	if newLevel < models.LevelMin || newLevel > models.LevelMax {
		return fmt.Errorf("ledger repository: недопустимый уровень %d", newLevel)
	}

	_, err := r.db.ExecContext(ctx, raiseLevelQuery, memberID, skillID, newLevel)
	if err != nil {
		return fmt.Errorf("ledger repository: raise level %w", err)
	}

	return nil
}

// raiseLevelQuery используется и при присвоении в транзакции рассмотрения
// заявки: GREATEST гарантирует, что уровень никогда не понижается.
const raiseLevelQuery = `
	INSERT INTO member_skills (member_id, skill_id, level, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (member_id, skill_id)
	DO UPDATE SET level = GREATEST(member_skills.level, EXCLUDED.level), updated_at = NOW()
	WHERE member_skills.level < EXCLUDED.level
`
