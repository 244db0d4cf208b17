package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/repository/common"
)

var (
	// ErrProposalNotFound возвращается, когда заявка не найдена.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrDuplicatePending возвращается, когда у пары (участник, навык)
	// уже есть нерассмотренная заявка.
	ErrDuplicatePending = errors.New("pending proposal already exists")
)

// Award — решение рецензента, применяемое к заявке.
// Level 0 означает отказ, 1..3 — присвоение уровня.
type Award struct {
	Level      int
	ReviewerID uuid.UUID
	Comment    *string
}

// ProposalRepository отвечает за хранение заявок на уровни навыков.
// Рассмотренные заявки неизменяемы: операций редактирования и удаления нет.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository создаёт экземпляр репозитория.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create сохраняет новую заявку. Частичный уникальный индекс по
// (member_id, skill_id) для нерассмотренных строк делает проверку дубликата
// атомарной со вставкой: проигравший гонку получает ErrDuplicatePending.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.Proposal) error {
	query := `
		INSERT INTO proposals (skill_id, member_id, proposed_level, reasoning)
		VALUES ($1, $2, $3, $4)
		RETURNING id, submitted_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		proposal.SkillID,
		proposal.MemberID,
		proposal.ProposedLevel,
		proposal.Reasoning,
	).Scan(&proposal.ID, &proposal.SubmittedAt); err != nil {
		if common.IsUniqueViolation(err, "uq_proposals_pending") {
			return ErrDuplicatePending
		}
		return fmt.Errorf("proposal repository: create %w", err)
	}

	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.GetContext(ctx, &proposal, `SELECT * FROM proposals WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("proposal repository: get by id %w", err)
	}

	return &proposal, nil
}

// PendingFor возвращает нерассмотренную заявку пары (участник, навык)
// или nil, если её нет.
func (r *ProposalRepository) PendingFor(ctx context.Context, memberID, skillID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	query := `
		SELECT * FROM proposals
		WHERE member_id = $1 AND skill_id = $2 AND awarded_level IS NULL
	`
	if err := r.db.GetContext(ctx, &proposal, query, memberID, skillID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("proposal repository: pending for %w", err)
	}

	return &proposal, nil
}

// ListPending возвращает очередь нерассмотренных заявок, старые первыми.
func (r *ProposalRepository) ListPending(ctx context.Context) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `SELECT * FROM proposals WHERE awarded_level IS NULL ORDER BY submitted_at ASC`
	if err := r.db.SelectContext(ctx, &proposals, query); err != nil {
		return nil, fmt.Errorf("proposal repository: list pending %w", err)
	}

	return proposals, nil
}

// ListResolved возвращает рассмотренные заявки, новые первыми, с пагинацией.
func (r *ProposalRepository) ListResolved(ctx context.Context, limit, offset int) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `
		SELECT * FROM proposals
		WHERE awarded_level IS NOT NULL
		ORDER BY awarded_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &proposals, query, limit, offset); err != nil {
		return nil, fmt.Errorf("proposal repository: list resolved %w", err)
	}

	return proposals, nil
}

// ListForMember возвращает все заявки участника, новые первыми.
func (r *ProposalRepository) ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	query := `SELECT * FROM proposals WHERE member_id = $1 ORDER BY submitted_at DESC`
	if err := r.db.SelectContext(ctx, &proposals, query, memberID); err != nil {
		return nil, fmt.Errorf("proposal repository: list for member %w", err)
	}

	return proposals, nil
}

// Resolve атомарно применяет решение по заявке. Заявка блокируется FOR UPDATE,
// затем блокируется строка навыка, и decide получает актуальное состояние
// заявки и актуальную политику уровней (занятость пересчитывается под
// блокировкой навыка, поэтому параллельные рассмотрения разных заявок по
// одному навыку выполняются по очереди). Ошибка decide
// откатывает транзакцию целиком. Положительное решение повышает уровень в
// реестре той же транзакцией: фиксация решения и повышение уровня неразделимы.
func (r *ProposalRepository) Resolve(
	ctx context.Context,
	proposalID uuid.UUID,
	decide func(proposal *models.Proposal, levels []models.SkillLevel) (*Award, error),
) (*models.Proposal, error) {
	var resolved *models.Proposal

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var proposal models.Proposal
		if err := tx.GetContext(ctx, &proposal, `SELECT * FROM proposals WHERE id = $1 FOR UPDATE`, proposalID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProposalNotFound
			}
			return fmt.Errorf("proposal repository: lock %w", err)
		}

		// Блокировка строки навыка сериализует рассмотрения по одному навыку:
		// без неё два рецензента, рассматривающие разные заявки на последний
		// слот уровня, оба увидели бы holders < capacity и оба присвоили бы
		// уровень. Под блокировкой второй пересчёт видит уже зафиксированное
		// повышение первого.
		if _, err := tx.ExecContext(ctx, `SELECT id FROM skills WHERE id = $1 FOR UPDATE`, proposal.SkillID); err != nil {
			return fmt.Errorf("proposal repository: lock skill %w", err)
		}

		var levels []models.SkillLevel
		if err := tx.SelectContext(ctx, &levels, levelsWithHoldersQuery, proposal.SkillID); err != nil {
			return fmt.Errorf("proposal repository: levels %w", err)
		}

		award, err := decide(&proposal, levels)
		if err != nil {
			return err
		}

		updateQuery := `
			UPDATE proposals
			SET awarded_level = $1, awarded_by = $2, awarded_comment = $3, awarded_at = NOW()
			WHERE id = $4
			RETURNING awarded_at
		`
		var awardedAt sql.NullTime
		if err := tx.QueryRowxContext(
			ctx,
			updateQuery,
			award.Level,
			award.ReviewerID,
			award.Comment,
			proposal.ID,
		).Scan(&awardedAt); err != nil {
			return fmt.Errorf("proposal repository: resolve update %w", err)
		}

		if award.Level > models.AwardDeclined {
			if _, err := tx.ExecContext(ctx, raiseLevelQuery, proposal.MemberID, proposal.SkillID, award.Level); err != nil {
				return fmt.Errorf("proposal repository: raise level %w", err)
			}
		}

		proposal.AwardedLevel = &award.Level
		proposal.AwardedBy = &award.ReviewerID
		proposal.AwardedComment = award.Comment
		if awardedAt.Valid {
			proposal.AwardedAt = &awardedAt.Time
		}
		resolved = &proposal

		return nil
	})
	if err != nil {
		return nil, err
	}

	return resolved, nil
}
