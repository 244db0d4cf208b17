package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/models"
)

// SkillCatalog описывает зависимости оракула доступности от каталога навыков.
type SkillCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	List(ctx context.Context) ([]models.Skill, error)
	Levels(ctx context.Context, skillID uuid.UUID) ([]models.SkillLevel, error)
}

// LedgerView — читающая часть реестра, нужная оракулу.
type LedgerView interface {
	LevelOf(ctx context.Context, memberID, skillID uuid.UUID) (int, error)
}

// SelectableSkill — навык с уровнями, которые участник может заявить сейчас.
type SelectableSkill struct {
	Skill            models.Skill `json:"skill"`
	HeldLevel        int          `json:"held_level"`
	SelectableLevels []int        `json:"selectable_levels"`
}

// AvailabilityService — оракул доступности уровней. Доступность зависит от
// конфигурации и занятости уровней и может измениться между подачей заявки и
// её рассмотрением, поэтому каждый вызов пересчитывает её заново.
type AvailabilityService struct {
	skills SkillCatalog
	ledger LedgerView
}

// NewAvailabilityService создаёт оракул доступности.
func NewAvailabilityService(skills SkillCatalog, ledger LedgerView) *AvailabilityService {
	return &AvailabilityService{skills: skills, ledger: ledger}
}

// AvailableLevels возвращает уровни навыка, открытые для заявок и присвоений
// в данный момент.
func (s *AvailabilityService) AvailableLevels(ctx context.Context, skillID uuid.UUID) ([]int, error) {
	levels, err := s.skills.Levels(ctx, skillID)
	if err != nil {
		return nil, fmt.Errorf("availability service: %w", err)
	}

	return FilterAvailable(levels), nil
}

// SelectableLevels возвращает уровни, которые участник может заявить:
// доступные уровни навыка без уровней не выше уже присвоенного.
// Каждый уровень проверяется независимо, порядок прохождения не подразумевается.
func (s *AvailabilityService) SelectableLevels(ctx context.Context, skillID, memberID uuid.UUID) ([]int, error) {
	available, err := s.AvailableLevels(ctx, skillID)
	if err != nil {
		return nil, err
	}

	held, err := s.ledger.LevelOf(ctx, memberID, skillID)
	if err != nil {
		return nil, fmt.Errorf("availability service: %w", err)
	}

	return filterAboveHeld(available, held), nil
}

// SkillsWithSelectable возвращает для участника все активные навыки вместе с
// уровнями, которые он может заявить — для экрана выбора навыка.
func (s *AvailabilityService) SkillsWithSelectable(ctx context.Context, memberID uuid.UUID) ([]SelectableSkill, error) {
	skills, err := s.skills.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("availability service: %w", err)
	}

	result := make([]SelectableSkill, 0, len(skills))
	for _, skill := range skills {
		selectable, err := s.SelectableLevels(ctx, skill.ID, memberID)
		if err != nil {
			return nil, err
		}

		held, err := s.ledger.LevelOf(ctx, memberID, skill.ID)
		if err != nil {
			return nil, fmt.Errorf("availability service: %w", err)
		}

		result = append(result, SelectableSkill{
			Skill:            skill,
			HeldLevel:        held,
			SelectableLevels: selectable,
		})
	}

	return result, nil
}

// FilterAvailable выбирает из политики уровней открытые в данный момент.
func FilterAvailable(levels []models.SkillLevel) []int {
	available := make([]int, 0, len(levels))
	for _, lvl := range levels {
		if lvl.Available() {
			available = append(available, lvl.Level)
		}
	}
	return available
}

// filterAboveHeld отбрасывает уровни не выше уже присвоенного.
func filterAboveHeld(levels []int, held int) []int {
	selectable := make([]int, 0, len(levels))
	for _, lvl := range levels {
		if lvl > held {
			selectable = append(selectable, lvl)
		}
	}
	return selectable
}

// levelAvailable сообщает, есть ли уровень среди доступных.
func levelAvailable(levels []models.SkillLevel, level int) bool {
	for _, lvl := range levels {
		if lvl.Level == level {
			return lvl.Available()
		}
	}
	return false
}
