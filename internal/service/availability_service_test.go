package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/models"
)

func TestAvailableLevelsFiltersClosedAndExhausted(t *testing.T) {
	skills := newMockSkillCatalog()
	ledger := newMockLedger()
	oracle := NewAvailabilityService(skills, ledger)

	capacity := 2
	skillID := skills.addSkill("winch", []models.SkillLevel{
		{Level: 1, IsOpen: true},
		{Level: 2, IsOpen: false},
		{Level: 3, IsOpen: true, Capacity: &capacity, Holders: 2},
	})

	available, err := oracle.AvailableLevels(context.Background(), skillID)
	if err != nil {
		t.Fatalf("available levels вернул ошибку: %v", err)
	}

	if !reflect.DeepEqual(available, []int{1}) {
		t.Fatalf("ожидали [1], получили %v", available)
	}
}

func TestAvailableLevelsCapacityCountsExactHolders(t *testing.T) {
	skills := newMockSkillCatalog()
	ledger := newMockLedger()
	oracle := NewAvailabilityService(skills, ledger)

	capacity := 2
	skillID := skills.addSkill("winch", []models.SkillLevel{
		{Level: 1, IsOpen: true, Capacity: &capacity, Holders: 1},
		{Level: 2, IsOpen: true},
		{Level: 3, IsOpen: true},
	})

	available, err := oracle.AvailableLevels(context.Background(), skillID)
	if err != nil {
		t.Fatalf("available levels вернул ошибку: %v", err)
	}

	// Лимит не исчерпан: один держатель из двух.
	if !reflect.DeepEqual(available, []int{1, 2, 3}) {
		t.Fatalf("ожидали [1 2 3], получили %v", available)
	}
}

func TestSelectableLevelsExcludesHeldAndBelow(t *testing.T) {
	skills := newMockSkillCatalog()
	ledger := newMockLedger()
	oracle := NewAvailabilityService(skills, ledger)

	memberID := uuid.New()
	skillID := skills.addSkill("paragliding", openLevels())
	ledger.raise(memberID, skillID, 2)

	selectable, err := oracle.SelectableLevels(context.Background(), skillID, memberID)
	if err != nil {
		t.Fatalf("selectable levels вернул ошибку: %v", err)
	}

	if !reflect.DeepEqual(selectable, []int{3}) {
		t.Fatalf("ожидали [3], получили %v", selectable)
	}
}

func TestSelectableLevelsSkipsClosedIntermediate(t *testing.T) {
	skills := newMockSkillCatalog()
	ledger := newMockLedger()
	oracle := NewAvailabilityService(skills, ledger)

	memberID := uuid.New()
	// Уровень 2 закрыт: уровни независимы, участник без уровня может
	// заявить сразу 3.
	skillID := skills.addSkill("winch", []models.SkillLevel{
		{Level: 1, IsOpen: true},
		{Level: 2, IsOpen: false},
		{Level: 3, IsOpen: true},
	})

	selectable, err := oracle.SelectableLevels(context.Background(), skillID, memberID)
	if err != nil {
		t.Fatalf("selectable levels вернул ошибку: %v", err)
	}

	if !reflect.DeepEqual(selectable, []int{1, 3}) {
		t.Fatalf("ожидали [1 3], получили %v", selectable)
	}
}

func TestSkillsWithSelectableReturnsHeldLevel(t *testing.T) {
	skills := newMockSkillCatalog()
	ledger := newMockLedger()
	oracle := NewAvailabilityService(skills, ledger)

	memberID := uuid.New()
	skillID := skills.addSkill("paragliding", openLevels())
	ledger.raise(memberID, skillID, 1)

	result, err := oracle.SkillsWithSelectable(context.Background(), memberID)
	if err != nil {
		t.Fatalf("skills with selectable вернул ошибку: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("ожидали один навык, получили %d", len(result))
	}
	if result[0].Skill.ID != skillID {
		t.Fatalf("навык в ответе не совпадает")
	}
	if result[0].HeldLevel != 1 {
		t.Fatalf("текущий уровень должен быть 1, получили %d", result[0].HeldLevel)
	}
	if !reflect.DeepEqual(result[0].SelectableLevels, []int{2, 3}) {
		t.Fatalf("ожидали [2 3], получили %v", result[0].SelectableLevels)
	}
}
