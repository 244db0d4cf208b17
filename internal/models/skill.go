package models

import (
	"time"

	"github.com/google/uuid"
)

// Границы уровней навыка. Уровень 0 означает «не присвоен».
const (
	LevelNone = 0
	LevelMin  = 1
	LevelMax  = 3
)

// Skill описывает навык клуба с градацией уровней 1..3.
type Skill struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SkillLevel — политика доступности одного уровня навыка.
// Уровень открыт для предложений, если is_open и лимит держателей не исчерпан.
type SkillLevel struct {
	SkillID  uuid.UUID `db:"skill_id" json:"skill_id"`
	Level    int       `db:"level" json:"level"`
	IsOpen   bool      `db:"is_open" json:"is_open"`
	Capacity *int      `db:"capacity" json:"capacity,omitempty"`
	Holders  int       `db:"holders" json:"holders"`
}

// Available сообщает, открыт ли уровень для новых предложений и присвоений
// в данный момент. Доступность зависит от конфигурации и текущей занятости,
// поэтому её пересчитывают при каждом обращении.
func (sl *SkillLevel) Available() bool {
	if !sl.IsOpen {
		return false
	}
	if sl.Capacity != nil && sl.Holders >= *sl.Capacity {
		return false
	}
	return true
}

// MemberSkill — запись реестра: текущий уровень участника по навыку.
type MemberSkill struct {
	MemberID  uuid.UUID `db:"member_id" json:"member_id"`
	SkillID   uuid.UUID `db:"skill_id" json:"skill_id"`
	Level     int       `db:"level" json:"level"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SkillWithLevels — навык вместе с его политикой уровней, для каталога.
type SkillWithLevels struct {
	Skill
	Levels []SkillLevel `json:"levels"`
}
