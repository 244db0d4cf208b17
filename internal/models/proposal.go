package models

import (
	"time"

	"github.com/google/uuid"
)

// Уровень присвоения 0 означает явный отказ.
const AwardDeclined = 0

// Proposal — заявка участника на присвоение уровня навыка.
// Заявка ожидает рассмотрения, пока awarded_level IS NULL; после решения
// запись становится неизменяемой и служит журналом аудита.
type Proposal struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	SkillID        uuid.UUID  `db:"skill_id" json:"skill_id"`
	MemberID       uuid.UUID  `db:"member_id" json:"member_id"`
	ProposedLevel  int        `db:"proposed_level" json:"proposed_level"`
	Reasoning      string     `db:"reasoning" json:"reasoning"`
	SubmittedAt    time.Time  `db:"submitted_at" json:"submitted_at"`
	AwardedLevel   *int       `db:"awarded_level" json:"awarded_level,omitempty"`
	AwardedBy      *uuid.UUID `db:"awarded_by" json:"awarded_by,omitempty"`
	AwardedComment *string    `db:"awarded_comment" json:"awarded_comment,omitempty"`
	AwardedAt      *time.Time `db:"awarded_at" json:"awarded_at,omitempty"`
}

// Pending сообщает, ожидает ли заявка рассмотрения.
func (p *Proposal) Pending() bool {
	return p.AwardedLevel == nil
}

// Declined сообщает, была ли заявка отклонена.
func (p *Proposal) Declined() bool {
	return p.AwardedLevel != nil && *p.AwardedLevel == AwardDeclined
}
