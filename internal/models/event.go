package models

import (
	"time"

	"github.com/google/uuid"
)

// Event — мероприятие клуба (лётный день, собрание).
type Event struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description *string     `db:"description" json:"description,omitempty"`
	CreatedBy   uuid.UUID   `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
	Dates       []EventDate `json:"dates,omitempty"`
}

// EventDate — одна дата проведения мероприятия. У мероприятия всегда
// остаётся хотя бы одна дата.
type EventDate struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	EventID   uuid.UUID  `db:"event_id" json:"event_id"`
	StartsAt  time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt    *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	Location  *string    `db:"location" json:"location,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
