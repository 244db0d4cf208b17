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

var (
	// ErrEventNotFound возвращается, когда мероприятие не найдено.
	ErrEventNotFound = errors.New("event not found")
	// ErrEventDateNotFound возвращается, когда дата мероприятия не найдена.
	ErrEventDateNotFound = errors.New("event date not found")
	// ErrLastEventDate возвращается при попытке удалить последнюю дату:
	// у мероприятия всегда остаётся хотя бы одна.
	ErrLastEventDate = errors.New("event must keep at least one date")
)

// EventRepository отвечает за мероприятия клуба и их даты.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository создаёт экземпляр репозитория.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create создаёт мероприятие вместе с начальными датами.
func (r *EventRepository) Create(ctx context.Context, event *models.Event, dates []models.EventDate) error {
	if len(dates) == 0 {
		return ErrLastEventDate
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("event repository: begin tx %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (title, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	if err := tx.QueryRowxContext(
		ctx,
		query,
		event.Title,
		event.Description,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("event repository: create %w", err)
	}

	for i := range dates {
		dates[i].EventID = event.ID
		if err := tx.QueryRowxContext(ctx,
			`INSERT INTO event_dates (event_id, starts_at, ends_at, location) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			event.ID, dates[i].StartsAt, dates[i].EndsAt, dates[i].Location,
		).Scan(&dates[i].ID, &dates[i].CreatedAt); err != nil {
			return fmt.Errorf("event repository: create date %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("event repository: commit %w", err)
	}

	event.Dates = dates
	return nil
}

// GetByID возвращает мероприятие вместе с датами.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.GetContext(ctx, &event, `SELECT * FROM events WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("event repository: get by id %w", err)
	}

	if err := r.db.SelectContext(ctx, &event.Dates,
		`SELECT * FROM event_dates WHERE event_id = $1 ORDER BY starts_at`, id); err != nil {
		return nil, fmt.Errorf("event repository: dates %w", err)
	}

	return &event, nil
}

// List возвращает мероприятия, ближайшие первыми.
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]models.Event, error) {
	var events []models.Event
	query := `
		SELECT e.* FROM events e
		JOIN (
			SELECT event_id, MIN(starts_at) AS next_date
			FROM event_dates GROUP BY event_id
		) d ON d.event_id = e.id
		ORDER BY d.next_date
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &events, query, limit, offset); err != nil {
		return nil, fmt.Errorf("event repository: list %w", err)
	}

	return events, nil
}

// Update меняет заголовок и описание мероприятия.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET title = $1, description = $2, updated_at = NOW() WHERE id = $3`,
		event.Title, event.Description, event.ID)
	if err != nil {
		return fmt.Errorf("event repository: update %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("event repository: update rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// Delete удаляет мероприятие вместе с датами.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("event repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("event repository: delete rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// AddDate добавляет дату мероприятию.
func (r *EventRepository) AddDate(ctx context.Context, date *models.EventDate) error {
	query := `
		INSERT INTO event_dates (event_id, starts_at, ends_at, location)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		date.EventID, date.StartsAt, date.EndsAt, date.Location,
	).Scan(&date.ID, &date.CreatedAt); err != nil {
		return fmt.Errorf("event repository: add date %w", err)
	}

	return nil
}

// DeleteDate удаляет дату мероприятия. Удаление последней даты запрещено
// и проверяется атомарно с удалением.
func (r *EventRepository) DeleteDate(ctx context.Context, eventID, dateID uuid.UUID) error {
	query := `
		DELETE FROM event_dates
		WHERE id = $1 AND event_id = $2
		  AND (SELECT COUNT(*) FROM event_dates WHERE event_id = $2) > 1
	`
	result, err := r.db.ExecContext(ctx, query, dateID, eventID)
	if err != nil {
		return fmt.Errorf("event repository: delete date %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("event repository: delete date rows affected %w", err)
	}

	if rowsAffected == 0 {
		// Либо даты нет, либо она последняя. Различаем для точного сообщения.
		var count int
		if err := r.db.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM event_dates WHERE event_id = $1`, eventID); err != nil {
			return fmt.Errorf("event repository: delete date count %w", err)
		}
		if count <= 1 {
			return ErrLastEventDate
		}
		return ErrEventDateNotFound
	}

	return nil
}
