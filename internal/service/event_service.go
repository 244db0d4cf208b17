package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
	"github.com/aeroclubhq/membership-backend/internal/repository"
	"github.com/aeroclubhq/membership-backend/internal/validation"
)

// EventStore описывает зависимости сервиса мероприятий от хранилища.
type EventStore interface {
	Create(ctx context.Context, event *models.Event, dates []models.EventDate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, limit, offset int) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddDate(ctx context.Context, date *models.EventDate) error
	DeleteDate(ctx context.Context, eventID, dateID uuid.UUID) error
}

// EventService — управление мероприятиями клуба.
type EventService struct {
	store EventStore
}

// NewEventService создаёт сервис мероприятий.
func NewEventService(store EventStore) *EventService {
	return &EventService{store: store}
}

// EventDateInput — одна дата при создании или добавлении.
type EventDateInput struct {
	StartsAt time.Time
	EndsAt   *time.Time
	Location *string
}

// CreateEvent создаёт мероприятие. Требуется хотя бы одна дата.
func (s *EventService) CreateEvent(ctx context.Context, createdBy uuid.UUID, title string, description *string, dates []EventDateInput) (*models.Event, error) {
	if err := validation.ValidateLength("название", title, validation.MinEventTitleLength, validation.MaxEventTitleLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if len(dates) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "у мероприятия должна быть хотя бы одна дата")
	}

	event := &models.Event{
		Title:       title,
		Description: description,
		CreatedBy:   createdBy,
	}

	eventDates := make([]models.EventDate, len(dates))
	for i, d := range dates {
		eventDates[i] = models.EventDate{
			StartsAt: d.StartsAt,
			EndsAt:   d.EndsAt,
			Location: d.Location,
		}
	}

	if err := s.store.Create(ctx, event, eventDates); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать мероприятие")
	}

	return event, nil
}

// GetEvent возвращает мероприятие с датами.
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.store.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return nil, apperror.ErrEventNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить мероприятие")
	}

	return event, nil
}

// ListEvents возвращает мероприятия, ближайшие первыми.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить мероприятия")
	}

	return events, nil
}

// UpdateEvent меняет заголовок и описание мероприятия.
func (s *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, title string, description *string) (*models.Event, error) {
	if err := validation.ValidateLength("название", title, validation.MinEventTitleLength, validation.MaxEventTitleLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = title
	event.Description = description

	if err := s.store.Update(ctx, event); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить мероприятие")
	}

	return event, nil
}

// DeleteEvent удаляет мероприятие вместе с датами.
func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if err == repository.ErrEventNotFound {
			return apperror.ErrEventNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить мероприятие")
	}

	return nil
}

// AddDate добавляет мероприятию новую дату.
func (s *EventService) AddDate(ctx context.Context, eventID uuid.UUID, in EventDateInput) (*models.EventDate, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	date := &models.EventDate{
		EventID:  eventID,
		StartsAt: in.StartsAt,
		EndsAt:   in.EndsAt,
		Location: in.Location,
	}

	if err := s.store.AddDate(ctx, date); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось добавить дату")
	}

	return date, nil
}

// DeleteDate удаляет дату мероприятия. Последнюю дату удалить нельзя.
func (s *EventService) DeleteDate(ctx context.Context, eventID, dateID uuid.UUID) error {
	if err := s.store.DeleteDate(ctx, eventID, dateID); err != nil {
		switch err {
		case repository.ErrLastEventDate:
			return apperror.New(apperror.ErrCodeConflict, "нельзя удалить последнюю дату мероприятия")
		case repository.ErrEventDateNotFound:
			return apperror.New(apperror.ErrCodeNotFound, "дата мероприятия не найдена")
		default:
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить дату")
		}
	}

	return nil
}
