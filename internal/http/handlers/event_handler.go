package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/service"
)

// EventHandler обслуживает мероприятия клуба.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler создаёт хэндлер.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type eventDateRequest struct {
	StartsAt time.Time  `json:"starts_at" binding:"required"`
	EndsAt   *time.Time `json:"ends_at"`
	Location *string    `json:"location"`
}

// Create обрабатывает POST /events.
func (h *EventHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Title       string             `json:"title" binding:"required"`
		Description *string            `json:"description"`
		Dates       []eventDateRequest `json:"dates" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dates := make([]service.EventDateInput, 0, len(req.Dates))
	for _, d := range req.Dates {
		dates = append(dates, service.EventDateInput{
			StartsAt: d.StartsAt,
			EndsAt:   d.EndsAt,
			Location: d.Location,
		})
	}

	event, err := h.events.CreateEvent(c.Request.Context(), userID, req.Title, req.Description, dates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Get обрабатывает GET /events/:id.
func (h *EventHandler) Get(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор мероприятия"})
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// List обрабатывает GET /events.
func (h *EventHandler) List(c *gin.Context) {
	limit, offset := getPagination(c)

	events, err := h.events.ListEvents(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// Update обрабатывает PUT /events/:id.
func (h *EventHandler) Update(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор мероприятия"})
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description *string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.UpdateEvent(c.Request.Context(), eventID, req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Delete обрабатывает DELETE /events/:id.
func (h *EventHandler) Delete(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор мероприятия"})
		return
	}

	if err := h.events.DeleteEvent(c.Request.Context(), eventID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddDate обрабатывает POST /events/:id/dates.
func (h *EventHandler) AddDate(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор мероприятия"})
		return
	}

	var req eventDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := h.events.AddDate(c.Request.Context(), eventID, service.EventDateInput{
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Location: req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, date)
}

// DeleteDate обрабатывает DELETE /events/:id/dates/:dateID.
// Последнюю оставшуюся дату мероприятия удалить нельзя.
func (h *EventHandler) DeleteDate(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор мероприятия"})
		return
	}

	dateID, err := uuid.Parse(c.Param("dateID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор даты"})
		return
	}

	if err := h.events.DeleteDate(c.Request.Context(), eventID, dateID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
