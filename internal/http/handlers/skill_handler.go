package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/repository"
	"github.com/aeroclubhq/membership-backend/internal/service"
)

// SkillHandler обслуживает каталог навыков и политику уровней.
type SkillHandler struct {
	skills       *repository.SkillRepository
	availability *service.AvailabilityService
}

// NewSkillHandler создаёт хэндлер.
func NewSkillHandler(skills *repository.SkillRepository, availability *service.AvailabilityService) *SkillHandler {
	return &SkillHandler{skills: skills, availability: availability}
}

// List обрабатывает GET /skills — каталог с политикой уровней и занятостью.
func (h *SkillHandler) List(c *gin.Context) {
	skills, err := h.skills.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]models.SkillWithLevels, 0, len(skills))
	for _, skill := range skills {
		levels, err := h.skills.Levels(c.Request.Context(), skill.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		result = append(result, models.SkillWithLevels{Skill: skill, Levels: levels})
	}

	c.JSON(http.StatusOK, result)
}

// Get обрабатывает GET /skills/:id.
func (h *SkillHandler) Get(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор навыка"})
		return
	}

	skill, err := h.skills.GetByID(c.Request.Context(), skillID)
	if err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "навык не найден"})
			return
		}
		respondError(c, err)
		return
	}

	levels, err := h.skills.Levels(c.Request.Context(), skillID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SkillWithLevels{Skill: *skill, Levels: levels})
}

// Selectable обрабатывает GET /skills/selectable — каталог с уровнями,
// которые текущий участник может предложить.
func (h *SkillHandler) Selectable(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	skills, err := h.availability.SkillsWithSelectable(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

// Create обрабатывает POST /skills (только admin).
func (h *SkillHandler) Create(c *gin.Context) {
	var req struct {
		Slug        string  `json:"slug" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
		Levels      []struct {
			Level    int  `json:"level" binding:"required"`
			IsOpen   bool `json:"is_open"`
			Capacity *int `json:"capacity"`
		} `json:"levels"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skill := &models.Skill{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}

	levels := make([]models.SkillLevel, 0, len(req.Levels))
	for _, l := range req.Levels {
		if l.Level < models.LevelMin || l.Level > models.LevelMax {
			c.JSON(http.StatusBadRequest, gin.H{"error": "уровень должен быть от 1 до 3"})
			return
		}
		if l.Capacity != nil && *l.Capacity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "лимит держателей не может быть отрицательным"})
			return
		}
		levels = append(levels, models.SkillLevel{
			Level:    l.Level,
			IsOpen:   l.IsOpen,
			Capacity: l.Capacity,
		})
	}

	if err := h.skills.Create(c.Request.Context(), skill, levels); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

// UpdateLevel обрабатывает PUT /skills/:id/levels/:level (только admin).
// Меняет политику доступности уровня: открытость и лимит держателей.
func (h *SkillHandler) UpdateLevel(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор навыка"})
		return
	}

	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < models.LevelMin || level > models.LevelMax {
		c.JSON(http.StatusBadRequest, gin.H{"error": "уровень должен быть от 1 до 3"})
		return
	}

	var req struct {
		IsOpen   bool `json:"is_open"`
		Capacity *int `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Capacity != nil && *req.Capacity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "лимит держателей не может быть отрицательным"})
		return
	}

	if _, err := h.skills.GetByID(c.Request.Context(), skillID); err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "навык не найден"})
			return
		}
		respondError(c, err)
		return
	}

	if err := h.skills.UpdateLevel(c.Request.Context(), skillID, level, req.IsOpen, req.Capacity); err != nil {
		respondError(c, err)
		return
	}

	levels, err := h.skills.Levels(c.Request.Context(), skillID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, levels)
}
