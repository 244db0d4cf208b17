package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/repository"
	"github.com/aeroclubhq/membership-backend/internal/validation"
)

// ProfileHandler обслуживает профили участников.
type ProfileHandler struct {
	users  *repository.UserRepository
	ledger *repository.LedgerRepository
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(users *repository.UserRepository, ledger *repository.LedgerRepository) *ProfileHandler {
	return &ProfileHandler{users: users, ledger: ledger}
}

// GetMe обрабатывает GET /profile — свой профиль с уровнями навыков.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	skills, err := h.ledger.LevelsFor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"skills": skills,
	})
}

// UpdateMe обрабатывает PATCH /profile — смену имени пользователя.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateUsername(c.Request.Context(), userID, req.Username); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "участник не найден"})
			return
		}
		respondError(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetMember обрабатывает GET /members/:id — публичный профиль участника.
func (h *ProfileHandler) GetMember(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор участника"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "участник не найден"})
			return
		}
		respondError(c, err)
		return
	}

	skills, err := h.ledger.LevelsFor(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PublicMember{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		Skills:    skills,
	})
}

// UpdateRole обрабатывает PUT /members/:id/role (только admin).
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор участника"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != models.RoleMember && req.Role != models.RoleInstructor && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "роль должна быть member, instructor или admin"})
		return
	}

	if err := h.users.UpdateRole(c.Request.Context(), memberID, req.Role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "участник не найден"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "роль обновлена"})
}
