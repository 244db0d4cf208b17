package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aeroclubhq/membership-backend/internal/service"
)

// SeedHandler обрабатывает запросы для наполнения базы демонстрационными данными.
type SeedHandler struct {
	seedService *service.SeedService
}

// NewSeedHandler создаёт новый seed handler.
func NewSeedHandler(seedService *service.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

// Seed наполняет базу демонстрационными участниками и навыками.
// POST /api/seed (только в dev-окружении)
func (h *SeedHandler) Seed(c *gin.Context) {
	if err := h.seedService.Seed(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "демонстрационные данные созданы",
		"accounts": []gin.H{
			{"email": "admin@aeroclub.local", "role": "admin", "password": "password123"},
			{"email": "instructor@aeroclub.local", "role": "instructor", "password": "password123"},
			{"email": "pilot1@aeroclub.local", "role": "member", "password": "password123"},
			{"email": "pilot2@aeroclub.local", "role": "member", "password": "password123"},
		},
	})
}
