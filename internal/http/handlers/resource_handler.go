package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/service"
)

// ResourceHandler обслуживает каталог материалов клуба.
type ResourceHandler struct {
	resources *service.ResourceService
}

// NewResourceHandler создаёт хэндлер.
func NewResourceHandler(resources *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// List обрабатывает GET /resources?q= — список или полнотекстовый поиск.
func (h *ResourceHandler) List(c *gin.Context) {
	limit, offset := getPagination(c)

	resources, err := h.resources.ListResources(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resources)
}

// Get обрабатывает GET /resources/:id.
func (h *ResourceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор материала"})
		return
	}

	resource, err := h.resources.GetResource(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Create обрабатывает POST /resources (только admin).
func (h *ResourceHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Title string  `json:"title" binding:"required"`
		Body  string  `json:"body"`
		URL   *string `json:"url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.resources.CreateResource(c.Request.Context(), userID, req.Title, req.Body, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// Update обрабатывает PUT /resources/:id (только admin).
func (h *ResourceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор материала"})
		return
	}

	var req struct {
		Title string  `json:"title" binding:"required"`
		Body  string  `json:"body"`
		URL   *string `json:"url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource, err := h.resources.UpdateResource(c.Request.Context(), id, req.Title, req.Body, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Delete обрабатывает DELETE /resources/:id (только admin).
func (h *ResourceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор материала"})
		return
	}

	if err := h.resources.DeleteResource(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
