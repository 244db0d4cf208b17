package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/http/middleware"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
)

var errUserNotFound = errors.New("пользователь не найден в контексте")

// currentUserID извлекает userID из контекста.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errUserNotFound
	}

	return userID, nil
}

// currentUserRole извлекает роль пользователя из контекста.
func currentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", errUserNotFound
	}

	role, ok := raw.(string)
	if !ok {
		return "", errUserNotFound
	}

	return role, nil
}

// respondError переводит ошибку сервисного слоя в HTTP-ответ.
// AppError несёт статус и код; всё остальное маскируется как 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
}

// parseIntQuery читает целочисленный query-параметр с значением по умолчанию.
func parseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// getPagination извлекает limit и offset из query-параметров.
func getPagination(c *gin.Context) (limit, offset int) {
	limit = parseIntQuery(c, "limit", 20)
	offset = parseIntQuery(c, "offset", 0)
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return
}
