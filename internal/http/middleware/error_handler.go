package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aeroclubhq/membership-backend/internal/logger"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Ошибки доменного слоя переводятся в статус и код из apperror,
// внутренние ошибки маскируются от клиента.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.HTTPStatus >= http.StatusInternalServerError && logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"code":   appErr.Code,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			c.JSON(appErr.HTTPStatus, gin.H{
				"error": appErr.Message,
				"code":  appErr.Code,
			})
			return
		}

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"

		if msg := err.Error(); msg != "" && !containsInternalKeywords(msg) {
			message = msg
			if contains(msg, "неверный") || contains(msg, "невалид") || contains(msg, "обязател") {
				statusCode = http.StatusBadRequest
			} else if contains(msg, "нет прав") || contains(msg, "не авторизован") {
				statusCode = http.StatusForbidden
			}
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
		"repository",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
