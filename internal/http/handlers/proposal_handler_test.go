package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/aeroclubhq/membership-backend/internal/http/middleware"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
)

func TestProposalHandler_Submit_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ProposalHandler{proposals: nil}
	r.POST("/proposals", handler.Submit)

	req, _ := http.NewRequest("POST", "/proposals", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProposalHandler_Submit_InvalidBody_WithAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	})
	handler := &ProposalHandler{proposals: nil}
	r.POST("/proposals", handler.Submit)

	// Нет обязательного поля reasoning
	body := `{"skill_id": "` + uuid.NewString() + `", "proposed_level": 2}`
	req, _ := http.NewRequest("POST", "/proposals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProposalHandler_Resolve_InvalidProposalID_WithAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	})
	handler := &ProposalHandler{proposals: nil}
	r.PUT("/proposals/:id/resolve", handler.Resolve)

	req, _ := http.NewRequest("PUT", "/proposals/not-a-uuid/resolve", strings.NewReader(`{"awarded_level": 2}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProposalHandler_ListPending_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ProposalHandler{proposals: nil}
	r.GET("/proposals/pending", handler.ListPending)

	req, _ := http.NewRequest("GET", "/proposals/pending", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		code       apperror.ErrorCode
		wantStatus int
	}{
		{apperror.ErrCodeValidation, http.StatusBadRequest},
		{apperror.ErrCodeIneligibleLevel, http.StatusBadRequest},
		{apperror.ErrCodeSelfReviewForbidden, http.StatusForbidden},
		{apperror.ErrCodeForbidden, http.StatusForbidden},
		{apperror.ErrCodeNotFound, http.StatusNotFound},
		{apperror.ErrCodeDuplicatePending, http.StatusConflict},
		{apperror.ErrCodeAlreadyResolved, http.StatusConflict},
		{apperror.ErrCodeLevelNotAvailable, http.StatusConflict},
		{apperror.ErrCodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		r := gin.New()
		r.GET("/boom", func(c *gin.Context) {
			respondError(c, apperror.New(tc.code, "тестовая ошибка"))
		})

		req, _ := http.NewRequest("GET", "/boom", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.wantStatus, w.Code, "код %s", tc.code)
		assert.Contains(t, w.Body.String(), string(tc.code))
	}
}

func TestRespondErrorMasksUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, assert.AnError)
	})

	req, _ := http.NewRequest("GET", "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
