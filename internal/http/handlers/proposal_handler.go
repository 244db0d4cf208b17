package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/service"
)

// ProposalHandler обслуживает жизненный цикл заявок на уровни навыков.
type ProposalHandler struct {
	proposals *service.ProposalService
}

// NewProposalHandler создаёт хэндлер.
func NewProposalHandler(proposals *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

// Submit обрабатывает POST /proposals — подачу заявки на уровень навыка.
func (h *ProposalHandler) Submit(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		SkillID       uuid.UUID `json:"skill_id" binding:"required"`
		ProposedLevel int       `json:"proposed_level" binding:"required"`
		Reasoning     string    `json:"reasoning" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.Submit(c.Request.Context(), service.SubmitInput{
		MemberID:      userID,
		SkillID:       req.SkillID,
		ProposedLevel: req.ProposedLevel,
		Reasoning:     req.Reasoning,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// Resolve обрабатывает PUT /proposals/:id/resolve — решение рецензента.
// awarded_level 0 означает отказ и требует комментария.
func (h *ProposalHandler) Resolve(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор заявки"})
		return
	}

	var req struct {
		AwardedLevel int    `json:"awarded_level"`
		Comment      string `json:"comment"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposals.Resolve(c.Request.Context(), service.ResolveInput{
		ReviewerID:     userID,
		ProposalID:     proposalID,
		AwardedLevel:   req.AwardedLevel,
		AwardedComment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// Get обрабатывает GET /proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	proposalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор заявки"})
		return
	}

	proposal, err := h.proposals.GetProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// ListPending обрабатывает GET /proposals/pending — очередь рецензента.
func (h *ProposalHandler) ListPending(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	proposals, err := h.proposals.ListPending(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// ListResolved обрабатывает GET /proposals/resolved — журнал решений.
func (h *ProposalHandler) ListResolved(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	limit, offset := getPagination(c)

	proposals, err := h.proposals.ListResolved(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// ListMine обрабатывает GET /proposals/mine — заявки текущего участника.
func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	proposals, err := h.proposals.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}
