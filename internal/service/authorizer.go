package service

import (
	"context"

	"github.com/aeroclubhq/membership-backend/internal/models"
)

// Authorizer — внешние проверки прав рабочего процесса заявок. Движок
// трактует их как непрозрачные решения и при отказе возвращает Forbidden.
type Authorizer interface {
	CanPropose(ctx context.Context, member *models.User, skill *models.Skill) bool
	CanReview(ctx context.Context, reviewer *models.User, proposal *models.Proposal) bool
	CanView(ctx context.Context, viewer *models.User, proposal *models.Proposal) bool
}

// RoleAuthorizer — ролевая реализация Authorizer: любой активный участник
// подаёт заявки, инструкторы и администраторы рассматривают; свои заявки
// видит автор, чужие — рассматривающие.
type RoleAuthorizer struct{}

// NewRoleAuthorizer создаёт ролевую реализацию.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{}
}

// CanPropose разрешает подачу заявок активным участникам.
func (a *RoleAuthorizer) CanPropose(_ context.Context, member *models.User, _ *models.Skill) bool {
	return member != nil && member.IsActive
}

// CanReview разрешает рассмотрение инструкторам и администраторам.
// Запрет рассмотрения собственной заявки движок проверяет отдельно,
// чтобы вернуть точную причину отказа.
func (a *RoleAuthorizer) CanReview(_ context.Context, reviewer *models.User, _ *models.Proposal) bool {
	return reviewer != nil && reviewer.IsActive && reviewer.CanReviewProposals()
}

// CanView разрешает автору видеть свою заявку, рассматривающим — любую.
func (a *RoleAuthorizer) CanView(_ context.Context, viewer *models.User, proposal *models.Proposal) bool {
	if viewer == nil || proposal == nil {
		return false
	}
	if viewer.ID == proposal.MemberID {
		return true
	}
	return viewer.IsActive && viewer.CanReviewProposals()
}
