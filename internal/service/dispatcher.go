package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aeroclubhq/membership-backend/internal/logger"
	"github.com/aeroclubhq/membership-backend/internal/models"
)

// События, отправляемые клиентам.
const (
	EventProposalSubmitted = "proposal.submitted"
	EventProposalResolved  = "proposal.resolved"
)

// Broadcaster доставляет событие конкретному участнику (WebSocket хаб).
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// ReviewerSource возвращает участников, рассматривающих заявки.
type ReviewerSource interface {
	ListReviewers(ctx context.Context) ([]models.User, error)
}

// NotificationDispatcher — реализация EventSink: раскладывает события
// рабочего процесса во внутриклубные уведомления. Заявка адресуется всем
// рассматривающим, решение — автору заявки. Ошибки доставки логируются и
// никогда не влияют на уже зафиксированную операцию.
type NotificationDispatcher struct {
	reviewers ReviewerSource
	hub       Broadcaster
}

// NewNotificationDispatcher создаёт диспетчер уведомлений.
func NewNotificationDispatcher(reviewers ReviewerSource, hub Broadcaster) *NotificationDispatcher {
	return &NotificationDispatcher{reviewers: reviewers, hub: hub}
}

// ProposalSubmitted уведомляет рассматривающих о новой заявке.
func (d *NotificationDispatcher) ProposalSubmitted(ctx context.Context, event ProposalSubmittedEvent) {
	reviewers, err := d.reviewers.ListReviewers(ctx)
	if err != nil {
		d.logFailure(err, event.Proposal.ID, "не удалось получить список рассматривающих")
		return
	}

	data := map[string]any{
		"proposal_id":    event.Proposal.ID,
		"skill_id":       event.Skill.ID,
		"skill_name":     event.Skill.Name,
		"member_id":      event.Member.ID,
		"member_name":    event.Member.Username,
		"proposed_level": event.Proposal.ProposedLevel,
	}

	for _, reviewer := range reviewers {
		// Автор заявки может сам быть рецензентом — свою заявку он не рассматривает.
		if reviewer.ID == event.Member.ID {
			continue
		}
		if err := d.hub.BroadcastToUser(reviewer.ID, EventProposalSubmitted, data); err != nil {
			d.logFailure(err, event.Proposal.ID, "не удалось доставить уведомление рецензенту")
		}
	}
}

// ProposalResolved уведомляет автора заявки о решении.
func (d *NotificationDispatcher) ProposalResolved(ctx context.Context, event ProposalResolvedEvent) {
	data := map[string]any{
		"proposal_id":     event.Proposal.ID,
		"skill_id":        event.Proposal.SkillID,
		"proposed_level":  event.Proposal.ProposedLevel,
		"awarded_level":   event.Proposal.AwardedLevel,
		"awarded_comment": event.Proposal.AwardedComment,
		"declined":        event.Proposal.Declined(),
	}

	if err := d.hub.BroadcastToUser(event.Proposal.MemberID, EventProposalResolved, data); err != nil {
		d.logFailure(err, event.Proposal.ID, "не удалось доставить уведомление участнику")
	}
}

func (d *NotificationDispatcher) logFailure(err error, proposalID uuid.UUID, message string) {
	if logger.Log == nil {
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"proposal_id": proposalID,
		"error":       err.Error(),
	}).Warn("dispatcher: " + message)
}
