package service

import (
	"context"

	"github.com/aeroclubhq/membership-backend/internal/models"
)

// ProposalSubmittedEvent — подана новая заявка; адресуется рассматривающим.
type ProposalSubmittedEvent struct {
	Skill    *models.Skill
	Proposal *models.Proposal
	Member   *models.User
}

// ProposalResolvedEvent — заявка рассмотрена; адресуется её автору.
type ProposalResolvedEvent struct {
	Proposal *models.Proposal
}

// EventSink получает события рабочего процесса. Движок публикует их после
// фиксации транзакции; доставка best-effort и не влияет на итог операции.
type EventSink interface {
	ProposalSubmitted(ctx context.Context, event ProposalSubmittedEvent)
	ProposalResolved(ctx context.Context, event ProposalResolvedEvent)
}
