package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aeroclubhq/membership-backend/internal/goroutine"
	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
	"github.com/aeroclubhq/membership-backend/internal/repository"
	"github.com/aeroclubhq/membership-backend/internal/repository/common"
	"github.com/aeroclubhq/membership-backend/internal/validation"
)

// ProposalStore описывает зависимости движка от хранилища заявок.
type ProposalStore interface {
	Create(ctx context.Context, proposal *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	PendingFor(ctx context.Context, memberID, skillID uuid.UUID) (*models.Proposal, error)
	ListPending(ctx context.Context) ([]models.Proposal, error)
	ListResolved(ctx context.Context, limit, offset int) ([]models.Proposal, error)
	ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.Proposal, error)
	Resolve(ctx context.Context, proposalID uuid.UUID,
		decide func(proposal *models.Proposal, levels []models.SkillLevel) (*repository.Award, error)) (*models.Proposal, error)
}

// MemberSource описывает зависимость движка от хранилища участников.
type MemberSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProposalService — движок рабочего процесса заявок на уровни навыков.
// Правила подачи и рассмотрения живут здесь; хранилище отвечает только за
// персистентность и атомарность, проверки прав делегированы Authorizer,
// а уведомления — EventSink.
type ProposalService struct {
	store   ProposalStore
	skills  SkillCatalog
	ledger  LedgerView
	members MemberSource
	auth    Authorizer
	events  EventSink
}

// NewProposalService создаёт движок рабочего процесса.
func NewProposalService(
	store ProposalStore,
	skills SkillCatalog,
	ledger LedgerView,
	members MemberSource,
	auth Authorizer,
	events EventSink,
) *ProposalService {
	return &ProposalService{
		store:   store,
		skills:  skills,
		ledger:  ledger,
		members: members,
		auth:    auth,
		events:  events,
	}
}

// SubmitInput содержит данные новой заявки.
type SubmitInput struct {
	MemberID      uuid.UUID
	SkillID       uuid.UUID
	ProposedLevel int
	Reasoning     string
}

// Submit подаёт заявку на уровень навыка. Предусловия проверяются по порядку,
// первое нарушение выигрывает: права → валидность входа → доступность уровня →
// отсутствие нерассмотренной заявки. Реестр при подаче не меняется.
func (s *ProposalService) Submit(ctx context.Context, in SubmitInput) (*models.Proposal, error) {
	member, err := s.members.GetByID(ctx, in.MemberID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить участника")
	}

	skill, err := s.skills.GetByID(ctx, in.SkillID)
	if err != nil {
		if errors.Is(err, repository.ErrSkillNotFound) {
			return nil, apperror.ErrSkillNotFound
		}
		return nil, s.sourceFailure(err, "не удалось получить навык")
	}

	if !s.auth.CanPropose(ctx, member, skill) {
		return nil, apperror.ErrForbidden
	}

	if in.ProposedLevel < models.LevelMin || in.ProposedLevel > models.LevelMax {
		return nil, apperror.New(apperror.ErrCodeValidation, "уровень должен быть от 1 до 3")
	}
	if err := validation.ValidateReasoning(in.Reasoning); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	// Доступность пересчитывается на момент подачи; к моменту рассмотрения
	// она может измениться и будет проверена ещё раз.
	levels, err := s.skills.Levels(ctx, in.SkillID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить уровни навыка")
	}

	held, err := s.ledger.LevelOf(ctx, in.MemberID, in.SkillID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить текущий уровень")
	}

	if !levelAvailable(levels, in.ProposedLevel) || in.ProposedLevel <= held {
		return nil, apperror.ErrIneligibleLevel
	}

	pending, err := s.store.PendingFor(ctx, in.MemberID, in.SkillID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось проверить существующие заявки")
	}
	if pending != nil {
		return nil, apperror.ErrDuplicatePending
	}

	proposal := &models.Proposal{
		SkillID:       in.SkillID,
		MemberID:      in.MemberID,
		ProposedLevel: in.ProposedLevel,
		Reasoning:     in.Reasoning,
	}

	// Частичный уникальный индекс хранилища закрывает гонку двух
	// одновременных подач: проигравший получает DuplicatePending.
	if err := s.store.Create(ctx, proposal); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, apperror.ErrDuplicatePending
		}
		return nil, s.sourceFailure(err, "не удалось сохранить заявку")
	}

	s.emit(ctx, func(ctx context.Context) {
		s.events.ProposalSubmitted(ctx, ProposalSubmittedEvent{
			Skill:    skill,
			Proposal: proposal,
			Member:   member,
		})
	})

	return proposal, nil
}

// ResolveInput содержит решение рецензента по заявке.
type ResolveInput struct {
	ReviewerID     uuid.UUID
	ProposalID     uuid.UUID
	AwardedLevel   int
	AwardedComment string
}

// Resolve фиксирует решение по заявке. Уровень 0 — отказ с обязательным
// комментарием; уровень 1..3 присваивается, только если он всё ещё доступен
// на момент рассмотрения. Решение терминально: повторное Resolve по той же
// заявке возвращает AlreadyResolved и не имеет побочных эффектов.
func (s *ProposalService) Resolve(ctx context.Context, in ResolveInput) (*models.Proposal, error) {
	reviewer, err := s.members.GetByID(ctx, in.ReviewerID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить рецензента")
	}

	proposal, err := s.store.GetByID(ctx, in.ProposalID)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, s.sourceFailure(err, "не удалось получить заявку")
	}

	if err := s.checkDecision(ctx, reviewer, proposal, in); err != nil {
		return nil, err
	}

	// Все проверки повторяются под блокировкой строки: состояние заявки и
	// доступность уровня могли измениться после предварительных проверок.
	resolved, err := s.store.Resolve(ctx, in.ProposalID,
		func(current *models.Proposal, levels []models.SkillLevel) (*repository.Award, error) {
			if err := s.checkDecision(ctx, reviewer, current, in); err != nil {
				return nil, err
			}

			if in.AwardedLevel > models.AwardDeclined && !levelAvailable(levels, in.AwardedLevel) {
				return nil, apperror.ErrLevelNotAvailable
			}

			award := &repository.Award{
				Level:      in.AwardedLevel,
				ReviewerID: in.ReviewerID,
			}
			if in.AwardedComment != "" {
				comment := in.AwardedComment
				award.Comment = &comment
			}

			return award, nil
		})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, s.sourceFailure(err, "не удалось рассмотреть заявку")
	}

	s.emit(ctx, func(ctx context.Context) {
		s.events.ProposalResolved(ctx, ProposalResolvedEvent{Proposal: resolved})
	})

	return resolved, nil
}

// checkDecision проверяет предусловия решения в порядке спецификации:
// терминальность → права и запрет самопроверки → валидность решения.
func (s *ProposalService) checkDecision(ctx context.Context, reviewer *models.User, proposal *models.Proposal, in ResolveInput) error {
	if !proposal.Pending() {
		return apperror.ErrAlreadyResolved
	}

	if !s.auth.CanReview(ctx, reviewer, proposal) {
		return apperror.ErrForbidden
	}
	if reviewer.ID == proposal.MemberID {
		return apperror.ErrSelfReviewForbidden
	}

	if in.AwardedLevel < models.AwardDeclined || in.AwardedLevel > models.LevelMax {
		return apperror.New(apperror.ErrCodeValidation, "уровень решения должен быть от 0 до 3")
	}
	if in.AwardedLevel == models.AwardDeclined {
		if err := validation.ValidateDeclineComment(in.AwardedComment); err != nil {
			return apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.AwardedComment != "" {
		if err := validation.ValidateAwardComment(in.AwardedComment); err != nil {
			return apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	return nil
}

// GetProposal возвращает заявку с проверкой права просмотра.
func (s *ProposalService) GetProposal(ctx context.Context, viewerID, proposalID uuid.UUID) (*models.Proposal, error) {
	viewer, err := s.members.GetByID(ctx, viewerID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить участника")
	}

	proposal, err := s.store.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, s.sourceFailure(err, "не удалось получить заявку")
	}

	if !s.auth.CanView(ctx, viewer, proposal) {
		return nil, apperror.ErrForbidden
	}

	return proposal, nil
}

// ListPending возвращает очередь нерассмотренных заявок для рецензентов.
func (s *ProposalService) ListPending(ctx context.Context, viewerID uuid.UUID) ([]models.Proposal, error) {
	viewer, err := s.members.GetByID(ctx, viewerID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить участника")
	}

	if !viewer.CanReviewProposals() {
		return nil, apperror.ErrForbidden
	}

	proposals, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить очередь заявок")
	}

	return proposals, nil
}

// ListResolved возвращает журнал рассмотренных заявок с пагинацией.
func (s *ProposalService) ListResolved(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	viewer, err := s.members.GetByID(ctx, viewerID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить участника")
	}

	if !viewer.CanReviewProposals() {
		return nil, apperror.ErrForbidden
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	proposals, err := s.store.ListResolved(ctx, limit, offset)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить журнал заявок")
	}

	return proposals, nil
}

// ListMine возвращает все заявки участника.
func (s *ProposalService) ListMine(ctx context.Context, memberID uuid.UUID) ([]models.Proposal, error) {
	proposals, err := s.store.ListForMember(ctx, memberID)
	if err != nil {
		return nil, s.sourceFailure(err, "не удалось получить заявки")
	}

	return proposals, nil
}

// emit публикует событие после успешной фиксации: best-effort, в отдельной
// горутине с защитой от паники, с контекстом, переживающим запрос.
func (s *ProposalService) emit(ctx context.Context, fn func(context.Context)) {
	if s.events == nil {
		return
	}
	goroutine.SafeGoWithContext(context.WithoutCancel(ctx), fn)
}

// sourceFailure переводит ошибку хранилища в код для вызывающей стороны:
// временные сбои → Unavailable (можно повторить), остальное → DatabaseError.
func (s *ProposalService) sourceFailure(err error, message string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperror.ErrUserNotFound
	}
	if common.IsTransient(err) {
		return apperror.Wrap(err, apperror.ErrCodeUnavailable, "хранилище временно недоступно, повторите попытку")
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}
