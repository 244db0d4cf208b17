package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aeroclubhq/membership-backend/internal/models"
	"github.com/aeroclubhq/membership-backend/internal/pkg/apperror"
	"github.com/aeroclubhq/membership-backend/internal/repository"
)

// mockProposalStore хранит заявки в памяти и воспроизводит семантику
// хранилища: частичную уникальность нерассмотренных заявок и атомарное
// рассмотрение с повторной проверкой доступности.
type mockProposalStore struct {
	proposals map[uuid.UUID]*models.Proposal
	skills    *mockSkillCatalog
	ledger    *mockLedger
	createErr error
}

func newMockProposalStore(skills *mockSkillCatalog, ledger *mockLedger) *mockProposalStore {
	return &mockProposalStore{
		proposals: make(map[uuid.UUID]*models.Proposal),
		skills:    skills,
		ledger:    ledger,
	}
}

func (m *mockProposalStore) Create(ctx context.Context, p *models.Proposal) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.proposals {
		if existing.MemberID == p.MemberID && existing.SkillID == p.SkillID && existing.Pending() {
			return repository.ErrDuplicatePending
		}
	}
	p.ID = uuid.New()
	p.SubmittedAt = time.Now()
	stored := *p
	m.proposals[p.ID] = &stored
	return nil
}

func (m *mockProposalStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	if p, ok := m.proposals[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrProposalNotFound
}

func (m *mockProposalStore) PendingFor(ctx context.Context, memberID, skillID uuid.UUID) (*models.Proposal, error) {
	for _, p := range m.proposals {
		if p.MemberID == memberID && p.SkillID == skillID && p.Pending() {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockProposalStore) ListPending(ctx context.Context) ([]models.Proposal, error) {
	result := make([]models.Proposal, 0)
	for _, p := range m.proposals {
		if p.Pending() {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProposalStore) ListResolved(ctx context.Context, limit, offset int) ([]models.Proposal, error) {
	result := make([]models.Proposal, 0)
	for _, p := range m.proposals {
		if !p.Pending() {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProposalStore) ListForMember(ctx context.Context, memberID uuid.UUID) ([]models.Proposal, error) {
	result := make([]models.Proposal, 0)
	for _, p := range m.proposals {
		if p.MemberID == memberID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProposalStore) Resolve(ctx context.Context, proposalID uuid.UUID,
	decide func(*models.Proposal, []models.SkillLevel) (*repository.Award, error)) (*models.Proposal, error) {
	p, ok := m.proposals[proposalID]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}

	// Занятость пересчитывается из реестра на момент решения, как в
	// транзакции хранилища: уже присвоенные уровни занимают слоты.
	levels := make([]models.SkillLevel, len(m.skills.levels[p.SkillID]))
	copy(levels, m.skills.levels[p.SkillID])
	for i := range levels {
		if held := m.ledger.holders(p.SkillID, levels[i].Level); held > levels[i].Holders {
			levels[i].Holders = held
		}
	}

	current := *p
	award, err := decide(&current, levels)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	level := award.Level
	reviewer := award.ReviewerID
	p.AwardedLevel = &level
	p.AwardedBy = &reviewer
	p.AwardedComment = award.Comment
	p.AwardedAt = &now

	if level > models.AwardDeclined {
		m.ledger.raise(p.MemberID, p.SkillID, level)
	}

	copied := *p
	return &copied, nil
}

// mockSkillCatalog отдаёт навыки и политику уровней из памяти.
type mockSkillCatalog struct {
	skills map[uuid.UUID]*models.Skill
	levels map[uuid.UUID][]models.SkillLevel
}

func newMockSkillCatalog() *mockSkillCatalog {
	return &mockSkillCatalog{
		skills: make(map[uuid.UUID]*models.Skill),
		levels: make(map[uuid.UUID][]models.SkillLevel),
	}
}

func (m *mockSkillCatalog) GetByID(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	if s, ok := m.skills[id]; ok {
		return s, nil
	}
	return nil, repository.ErrSkillNotFound
}

func (m *mockSkillCatalog) List(ctx context.Context) ([]models.Skill, error) {
	result := make([]models.Skill, 0, len(m.skills))
	for _, s := range m.skills {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSkillCatalog) Levels(ctx context.Context, skillID uuid.UUID) ([]models.SkillLevel, error) {
	return m.levels[skillID], nil
}

func (m *mockSkillCatalog) addSkill(name string, levels []models.SkillLevel) uuid.UUID {
	id := uuid.New()
	m.skills[id] = &models.Skill{ID: id, Slug: name, Name: name, IsActive: true}
	for i := range levels {
		levels[i].SkillID = id
	}
	m.levels[id] = levels
	return id
}

// mockLedger хранит уровни участников и никогда их не понижает.
type mockLedger struct {
	levels map[uuid.UUID]map[uuid.UUID]int
}

func newMockLedger() *mockLedger {
	return &mockLedger{levels: make(map[uuid.UUID]map[uuid.UUID]int)}
}

func (m *mockLedger) LevelOf(ctx context.Context, memberID, skillID uuid.UUID) (int, error) {
	return m.levels[memberID][skillID], nil
}

func (m *mockLedger) holders(skillID uuid.UUID, level int) int {
	count := 0
	for _, skills := range m.levels {
		if skills[skillID] == level {
			count++
		}
	}
	return count
}

func (m *mockLedger) raise(memberID, skillID uuid.UUID, level int) {
	if m.levels[memberID] == nil {
		m.levels[memberID] = make(map[uuid.UUID]int)
	}
	if m.levels[memberID][skillID] < level {
		m.levels[memberID][skillID] = level
	}
}

// mockMemberSource отдаёт участников из памяти.
type mockMemberSource struct {
	members map[uuid.UUID]*models.User
}

func newMockMemberSource() *mockMemberSource {
	return &mockMemberSource{members: make(map[uuid.UUID]*models.User)}
}

func (m *mockMemberSource) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.members[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockMemberSource) addMember(role string) uuid.UUID {
	id := uuid.New()
	m.members[id] = &models.User{ID: id, Username: role + "_" + id.String()[:8], Role: role, IsActive: true}
	return id
}

// recordingSink собирает события для проверки уведомлений.
type recordingSink struct {
	submitted chan ProposalSubmittedEvent
	resolved  chan ProposalResolvedEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		submitted: make(chan ProposalSubmittedEvent, 8),
		resolved:  make(chan ProposalResolvedEvent, 8),
	}
}

func (r *recordingSink) ProposalSubmitted(ctx context.Context, event ProposalSubmittedEvent) {
	r.submitted <- event
}

func (r *recordingSink) ProposalResolved(ctx context.Context, event ProposalResolvedEvent) {
	r.resolved <- event
}

// engineFixture собирает движок заявок с моками вместо Postgres.
type engineFixture struct {
	engine  *ProposalService
	store   *mockProposalStore
	skills  *mockSkillCatalog
	ledger  *mockLedger
	members *mockMemberSource
	sink    *recordingSink
}

func newEngineFixture() *engineFixture {
	skills := newMockSkillCatalog()
	ledger := newMockLedger()
	members := newMockMemberSource()
	store := newMockProposalStore(skills, ledger)
	sink := newRecordingSink()

	return &engineFixture{
		engine:  NewProposalService(store, skills, ledger, members, NewRoleAuthorizer(), sink),
		store:   store,
		skills:  skills,
		ledger:  ledger,
		members: members,
		sink:    sink,
	}
}

func openLevels() []models.SkillLevel {
	return []models.SkillLevel{
		{Level: 1, IsOpen: true},
		{Level: 2, IsOpen: true},
		{Level: 3, IsOpen: true},
	}
}

const validReasoning = "Выполнил больше двадцати самостоятельных полётов под наблюдением инструктора."

func waitSubmitted(t *testing.T, sink *recordingSink) ProposalSubmittedEvent {
	t.Helper()
	select {
	case e := <-sink.submitted:
		return e
	case <-time.After(2 * time.Second):
		t.Fatalf("не дождались события о подаче заявки")
		return ProposalSubmittedEvent{}
	}
}

func waitResolved(t *testing.T, sink *recordingSink) ProposalResolvedEvent {
	t.Helper()
	select {
	case e := <-sink.resolved:
		return e
	case <-time.After(2 * time.Second):
		t.Fatalf("не дождались события о решении")
		return ProposalResolvedEvent{}
	}
}

func TestSubmitCreatesPendingProposal(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	if !proposal.Pending() {
		t.Fatalf("новая заявка должна ожидать рассмотрения")
	}
	if proposal.ID == uuid.Nil {
		t.Fatalf("заявке должен быть присвоен идентификатор")
	}

	// Подача не меняет реестр.
	held, _ := f.ledger.LevelOf(context.Background(), memberID, skillID)
	if held != 0 {
		t.Fatalf("подача заявки не должна менять уровень, получили %d", held)
	}

	event := waitSubmitted(t, f.sink)
	if event.Proposal.ID != proposal.ID {
		t.Fatalf("событие должно ссылаться на созданную заявку")
	}
}

func TestSubmitRejectsLevelOutOfRange(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("paragliding", openLevels())

	for _, level := range []int{0, 4, -1} {
		_, err := f.engine.Submit(context.Background(), SubmitInput{
			MemberID:      memberID,
			SkillID:       skillID,
			ProposedLevel: level,
			Reasoning:     validReasoning,
		})
		if apperror.CodeOf(err) != apperror.ErrCodeValidation {
			t.Fatalf("уровень %d: ожидали VALIDATION_ERROR, получили %v", level, err)
		}
	}
}

func TestSubmitRejectsEmptyReasoning(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("paragliding", openLevels())

	_, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     "   ",
	})
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Fatalf("ожидали VALIDATION_ERROR, получили %v", err)
	}
}

func TestSubmitRejectsClosedLevel(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("winch", []models.SkillLevel{
		{Level: 1, IsOpen: true},
		{Level: 2, IsOpen: false},
		{Level: 3, IsOpen: true},
	})

	_, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 2,
		Reasoning:     validReasoning,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeIneligibleLevel {
		t.Fatalf("ожидали INELIGIBLE_LEVEL, получили %v", err)
	}
}

func TestSubmitRejectsExhaustedCapacity(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	capacity := 2
	skillID := f.skills.addSkill("winch", []models.SkillLevel{
		{Level: 1, IsOpen: true, Capacity: &capacity, Holders: 2},
		{Level: 2, IsOpen: true},
		{Level: 3, IsOpen: true},
	})

	_, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeIneligibleLevel {
		t.Fatalf("ожидали INELIGIBLE_LEVEL, получили %v", err)
	}
}

func TestSubmitRejectsLevelNotAboveHeld(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("paragliding", openLevels())
	f.ledger.raise(memberID, skillID, 2)

	for _, level := range []int{1, 2} {
		_, err := f.engine.Submit(context.Background(), SubmitInput{
			MemberID:      memberID,
			SkillID:       skillID,
			ProposedLevel: level,
			Reasoning:     validReasoning,
		})
		if apperror.CodeOf(err) != apperror.ErrCodeIneligibleLevel {
			t.Fatalf("уровень %d не выше текущего: ожидали INELIGIBLE_LEVEL, получили %v", level, err)
		}
	}

	// Следующий уровень доступен.
	if _, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 3,
		Reasoning:     validReasoning,
	}); err != nil {
		t.Fatalf("уровень 3 должен быть доступен: %v", err)
	}
}

func TestSubmitRejectsDuplicatePending(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("paragliding", openLevels())

	if _, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	}); err != nil {
		t.Fatalf("первая заявка должна пройти: %v", err)
	}

	_, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 2,
		Reasoning:     validReasoning,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeDuplicatePending {
		t.Fatalf("ожидали DUPLICATE_PENDING, получили %v", err)
	}

	// По другому навыку заявка разрешена.
	otherSkill := f.skills.addSkill("first-aid", openLevels())
	if _, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       otherSkill,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	}); err != nil {
		t.Fatalf("заявка по другому навыку должна пройти: %v", err)
	}
}

func TestResolveAwardRaisesLedger(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 2,
		Reasoning:     validReasoning,
	})
	if err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	resolved, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: 2,
	})
	if err != nil {
		t.Fatalf("resolve вернул ошибку: %v", err)
	}

	if resolved.Pending() {
		t.Fatalf("заявка должна быть рассмотрена")
	}
	if resolved.AwardedBy == nil || *resolved.AwardedBy != reviewerID {
		t.Fatalf("в заявке должен быть зафиксирован рецензент")
	}

	held, _ := f.ledger.LevelOf(context.Background(), memberID, skillID)
	if held != 2 {
		t.Fatalf("уровень в реестре должен стать 2, получили %d", held)
	}

	event := waitResolved(t, f.sink)
	if event.Proposal.ID != proposal.ID {
		t.Fatalf("событие должно ссылаться на рассмотренную заявку")
	}
}

func TestResolveDeclineRequiresComment(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, _ := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})

	_, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: models.AwardDeclined,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Fatalf("отказ без комментария: ожидали VALIDATION_ERROR, получили %v", err)
	}

	resolved, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:     reviewerID,
		ProposalID:     proposal.ID,
		AwardedLevel:   models.AwardDeclined,
		AwardedComment: "Недостаточно самостоятельных полётов.",
	})
	if err != nil {
		t.Fatalf("отказ с комментарием должен пройти: %v", err)
	}
	if !resolved.Declined() {
		t.Fatalf("заявка должна быть отклонена")
	}

	// Отказ не меняет реестр.
	held, _ := f.ledger.LevelOf(context.Background(), memberID, skillID)
	if held != 0 {
		t.Fatalf("отказ не должен менять уровень, получили %d", held)
	}
}

func TestResolveForbidsSelfReview(t *testing.T) {
	f := newEngineFixture()
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      reviewerID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})
	if err != nil {
		t.Fatalf("инструктор тоже может подавать заявки: %v", err)
	}

	_, err = f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: 1,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeSelfReviewForbidden {
		t.Fatalf("ожидали SELF_REVIEW_FORBIDDEN, получили %v", err)
	}
}

func TestResolveForbidsNonReviewer(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	otherID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, _ := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})

	_, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   otherID,
		ProposalID:   proposal.ID,
		AwardedLevel: 1,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Fatalf("ожидали FORBIDDEN, получили %v", err)
	}
}

func TestResolveIsTerminal(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	adminID := f.members.addMember(models.RoleAdmin)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, _ := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})

	if _, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: 1,
	}); err != nil {
		t.Fatalf("первое решение должно пройти: %v", err)
	}

	_, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:     adminID,
		ProposalID:     proposal.ID,
		AwardedLevel:   models.AwardDeclined,
		AwardedComment: "Попытка пересмотра.",
	})
	if apperror.CodeOf(err) != apperror.ErrCodeAlreadyResolved {
		t.Fatalf("ожидали ALREADY_RESOLVED, получили %v", err)
	}

	held, _ := f.ledger.LevelOf(context.Background(), memberID, skillID)
	if held != 1 {
		t.Fatalf("повторное решение не должно иметь побочных эффектов, уровень %d", held)
	}
}

func TestResolveReChecksAvailability(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("winch", openLevels())

	proposal, _ := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 2,
		Reasoning:     validReasoning,
	})

	// Между подачей и рассмотрением уровень закрыли.
	f.skills.levels[skillID][1].IsOpen = false

	_, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: 2,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeLevelNotAvailable {
		t.Fatalf("ожидали LEVEL_NOT_AVAILABLE, получили %v", err)
	}

	// Заявка остаётся нерассмотренной, решение можно принять по другому уровню.
	current, _ := f.store.GetByID(context.Background(), proposal.ID)
	if !current.Pending() {
		t.Fatalf("после отказа по доступности заявка должна остаться нерассмотренной")
	}

	if _, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: 1,
	}); err != nil {
		t.Fatalf("присвоение открытого уровня должно пройти: %v", err)
	}
}

func TestResolveLastSlotGoesToFirstResolver(t *testing.T) {
	f := newEngineFixture()
	firstID := f.members.addMember(models.RoleMember)
	secondID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	capacity := 1
	skillID := f.skills.addSkill("winch", []models.SkillLevel{
		{Level: 1, IsOpen: true, Capacity: &capacity},
		{Level: 2, IsOpen: true},
		{Level: 3, IsOpen: true},
	})

	// Обе заявки поданы, пока слот уровня 1 ещё свободен.
	first, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      firstID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})
	if err != nil {
		t.Fatalf("первая заявка должна пройти: %v", err)
	}
	second, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      secondID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})
	if err != nil {
		t.Fatalf("вторая заявка должна пройти: %v", err)
	}

	if _, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   first.ID,
		AwardedLevel: 1,
	}); err != nil {
		t.Fatalf("первое решение должно занять слот: %v", err)
	}

	// Слот занят первым присвоением: второе решение обязано это увидеть.
	_, err = f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   second.ID,
		AwardedLevel: 1,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeLevelNotAvailable {
		t.Fatalf("ожидали LEVEL_NOT_AVAILABLE, получили %v", err)
	}

	held, _ := f.ledger.LevelOf(context.Background(), secondID, skillID)
	if held != 0 {
		t.Fatalf("лимит уровня превышен: второй участник получил уровень %d", held)
	}

	current, _ := f.store.GetByID(context.Background(), second.ID)
	if !current.Pending() {
		t.Fatalf("вторая заявка должна остаться нерассмотренной")
	}
}

func TestResolveMayAwardDifferentLevel(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, _ := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 3,
		Reasoning:     validReasoning,
	})

	// Рецензент присваивает уровень ниже запрошенного.
	resolved, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: 1,
	})
	if err != nil {
		t.Fatalf("resolve вернул ошибку: %v", err)
	}
	if resolved.AwardedLevel == nil || *resolved.AwardedLevel != 1 {
		t.Fatalf("присвоенный уровень должен быть 1")
	}

	held, _ := f.ledger.LevelOf(context.Background(), memberID, skillID)
	if held != 1 {
		t.Fatalf("уровень в реестре должен стать 1, получили %d", held)
	}
}

func TestLedgerNeverLowersLevel(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("paragliding", openLevels())
	f.ledger.raise(memberID, skillID, 3)

	// Подать заявку выше уровня 3 нельзя, но смоделируем присвоение более
	// низкого уровня по старой заявке: реестр не должен понизиться.
	proposal := &models.Proposal{
		SkillID:       skillID,
		MemberID:      memberID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	}
	if err := f.store.Create(context.Background(), proposal); err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	if _, err := f.engine.Resolve(context.Background(), ResolveInput{
		ReviewerID:   reviewerID,
		ProposalID:   proposal.ID,
		AwardedLevel: 1,
	}); err != nil {
		t.Fatalf("resolve вернул ошибку: %v", err)
	}

	held, _ := f.ledger.LevelOf(context.Background(), memberID, skillID)
	if held != 3 {
		t.Fatalf("реестр монотонен: уровень должен остаться 3, получили %d", held)
	}
}

func TestSubmitStorageOutageIsRetryable(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	skillID := f.skills.addSkill("paragliding", openLevels())

	in := SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	}

	// Сбой сериализации: вызывающая сторона может повторить с теми же аргументами.
	f.store.createErr = &pq.Error{Code: "40001"}
	_, err := f.engine.Submit(context.Background(), in)
	if apperror.CodeOf(err) != apperror.ErrCodeUnavailable {
		t.Fatalf("ожидали UNAVAILABLE, получили %v", err)
	}
	if !apperror.IsRetryable(err) {
		t.Fatalf("сбой сериализации должен быть повторяемым")
	}

	// Постоянная ошибка хранилища повтора не предполагает.
	f.store.createErr = errors.New("нарушение ограничения")
	_, err = f.engine.Submit(context.Background(), in)
	if apperror.CodeOf(err) != apperror.ErrCodeDatabaseError {
		t.Fatalf("ожидали DATABASE_ERROR, получили %v", err)
	}
	if apperror.IsRetryable(err) {
		t.Fatalf("постоянная ошибка не должна быть повторяемой")
	}
}

func TestListPendingRequiresReviewer(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("paragliding", openLevels())

	if _, err := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	}); err != nil {
		t.Fatalf("submit вернул ошибку: %v", err)
	}

	if _, err := f.engine.ListPending(context.Background(), memberID); apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Fatalf("участник без прав: ожидали FORBIDDEN, получили %v", err)
	}

	pending, err := f.engine.ListPending(context.Background(), reviewerID)
	if err != nil {
		t.Fatalf("рецензент должен видеть очередь: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("в очереди должна быть одна заявка, получили %d", len(pending))
	}
}

func TestGetProposalViewRights(t *testing.T) {
	f := newEngineFixture()
	memberID := f.members.addMember(models.RoleMember)
	strangerID := f.members.addMember(models.RoleMember)
	reviewerID := f.members.addMember(models.RoleInstructor)
	skillID := f.skills.addSkill("paragliding", openLevels())

	proposal, _ := f.engine.Submit(context.Background(), SubmitInput{
		MemberID:      memberID,
		SkillID:       skillID,
		ProposedLevel: 1,
		Reasoning:     validReasoning,
	})

	if _, err := f.engine.GetProposal(context.Background(), memberID, proposal.ID); err != nil {
		t.Fatalf("автор должен видеть свою заявку: %v", err)
	}
	if _, err := f.engine.GetProposal(context.Background(), reviewerID, proposal.ID); err != nil {
		t.Fatalf("рецензент должен видеть заявку: %v", err)
	}
	if _, err := f.engine.GetProposal(context.Background(), strangerID, proposal.ID); apperror.CodeOf(err) != apperror.ErrCodeForbidden {
		t.Fatalf("посторонний участник: ожидали FORBIDDEN, получили %v", err)
	}
}
