package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/cache"
	"github.com/classward/test-delivery-service/internal/events"
	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
	"github.com/classward/test-delivery-service/internal/validator"
)

// fakeRepo is an in-memory repositories.Repository so service behavior can
// be driven without a database. Transactions are flat: fn runs against the
// same store.
type fakeRepo struct {
	mu            sync.Mutex
	questions     map[uint]*models.Question
	tests         map[uint]*models.Test
	sections      map[uint]*models.TestSection
	testQuestions map[uint]*models.TestQuestion
	rules         map[uint]*models.TestRule
	attempts      map[uint]*models.TestAttempt
	answers       map[uint]*models.TestUserAnswer
	nextID        uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		questions:     make(map[uint]*models.Question),
		tests:         make(map[uint]*models.Test),
		sections:      make(map[uint]*models.TestSection),
		testQuestions: make(map[uint]*models.TestQuestion),
		rules:         make(map[uint]*models.TestRule),
		attempts:      make(map[uint]*models.TestAttempt),
		answers:       make(map[uint]*models.TestUserAnswer),
	}
}

func (r *fakeRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) Question() repositories.QuestionRepository         { return &fakeQuestionRepo{r} }
func (r *fakeRepo) Test() repositories.TestRepository                 { return &fakeTestRepo{r} }
func (r *fakeRepo) TestSection() repositories.TestSectionRepository   { return &fakeSectionRepo{r} }
func (r *fakeRepo) TestQuestion() repositories.TestQuestionRepository { return &fakeTestQuestionRepo{r} }
func (r *fakeRepo) TestRule() repositories.TestRuleRepository         { return &fakeRuleRepo{r} }
func (r *fakeRepo) Attempt() repositories.AttemptRepository           { return &fakeAttemptRepo{r} }
func (r *fakeRepo) Answer() repositories.AnswerRepository             { return &fakeAnswerRepo{r} }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

func scopeMatches(scope models.AuthContext, tenant, org uuid.UUID) bool {
	return scope.TenantID == tenant && scope.OrganisationID == org
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ r *fakeRepo }

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q.ID = f.r.id()
	for i := range q.Options {
		q.Options[i].ID = f.r.id()
		q.Options[i].QuestionID = q.ID
	}
	f.r.questions[q.ID] = q
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q, ok := f.r.questions[id]
	if !ok || !scopeMatches(scope, q.TenantID, q.OrganisationID) {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (f *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, scope models.AuthContext, ids []uint) ([]*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.Question
	for _, id := range ids {
		if q, ok := f.r.questions[id]; ok && scopeMatches(scope, q.TenantID, q.OrganisationID) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.questions[q.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.questions[q.ID] = q
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q, ok := f.r.questions[id]
	if !ok || !scopeMatches(scope, q.TenantID, q.OrganisationID) {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.questions, id)
	return nil
}

func (f *fakeQuestionRepo) List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.Question
	for _, q := range f.r.questions {
		if !scopeMatches(scope, q.TenantID, q.OrganisationID) {
			continue
		}
		if filters.Type != nil && q.Type != *filters.Type {
			continue
		}
		if filters.Status != nil && q.Status != *filters.Status {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeQuestionRepo) FindPublished(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.CatalogFilters) ([]*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.Question
	for _, q := range f.r.questions {
		if q.Status != models.QuestionPublished || !scopeMatches(scope, q.TenantID, q.OrganisationID) {
			continue
		}
		if len(filters.CategoryIDs) > 0 && (q.CategoryID == nil || !containsUint(filters.CategoryIDs, *q.CategoryID)) {
			continue
		}
		if len(filters.Levels) > 0 && !containsLevel(filters.Levels, q.Level) {
			continue
		}
		if len(filters.Types) > 0 && !containsType(filters.Types, q.Type) {
			continue
		}
		if len(filters.Marks) > 0 && !containsInt(filters.Marks, q.Marks) {
			continue
		}
		if filters.CreatedFrom != nil && q.CreatedAt.Before(*filters.CreatedFrom) {
			continue
		}
		if filters.CreatedTo != nil && q.CreatedAt.After(*filters.CreatedTo) {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuestionRepo) ReplaceOptions(ctx context.Context, tx *gorm.DB, questionID uint, options []models.QuestionOption) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q, ok := f.r.questions[questionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range options {
		options[i].ID = f.r.id()
		options[i].QuestionID = questionID
	}
	q.Options = options
	return nil
}

// ===== TESTS =====

type fakeTestRepo struct{ r *fakeRepo }

func (f *fakeTestRepo) Create(ctx context.Context, tx *gorm.DB, t *models.Test) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t.ID = f.r.id()
	f.r.tests[t.ID] = t
	return nil
}

func (f *fakeTestRepo) GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Test, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := f.r.tests[id]
	if !ok || !scopeMatches(scope, t.TenantID, t.OrganisationID) {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTestRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Test, error) {
	return f.GetByID(ctx, tx, scope, id)
}

func (f *fakeTestRepo) Update(ctx context.Context, tx *gorm.DB, t *models.Test) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.tests[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.tests[t.ID] = t
	return nil
}

func (f *fakeTestRepo) Delete(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	t, ok := f.r.tests[id]
	if !ok || !scopeMatches(scope, t.TenantID, t.OrganisationID) {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.tests, id)
	return nil
}

func (f *fakeTestRepo) List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.Test
	for _, t := range f.r.tests {
		if !scopeMatches(scope, t.TenantID, t.OrganisationID) {
			continue
		}
		if filters.Type != nil && t.Type != *filters.Type {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== SECTIONS =====

type fakeSectionRepo struct{ r *fakeRepo }

func (f *fakeSectionRepo) Create(ctx context.Context, tx *gorm.DB, s *models.TestSection) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	s.ID = f.r.id()
	f.r.sections[s.ID] = s
	return nil
}

func (f *fakeSectionRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestSection, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestSection
	for _, s := range f.r.sections {
		if s.TestID == testID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordering < out[j].Ordering })
	return out, nil
}

func (f *fakeSectionRepo) Update(ctx context.Context, tx *gorm.DB, s *models.TestSection) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	f.r.sections[s.ID] = s
	return nil
}

func (f *fakeSectionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	delete(f.r.sections, id)
	return nil
}

// ===== TEST QUESTIONS =====

type fakeTestQuestionRepo struct{ r *fakeRepo }

func (f *fakeTestQuestionRepo) Create(ctx context.Context, tx *gorm.DB, tq *models.TestQuestion) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	tq.ID = f.r.id()
	f.r.testQuestions[tq.ID] = tq
	return nil
}

func (f *fakeTestQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, tqs []*models.TestQuestion) error {
	for _, tq := range tqs {
		if err := f.Create(ctx, tx, tq); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTestQuestionRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestQuestion, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestQuestion
	for _, tq := range f.r.testQuestions {
		if tq.TestID != testID {
			continue
		}
		if q, ok := f.r.questions[tq.QuestionID]; ok {
			tq.Question = *q
		}
		out = append(out, tq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordering < out[j].Ordering })
	return out, nil
}

func (f *fakeTestQuestionRepo) GetByRule(ctx context.Context, tx *gorm.DB, testID, ruleID uint) ([]*models.TestQuestion, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestQuestion
	for _, tq := range f.r.testQuestions {
		if tq.TestID == testID && tq.RuleID != nil && *tq.RuleID == ruleID {
			out = append(out, tq)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordering < out[j].Ordering })
	return out, nil
}

func (f *fakeTestQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, testID, questionID uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, tq := range f.r.testQuestions {
		if tq.TestID == testID && tq.QuestionID == questionID {
			delete(f.r.testQuestions, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTestQuestionRepo) DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, tq := range f.r.testQuestions {
		if tq.TestID == testID {
			delete(f.r.testQuestions, id)
		}
	}
	return nil
}

func (f *fakeTestQuestionRepo) Reorder(ctx context.Context, tx *gorm.DB, testID uint, orders []repositories.QuestionOrder) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, order := range orders {
		for _, tq := range f.r.testQuestions {
			if tq.TestID == testID && tq.QuestionID == order.QuestionID {
				tq.Ordering = order.Ordering
			}
		}
	}
	return nil
}

func (f *fakeTestQuestionRepo) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var n int64
	for _, tq := range f.r.testQuestions {
		if tq.TestID == testID {
			n++
		}
	}
	return n, nil
}

// ===== RULES =====

type fakeRuleRepo struct{ r *fakeRepo }

func (f *fakeRuleRepo) Create(ctx context.Context, tx *gorm.DB, rule *models.TestRule) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	rule.ID = f.r.id()
	f.r.rules[rule.ID] = rule
	return nil
}

func (f *fakeRuleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestRule, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	rule, ok := f.r.rules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rule, nil
}

func (f *fakeRuleRepo) GetActiveByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestRule, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestRule
	for _, rule := range f.r.rules {
		if rule.TestID == testID && rule.IsActive {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRuleRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestRule, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestRule
	for _, rule := range f.r.rules {
		if rule.TestID == testID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRuleRepo) Update(ctx context.Context, tx *gorm.DB, rule *models.TestRule) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.rules[rule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.rules[rule.ID] = rule
	return nil
}

func (f *fakeRuleRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	delete(f.r.rules, id)
	return nil
}

// ===== ATTEMPTS =====

type fakeAttemptRepo struct{ r *fakeRepo }

func (f *fakeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, a *models.TestAttempt) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	// mirror the unique index on (test_id, user_id, attempt)
	for _, existing := range f.r.attempts {
		if existing.TestID == a.TestID && existing.UserID == a.UserID && existing.Attempt == a.Attempt {
			return gorm.ErrDuplicatedKey
		}
	}
	a.ID = f.r.id()
	f.r.attempts[a.ID] = a
	return nil
}

func (f *fakeAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.TestAttempt, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	a, ok := f.r.attempts[id]
	if !ok || !scopeMatches(scope, a.TenantID, a.OrganisationID) {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAttemptRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.TestAttempt, error) {
	return f.GetByID(ctx, tx, scope, id)
}

func (f *fakeAttemptRepo) Update(ctx context.Context, tx *gorm.DB, a *models.TestAttempt) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.attempts[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.attempts[a.ID] = a
	return nil
}

func (f *fakeAttemptRepo) CountByTestAndUser(ctx context.Context, tx *gorm.DB, scope models.AuthContext, testID uint, userID string) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var n int64
	for _, a := range f.r.attempts {
		if a.TestID == testID && a.UserID == userID && scopeMatches(scope, a.TenantID, a.OrganisationID) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttemptRepo) List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestAttempt
	for _, a := range f.r.attempts {
		if !scopeMatches(scope, a.TenantID, a.OrganisationID) {
			continue
		}
		if filters.TestID != nil && a.TestID != *filters.TestID {
			continue
		}
		if filters.UserID != nil && a.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== ANSWERS =====

type fakeAnswerRepo struct{ r *fakeRepo }

func (f *fakeAnswerRepo) Upsert(ctx context.Context, tx *gorm.DB, a *models.TestUserAnswer) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, existing := range f.r.answers {
		if existing.AttemptID == a.AttemptID && existing.QuestionID == a.QuestionID {
			existing.Answer = a.Answer
			existing.TimeSpent = a.TimeSpent
			return nil
		}
	}
	a.ID = f.r.id()
	f.r.answers[a.ID] = a
	return nil
}

func (f *fakeAnswerRepo) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.TestUserAnswer, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var out []*models.TestUserAnswer
	for _, a := range f.r.answers {
		if a.AttemptID == attemptID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAnswerRepo) GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID uint) (*models.TestUserAnswer, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, a := range f.r.answers {
		if a.AttemptID == attemptID && a.QuestionID == questionID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAnswerRepo) Update(ctx context.Context, tx *gorm.DB, a *models.TestUserAnswer) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.answers[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.answers[a.ID] = a
	return nil
}

// ===== TEST ENVIRONMENT =====

type testEnv struct {
	repo      *fakeRepo
	scope     models.AuthContext
	publisher *events.MockEventPublisher
	services  ServiceManager
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(logger)
	sm := NewServiceManager(repo, cache.NewCacheManager(nil), publisher, logger, validator.New())
	return &testEnv{
		repo: repo,
		scope: models.AuthContext{
			TenantID:       uuid.New(),
			OrganisationID: uuid.New(),
			UserID:         "user-1",
		},
		publisher: publisher,
		services:  sm,
	}
}

func (e *testEnv) scopeFor(userID string) models.AuthContext {
	scope := e.scope
	scope.UserID = userID
	return scope
}

// seedQuestion stores a published, auto-gradable question directly.
func (e *testEnv) seedQuestion(q *models.Question) *models.Question {
	if q.Status == "" {
		q.Status = models.QuestionPublished
	}
	if q.GradingType == "" {
		q.GradingType = models.GradingQuiz
	}
	q.TenantID = e.scope.TenantID
	q.OrganisationID = e.scope.OrganisationID
	if q.CreatedBy == "" {
		q.CreatedBy = "author-1"
	}
	_ = e.repo.Question().Create(context.Background(), nil, q)
	return q
}

func (e *testEnv) seedTest(t *models.Test) *models.Test {
	if t.Status == "" {
		t.Status = models.TestPublished
	}
	if t.Type == "" {
		t.Type = models.TestPlain
	}
	if t.Attempts == 0 {
		t.Attempts = 3
	}
	t.TenantID = e.scope.TenantID
	t.OrganisationID = e.scope.OrganisationID
	if t.CreatedBy == "" {
		t.CreatedBy = "author-1"
	}
	_ = e.repo.Test().Create(context.Background(), nil, t)
	return t
}

func (e *testEnv) seedRule(r *models.TestRule) *models.TestRule {
	_ = e.repo.TestRule().Create(context.Background(), nil, r)
	return r
}

func (e *testEnv) attachQuestion(testID, questionID uint, ordering int) {
	_ = e.repo.TestQuestion().Create(context.Background(), nil, &models.TestQuestion{
		TestID:     testID,
		QuestionID: questionID,
		Ordering:   ordering,
	})
}

// singleChoiceQuestion builds a question with one correct option.
func singleChoiceQuestion(marks int, level models.DifficultyLevel) *models.Question {
	return &models.Question{
		Type:    models.SingleChoice,
		Text:    "pick one",
		Level:   level,
		Marks:   marks,
		Options: choiceOptions(),
	}
}

func choiceOptions() []models.QuestionOption {
	return []models.QuestionOption{
		{Text: "right", IsCorrect: true, Ordering: 1},
		{Text: "wrong", IsCorrect: false, Ordering: 2},
	}
}

func essayQuestion(marks int) *models.Question {
	return &models.Question{
		Type:        models.Essay,
		Text:        "explain",
		Level:       models.DifficultyMedium,
		Marks:       marks,
		GradingType: models.GradingExercise,
	}
}

func newParams(p models.QuestionParams) datatypes.JSONType[models.QuestionParams] {
	return datatypes.NewJSONType(p)
}

func questionIDs(questions []*models.Question) []uint {
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
