package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/classward/test-delivery-service/internal/cache"
	"github.com/classward/test-delivery-service/internal/events"
	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

const attemptStartLockTTL = 10 * time.Second

// attemptService drives the attempt lifecycle: generation at start,
// answer intake while in progress, scoring at submit, review afterwards.
// Every mutating operation runs inside one repository transaction.
type attemptService struct {
	repo      repositories.Repository
	pool      QuestionPoolService
	grading   GradingService
	answers   *answerValidator
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewAttemptService(
	repo repositories.Repository,
	pool QuestionPoolService,
	grading GradingService,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
) AttemptService {
	return &attemptService{
		repo:      repo,
		pool:      pool,
		grading:   grading,
		answers:   NewAnswerValidator(),
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger.With("service", "attempt"),
	}
}

// Start creates a new attempt, materializing a generated test first when
// the target is rule_based. A redis lease serializes racing starts for the
// same (test, user); the unique index on (test_id, user_id, attempt) is
// the hard backstop when no redis is configured.
func (s *attemptService) Start(ctx context.Context, scope models.AuthContext, req *StartAttemptRequest) (*AttemptResponse, error) {
	lockKey := cache.AttemptStartLockKey(req.TestID, scope.UserID)
	if err := s.cache.Lock.AcquireLock(ctx, lockKey, attemptStartLockTTL); err != nil {
		if errors.Is(err, cache.ErrLockNotAcquired) {
			return nil, ErrAttemptStartConflict
		}
		return nil, err
	}
	defer s.cache.Lock.ReleaseLock(ctx, lockKey)

	var attempt *models.TestAttempt
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		test, err := txRepo.Test().GetByID(ctx, nil, scope, req.TestID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTestNotFound
			}
			return err
		}
		if test.Type == models.TestGenerated {
			// generated instances belong to one attempt, never started directly
			return ErrTestNotFound
		}
		if test.Status != models.TestPublished {
			return ErrTestNotPublished
		}

		count, err := txRepo.Attempt().CountByTestAndUser(ctx, nil, scope, test.ID, scope.UserID)
		if err != nil {
			return err
		}
		if test.Attempts > 0 && count >= int64(test.Attempts) {
			return ErrAttemptLimitExceeded
		}

		attempt = &models.TestAttempt{
			TenantID:       scope.TenantID,
			OrganisationID: scope.OrganisationID,
			TestID:         test.ID,
			UserID:         scope.UserID,
			Attempt:        int(count) + 1,
			Status:         models.AttemptInProgress,
			ReviewStatus:   models.ReviewNotApplicable,
			StartedAt:      time.Now(),
		}

		if test.Type == models.TestRuleBased {
			generated, err := s.materializeTest(ctx, txRepo, scope, test, attempt.Attempt)
			if err != nil {
				return err
			}
			attempt.ResolvedTestID = &generated.ID
		}

		return txRepo.Attempt().Create(ctx, nil, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.AttemptStarted, scope, map[string]interface{}{
		"attempt_id":     attempt.ID,
		"test_id":        attempt.TestID,
		"attempt_number": attempt.Attempt,
	})
	s.logger.Info("attempt started",
		"attempt_id", attempt.ID,
		"test_id", attempt.TestID,
		"user_id", scope.UserID,
		"attempt_number", attempt.Attempt)
	return s.toResponse(attempt), nil
}

// materializeTest builds the generated test instance for one attempt at a
// rule_based test: one TestQuestion row per selected question, ordering
// counted monotonically across all rules so higher-priority rules come
// first. Runs inside the caller's transaction; any rule failure aborts the
// whole start.
func (s *attemptService) materializeTest(ctx context.Context, txRepo repositories.Repository, scope models.AuthContext, source *models.Test, attemptNumber int) (*models.Test, error) {
	generated := &models.Test{
		TenantID:       scope.TenantID,
		OrganisationID: scope.OrganisationID,
		Title:          fmt.Sprintf("Generated Test for %s - Attempt %d", source.Title, attemptNumber),
		Description:    source.Description,
		Type:           models.TestGenerated,
		Status:         source.Status,
		Duration:       source.Duration,
		PassingMarks:   source.PassingMarks,
		SourceTestID:   &source.ID,
		CreatedBy:      models.SystemUserID,
	}
	if err := txRepo.Test().Create(ctx, nil, generated); err != nil {
		return nil, err
	}

	rules, err := txRepo.TestRule().GetActiveByTest(ctx, nil, source.ID)
	if err != nil {
		return nil, err
	}

	ordering := 1
	var rows []*models.TestQuestion
	// Overlapping rule criteria can select the same question twice; the
	// first (higher-priority) rule keeps it, later rules skip it so the
	// batch insert never trips the (test_id, question_id) unique index.
	placed := make(map[uint]struct{})
	for _, rule := range rules {
		selected, err := s.pool.BuildPool(ctx, txRepo, scope, source.ID, rule)
		if err != nil {
			return nil, err
		}
		ruleID := rule.ID
		for _, q := range selected {
			if _, dup := placed[q.ID]; dup {
				continue
			}
			placed[q.ID] = struct{}{}
			rows = append(rows, &models.TestQuestion{
				TestID:       generated.ID,
				QuestionID:   q.ID,
				SectionID:    rule.SectionID,
				RuleID:       &ruleID,
				Ordering:     ordering,
				IsCompulsory: false,
			})
			ordering++
		}
	}
	if len(rows) > 0 {
		if err := txRepo.TestQuestion().CreateBatch(ctx, nil, rows); err != nil {
			return nil, err
		}
	}
	return generated, nil
}

func (s *attemptService) GetByID(ctx context.Context, scope models.AuthContext, id uint) (*AttemptResponse, error) {
	attempt, err := s.getOwned(ctx, s.repo, scope, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(attempt), nil
}

// GetQuestions returns the attempt's question set in presentation form:
// ordered by the materialized ordering, answer key stripped, the user's
// existing answers folded in.
func (s *attemptService) GetQuestions(ctx context.Context, scope models.AuthContext, attemptID uint) ([]QuestionForAttempt, error) {
	attempt, err := s.getOwned(ctx, s.repo, scope, attemptID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.TestQuestion().GetByTest(ctx, nil, attempt.ResolvedTest())
	if err != nil {
		return nil, err
	}
	answerRows, err := s.repo.Answer().GetByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, err
	}
	answers := make(map[uint]*models.TestUserAnswer, len(answerRows))
	for _, a := range answerRows {
		answers[a.QuestionID] = a
	}

	out := make([]QuestionForAttempt, 0, len(rows))
	for _, row := range rows {
		q := row.Question
		item := QuestionForAttempt{
			ID:        q.ID,
			Type:      q.Type,
			Text:      q.Text,
			Marks:     q.Marks,
			Ordering:  row.Ordering,
			SectionID: row.SectionID,
			Params:    q.Params.Data(),
		}
		for _, opt := range q.Options {
			item.Options = append(item.Options, OptionForAttempt{
				ID:         opt.ID,
				Text:       opt.Text,
				Ordering:   opt.Ordering,
				BlankIndex: opt.BlankIndex,
			})
			if opt.MatchTarget != nil {
				item.MatchTargets = append(item.MatchTargets, *opt.MatchTarget)
			}
		}
		sort.Strings(item.MatchTargets)
		if ans, ok := answers[q.ID]; ok {
			if payload, err := models.DecodeAnswer(ans.Answer); err == nil {
				item.UserAnswer = payload
			}
			item.AnswerStatus = ans.ReviewStatus
		}
		out = append(out, item)
	}
	return out, nil
}

// SubmitAnswer validates and upserts one answer. Legal only while the
// attempt is in progress; a failing validation leaves no answer row.
func (s *attemptService) SubmitAnswer(ctx context.Context, scope models.AuthContext, attemptID uint, req *SubmitAnswerRequest) error {
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		attempt, err := s.getOwned(ctx, txRepo, scope, attemptID)
		if err != nil {
			return err
		}
		if attempt.Status != models.AttemptInProgress {
			return NewInvalidStateError(attempt.ID, string(attempt.Status), "submit answer to")
		}

		question, err := s.attemptQuestion(ctx, txRepo, attempt, req.QuestionID)
		if err != nil {
			return err
		}
		if err := s.answers.Validate(question, &req.Answer); err != nil {
			return err
		}

		raw, err := json.Marshal(req.Answer)
		if err != nil {
			return err
		}
		answer := &models.TestUserAnswer{
			AttemptID:    attempt.ID,
			QuestionID:   question.ID,
			Answer:       raw,
			ReviewStatus: models.AnswerReviewPending,
		}
		if req.TimeSpent != nil {
			answer.TimeSpent = *req.TimeSpent
		}
		return txRepo.Answer().Upsert(ctx, nil, answer)
	})
	if err != nil {
		return err
	}

	s.emit(ctx, events.AnswerSubmitted, scope, map[string]interface{}{
		"attempt_id":  attemptID,
		"question_id": req.QuestionID,
	})
	return nil
}

// Submit moves the attempt to submitted and runs the submit-time scoring
// phase: fully objective attempts come out scored with a pass/fail result,
// mixed ones are parked in pending review.
func (s *attemptService) Submit(ctx context.Context, scope models.AuthContext, attemptID uint) (*AttemptResponse, error) {
	var attempt *models.TestAttempt
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		attempt, err = s.getOwned(ctx, txRepo, scope, attemptID)
		if err != nil {
			return err
		}
		if attempt.Status != models.AttemptInProgress {
			return NewInvalidStateError(attempt.ID, string(attempt.Status), "submit")
		}

		now := time.Now()
		attempt.Status = models.AttemptSubmitted
		attempt.SubmittedAt = &now
		attempt.SubmissionType = models.SubmissionSelf

		if _, err := s.grading.ScoreAttempt(ctx, txRepo, scope, attempt); err != nil {
			return err
		}
		return txRepo.Attempt().Update(ctx, nil, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.AttemptKey(attempt.ID))
	s.emit(ctx, events.AttemptSubmitted, scope, map[string]interface{}{
		"attempt_id":    attempt.ID,
		"test_id":       attempt.TestID,
		"review_status": attempt.ReviewStatus,
		"score":         attempt.Score,
	})
	s.logger.Info("attempt submitted",
		"attempt_id", attempt.ID,
		"review_status", attempt.ReviewStatus)
	return s.toResponse(attempt), nil
}

// Review finalizes a pending attempt with reviewer scores. Reviewing an
// already-reviewed attempt is rejected rather than overwritten.
func (s *attemptService) Review(ctx context.Context, scope models.AuthContext, attemptID uint, req *ReviewAttemptRequest) (*AttemptResponse, error) {
	reviews := make([]repositories.AnswerReview, len(req.Answers))
	for i, a := range req.Answers {
		reviews[i] = repositories.AnswerReview{
			QuestionID: a.QuestionID,
			Score:      a.Score,
			Remarks:    a.Remarks,
		}
	}

	var attempt *models.TestAttempt
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		attempt, err = txRepo.Attempt().GetByID(ctx, nil, scope, attemptID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAttemptNotFound
			}
			return err
		}
		if attempt.Status != models.AttemptSubmitted {
			return NewInvalidStateError(attempt.ID, string(attempt.Status), "review")
		}
		if attempt.ReviewStatus != models.ReviewPending && attempt.ReviewStatus != models.ReviewUnderReview {
			return NewInvalidStateError(attempt.ID, string(attempt.ReviewStatus), "review")
		}

		if _, err := s.grading.FinalizeReview(ctx, txRepo, scope, attempt, reviews, scope.UserID); err != nil {
			return err
		}
		return txRepo.Attempt().Update(ctx, nil, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.AttemptKey(attempt.ID))
	s.emit(ctx, events.AttemptReviewed, scope, map[string]interface{}{
		"attempt_id":  attempt.ID,
		"reviewed_by": scope.UserID,
		"score":       attempt.Score,
		"result":      attempt.Result,
	})
	s.logger.Info("attempt reviewed",
		"attempt_id", attempt.ID,
		"reviewed_by", scope.UserID)
	return s.toResponse(attempt), nil
}

func (s *attemptService) List(ctx context.Context, scope models.AuthContext, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	attempts, total, err := s.repo.Attempt().List(ctx, nil, scope, filters)
	if err != nil {
		return nil, err
	}
	out := make([]*AttemptResponse, len(attempts))
	for i, a := range attempts {
		out[i] = s.toResponse(a)
	}
	return &AttemptListResponse{Attempts: out, Total: total}, nil
}

func (s *attemptService) GetAttemptCount(ctx context.Context, scope models.AuthContext, testID uint) (int, error) {
	count, err := s.repo.Attempt().CountByTestAndUser(ctx, nil, scope, testID, scope.UserID)
	return int(count), err
}

// getOwned loads an attempt and enforces ownership: a non-system caller
// only sees their own attempts, and cross-scope rows surface as not found.
func (s *attemptService) getOwned(ctx context.Context, repo repositories.Repository, scope models.AuthContext, id uint) (*models.TestAttempt, error) {
	attempt, err := repo.Attempt().GetByID(ctx, nil, scope, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	if !scope.IsSystem() && attempt.UserID != scope.UserID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// attemptQuestion resolves a question through the attempt's materialized
// test, so answers against questions outside the attempt are rejected.
func (s *attemptService) attemptQuestion(ctx context.Context, repo repositories.Repository, attempt *models.TestAttempt, questionID uint) (*models.Question, error) {
	rows, err := repo.TestQuestion().GetByTest(ctx, nil, attempt.ResolvedTest())
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.QuestionID == questionID {
			q := row.Question
			return &q, nil
		}
	}
	return nil, ErrQuestionNotFound
}

func (s *attemptService) toResponse(attempt *models.TestAttempt) *AttemptResponse {
	return &AttemptResponse{
		TestAttempt: attempt,
		CanSubmit:   attempt.Status == models.AttemptInProgress,
		IsPendingGrade: attempt.ReviewStatus == models.ReviewPending ||
			attempt.ReviewStatus == models.ReviewUnderReview,
	}
}

// emit publishes a domain event best-effort. Failures are logged and
// swallowed; they never fail the operation that produced them.
func (s *attemptService) emit(ctx context.Context, eventType string, scope models.AuthContext, data interface{}) {
	ev := events.NewEvent(eventType, scope, data)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Error("event publish failed",
			"event_type", eventType,
			"error", err)
	}
}
