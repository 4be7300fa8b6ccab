package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

// DefaultPassThreshold is the pass mark (percent) applied when a test does
// not carry its own passing_marks.
const DefaultPassThreshold = 60.0

// gradingService computes attempt scores. Two paths exist: fully objective
// attempts are scored at submit time; attempts containing review-graded
// questions are scored in two phases, objective credit at submit and the
// final score once every review-graded answer has a reviewer score.
type gradingService struct {
	logger *slog.Logger
}

func NewGradingService(logger *slog.Logger) GradingService {
	return &gradingService{logger: logger.With("service", "grading")}
}

// needsReview reports whether a question cannot be auto-scored.
func needsReview(q *models.Question) bool {
	return q.GradingType == models.GradingExercise || q.Type == models.Subjective || q.Type == models.Essay
}

func passThreshold(test *models.Test) float64 {
	if test != nil && test.PassingMarks > 0 {
		return float64(test.PassingMarks)
	}
	return DefaultPassThreshold
}

// ScoreAttempt runs the submit-time scoring phase. Answer rows for
// objective questions get their credit persisted; if every question is
// objective the attempt's final score and pass/fail result are set on the
// passed struct, otherwise the attempt is parked in pending review.
// The caller persists the attempt row.
func (s *gradingService) ScoreAttempt(ctx context.Context, repo repositories.Repository, scope models.AuthContext, attempt *models.TestAttempt) (*AttemptGradingResult, error) {
	questions, answers, test, err := s.loadAttemptMaterial(ctx, repo, scope, attempt)
	if err != nil {
		return nil, err
	}

	result := &AttemptGradingResult{AttemptID: attempt.ID}
	pending := false
	totalMarks := 0
	totalScore := 0.0

	for _, q := range questions {
		ans := answers[q.ID]

		if needsReview(q) {
			if ans != nil {
				pending = true
				result.Answers = append(result.Answers, GradingResult{
					QuestionID:  q.ID,
					MaxScore:    float64(q.Marks),
					NeedsReview: true,
				})
			}
			// review-graded questions still count toward the total
			totalMarks += q.Marks
			continue
		}

		totalMarks += q.Marks
		gr := GradingResult{QuestionID: q.ID, MaxScore: float64(q.Marks)}
		if ans != nil {
			payload, decodeErr := models.DecodeAnswer(ans.Answer)
			if decodeErr == nil {
				scored, scoreErr := s.ScoreAnswer(q, payload)
				if scoreErr == nil {
					gr = *scored
				}
			}
			if err := s.persistAnswerScore(ctx, repo, ans, gr.Score); err != nil {
				return nil, err
			}
		}
		totalScore += gr.Score
		result.Answers = append(result.Answers, gr)
	}

	if pending {
		attempt.ReviewStatus = models.ReviewPending
		result.ReviewStatus = models.ReviewPending
		s.logger.Info("attempt parked for review",
			"attempt_id", attempt.ID,
			"objective_score", totalScore)
		return result, nil
	}

	score := percentage(totalScore, totalMarks)
	verdict := verdictFor(score, passThreshold(test))
	attempt.ReviewStatus = models.ReviewNotApplicable
	attempt.Score = &score
	attempt.Result = &verdict

	result.Score = score
	result.Result = &verdict
	result.ReviewStatus = models.ReviewNotApplicable
	return result, nil
}

// FinalizeReview applies reviewer scores and computes the final result.
// Every answered review-graded question must carry a review; reviewer
// scores are clamped-checked against the question's marks.
func (s *gradingService) FinalizeReview(ctx context.Context, repo repositories.Repository, scope models.AuthContext, attempt *models.TestAttempt, reviews []repositories.AnswerReview, reviewerID string) (*AttemptGradingResult, error) {
	questions, answers, test, err := s.loadAttemptMaterial(ctx, repo, scope, attempt)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]repositories.AnswerReview, len(reviews))
	for _, rv := range reviews {
		byQuestion[rv.QuestionID] = rv
	}

	result := &AttemptGradingResult{AttemptID: attempt.ID}
	totalMarks := 0
	totalScore := 0.0
	now := time.Now()

	for _, q := range questions {
		totalMarks += q.Marks
		ans := answers[q.ID]
		gr := GradingResult{QuestionID: q.ID, MaxScore: float64(q.Marks)}

		switch {
		case ans == nil:
			// unanswered, zero credit

		case needsReview(q):
			rv, ok := byQuestion[q.ID]
			if !ok {
				return nil, NewValidationError("answers", "missing review for answered question", q.ID)
			}
			if rv.Score < 0 || rv.Score > float64(q.Marks) {
				return nil, NewValidationError("score", "review score out of range for question", rv.Score)
			}
			gr.Score = rv.Score
			ans.Score = &rv.Score
			ans.ReviewStatus = models.AnswerReviewReviewed
			ans.ReviewedBy = &reviewerID
			ans.Remarks = rv.Remarks
			if err := repo.Answer().Update(ctx, nil, ans); err != nil {
				return nil, err
			}

		default:
			// objective credit was persisted at submit time
			if ans.Score != nil {
				gr.Score = *ans.Score
			}
		}

		totalScore += gr.Score
		result.Answers = append(result.Answers, gr)
	}

	score := percentage(totalScore, totalMarks)
	verdict := verdictFor(score, passThreshold(test))
	attempt.Score = &score
	attempt.Result = &verdict
	attempt.ReviewStatus = models.ReviewReviewed
	attempt.ReviewedAt = &now

	result.Score = score
	result.Result = &verdict
	result.ReviewStatus = models.ReviewReviewed
	return result, nil
}

// ScoreAnswer computes objective credit for one answer. Credit is all or
// nothing: a selection must hit exactly the correct option set, blanks and
// match pairs must all be right.
func (s *gradingService) ScoreAnswer(q *models.Question, payload *models.AnswerPayload) (*GradingResult, error) {
	gr := &GradingResult{QuestionID: q.ID, MaxScore: float64(q.Marks)}
	if needsReview(q) {
		gr.NeedsReview = true
		return gr, nil
	}
	if payload == nil {
		correct := false
		gr.IsCorrect = &correct
		return gr, nil
	}

	var correct bool
	switch q.Type {
	case models.SingleChoice, models.TrueFalse, models.MultiSelect:
		correct = selectionMatchesKey(q, payload.SelectedOptionIDs)
	case models.FillBlank:
		correct = blanksMatchKey(q, payload.Blanks)
	case models.Match:
		correct = matchesMatchKey(q, payload.Matches)
	default:
		gr.NeedsReview = true
		return gr, nil
	}

	gr.IsCorrect = &correct
	if correct {
		gr.Score = float64(q.Marks)
	}
	return gr, nil
}

// selectionMatchesKey requires the selected set to equal the correct set
// exactly, so a multi-select with one wrong extra earns nothing.
func selectionMatchesKey(q *models.Question, selected []uint) bool {
	key := make(map[uint]struct{})
	for _, opt := range q.CorrectOptions() {
		key[opt.ID] = struct{}{}
	}
	if len(selected) != len(key) || len(key) == 0 {
		return false
	}
	for _, id := range selected {
		if _, ok := key[id]; !ok {
			return false
		}
	}
	return true
}

func blanksMatchKey(q *models.Question, blanks []models.BlankAnswer) bool {
	key := make(map[int]string)
	for _, opt := range q.Options {
		if opt.BlankIndex != nil && opt.IsCorrect {
			key[*opt.BlankIndex] = normalizeText(opt.Text)
		}
	}
	if len(key) == 0 || len(blanks) != len(key) {
		return false
	}
	for _, b := range blanks {
		want, ok := key[b.BlankIndex]
		if !ok || normalizeText(b.Text) != want {
			return false
		}
	}
	return true
}

func matchesMatchKey(q *models.Question, matches []models.MatchAnswer) bool {
	key := make(map[uint]string)
	for _, opt := range q.Options {
		if opt.MatchTarget != nil {
			key[opt.ID] = *opt.MatchTarget
		}
	}
	if len(key) == 0 || len(matches) != len(key) {
		return false
	}
	for _, m := range matches {
		want, ok := key[m.OptionID]
		if !ok || m.Target != want {
			return false
		}
	}
	return true
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func percentage(score float64, totalMarks int) float64 {
	if totalMarks == 0 {
		return 0
	}
	return score / float64(totalMarks) * 100
}

func verdictFor(score, threshold float64) models.AttemptResult {
	if score >= threshold {
		return models.ResultPass
	}
	return models.ResultFail
}

func (s *gradingService) persistAnswerScore(ctx context.Context, repo repositories.Repository, ans *models.TestUserAnswer, score float64) error {
	system := models.SystemUserID
	ans.Score = &score
	ans.ReviewStatus = models.AnswerReviewReviewed
	ans.ReviewedBy = &system
	return repo.Answer().Update(ctx, nil, ans)
}

// loadAttemptMaterial fetches the attempt's resolved question set, its
// answers keyed by question, and the originating test (for the threshold).
func (s *gradingService) loadAttemptMaterial(ctx context.Context, repo repositories.Repository, scope models.AuthContext, attempt *models.TestAttempt) ([]*models.Question, map[uint]*models.TestUserAnswer, *models.Test, error) {
	rows, err := repo.TestQuestion().GetByTest(ctx, nil, attempt.ResolvedTest())
	if err != nil {
		return nil, nil, nil, err
	}
	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.QuestionID
	}
	questionList, err := repo.Question().GetByIDs(ctx, nil, scope, ids)
	if err != nil {
		return nil, nil, nil, err
	}
	byID := make(map[uint]*models.Question, len(questionList))
	for _, q := range questionList {
		byID[q.ID] = q
	}
	ordered := make([]*models.Question, 0, len(rows))
	for _, row := range rows {
		if q, ok := byID[row.QuestionID]; ok {
			ordered = append(ordered, q)
		}
	}

	answerRows, err := repo.Answer().GetByAttempt(ctx, nil, attempt.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	answers := make(map[uint]*models.TestUserAnswer, len(answerRows))
	for _, a := range answerRows {
		answers[a.QuestionID] = a
	}

	// threshold comes from the originating test, not the generated instance
	test, err := repo.Test().GetByID(ctx, nil, scope, attempt.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, nil, ErrTestNotFound
		}
		return nil, nil, nil, err
	}

	return ordered, answers, test, nil
}
