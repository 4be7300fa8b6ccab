package services

import (
	"context"
	"log/slog"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

// questionPoolService turns a selection rule into the concrete questions
// an attempt receives from it: resolve the candidate pool, verify it can
// cover the rule, then apply the rule's selection strategy.
type questionPoolService struct {
	matcher  *criteriaMatcher
	selector *questionSelector
	logger   *slog.Logger
}

func NewQuestionPoolService(matcher *criteriaMatcher, selector *questionSelector, logger *slog.Logger) QuestionPoolService {
	return &questionPoolService{
		matcher:  matcher,
		selector: selector,
		logger:   logger.With("service", "question_pool"),
	}
}

func (s *questionPoolService) BuildPool(ctx context.Context, repo repositories.Repository, scope models.AuthContext, testID uint, rule *models.TestRule) ([]*models.Question, error) {
	if rule == nil || !rule.IsActive {
		return nil, ErrRuleNotFound
	}

	pool, err := s.resolveCandidates(ctx, repo, scope, testID, rule)
	if err != nil {
		return nil, err
	}

	if len(pool) < rule.NumberOfQuestions {
		return nil, NewInsufficientPoolError(rule.ID, rule.Name, len(pool), rule.NumberOfQuestions)
	}

	// poolSize narrows the draw set; sufficiency was already settled above
	pool = s.selector.Narrow(pool, rule.PoolSize, rule.SelectionStrategy)

	selected := s.selector.Select(pool, rule.NumberOfQuestions, rule.SelectionStrategy)

	s.logger.Debug("pool built",
		"rule_id", rule.ID,
		"mode", rule.SelectionMode,
		"candidates", len(pool),
		"selected", len(selected))
	return selected, nil
}

func (s *questionPoolService) resolveCandidates(ctx context.Context, repo repositories.Repository, scope models.AuthContext, testID uint, rule *models.TestRule) ([]*models.Question, error) {
	switch rule.SelectionMode {
	case models.SelectionPreselected:
		return s.preselectedCandidates(ctx, repo, scope, testID, rule.ID)
	case models.SelectionDynamic:
		return s.matcher.FindMatching(ctx, repo, scope, rule.Criteria.Data())
	default:
		return nil, NewValidationError("selection_mode", "unknown selection mode", string(rule.SelectionMode))
	}
}

// preselectedCandidates reads the rule's curated test-question rows and
// hydrates them, preserving the authored ordering.
func (s *questionPoolService) preselectedCandidates(ctx context.Context, repo repositories.Repository, scope models.AuthContext, testID, ruleID uint) ([]*models.Question, error) {
	rows, err := repo.TestQuestion().GetByRule(ctx, nil, testID, ruleID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.QuestionID
	}
	questions, err := repo.Question().GetByIDs(ctx, nil, scope, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]*models.Question, 0, len(rows))
	for _, row := range rows {
		if q, ok := byID[row.QuestionID]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}
