package services

import (
	"context"
	"log/slog"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

// criteriaMatcher resolves a rule's criteria into the set of published
// questions it covers. Scalar criteria (category, level, type, marks,
// creation window) are pushed down to SQL; tag matching and the
// include/exclude lists are applied in memory on the fetched set.
type criteriaMatcher struct {
	logger *slog.Logger
}

func NewCriteriaMatcher(logger *slog.Logger) *criteriaMatcher {
	return &criteriaMatcher{logger: logger}
}

// FindMatching returns every published, in-scope question satisfying the
// criteria. Scalar dimensions are pushed down to SQL; tag matching and the
// include/exclude lists finish in memory.
func (m *criteriaMatcher) FindMatching(ctx context.Context, repo repositories.Repository, scope models.AuthContext, criteria models.RuleCriteria) ([]*models.Question, error) {
	filters := repositories.CatalogFilters{
		CategoryIDs: criteria.CategoryIDs,
		Levels:      criteria.Levels,
		Types:       criteria.Types,
		Marks:       criteria.Marks,
		CreatedFrom: criteria.CreatedFrom,
		CreatedTo:   criteria.CreatedTo,
	}

	candidates, err := repo.Question().FindPublished(ctx, nil, scope, filters)
	if err != nil {
		return nil, err
	}

	matched := MatchQuestions(candidates, criteria)
	m.logger.Debug("criteria matched",
		"candidates", len(candidates),
		"matched", len(matched))
	return matched, nil
}

// MatchQuestions filters questions against criteria in memory. Every
// populated dimension must hold: an IncludeQuestionIDs list restricts the
// result to its members, and those members still have to satisfy the
// remaining criteria. Exclusion always wins over inclusion.
func MatchQuestions(questions []*models.Question, criteria models.RuleCriteria) []*models.Question {
	excluded := idSet(criteria.ExcludeQuestionIDs)
	included := idSet(criteria.IncludeQuestionIDs)

	var out []*models.Question
	for _, q := range questions {
		if _, skip := excluded[q.ID]; skip {
			continue
		}
		if len(included) > 0 {
			if _, ok := included[q.ID]; !ok {
				continue
			}
		}
		if matchesCriteria(q, criteria) {
			out = append(out, q)
		}
	}
	return out
}

func matchesCriteria(q *models.Question, c models.RuleCriteria) bool {
	if len(c.CategoryIDs) > 0 {
		if q.CategoryID == nil || !containsUint(c.CategoryIDs, *q.CategoryID) {
			return false
		}
	}
	if len(c.Levels) > 0 && !containsLevel(c.Levels, q.Level) {
		return false
	}
	if len(c.Types) > 0 && !containsType(c.Types, q.Type) {
		return false
	}
	if len(c.Marks) > 0 && !containsInt(c.Marks, q.Marks) {
		return false
	}
	if len(c.Tags) > 0 && !hasAllTags(q.TagList(), c.Tags) {
		return false
	}
	if c.CreatedFrom != nil && q.CreatedAt.Before(*c.CreatedFrom) {
		return false
	}
	if c.CreatedTo != nil && q.CreatedAt.After(*c.CreatedTo) {
		return false
	}
	return true
}

func hasAllTags(have, want []string) bool {
	if len(have) < len(want) {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func idSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func containsUint(list []uint, v uint) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsLevel(list []models.DifficultyLevel, v models.DifficultyLevel) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsType(list []models.QuestionType, v models.QuestionType) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
