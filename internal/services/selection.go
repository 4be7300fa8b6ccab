package services

import (
	"math/rand"
	"sort"
	"time"

	"github.com/classward/test-delivery-service/internal/models"
)

// questionSelector picks questions out of a candidate pool according to a
// rule's selection strategy. The random source is injectable so selection
// can be made deterministic under test.
type questionSelector struct {
	rng *rand.Rand
}

func NewQuestionSelector() *questionSelector {
	return &questionSelector{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func NewQuestionSelectorWithSource(src rand.Source) *questionSelector {
	return &questionSelector{rng: rand.New(src)}
}

// Select returns count questions from pool per the strategy. When the pool
// is smaller than count the whole pool is returned; callers that need a
// full pool check sufficiency before selecting. The input slice is never
// mutated.
func (s *questionSelector) Select(pool []*models.Question, count int, strategy models.SelectionStrategy) []*models.Question {
	if count >= len(pool) {
		out := make([]*models.Question, len(pool))
		copy(out, pool)
		if strategy == models.SelectionWeighted {
			sortByWeight(out)
		}
		return out
	}

	switch strategy {
	case models.SelectionSequential:
		out := make([]*models.Question, count)
		copy(out, pool[:count])
		return out

	case models.SelectionWeighted:
		out := make([]*models.Question, len(pool))
		copy(out, pool)
		sortByWeight(out)
		return out[:count]

	case models.SelectionRandom:
		return s.shuffleTake(pool, count)

	default:
		// unrecognized strategies degrade to random rather than failing
		// an attempt start
		return s.shuffleTake(pool, count)
	}
}

// Narrow trims an oversized pool to size before selection without fighting
// the strategy: sequential pools keep their prefix, weighted pools keep
// their heaviest questions, random pools are shuffled first so the cap is
// an unbiased draw rather than a catalog-order prefix.
func (s *questionSelector) Narrow(pool []*models.Question, size int, strategy models.SelectionStrategy) []*models.Question {
	if size <= 0 || len(pool) <= size {
		return pool
	}
	switch strategy {
	case models.SelectionSequential:
		return pool[:size]
	case models.SelectionWeighted:
		out := make([]*models.Question, len(pool))
		copy(out, pool)
		sortByWeight(out)
		return out[:size]
	default:
		return s.shuffleTake(pool, size)
	}
}

func (s *questionSelector) shuffleTake(pool []*models.Question, count int) []*models.Question {
	out := make([]*models.Question, len(pool))
	copy(out, pool)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out[:count]
}

// sortByWeight orders questions by marks descending. The sort is stable so
// equally weighted questions keep their pool order, which keeps weighted
// selection reproducible for a fixed pool.
func sortByWeight(questions []*models.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Marks > questions[j].Marks
	})
}
