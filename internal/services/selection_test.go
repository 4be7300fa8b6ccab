package services

import (
	"math/rand"
	"testing"

	"github.com/classward/test-delivery-service/internal/models"
)

func poolOf(marks ...int) []*models.Question {
	out := make([]*models.Question, len(marks))
	for i, m := range marks {
		out[i] = &models.Question{ID: uint(i + 1), Marks: m}
	}
	return out
}

func TestSelect_OutputLength(t *testing.T) {
	pool := poolOf(1, 2, 3, 4, 5)
	tests := []struct {
		name     string
		strategy models.SelectionStrategy
		count    int
		want     int
	}{
		{"sequential within pool", models.SelectionSequential, 3, 3},
		{"sequential over pool", models.SelectionSequential, 10, 5},
		{"random within pool", models.SelectionRandom, 2, 2},
		{"random over pool", models.SelectionRandom, 9, 5},
		{"weighted within pool", models.SelectionWeighted, 4, 4},
		{"weighted exact pool", models.SelectionWeighted, 5, 5},
		{"unknown strategy degrades to random", models.SelectionStrategy("bogus"), 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewQuestionSelector()
			got := s.Select(pool, tt.count, tt.strategy)
			if len(got) != tt.want {
				t.Errorf("Select() returned %d questions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSelect_SequentialIsDeterministic(t *testing.T) {
	pool := poolOf(5, 3, 8, 1)
	s := NewQuestionSelector()

	first := s.Select(pool, 2, models.SelectionSequential)
	second := s.Select(pool, 2, models.SelectionSequential)

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("sequential selection differs between runs at %d", i)
		}
	}
	if first[0].ID != 1 || first[1].ID != 2 {
		t.Errorf("sequential selection = %d,%d, want input order 1,2", first[0].ID, first[1].ID)
	}
}

func TestSelect_WeightedSortsByMarksDescending(t *testing.T) {
	pool := poolOf(2, 9, 5, 9, 1)
	s := NewQuestionSelector()

	got := s.Select(pool, 3, models.SelectionWeighted)

	if got[0].Marks != 9 || got[1].Marks != 9 || got[2].Marks != 5 {
		t.Fatalf("weighted selection marks = %d,%d,%d, want 9,9,5", got[0].Marks, got[1].Marks, got[2].Marks)
	}
	// stable: the two 9-mark questions keep their pool order (ids 2 then 4)
	if got[0].ID != 2 || got[1].ID != 4 {
		t.Errorf("equal-weight tie order = %d,%d, want 2,4", got[0].ID, got[1].ID)
	}
}

func TestSelect_RandomIsSeedDeterministic(t *testing.T) {
	pool := poolOf(1, 2, 3, 4, 5, 6)

	a := NewQuestionSelectorWithSource(rand.NewSource(42)).Select(pool, 4, models.SelectionRandom)
	b := NewQuestionSelectorWithSource(rand.NewSource(42)).Select(pool, 4, models.SelectionRandom)

	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("same seed produced different selections at %d: %d vs %d", i, a[i].ID, b[i].ID)
		}
	}
}

func TestNarrow_StrategyAwareCap(t *testing.T) {
	t.Run("undersized pool passes through", func(t *testing.T) {
		pool := poolOf(1, 2)
		s := NewQuestionSelector()
		if got := s.Narrow(pool, 5, models.SelectionSequential); len(got) != 2 {
			t.Fatalf("Narrow() trimmed an undersized pool to %d", len(got))
		}
	})

	t.Run("sequential keeps the prefix", func(t *testing.T) {
		pool := poolOf(1, 2, 3, 4)
		s := NewQuestionSelector()
		got := s.Narrow(pool, 2, models.SelectionSequential)
		if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
			t.Fatalf("sequential Narrow() = %v, want prefix 1,2", questionIDs(got))
		}
	})

	t.Run("weighted keeps the heaviest questions", func(t *testing.T) {
		pool := poolOf(2, 9, 5, 7)
		s := NewQuestionSelector()
		got := s.Narrow(pool, 2, models.SelectionWeighted)
		if len(got) != 2 || got[0].Marks != 9 || got[1].Marks != 7 {
			t.Fatalf("weighted Narrow() marks = %v, want 9,7", []int{got[0].Marks, got[1].Marks})
		}
	})

	t.Run("random cap is not a catalog-order prefix", func(t *testing.T) {
		pool := poolOf(1, 1, 1, 1)
		reached := make(map[uint]bool)
		for seed := int64(0); seed < 50; seed++ {
			s := NewQuestionSelectorWithSource(rand.NewSource(seed))
			got := s.Narrow(pool, 3, models.SelectionRandom)
			if len(got) != 3 {
				t.Fatalf("random Narrow() returned %d questions, want 3", len(got))
			}
			seen := make(map[uint]bool, len(got))
			for _, q := range got {
				if seen[q.ID] {
					t.Fatalf("random Narrow() duplicated question %d", q.ID)
				}
				seen[q.ID] = true
				reached[q.ID] = true
			}
		}
		// a plain prefix cap could never surface the last question
		if !reached[4] {
			t.Error("question 4 never survived the cap across 50 seeds")
		}
	})
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	pool := poolOf(1, 2, 3, 4)
	orig := make([]uint, len(pool))
	for i, q := range pool {
		orig[i] = q.ID
	}

	s := NewQuestionSelectorWithSource(rand.NewSource(7))
	s.Select(pool, 2, models.SelectionRandom)
	s.Select(pool, 2, models.SelectionWeighted)

	for i, q := range pool {
		if q.ID != orig[i] {
			t.Fatalf("input pool mutated at %d", i)
		}
	}
}
