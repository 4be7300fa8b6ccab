package services

import (
	"testing"

	"github.com/classward/test-delivery-service/internal/models"
)

func optionQuestion(qt models.QuestionType, opts ...models.QuestionOption) *models.Question {
	return &models.Question{ID: 1, Type: qt, Options: opts}
}

func TestAnswerValidator_Selections(t *testing.T) {
	v := NewAnswerValidator()
	single := optionQuestion(models.SingleChoice,
		models.QuestionOption{ID: 10, IsCorrect: true},
		models.QuestionOption{ID: 11},
	)
	multi := optionQuestion(models.MultiSelect,
		models.QuestionOption{ID: 10, IsCorrect: true},
		models.QuestionOption{ID: 11, IsCorrect: true},
		models.QuestionOption{ID: 12},
	)

	tests := []struct {
		name    string
		q       *models.Question
		payload models.AnswerPayload
		wantErr bool
	}{
		{"single choice empty selection", single, models.AnswerPayload{}, true},
		{"single choice one selection", single, models.AnswerPayload{SelectedOptionIDs: []uint{10}}, false},
		{"single choice two selections", single, models.AnswerPayload{SelectedOptionIDs: []uint{10, 11}}, true},
		{"single choice foreign option", single, models.AnswerPayload{SelectedOptionIDs: []uint{99}}, true},
		{"multi select empty", multi, models.AnswerPayload{}, true},
		{"multi select several", multi, models.AnswerPayload{SelectedOptionIDs: []uint{10, 12}}, false},
		{"multi select duplicate", multi, models.AnswerPayload{SelectedOptionIDs: []uint{10, 10}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.q, &tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnswerValidator_Text(t *testing.T) {
	v := NewAnswerValidator()
	minLen := 5
	essay := &models.Question{ID: 1, Type: models.Essay}
	constrained := &models.Question{ID: 2, Type: models.Subjective}

	tests := []struct {
		name    string
		q       *models.Question
		params  *models.QuestionParams
		text    string
		wantErr bool
	}{
		{"empty text", essay, nil, "", true},
		{"whitespace-only text", essay, nil, "   \n\t", true},
		{"plain text", essay, nil, "a considered answer", false},
		{"below min length", constrained, &models.QuestionParams{MinLength: &minLen}, "ok", true},
		{"at min length", constrained, &models.QuestionParams{MinLength: &minLen}, "valid", false},
		{"padding does not count toward min length", constrained, &models.QuestionParams{MinLength: &minLen}, "  ok  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := *tt.q
			if tt.params != nil {
				q.Params = newParams(*tt.params)
			}
			err := v.Validate(&q, &models.AnswerPayload{Text: tt.text})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnswerValidator_MaxLength(t *testing.T) {
	v := NewAnswerValidator()
	maxLen := 3
	q := &models.Question{ID: 1, Type: models.Subjective}
	q.Params = newParams(models.QuestionParams{MaxLength: &maxLen})

	if err := v.Validate(q, &models.AnswerPayload{Text: "toolong"}); err == nil {
		t.Error("Validate() accepted text over max length")
	}
	if err := v.Validate(q, &models.AnswerPayload{Text: "ok"}); err != nil {
		t.Errorf("Validate() rejected text under max length: %v", err)
	}
}

func TestAnswerValidator_Blanks(t *testing.T) {
	v := NewAnswerValidator()
	idx0, idx1 := 0, 1
	q := optionQuestion(models.FillBlank,
		models.QuestionOption{ID: 10, Text: "paris", IsCorrect: true, BlankIndex: &idx0},
		models.QuestionOption{ID: 11, Text: "rome", IsCorrect: true, BlankIndex: &idx1},
	)

	tests := []struct {
		name    string
		blanks  []models.BlankAnswer
		wantErr bool
	}{
		{"no blanks", nil, true},
		{"valid blanks", []models.BlankAnswer{{BlankIndex: 0, Text: "x"}, {BlankIndex: 1, Text: "y"}}, false},
		{"unknown index", []models.BlankAnswer{{BlankIndex: 5, Text: "x"}}, true},
		{"duplicate index", []models.BlankAnswer{{BlankIndex: 0, Text: "x"}, {BlankIndex: 0, Text: "y"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(q, &models.AnswerPayload{Blanks: tt.blanks})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnswerValidator_Matches(t *testing.T) {
	v := NewAnswerValidator()
	t1, t2 := "B1", "B2"
	q := optionQuestion(models.Match,
		models.QuestionOption{ID: 10, MatchTarget: &t1},
		models.QuestionOption{ID: 11, MatchTarget: &t2},
	)

	tests := []struct {
		name    string
		matches []models.MatchAnswer
		wantErr bool
	}{
		{"no matches", nil, true},
		{"valid pairs", []models.MatchAnswer{{OptionID: 10, Target: "B2"}, {OptionID: 11, Target: "B1"}}, false},
		{"unknown target", []models.MatchAnswer{{OptionID: 10, Target: "B9"}}, true},
		{"foreign option", []models.MatchAnswer{{OptionID: 99, Target: "B1"}}, true},
		{"option matched twice", []models.MatchAnswer{{OptionID: 10, Target: "B1"}, {OptionID: 10, Target: "B2"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(q, &models.AnswerPayload{Matches: tt.matches})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
