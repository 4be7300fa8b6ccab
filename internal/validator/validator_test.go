package validator

import (
	"testing"

	"github.com/classward/test-delivery-service/internal/models"
)

type questionProbe struct {
	Type  models.QuestionType `validate:"required,question_type"`
	Level string              `validate:"required,difficulty_level"`
}

type testProbe struct {
	Type models.TestType `validate:"required,test_type"`
}

type ruleProbe struct {
	Strategy models.SelectionStrategy `validate:"required,selection_strategy"`
	Mode     models.SelectionMode     `validate:"required,selection_mode"`
}

func TestDomainRules(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
	}{
		{"valid question", questionProbe{Type: models.MultiSelect, Level: "easy"}, false},
		{"unknown question type", questionProbe{Type: "picture_round", Level: "easy"}, true},
		{"unknown difficulty", questionProbe{Type: models.SingleChoice, Level: "impossible"}, true},
		{"plain test type", testProbe{Type: models.TestPlain}, false},
		{"rule based test type", testProbe{Type: models.TestRuleBased}, false},
		{"generated is never accepted from a request", testProbe{Type: models.TestGenerated}, true},
		{"valid rule config", ruleProbe{Strategy: models.SelectionWeighted, Mode: models.SelectionDynamic}, false},
		{"unknown strategy", ruleProbe{Strategy: "newest", Mode: models.SelectionDynamic}, true},
		{"lowercase mode rejected", ruleProbe{Strategy: models.SelectionRandom, Mode: "dynamic"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestToValidationErrors(t *testing.T) {
	v := New()

	err := v.Validate(questionProbe{Type: "picture_round", Level: "impossible"})
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Fatalf("len(errors) = %d, want 2", len(verrs))
	}
	if verrs[0].Field != "Type" || verrs[0].Rule != "question_type" {
		t.Errorf("first error = %+v, want Type/question_type", verrs[0])
	}
	if verrs.Error() == "" {
		t.Error("Error() returned empty string")
	}
}
