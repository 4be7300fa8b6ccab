package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/classward/test-delivery-service/internal/models"
)

// Validator wraps go-playground/validator with the domain rules registered.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()
	return v
}

// Validate validates struct tags on any request DTO.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerDomainRules() {
	_ = v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch models.QuestionType(fl.Field().String()) {
		case models.SingleChoice, models.TrueFalse, models.MultiSelect,
			models.FillBlank, models.Match, models.Subjective, models.Essay:
			return true
		}
		return false
	})

	_ = v.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		switch models.DifficultyLevel(fl.Field().String()) {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			return true
		}
		return false
	})

	_ = v.validate.RegisterValidation("grading_type", func(fl validator.FieldLevel) bool {
		switch models.GradingType(fl.Field().String()) {
		case models.GradingQuiz, models.GradingExercise:
			return true
		}
		return false
	})

	_ = v.validate.RegisterValidation("test_type", func(fl validator.FieldLevel) bool {
		// generated is system-owned and never accepted from a request
		switch models.TestType(fl.Field().String()) {
		case models.TestPlain, models.TestRuleBased:
			return true
		}
		return false
	})

	_ = v.validate.RegisterValidation("selection_strategy", func(fl validator.FieldLevel) bool {
		switch models.SelectionStrategy(fl.Field().String()) {
		case models.SelectionSequential, models.SelectionRandom, models.SelectionWeighted:
			return true
		}
		return false
	})

	_ = v.validate.RegisterValidation("selection_mode", func(fl validator.FieldLevel) bool {
		switch models.SelectionMode(fl.Field().String()) {
		case models.SelectionPreselected, models.SelectionDynamic:
			return true
		}
		return false
	})
}

// ===== VALIDATION ERRORS =====

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = fmt.Sprintf("%s: %s", ve.Field, ve.Message)
	}
	return strings.Join(parts, "; ")
}

// ToValidationErrors converts go-playground errors to the domain type.
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var out ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return out
	}

	return ValidationErrors{{Field: "", Message: err.Error(), Rule: "struct"}}
}
