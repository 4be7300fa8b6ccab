package services

import (
	"strings"
	"unicode/utf8"

	"github.com/classward/test-delivery-service/internal/models"
)

// answerValidator checks a submitted answer payload structurally against
// its question before it is persisted. Validation is about shape, never
// correctness: a wrong answer is still a valid answer.
type answerValidator struct{}

func NewAnswerValidator() *answerValidator {
	return &answerValidator{}
}

type answerCheck func(q *models.Question, p *models.AnswerPayload) error

var answerChecks = map[models.QuestionType]answerCheck{
	models.SingleChoice: checkSingleSelection,
	models.TrueFalse:    checkSingleSelection,
	models.MultiSelect:  checkMultiSelection,
	models.FillBlank:    checkBlanks,
	models.Match:        checkMatches,
	models.Subjective:   checkText,
	models.Essay:        checkText,
}

// Validate dispatches on the question type. Unknown types are rejected
// rather than silently accepted.
func (v *answerValidator) Validate(q *models.Question, p *models.AnswerPayload) error {
	if p == nil {
		return NewValidationError("answer", "answer payload is required", nil)
	}
	check, ok := answerChecks[q.Type]
	if !ok {
		return NewValidationError("type", "unsupported question type", string(q.Type))
	}
	return check(q, p)
}

func checkSingleSelection(q *models.Question, p *models.AnswerPayload) error {
	if len(p.SelectedOptionIDs) != 1 {
		return NewValidationError("selected_option_ids", "exactly one option must be selected", len(p.SelectedOptionIDs))
	}
	if !optionBelongs(q, p.SelectedOptionIDs[0]) {
		return NewValidationError("selected_option_ids", "option does not belong to question", p.SelectedOptionIDs[0])
	}
	return nil
}

func checkMultiSelection(q *models.Question, p *models.AnswerPayload) error {
	if len(p.SelectedOptionIDs) == 0 {
		return NewValidationError("selected_option_ids", "at least one option must be selected", nil)
	}
	seen := make(map[uint]struct{}, len(p.SelectedOptionIDs))
	for _, id := range p.SelectedOptionIDs {
		if _, dup := seen[id]; dup {
			return NewValidationError("selected_option_ids", "duplicate option selected", id)
		}
		seen[id] = struct{}{}
		if !optionBelongs(q, id) {
			return NewValidationError("selected_option_ids", "option does not belong to question", id)
		}
	}
	return nil
}

func checkBlanks(q *models.Question, p *models.AnswerPayload) error {
	if len(p.Blanks) == 0 {
		return NewValidationError("blanks", "at least one blank answer is required", nil)
	}
	valid := make(map[int]struct{})
	for _, opt := range q.Options {
		if opt.BlankIndex != nil {
			valid[*opt.BlankIndex] = struct{}{}
		}
	}
	seen := make(map[int]struct{}, len(p.Blanks))
	for _, b := range p.Blanks {
		if _, ok := valid[b.BlankIndex]; !ok {
			return NewValidationError("blanks", "blank index does not exist on question", b.BlankIndex)
		}
		if _, dup := seen[b.BlankIndex]; dup {
			return NewValidationError("blanks", "duplicate blank index", b.BlankIndex)
		}
		seen[b.BlankIndex] = struct{}{}
	}
	return nil
}

func checkMatches(q *models.Question, p *models.AnswerPayload) error {
	if len(p.Matches) == 0 {
		return NewValidationError("matches", "at least one match pair is required", nil)
	}
	targets := make(map[string]struct{})
	for _, opt := range q.Options {
		if opt.MatchTarget != nil {
			targets[*opt.MatchTarget] = struct{}{}
		}
	}
	seen := make(map[uint]struct{}, len(p.Matches))
	for _, m := range p.Matches {
		if !optionBelongs(q, m.OptionID) {
			return NewValidationError("matches", "option does not belong to question", m.OptionID)
		}
		if _, dup := seen[m.OptionID]; dup {
			return NewValidationError("matches", "option matched more than once", m.OptionID)
		}
		seen[m.OptionID] = struct{}{}
		if _, ok := targets[m.Target]; !ok {
			return NewValidationError("matches", "unknown match target", m.Target)
		}
	}
	return nil
}

func checkText(q *models.Question, p *models.AnswerPayload) error {
	trimmed := strings.TrimSpace(p.Text)
	if trimmed == "" {
		return NewValidationError("text", "answer text is required", nil)
	}
	params := q.Params.Data()
	length := utf8.RuneCountInString(trimmed)
	if params.MinLength != nil && length < *params.MinLength {
		return NewValidationError("text", "answer is shorter than the minimum length", length)
	}
	if params.MaxLength != nil && length > *params.MaxLength {
		return NewValidationError("text", "answer exceeds the maximum length", length)
	}
	return nil
}

func optionBelongs(q *models.Question, optionID uint) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
