package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	TrueFalse    QuestionType = "true_false"
	MultiSelect  QuestionType = "multi_select"
	FillBlank    QuestionType = "fill_blank"
	Match        QuestionType = "match"
	Subjective   QuestionType = "subjective"
	Essay        QuestionType = "essay"
)

// HasOptions reports whether the type carries an option list.
func (t QuestionType) HasOptions() bool {
	switch t {
	case SingleChoice, TrueFalse, MultiSelect, FillBlank, Match:
		return true
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type QuestionStatus string

const (
	QuestionDraft     QuestionStatus = "draft"
	QuestionPublished QuestionStatus = "published"
	QuestionArchived  QuestionStatus = "archived"
)

type GradingType string

const (
	// GradingQuiz questions are auto-gradable from their options.
	GradingQuiz GradingType = "quiz"
	// GradingExercise questions require human review before a final score exists.
	GradingExercise GradingType = "exercise"
)

// QuestionParams holds type-specific constraints, stored as JSONB.
// MinLength/MaxLength apply to subjective and essay answers.
type QuestionParams struct {
	MinLength *int `json:"min_length,omitempty"`
	MaxLength *int `json:"max_length,omitempty"`
}

type Question struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TenantID       uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index:idx_question_scope"`
	OrganisationID uuid.UUID `json:"organisation_id" gorm:"type:uuid;not null;index:idx_question_scope"`

	Type        QuestionType    `json:"type" gorm:"not null;index"`
	Text        string          `json:"text" gorm:"type:text;not null"`
	Level       DifficultyLevel `json:"level" gorm:"default:medium;index"`
	Marks       int             `json:"marks" gorm:"not null"`
	Status      QuestionStatus  `json:"status" gorm:"default:draft;index"`
	GradingType GradingType     `json:"grading_type" gorm:"default:quiz"`

	// Type-specific constraints (QuestionParams)
	Params datatypes.JSONType[QuestionParams] `json:"params" gorm:"type:jsonb"`

	// Categorization
	CategoryID *uint          `json:"category_id" gorm:"index"`
	Tags       datatypes.JSON `json:"tags" gorm:"type:jsonb"` // []string

	CreatedBy string    `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID"`
}

// QuestionOption is an ordered answer option. BlankIndex is set for
// fill_blank questions, MatchTarget for match questions.
type QuestionOption struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`

	Text        string  `json:"text" gorm:"type:text;not null"`
	IsCorrect   bool    `json:"is_correct"`
	Marks       int     `json:"marks"`
	Ordering    int     `json:"ordering" gorm:"default:0"`
	BlankIndex  *int    `json:"blank_index"`
	MatchTarget *string `json:"match_target" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CorrectOptions returns the options flagged correct, in stored order.
func (q *Question) CorrectOptions() []QuestionOption {
	var out []QuestionOption
	for _, opt := range q.Options {
		if opt.IsCorrect {
			out = append(out, opt)
		}
	}
	return out
}

// TagList decodes the JSONB tags column.
func (q *Question) TagList() []string {
	if len(q.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := jsonUnmarshal(q.Tags, &tags); err != nil {
		return nil
	}
	return tags
}
