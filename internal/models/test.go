package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TestType string

const (
	TestPlain     TestType = "plain"
	TestRuleBased TestType = "rule_based"
	// TestGenerated is a runtime artifact: the materialized instance of a
	// rule_based test for one attempt. Never hand-authored, never editable.
	TestGenerated TestType = "generated"
)

type TestStatus string

const (
	TestDraft       TestStatus = "draft"
	TestPublished   TestStatus = "published"
	TestUnpublished TestStatus = "unpublished"
	TestArchived    TestStatus = "archived"
)

type Test struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TenantID       uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index:idx_test_scope"`
	OrganisationID uuid.UUID `json:"organisation_id" gorm:"type:uuid;not null;index:idx_test_scope"`

	Title       string     `json:"title" gorm:"not null;size:255"`
	Description *string    `json:"description" gorm:"type:text"`
	Type        TestType   `json:"type" gorm:"default:plain;index"`
	Status      TestStatus `json:"status" gorm:"default:draft;index"`

	Attempts     int `json:"attempts" gorm:"default:1"` // max attempts per user
	Duration     int `json:"duration"`                  // minutes
	TotalMarks   int `json:"total_marks"`
	PassingMarks int `json:"passing_marks"` // percentage threshold; 0 falls back to the default

	// For generated tests, the rule_based test this instance was derived from.
	SourceTestID *uint `json:"source_test_id" gorm:"index"`

	CreatedBy string    `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Sections  []TestSection  `json:"sections" gorm:"foreignKey:TestID"`
	Questions []TestQuestion `json:"questions" gorm:"foreignKey:TestID"`
	Rules     []TestRule     `json:"rules" gorm:"foreignKey:TestID"`
}

// TestSection is an ordered grouping within a test. Min/MaxQuestions are
// advisory authoring constraints, not enforced at generation time.
type TestSection struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TestID uint `json:"test_id" gorm:"not null;index"`

	Title        string `json:"title" gorm:"not null;size:255"`
	Ordering     int    `json:"ordering" gorm:"default:0"`
	MinQuestions *int   `json:"min_questions"`
	MaxQuestions *int   `json:"max_questions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TestQuestion associates a question with a test. Ordering is the sort key
// for presentation and for generated-test output. RuleID is set when the row
// was produced by (or preselected for) a rule.
type TestQuestion struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	TestID     uint  `json:"test_id" gorm:"not null;index;uniqueIndex:idx_test_question"`
	QuestionID uint  `json:"question_id" gorm:"not null;index;uniqueIndex:idx_test_question"`
	SectionID  *uint `json:"section_id" gorm:"index"`
	RuleID     *uint `json:"rule_id" gorm:"index"`

	Ordering     int  `json:"ordering" gorm:"not null"`
	IsCompulsory bool `json:"is_compulsory" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

type SelectionStrategy string

const (
	SelectionSequential SelectionStrategy = "sequential"
	SelectionRandom     SelectionStrategy = "random"
	SelectionWeighted   SelectionStrategy = "weighted"
)

type SelectionMode string

const (
	// SelectionPreselected draws candidates from a curated, pre-saved
	// question list scoped to the rule.
	SelectionPreselected SelectionMode = "PRESELECTED"
	// SelectionDynamic draws candidates from a live catalog query.
	SelectionDynamic SelectionMode = "DYNAMIC"
)

// RuleCriteria is the filter spec a DYNAMIC rule runs against the question
// catalog. Absent fields match everything for that dimension. If a question
// id appears in both include and exclude lists, exclude wins.
type RuleCriteria struct {
	CategoryIDs        []uint            `json:"category_ids,omitempty"`
	Levels             []DifficultyLevel `json:"levels,omitempty"`
	Types              []QuestionType    `json:"types,omitempty"`
	Tags               []string          `json:"tags,omitempty"`
	Marks              []int             `json:"marks,omitempty"`
	IncludeQuestionIDs []uint            `json:"include_question_ids,omitempty"`
	ExcludeQuestionIDs []uint            `json:"exclude_question_ids,omitempty"`
	CreatedFrom        *time.Time        `json:"created_from,omitempty"`
	CreatedTo          *time.Time        `json:"created_to,omitempty"`
}

// IsZero reports whether no filter dimension is set.
func (c *RuleCriteria) IsZero() bool {
	if c == nil {
		return true
	}
	b, _ := json.Marshal(c)
	return string(b) == "{}"
}

// TestRule produces a question subset for a rule_based test. Only usable
// while IsActive; at generation time the candidate pool must cover
// NumberOfQuestions or generation fails.
type TestRule struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	TestID    uint  `json:"test_id" gorm:"not null;index"`
	SectionID *uint `json:"section_id" gorm:"index"`

	Name              string                           `json:"name" gorm:"size:255"`
	Criteria          datatypes.JSONType[RuleCriteria] `json:"criteria" gorm:"type:jsonb"`
	NumberOfQuestions int                              `json:"number_of_questions" gorm:"not null"`
	PoolSize          int                              `json:"pool_size"`
	SelectionStrategy SelectionStrategy                `json:"selection_strategy" gorm:"default:random"`
	SelectionMode     SelectionMode                    `json:"selection_mode" gorm:"default:DYNAMIC"`
	Priority          int                              `json:"priority" gorm:"default:0;index"`
	IsActive          bool                             `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
