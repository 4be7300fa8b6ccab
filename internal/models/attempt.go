package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

type ReviewStatus string

const (
	ReviewNotApplicable ReviewStatus = "not_applicable"
	ReviewPending       ReviewStatus = "pending"
	ReviewUnderReview   ReviewStatus = "under_review"
	ReviewReviewed      ReviewStatus = "reviewed"
)

type AttemptResult string

const (
	ResultPass AttemptResult = "pass"
	ResultFail AttemptResult = "fail"
)

type SubmissionType string

const (
	SubmissionSelf SubmissionType = "self"
	SubmissionAuto SubmissionType = "auto"
)

// TestAttempt is one user's run at a test. For rule_based tests
// ResolvedTestID points at the generated test materialized for this attempt;
// question fetches resolve ResolvedTestID ?? TestID.
type TestAttempt struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TenantID       uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index:idx_attempt_scope"`
	OrganisationID uuid.UUID `json:"organisation_id" gorm:"type:uuid;not null;index:idx_attempt_scope"`

	TestID         uint   `json:"test_id" gorm:"not null;index;uniqueIndex:idx_test_user_attempt"`
	ResolvedTestID *uint  `json:"resolved_test_id" gorm:"index"`
	UserID         string `json:"user_id" gorm:"not null;index;size:255;uniqueIndex:idx_test_user_attempt"`

	// 1-based sequence per (test, user). The unique index closes the
	// concurrent-start race: two racing starts compute the same number and
	// the second insert fails.
	Attempt int `json:"attempt" gorm:"not null;uniqueIndex:idx_test_user_attempt"`

	Status         AttemptStatus  `json:"status" gorm:"default:in_progress;index"`
	ReviewStatus   ReviewStatus   `json:"review_status" gorm:"default:not_applicable;index"`
	Score          *float64       `json:"score"`  // 0-100
	Result         *AttemptResult `json:"result"` // nil until scored
	SubmissionType SubmissionType `json:"submission_type" gorm:"default:self"`
	TimeSpent      int            `json:"time_spent"` // cumulative seconds

	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Test    Test             `json:"test" gorm:"foreignKey:TestID"`
	Answers []TestUserAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
}

// ResolvedTest returns the test id the attempt's question set lives under.
func (a *TestAttempt) ResolvedTest() uint {
	if a.ResolvedTestID != nil {
		return *a.ResolvedTestID
	}
	return a.TestID
}

type AnswerReviewStatus string

const (
	AnswerReviewPending  AnswerReviewStatus = "pending"
	AnswerReviewReviewed AnswerReviewStatus = "reviewed"
)

// TestUserAnswer holds one answer per (attempt, question). Re-submitting the
// same question overwrites the earlier row.
type TestUserAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index;uniqueIndex:idx_attempt_answer"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_attempt_answer"`

	// Raw answer payload; shape depends on question type (AnswerPayload).
	Answer datatypes.JSON `json:"answer" gorm:"type:jsonb"`

	Score        *float64           `json:"score"` // auto-assigned for objective questions, reviewer-assigned otherwise
	ReviewStatus AnswerReviewStatus `json:"review_status" gorm:"default:pending"`
	ReviewedBy   *string            `json:"reviewed_by" gorm:"size:255"`
	Remarks      *string            `json:"remarks" gorm:"type:text"`

	TimeSpent int `json:"time_spent"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}
