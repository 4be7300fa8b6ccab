package repositories

import (
	"time"

	"github.com/classward/test-delivery-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Level      *models.DifficultyLevel `json:"level"`
	Status     *models.QuestionStatus  `json:"status"`
	CategoryID *uint                   `json:"category_id"`
	CreatedBy  *string                 `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"` // "created_at", "marks", "level"
	SortOrder  string                  `json:"sort_order"`
}

type TestFilters struct {
	Type      *models.TestType   `json:"type"`
	Status    *models.TestStatus `json:"status"`
	CreatedBy *string            `json:"created_by"`
	DateFrom  *time.Time         `json:"date_from"`
	DateTo    *time.Time         `json:"date_to"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`
	SortOrder string             `json:"sort_order"`
}

type AttemptFilters struct {
	Status       *models.AttemptStatus `json:"status"`
	ReviewStatus *models.ReviewStatus  `json:"review_status"`
	UserID       *string               `json:"user_id"`
	TestID       *uint                 `json:"test_id"`
	DateFrom     *time.Time            `json:"date_from"`
	DateTo       *time.Time            `json:"date_to"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
	SortBy       string                `json:"sort_by"`
	SortOrder    string                `json:"sort_order"`
}

// CatalogFilters is the SQL-pushdown slice of a rule's criteria: the
// dimensions cheap to evaluate in the catalog query. Tag and
// include/exclude-id filtering is finished in memory by the criteria
// matcher.
type CatalogFilters struct {
	CategoryIDs []uint                   `json:"category_ids"`
	Levels      []models.DifficultyLevel `json:"levels"`
	Types       []models.QuestionType    `json:"types"`
	Marks       []int                    `json:"marks"`
	CreatedFrom *time.Time               `json:"created_from"`
	CreatedTo   *time.Time               `json:"created_to"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID uint `json:"question_id"`
	Ordering   int  `json:"ordering"`
}

// AnswerReview is one reviewer-assigned score for an answer row.
type AnswerReview struct {
	QuestionID uint    `json:"question_id"`
	Score      float64 `json:"score"`
	Remarks    *string `json:"remarks"`
}
