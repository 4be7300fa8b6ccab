package services

import (
	"context"
	"io"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

// ===== QUESTION DTOs =====

type QuestionOptionRequest struct {
	Text        string  `json:"text" validate:"required,max=2000"`
	IsCorrect   bool    `json:"is_correct"`
	Marks       int     `json:"marks" validate:"omitempty,min=0"`
	Ordering    int     `json:"ordering"`
	BlankIndex  *int    `json:"blank_index" validate:"omitempty,min=0"`
	MatchTarget *string `json:"match_target" validate:"omitempty,max=500"`
}

type CreateQuestionRequest struct {
	Type       models.QuestionType    `json:"type" validate:"required,question_type"`
	Text       string                 `json:"text" validate:"required,max=10000"`
	Level      models.DifficultyLevel `json:"level" validate:"required,difficulty_level"`
	Grading    models.GradingType     `json:"grading" validate:"required,grading_type"`
	Marks      int                    `json:"marks" validate:"required,min=0"`
	CategoryID *uint                  `json:"category_id"`
	Tags       []string               `json:"tags" validate:"omitempty,dive,max=100"`
	Params     *models.QuestionParams `json:"params"`
	Options    []QuestionOptionRequest `json:"options" validate:"omitempty,dive"`
}

type UpdateQuestionRequest struct {
	Text       *string                 `json:"text" validate:"omitempty,max=10000"`
	Level      *models.DifficultyLevel `json:"level" validate:"omitempty,difficulty_level"`
	Grading    *models.GradingType     `json:"grading" validate:"omitempty,grading_type"`
	Marks      *int                    `json:"marks" validate:"omitempty,min=0"`
	CategoryID *uint                   `json:"category_id"`
	Tags       []string                `json:"tags" validate:"omitempty,dive,max=100"`
	Params     *models.QuestionParams  `json:"params"`
	Options    []QuestionOptionRequest `json:"options" validate:"omitempty,dive"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

// ===== TEST DTOs =====

type CreateTestRequest struct {
	Title        string          `json:"title" validate:"required,max=500"`
	Description  *string         `json:"description" validate:"omitempty,max=5000"`
	Type         models.TestType `json:"type" validate:"required,test_type"`
	Attempts     int             `json:"attempts" validate:"omitempty,min=0"`
	Duration     int             `json:"duration" validate:"omitempty,min=0"`
	PassingMarks int             `json:"passing_marks" validate:"omitempty,min=0,max=100"`
}

type UpdateTestRequest struct {
	Title        *string  `json:"title" validate:"omitempty,max=500"`
	Description  *string  `json:"description" validate:"omitempty,max=5000"`
	Attempts     *int     `json:"attempts" validate:"omitempty,min=0"`
	Duration     *int     `json:"duration" validate:"omitempty,min=0"`
	PassingMarks *int     `json:"passing_marks" validate:"omitempty,min=0,max=100"`
}

type TestQuestionRequest struct {
	QuestionID uint  `json:"question_id" validate:"required"`
	SectionID  *uint `json:"section_id"`
	// RuleID curates the question into a PRESELECTED rule's candidate pool.
	RuleID       *uint `json:"rule_id"`
	Ordering     int   `json:"ordering"`
	IsCompulsory bool  `json:"is_compulsory"`
}

type CreateSectionRequest struct {
	Title        string `json:"title" validate:"required,max=500"`
	Ordering     int    `json:"ordering"`
	MinQuestions *int   `json:"min_questions" validate:"omitempty,min=0"`
	MaxQuestions *int   `json:"max_questions" validate:"omitempty,min=0"`
}

type CreateRuleRequest struct {
	Name              string                   `json:"name" validate:"required,max=500"`
	Criteria          models.RuleCriteria      `json:"criteria"`
	NumberOfQuestions int                      `json:"number_of_questions" validate:"required,min=1"`
	PoolSize          *int                     `json:"pool_size" validate:"omitempty,min=1"`
	SelectionStrategy models.SelectionStrategy `json:"selection_strategy" validate:"required,selection_strategy"`
	SelectionMode     models.SelectionMode     `json:"selection_mode" validate:"required,selection_mode"`
	SectionID         *uint                    `json:"section_id"`
	Priority          int                      `json:"priority"`
	IsActive          bool                     `json:"is_active"`
}

type UpdateRuleRequest struct {
	Name              *string                   `json:"name" validate:"omitempty,max=500"`
	Criteria          *models.RuleCriteria      `json:"criteria"`
	NumberOfQuestions *int                      `json:"number_of_questions" validate:"omitempty,min=1"`
	PoolSize          *int                      `json:"pool_size" validate:"omitempty,min=1"`
	SelectionStrategy *models.SelectionStrategy `json:"selection_strategy" validate:"omitempty,selection_strategy"`
	SelectionMode     *models.SelectionMode     `json:"selection_mode" validate:"omitempty,selection_mode"`
	Priority          *int                      `json:"priority"`
	IsActive          *bool                     `json:"is_active"`
}

type TestListResponse struct {
	Tests []*models.Test `json:"tests"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ===== ATTEMPT DTOs =====

type StartAttemptRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

type SubmitAnswerRequest struct {
	QuestionID uint                 `json:"question_id" validate:"required"`
	Answer     models.AnswerPayload `json:"answer"`
	TimeSpent  *int                 `json:"time_spent" validate:"omitempty,min=0"`
}

type ReviewAnswerRequest struct {
	QuestionID uint    `json:"question_id" validate:"required"`
	Score      float64 `json:"score" validate:"min=0"`
	Remarks    *string `json:"remarks" validate:"omitempty,max=5000"`
}

type ReviewAttemptRequest struct {
	Answers []ReviewAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

type AttemptResponse struct {
	*models.TestAttempt
	CanSubmit      bool `json:"can_submit"`
	IsPendingGrade bool `json:"is_pending_grade"`
}

type AttemptListResponse struct {
	Attempts []*AttemptResponse `json:"attempts"`
	Total    int64              `json:"total"`
}

type QuestionForAttempt struct {
	ID           uint                         `json:"id"`
	Type         models.QuestionType          `json:"type"`
	Text         string                       `json:"text"`
	Marks        int                          `json:"marks"`
	Ordering     int                          `json:"ordering"`
	SectionID    *uint                        `json:"section_id,omitempty"`
	Params       models.QuestionParams        `json:"params"`
	Options      []OptionForAttempt           `json:"options,omitempty"`
	MatchTargets []string                     `json:"match_targets,omitempty"`
	UserAnswer   *models.AnswerPayload        `json:"user_answer,omitempty"`
	AnswerStatus models.AnswerReviewStatus    `json:"answer_status,omitempty"`
}

// OptionForAttempt deliberately omits IsCorrect and MatchTarget: the
// candidate never sees the answer key. Match targets are surfaced
// separately in MatchTargets of the question, sorted so their order
// reveals nothing about the pairing.
type OptionForAttempt struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	Ordering   int    `json:"ordering"`
	BlankIndex *int   `json:"blank_index,omitempty"`
}

// ===== GRADING DTOs =====

type GradingResult struct {
	QuestionID uint     `json:"question_id"`
	Score      float64  `json:"score"`
	MaxScore   float64  `json:"max_score"`
	IsCorrect  *bool    `json:"is_correct,omitempty"`
	NeedsReview bool    `json:"needs_review"`
}

type AttemptGradingResult struct {
	AttemptID    uint            `json:"attempt_id"`
	Score        float64         `json:"score"`
	Result       *models.AttemptResult `json:"result,omitempty"`
	ReviewStatus models.ReviewStatus   `json:"review_status"`
	Answers      []GradingResult `json:"answers"`
}

// ===== SERVICE INTERFACES =====

type QuestionService interface {
	Create(ctx context.Context, scope models.AuthContext, req *CreateQuestionRequest) (*models.Question, error)
	GetByID(ctx context.Context, scope models.AuthContext, id uint) (*models.Question, error)
	Update(ctx context.Context, scope models.AuthContext, id uint, req *UpdateQuestionRequest) (*models.Question, error)
	Delete(ctx context.Context, scope models.AuthContext, id uint) error
	List(ctx context.Context, scope models.AuthContext, filters repositories.QuestionFilters) (*QuestionListResponse, error)
	Publish(ctx context.Context, scope models.AuthContext, id uint) error
	Archive(ctx context.Context, scope models.AuthContext, id uint) error
}

type TestService interface {
	Create(ctx context.Context, scope models.AuthContext, req *CreateTestRequest) (*models.Test, error)
	GetByID(ctx context.Context, scope models.AuthContext, id uint) (*models.Test, error)
	GetByIDWithDetails(ctx context.Context, scope models.AuthContext, id uint) (*models.Test, error)
	Update(ctx context.Context, scope models.AuthContext, id uint, req *UpdateTestRequest) (*models.Test, error)
	Delete(ctx context.Context, scope models.AuthContext, id uint) error
	List(ctx context.Context, scope models.AuthContext, filters repositories.TestFilters) (*TestListResponse, error)
	Publish(ctx context.Context, scope models.AuthContext, id uint) error
	Archive(ctx context.Context, scope models.AuthContext, id uint) error

	// Question management (plain tests)
	AddQuestions(ctx context.Context, scope models.AuthContext, testID uint, reqs []TestQuestionRequest) error
	RemoveQuestion(ctx context.Context, scope models.AuthContext, testID, questionID uint) error
	ReorderQuestions(ctx context.Context, scope models.AuthContext, testID uint, orders []repositories.QuestionOrder) error

	// Section management
	AddSection(ctx context.Context, scope models.AuthContext, testID uint, req *CreateSectionRequest) (*models.TestSection, error)
	RemoveSection(ctx context.Context, scope models.AuthContext, testID, sectionID uint) error

	// Rule management (rule-based tests)
	AddRule(ctx context.Context, scope models.AuthContext, testID uint, req *CreateRuleRequest) (*models.TestRule, error)
	UpdateRule(ctx context.Context, scope models.AuthContext, testID, ruleID uint, req *UpdateRuleRequest) (*models.TestRule, error)
	RemoveRule(ctx context.Context, scope models.AuthContext, testID, ruleID uint) error
	PreviewRule(ctx context.Context, scope models.AuthContext, testID, ruleID uint) ([]*models.Question, error)
}

type QuestionPoolService interface {
	// BuildPool resolves a rule's candidate pool and selects the questions
	// an attempt will receive from it. Returns InsufficientPoolError when
	// the pool cannot cover the rule.
	BuildPool(ctx context.Context, repo repositories.Repository, scope models.AuthContext, testID uint, rule *models.TestRule) ([]*models.Question, error)
}

type AttemptService interface {
	Start(ctx context.Context, scope models.AuthContext, req *StartAttemptRequest) (*AttemptResponse, error)
	GetByID(ctx context.Context, scope models.AuthContext, id uint) (*AttemptResponse, error)
	GetQuestions(ctx context.Context, scope models.AuthContext, attemptID uint) ([]QuestionForAttempt, error)
	SubmitAnswer(ctx context.Context, scope models.AuthContext, attemptID uint, req *SubmitAnswerRequest) error
	Submit(ctx context.Context, scope models.AuthContext, attemptID uint) (*AttemptResponse, error)
	Review(ctx context.Context, scope models.AuthContext, attemptID uint, req *ReviewAttemptRequest) (*AttemptResponse, error)
	List(ctx context.Context, scope models.AuthContext, filters repositories.AttemptFilters) (*AttemptListResponse, error)
	GetAttemptCount(ctx context.Context, scope models.AuthContext, testID uint) (int, error)
}

type GradingService interface {
	// ScoreAttempt applies auto-scoring across an attempt's answers.
	// Quiz attempts come out fully scored; exercise attempts have their
	// objective portion scored and the rest left for review.
	ScoreAttempt(ctx context.Context, repo repositories.Repository, scope models.AuthContext, attempt *models.TestAttempt) (*AttemptGradingResult, error)

	// FinalizeReview folds reviewed scores into the attempt total.
	FinalizeReview(ctx context.Context, repo repositories.Repository, scope models.AuthContext, attempt *models.TestAttempt, reviews []repositories.AnswerReview, reviewerID string) (*AttemptGradingResult, error)

	// ScoreAnswer scores a single objective answer against its question.
	ScoreAnswer(question *models.Question, payload *models.AnswerPayload) (*GradingResult, error)
}

type ImportExportService interface {
	ImportQuestions(ctx context.Context, scope models.AuthContext, r io.Reader) ([]*models.Question, []error)
	ExportQuestions(ctx context.Context, scope models.AuthContext, filters repositories.QuestionFilters, w io.Writer) error
	ExportAttempts(ctx context.Context, scope models.AuthContext, testID uint, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Question() QuestionService
	Test() TestService
	Attempt() AttemptService
	Grading() GradingService
	ImportExport() ImportExportService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
