package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/models"
)

type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Test, error)
	// GetByIDWithDetails preloads sections, rules and the ordered question
	// associations.
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Test, error)
	Update(ctx context.Context, tx *gorm.DB, test *models.Test) error
	Delete(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) error

	List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters TestFilters) ([]*models.Test, int64, error)
}

type TestSectionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, section *models.TestSection) error
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestSection, error)
	Update(ctx context.Context, tx *gorm.DB, section *models.TestSection) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type TestQuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, tq *models.TestQuestion) error
	CreateBatch(ctx context.Context, tx *gorm.DB, tqs []*models.TestQuestion) error
	// GetByTest returns associations ordered by `ordering` ascending, question
	// and options preloaded.
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestQuestion, error)
	// GetByRule returns the pre-saved associations for a PRESELECTED rule,
	// scoped to the originating test, ordered by `ordering` ascending.
	GetByRule(ctx context.Context, tx *gorm.DB, testID, ruleID uint) ([]*models.TestQuestion, error)
	Delete(ctx context.Context, tx *gorm.DB, testID, questionID uint) error
	DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error
	Reorder(ctx context.Context, tx *gorm.DB, testID uint, orders []QuestionOrder) error
	CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)
}

type TestRuleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rule *models.TestRule) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestRule, error)
	// GetActiveByTest returns active rules ordered by priority descending,
	// ties by id ascending.
	GetActiveByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestRule, error)
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestRule, error)
	Update(ctx context.Context, tx *gorm.DB, rule *models.TestRule) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
