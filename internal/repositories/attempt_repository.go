package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/models"
)

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.TestAttempt, error)
	// GetByIDWithDetails preloads the test and the answers with their
	// questions and options.
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.TestAttempt, error)
	Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error

	CountByTestAndUser(ctx context.Context, tx *gorm.DB, scope models.AuthContext, testID uint, userID string) (int64, error)
	List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
}

type AnswerRepository interface {
	// Upsert creates the (attempt, question) row or overwrites the existing
	// one; a later submission replaces the earlier answer.
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.TestUserAnswer) error
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.TestUserAnswer, error)
	GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID uint) (*models.TestUserAnswer, error)
	Update(ctx context.Context, tx *gorm.DB, answer *models.TestUserAnswer) error
}
