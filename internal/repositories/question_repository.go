package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/models"
)

// QuestionRepository persists the question catalog. All reads are scoped by
// the caller's tenant and organisation; a row outside that scope behaves as
// not found.
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, scope models.AuthContext, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) error

	List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters QuestionFilters) ([]*models.Question, int64, error)

	// FindPublished returns published catalog questions in scope matching the
	// pushdown filters, options preloaded, ordered by id for deterministic
	// candidate ordering.
	FindPublished(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters CatalogFilters) ([]*models.Question, error)

	ReplaceOptions(ctx context.Context, tx *gorm.DB, questionID uint, options []models.QuestionOption) error
}
