package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

type TestQuestionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTestQuestionPostgreSQL(db *gorm.DB) repositories.TestQuestionRepository {
	return &TestQuestionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (t *TestQuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, tq *models.TestQuestion) error {
	db := getDB(t.db, tx)
	return db.WithContext(ctx).Create(tq).Error
}

func (t *TestQuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, tqs []*models.TestQuestion) error {
	if len(tqs) == 0 {
		return nil
	}
	db := getDB(t.db, tx)
	return db.WithContext(ctx).Create(tqs).Error
}

func (t *TestQuestionPostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestQuestion, error) {
	db := getDB(t.db, tx)
	var tqs []*models.TestQuestion
	err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Preload("Question").
		Preload("Question.Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Order("ordering asc").
		Find(&tqs).Error
	return tqs, err
}

func (t *TestQuestionPostgreSQL) GetByRule(ctx context.Context, tx *gorm.DB, testID, ruleID uint) ([]*models.TestQuestion, error) {
	db := getDB(t.db, tx)
	var tqs []*models.TestQuestion
	err := db.WithContext(ctx).
		Where("test_id = ? AND rule_id = ?", testID, ruleID).
		Preload("Question").
		Preload("Question.Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Order("ordering asc").
		Find(&tqs).Error
	return tqs, err
}

func (t *TestQuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, testID, questionID uint) error {
	db := getDB(t.db, tx)
	result := db.WithContext(ctx).
		Where("test_id = ? AND question_id = ?", testID, questionID).
		Delete(&models.TestQuestion{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TestQuestionPostgreSQL) DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error {
	db := getDB(t.db, tx)
	return db.WithContext(ctx).Where("test_id = ?", testID).Delete(&models.TestQuestion{}).Error
}

func (t *TestQuestionPostgreSQL) Reorder(ctx context.Context, tx *gorm.DB, testID uint, orders []repositories.QuestionOrder) error {
	db := getDB(t.db, tx)
	for _, o := range orders {
		err := db.WithContext(ctx).
			Model(&models.TestQuestion{}).
			Where("test_id = ? AND question_id = ?", testID, o.QuestionID).
			Update("ordering", o.Ordering).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *TestQuestionPostgreSQL) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	db := getDB(t.db, tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.TestQuestion{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	return count, err
}
