package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

type TestRulePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTestRulePostgreSQL(db *gorm.DB) repositories.TestRuleRepository {
	return &TestRulePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *TestRulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, rule *models.TestRule) error {
	db := getDB(r.db, tx)
	return db.WithContext(ctx).Create(rule).Error
}

func (r *TestRulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestRule, error) {
	db := getDB(r.db, tx)
	var rule models.TestRule
	if err := db.WithContext(ctx).First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *TestRulePostgreSQL) GetActiveByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestRule, error) {
	db := getDB(r.db, tx)
	var rules []*models.TestRule
	err := db.WithContext(ctx).
		Where("test_id = ? AND is_active = ?", testID, true).
		Order("priority desc, id asc").
		Find(&rules).Error
	return rules, err
}

func (r *TestRulePostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestRule, error) {
	db := getDB(r.db, tx)
	var rules []*models.TestRule
	err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("priority desc, id asc").
		Find(&rules).Error
	return rules, err
}

func (r *TestRulePostgreSQL) Update(ctx context.Context, tx *gorm.DB, rule *models.TestRule) error {
	db := getDB(r.db, tx)
	return db.WithContext(ctx).Save(rule).Error
}

func (r *TestRulePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).Delete(&models.TestRule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
