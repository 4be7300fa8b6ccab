package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

type TestSectionPostgreSQL struct {
	db *gorm.DB
}

func NewTestSectionPostgreSQL(db *gorm.DB) repositories.TestSectionRepository {
	return &TestSectionPostgreSQL{db: db}
}

func (s *TestSectionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, section *models.TestSection) error {
	db := getDB(s.db, tx)
	return db.WithContext(ctx).Create(section).Error
}

func (s *TestSectionPostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestSection, error) {
	db := getDB(s.db, tx)
	var sections []*models.TestSection
	err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("ordering asc").
		Find(&sections).Error
	return sections, err
}

func (s *TestSectionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, section *models.TestSection) error {
	db := getDB(s.db, tx)
	return db.WithContext(ctx).Save(section).Error
}

func (s *TestSectionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(s.db, tx)
	result := db.WithContext(ctx).Delete(&models.TestSection{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
