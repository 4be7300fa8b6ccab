package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/cache"
	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	db := getDB(a.db, tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.TestAttempt, error) {
	db := getDB(a.db, tx)
	var attempt models.TestAttempt
	err := a.helpers.ApplyScope(db.WithContext(ctx), scope).First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.TestAttempt, error) {
	db := getDB(a.db, tx)
	var attempt models.TestAttempt
	err := a.helpers.ApplyScope(db.WithContext(ctx), scope).
		Preload("Test").
		Preload("Answers").
		Preload("Answers.Question").
		Preload("Answers.Question.Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) Update(ctx context.Context, tx *gorm.DB, attempt *models.TestAttempt) error {
	db := getDB(a.db, tx)
	if err := db.WithContext(ctx).Save(attempt).Error; err != nil {
		return err
	}
	a.cacheManager.Invalidate(ctx, cache.AttemptKey(attempt.ID))
	return nil
}

func (a *AttemptPostgreSQL) CountByTestAndUser(ctx context.Context, tx *gorm.DB, scope models.AuthContext, testID uint, userID string) (int64, error) {
	db := getDB(a.db, tx)
	var count int64
	err := a.helpers.ApplyScope(db.WithContext(ctx).Model(&models.TestAttempt{}), scope).
		Where("test_id = ? AND user_id = ?", testID, userID).
		Count(&count).Error
	return count, err
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	db := getDB(a.db, tx)
	var attempts []*models.TestAttempt
	var total int64

	query := a.helpers.ApplyScope(db.WithContext(ctx).Model(&models.TestAttempt{}), scope)
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Preload("Test").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a *AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ReviewStatus != nil {
		query = query.Where("review_status = ?", *filters.ReviewStatus)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
