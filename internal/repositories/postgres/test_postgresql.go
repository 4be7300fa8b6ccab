package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/cache"
	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

type TestPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := getDB(t.db, tx)
	return db.WithContext(ctx).Create(test).Error
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Test, error) {
	db := getDB(t.db, tx)

	// Cache only reads against the base connection; transactional reads must
	// see their own writes.
	if tx == nil {
		var test models.Test
		err := t.cacheManager.Fast.CacheOrExecute(ctx, cache.TestKey(id, scope), &test, cache.FastCacheConfig.TTL, func() (interface{}, error) {
			var row models.Test
			if err := t.helpers.ApplyScope(db.WithContext(ctx), scope).First(&row, id).Error; err != nil {
				return nil, err
			}
			return &row, nil
		})
		if err != nil {
			return nil, err
		}
		return &test, nil
	}

	var test models.Test
	if err := t.helpers.ApplyScope(db.WithContext(ctx), scope).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Test, error) {
	db := getDB(t.db, tx)
	var test models.Test
	err := t.helpers.ApplyScope(db.WithContext(ctx), scope).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("priority desc, id asc") }).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Preload("Questions.Question.Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	db := getDB(t.db, tx)
	if err := db.WithContext(ctx).Save(test).Error; err != nil {
		return err
	}
	t.cacheManager.Invalidate(ctx, cache.TestKey(test.ID, models.AuthContext{TenantID: test.TenantID, OrganisationID: test.OrganisationID}))
	return nil
}

func (t *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) error {
	db := getDB(t.db, tx)
	result := t.helpers.ApplyScope(db.WithContext(ctx), scope).Delete(&models.Test{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	t.cacheManager.Invalidate(ctx, cache.TestKey(id, scope))
	return nil
}

func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	db := getDB(t.db, tx)
	var tests []*models.Test
	var total int64

	query := t.helpers.ApplyScope(db.WithContext(ctx).Model(&models.Test{}), scope)
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = t.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}
