package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/cache"
	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(q.db, tx)
	return db.WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) (*models.Question, error) {
	db := getDB(q.db, tx)
	var question models.Question
	err := q.helpers.ApplyScope(db.WithContext(ctx), scope).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, scope models.AuthContext, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := getDB(q.db, tx)
	var questions []*models.Question
	err := q.helpers.ApplyScope(db.WithContext(ctx), scope).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&questions).Error
	return questions, err
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return err
	}
	q.cacheManager.Invalidate(ctx, cache.QuestionKey(question.ID))
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, scope models.AuthContext, id uint) error {
	db := getDB(q.db, tx)
	result := q.helpers.ApplyScope(db.WithContext(ctx), scope).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	q.cacheManager.Invalidate(ctx, cache.QuestionKey(id))
	return nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := getDB(q.db, tx)
	var questions []*models.Question
	var total int64

	query := q.helpers.ApplyScope(db.WithContext(ctx).Model(&models.Question{}), scope)
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (q *QuestionPostgreSQL) FindPublished(ctx context.Context, tx *gorm.DB, scope models.AuthContext, filters repositories.CatalogFilters) ([]*models.Question, error) {
	db := getDB(q.db, tx)
	var questions []*models.Question

	query := q.helpers.ApplyScope(db.WithContext(ctx).Model(&models.Question{}), scope).
		Where("status = ?", models.QuestionPublished)

	if len(filters.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filters.CategoryIDs)
	}
	if len(filters.Levels) > 0 {
		query = query.Where("level IN ?", filters.Levels)
	}
	if len(filters.Types) > 0 {
		query = query.Where("type IN ?", filters.Types)
	}
	if len(filters.Marks) > 0 {
		query = query.Where("marks IN ?", filters.Marks)
	}
	if filters.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filters.CreatedFrom)
	}
	if filters.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filters.CreatedTo)
	}

	err := query.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Order("id asc").
		Find(&questions).Error
	return questions, err
}

func (q *QuestionPostgreSQL) ReplaceOptions(ctx context.Context, tx *gorm.DB, questionID uint, options []models.QuestionOption) error {
	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).Where("question_id = ?", questionID).Delete(&models.QuestionOption{}).Error; err != nil {
		return err
	}
	for i := range options {
		options[i].ID = 0
		options[i].QuestionID = questionID
	}
	if len(options) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Create(&options).Error; err != nil {
		return err
	}
	q.cacheManager.Invalidate(ctx, cache.QuestionKey(questionID))
	return nil
}

func (q *QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}
