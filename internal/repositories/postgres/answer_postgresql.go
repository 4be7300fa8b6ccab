package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Upsert writes the answer row for (attempt, question); a later submission
// for the same question replaces the earlier payload instead of appending.
func (a *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.TestUserAnswer) error {
	db := getDB(a.db, tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer", "time_spent", "updated_at"}),
		}).
		Create(answer).Error
}

func (a *AnswerPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.TestUserAnswer, error) {
	db := getDB(a.db, tx)
	var answers []*models.TestUserAnswer
	err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Preload("Question").
		Preload("Question.Options", func(db *gorm.DB) *gorm.DB { return db.Order("ordering asc") }).
		Order("question_id asc").
		Find(&answers).Error
	return answers, err
}

func (a *AnswerPostgreSQL) GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID uint) (*models.TestUserAnswer, error) {
	db := getDB(a.db, tx)
	var answer models.TestUserAnswer
	err := db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Preload("Question").
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) Update(ctx context.Context, tx *gorm.DB, answer *models.TestUserAnswer) error {
	db := getDB(a.db, tx)
	return db.WithContext(ctx).Save(answer).Error
}
