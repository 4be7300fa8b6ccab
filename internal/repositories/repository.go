package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories behind one handle.
type Repository interface {
	Question() QuestionRepository
	Test() TestRepository
	TestSection() TestSectionRepository
	TestQuestion() TestQuestionRepository
	TestRule() TestRuleRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository

	// WithTransaction runs fn against a transaction-bound Repository; the
	// whole fn commits or rolls back atomically. Sub-repository calls inside
	// fn pass tx = nil, the bound handle supplies the transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err is a record-not-found from the
// persistence layer (out-of-scope rows included).
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
