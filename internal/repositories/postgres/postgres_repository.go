package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classward/test-delivery-service/internal/repositories"
)

// PostgreSQLRepository implements the aggregate Repository interface.
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	question     repositories.QuestionRepository
	test         repositories.TestRepository
	testSection  repositories.TestSectionRepository
	testQuestion repositories.TestQuestionRepository
	testRule     repositories.TestRuleRepository
	attempt      repositories.AttemptRepository
	answer       repositories.AnswerRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:          config.DB,
		redisClient: config.RedisClient,
	}

	repo.question = NewQuestionPostgreSQL(config.DB, config.RedisClient)
	repo.test = NewTestPostgreSQL(config.DB, config.RedisClient)
	repo.testSection = NewTestSectionPostgreSQL(config.DB)
	repo.testQuestion = NewTestQuestionPostgreSQL(config.DB)
	repo.testRule = NewTestRulePostgreSQL(config.DB)
	repo.attempt = NewAttemptPostgreSQL(config.DB, config.RedisClient)
	repo.answer = NewAnswerPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository { return r.question }
func (r *PostgreSQLRepository) Test() repositories.TestRepository         { return r.test }
func (r *PostgreSQLRepository) TestSection() repositories.TestSectionRepository {
	return r.testSection
}
func (r *PostgreSQLRepository) TestQuestion() repositories.TestQuestionRepository {
	return r.testQuestion
}
func (r *PostgreSQLRepository) TestRule() repositories.TestRuleRepository { return r.testRule }
func (r *PostgreSQLRepository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository     { return r.answer }

// WithTransaction binds a fresh aggregate to a gorm transaction so every
// sub-repository call inside fn shares one commit/rollback boundary.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := NewPostgreSQLRepository(RepositoryConfig{DB: tx, RedisClient: r.redisClient})
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// repositoryManager manages repository lifecycle.
type repositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &repositoryManager{config: config}
}

func (m *repositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *repositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *repositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repositories not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *repositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
