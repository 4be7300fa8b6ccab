package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/classward/test-delivery-service/internal/cache"
	"github.com/classward/test-delivery-service/internal/events"
	"github.com/classward/test-delivery-service/internal/repositories"
	"github.com/classward/test-delivery-service/internal/validator"
)

// serviceManager wires the service layer together and owns its lifecycle.
type serviceManager struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	questionService     QuestionService
	testService         TestService
	poolService         QuestionPoolService
	attemptService      AttemptService
	gradingService      GradingService
	importExportService ImportExportService

	shutdown bool
	mu       sync.RWMutex
}

func NewServiceManager(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	sm := &serviceManager{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}

	matcher := NewCriteriaMatcher(logger)
	selector := NewQuestionSelector()

	sm.poolService = NewQuestionPoolService(matcher, selector, logger)
	sm.gradingService = NewGradingService(logger)
	sm.questionService = NewQuestionService(repo, logger, v)
	sm.testService = NewTestService(repo, sm.poolService, logger, v)
	sm.attemptService = NewAttemptService(repo, sm.poolService, sm.gradingService, cacheManager, publisher, logger)
	sm.importExportService = NewImportExportService(sm.questionService, repo, logger, v)

	return sm
}

func (sm *serviceManager) Question() QuestionService         { return sm.questionService }
func (sm *serviceManager) Test() TestService                 { return sm.testService }
func (sm *serviceManager) Attempt() AttemptService           { return sm.attemptService }
func (sm *serviceManager) Grading() GradingService           { return sm.gradingService }
func (sm *serviceManager) ImportExport() ImportExportService { return sm.importExportService }

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if sm.shutdown {
		return context.Canceled
	}
	if err := sm.repo.Ping(ctx); err != nil {
		return err
	}
	// cache degradation is non-fatal, log only
	if err := sm.cache.HealthCheck(ctx); err != nil {
		sm.logger.Warn("cache health check failed", "error", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("event publisher close failed", "error", err)
	}
	sm.logger.Info("service manager shut down")
	return nil
}
