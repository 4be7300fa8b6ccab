package services

import (
	"context"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
	"github.com/classward/test-delivery-service/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	pool      QuestionPoolService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTestService(repo repositories.Repository, pool QuestionPoolService, logger *slog.Logger, v *validator.Validator) TestService {
	return &testService{
		repo:      repo,
		pool:      pool,
		logger:    logger.With("service", "test"),
		validator: v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *testService) Create(ctx context.Context, scope models.AuthContext, req *CreateTestRequest) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test := &models.Test{
		TenantID:       scope.TenantID,
		OrganisationID: scope.OrganisationID,
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		Status:         models.TestDraft,
		Attempts:       req.Attempts,
		Duration:       req.Duration,
		PassingMarks:   req.PassingMarks,
		CreatedBy:      scope.UserID,
	}
	if test.Attempts == 0 {
		test.Attempts = 1
	}

	if err := s.repo.Test().Create(ctx, nil, test); err != nil {
		return nil, err
	}
	s.logger.Info("test created",
		"test_id", test.ID,
		"type", test.Type,
		"created_by", scope.UserID)
	return test, nil
}

func (s *testService) GetByID(ctx context.Context, scope models.AuthContext, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, scope, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}

func (s *testService) GetByIDWithDetails(ctx context.Context, scope models.AuthContext, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByIDWithDetails(ctx, nil, scope, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}

func (s *testService) Update(ctx context.Context, scope models.AuthContext, id uint, req *UpdateTestRequest) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var test *models.Test
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		test, err = s.getEditable(ctx, txRepo, scope, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			test.Title = *req.Title
		}
		if req.Description != nil {
			test.Description = req.Description
		}
		if req.Attempts != nil {
			test.Attempts = *req.Attempts
		}
		if req.Duration != nil {
			test.Duration = *req.Duration
		}
		if req.PassingMarks != nil {
			test.PassingMarks = *req.PassingMarks
		}
		return txRepo.Test().Update(ctx, nil, test)
	})
	if err != nil {
		return nil, err
	}
	return test, nil
}

func (s *testService) Delete(ctx context.Context, scope models.AuthContext, id uint) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.getEditable(ctx, txRepo, scope, id); err != nil {
			return err
		}
		if err := txRepo.TestQuestion().DeleteByTest(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.Test().Delete(ctx, nil, scope, id)
	})
}

func (s *testService) List(ctx context.Context, scope models.AuthContext, filters repositories.TestFilters) (*TestListResponse, error) {
	tests, total, err := s.repo.Test().List(ctx, nil, scope, filters)
	if err != nil {
		return nil, err
	}
	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}
	return &TestListResponse{Tests: tests, Total: total, Page: page, Size: len(tests)}, nil
}

// ===== STATUS MANAGEMENT =====

func (s *testService) Publish(ctx context.Context, scope models.AuthContext, id uint) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		test, err := s.getEditable(ctx, txRepo, scope, id)
		if err != nil {
			return err
		}

		// a rule_based test must be generatable before learners can see it
		if test.Type == models.TestRuleBased {
			rules, err := txRepo.TestRule().GetActiveByTest(ctx, nil, test.ID)
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				return NewValidationError("rules", "a rule_based test needs at least one active rule", test.ID)
			}
		}

		test.Status = models.TestPublished
		return txRepo.Test().Update(ctx, nil, test)
	})
}

func (s *testService) Archive(ctx context.Context, scope models.AuthContext, id uint) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		test, err := s.getEditable(ctx, txRepo, scope, id)
		if err != nil {
			return err
		}
		test.Status = models.TestArchived
		return txRepo.Test().Update(ctx, nil, test)
	})
}

// ===== QUESTION MANAGEMENT =====

func (s *testService) AddQuestions(ctx context.Context, scope models.AuthContext, testID uint, reqs []TestQuestionRequest) error {
	if len(reqs) == 0 {
		return NewValidationError("questions", "at least one question is required", nil)
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		test, err := s.getEditable(ctx, txRepo, scope, testID)
		if err != nil {
			return err
		}

		ids := make([]uint, len(reqs))
		for i, r := range reqs {
			ids[i] = r.QuestionID
		}
		questions, err := txRepo.Question().GetByIDs(ctx, nil, scope, ids)
		if err != nil {
			return err
		}
		if len(questions) != len(ids) {
			return ErrQuestionNotFound
		}

		count, err := txRepo.TestQuestion().CountByTest(ctx, nil, testID)
		if err != nil {
			return err
		}

		rows := make([]*models.TestQuestion, len(reqs))
		for i, r := range reqs {
			ordering := r.Ordering
			if ordering == 0 {
				ordering = int(count) + i + 1
			}
			rows[i] = &models.TestQuestion{
				TestID:       test.ID,
				QuestionID:   r.QuestionID,
				SectionID:    r.SectionID,
				RuleID:       r.RuleID,
				Ordering:     ordering,
				IsCompulsory: r.IsCompulsory,
			}
		}
		return txRepo.TestQuestion().CreateBatch(ctx, nil, rows)
	})
}

func (s *testService) RemoveQuestion(ctx context.Context, scope models.AuthContext, testID, questionID uint) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.getEditable(ctx, txRepo, scope, testID); err != nil {
			return err
		}
		return txRepo.TestQuestion().Delete(ctx, nil, testID, questionID)
	})
}

func (s *testService) ReorderQuestions(ctx context.Context, scope models.AuthContext, testID uint, orders []repositories.QuestionOrder) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.getEditable(ctx, txRepo, scope, testID); err != nil {
			return err
		}
		return txRepo.TestQuestion().Reorder(ctx, nil, testID, orders)
	})
}

// ===== SECTION MANAGEMENT =====

func (s *testService) AddSection(ctx context.Context, scope models.AuthContext, testID uint, req *CreateSectionRequest) (*models.TestSection, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var section *models.TestSection
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.getEditable(ctx, txRepo, scope, testID); err != nil {
			return err
		}
		section = &models.TestSection{
			TestID:       testID,
			Title:        req.Title,
			Ordering:     req.Ordering,
			MinQuestions: req.MinQuestions,
			MaxQuestions: req.MaxQuestions,
		}
		return txRepo.TestSection().Create(ctx, nil, section)
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

func (s *testService) RemoveSection(ctx context.Context, scope models.AuthContext, testID, sectionID uint) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.getEditable(ctx, txRepo, scope, testID); err != nil {
			return err
		}
		sections, err := txRepo.TestSection().GetByTest(ctx, nil, testID)
		if err != nil {
			return err
		}
		for _, sec := range sections {
			if sec.ID == sectionID {
				return txRepo.TestSection().Delete(ctx, nil, sectionID)
			}
		}
		return ErrSectionNotFound
	})
}

// ===== RULE MANAGEMENT =====

func (s *testService) AddRule(ctx context.Context, scope models.AuthContext, testID uint, req *CreateRuleRequest) (*models.TestRule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateRuleConfig(req.NumberOfQuestions, req.PoolSize); err != nil {
		return nil, err
	}

	var rule *models.TestRule
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		test, err := s.getEditable(ctx, txRepo, scope, testID)
		if err != nil {
			return err
		}
		if test.Type != models.TestRuleBased {
			return NewValidationError("type", "rules only apply to rule_based tests", string(test.Type))
		}

		rule = &models.TestRule{
			TestID:            test.ID,
			SectionID:         req.SectionID,
			Name:              req.Name,
			Criteria:          datatypes.NewJSONType(req.Criteria),
			NumberOfQuestions: req.NumberOfQuestions,
			SelectionStrategy: req.SelectionStrategy,
			SelectionMode:     req.SelectionMode,
			Priority:          req.Priority,
			IsActive:          req.IsActive,
		}
		if req.PoolSize != nil {
			rule.PoolSize = *req.PoolSize
		}
		return txRepo.TestRule().Create(ctx, nil, rule)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("rule added", "test_id", testID, "rule_id", rule.ID, "mode", rule.SelectionMode)
	return rule, nil
}

func (s *testService) UpdateRule(ctx context.Context, scope models.AuthContext, testID, ruleID uint, req *UpdateRuleRequest) (*models.TestRule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var rule *models.TestRule
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.getEditable(ctx, txRepo, scope, testID); err != nil {
			return err
		}
		var err error
		rule, err = s.getTestRule(ctx, txRepo, testID, ruleID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			rule.Name = *req.Name
		}
		if req.Criteria != nil {
			rule.Criteria = datatypes.NewJSONType(*req.Criteria)
		}
		if req.NumberOfQuestions != nil {
			rule.NumberOfQuestions = *req.NumberOfQuestions
		}
		if req.PoolSize != nil {
			rule.PoolSize = *req.PoolSize
		}
		if req.SelectionStrategy != nil {
			rule.SelectionStrategy = *req.SelectionStrategy
		}
		if req.SelectionMode != nil {
			rule.SelectionMode = *req.SelectionMode
		}
		if req.Priority != nil {
			rule.Priority = *req.Priority
		}
		if req.IsActive != nil {
			rule.IsActive = *req.IsActive
		}

		if err := validateRuleConfig(rule.NumberOfQuestions, &rule.PoolSize); err != nil {
			return err
		}
		return txRepo.TestRule().Update(ctx, nil, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *testService) RemoveRule(ctx context.Context, scope models.AuthContext, testID, ruleID uint) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.getEditable(ctx, txRepo, scope, testID); err != nil {
			return err
		}
		if _, err := s.getTestRule(ctx, txRepo, testID, ruleID); err != nil {
			return err
		}
		return txRepo.TestRule().Delete(ctx, nil, ruleID)
	})
}

// PreviewRule runs the pool builder the way attempt generation would, so
// authors see sufficiency failures before a learner does.
func (s *testService) PreviewRule(ctx context.Context, scope models.AuthContext, testID, ruleID uint) ([]*models.Question, error) {
	if _, err := s.GetByID(ctx, scope, testID); err != nil {
		return nil, err
	}
	rule, err := s.getTestRule(ctx, s.repo, testID, ruleID)
	if err != nil {
		return nil, err
	}
	return s.pool.BuildPool(ctx, s.repo, scope, testID, rule)
}

// ===== HELPERS =====

// getEditable loads a test and rejects edits to generated instances.
func (s *testService) getEditable(ctx context.Context, repo repositories.Repository, scope models.AuthContext, id uint) (*models.Test, error) {
	test, err := repo.Test().GetByID(ctx, nil, scope, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	if test.Type == models.TestGenerated {
		return nil, ErrGeneratedNotEditable
	}
	return test, nil
}

func (s *testService) getTestRule(ctx context.Context, repo repositories.Repository, testID, ruleID uint) (*models.TestRule, error) {
	rule, err := repo.TestRule().GetByID(ctx, nil, ruleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if rule.TestID != testID {
		return nil, ErrRuleNotFound
	}
	return rule, nil
}

func validateRuleConfig(numberOfQuestions int, poolSize *int) error {
	if numberOfQuestions < 1 {
		return NewValidationError("number_of_questions", "must select at least one question", numberOfQuestions)
	}
	if poolSize != nil && *poolSize > 0 && *poolSize < numberOfQuestions {
		return NewValidationError("pool_size", "pool size cannot be smaller than the selection count", *poolSize)
	}
	return nil
}
