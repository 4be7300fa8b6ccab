package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
	"github.com/classward/test-delivery-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger.With("service", "question"),
		validator: v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, scope models.AuthContext, req *CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateOptionShape(req.Type, req.Options); err != nil {
		return nil, err
	}

	question := &models.Question{
		TenantID:       scope.TenantID,
		OrganisationID: scope.OrganisationID,
		Type:           req.Type,
		Text:           req.Text,
		Level:          req.Level,
		Marks:          req.Marks,
		Status:         models.QuestionDraft,
		GradingType:    req.Grading,
		CategoryID:     req.CategoryID,
		CreatedBy:      scope.UserID,
		Options:        buildOptions(req.Options),
	}
	if req.Params != nil {
		question.Params = datatypes.NewJSONType(*req.Params)
	}
	if len(req.Tags) > 0 {
		raw, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, err
		}
		question.Tags = raw
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, err
	}

	s.logger.Info("question created",
		"question_id", question.ID,
		"type", question.Type,
		"created_by", scope.UserID)
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, scope models.AuthContext, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, scope, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, scope models.AuthContext, id uint, req *UpdateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var question *models.Question
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		question, err = txRepo.Question().GetByID(ctx, nil, scope, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return err
		}

		if req.Text != nil {
			question.Text = *req.Text
		}
		if req.Level != nil {
			question.Level = *req.Level
		}
		if req.Grading != nil {
			question.GradingType = *req.Grading
		}
		if req.Marks != nil {
			question.Marks = *req.Marks
		}
		if req.CategoryID != nil {
			question.CategoryID = req.CategoryID
		}
		if req.Params != nil {
			question.Params = datatypes.NewJSONType(*req.Params)
		}
		if req.Tags != nil {
			raw, err := json.Marshal(req.Tags)
			if err != nil {
				return err
			}
			question.Tags = raw
		}

		if req.Options != nil {
			if err := validateOptionShape(question.Type, req.Options); err != nil {
				return err
			}
			opts := buildOptions(req.Options)
			if err := txRepo.Question().ReplaceOptions(ctx, nil, question.ID, opts); err != nil {
				return err
			}
			question.Options = opts
		}

		return txRepo.Question().Update(ctx, nil, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, scope models.AuthContext, id uint) error {
	if err := s.repo.Question().Delete(ctx, nil, scope, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}
	s.logger.Info("question deleted", "question_id", id)
	return nil
}

func (s *questionService) List(ctx context.Context, scope models.AuthContext, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, nil, scope, filters)
	if err != nil {
		return nil, err
	}
	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}
	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
		Page:      page,
		Size:      len(questions),
	}, nil
}

// ===== STATUS MANAGEMENT =====

func (s *questionService) Publish(ctx context.Context, scope models.AuthContext, id uint) error {
	return s.setStatus(ctx, scope, id, models.QuestionPublished)
}

func (s *questionService) Archive(ctx context.Context, scope models.AuthContext, id uint) error {
	return s.setStatus(ctx, scope, id, models.QuestionArchived)
}

func (s *questionService) setStatus(ctx context.Context, scope models.AuthContext, id uint, status models.QuestionStatus) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		question, err := txRepo.Question().GetByID(ctx, nil, scope, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return err
		}
		if question.Status == status {
			return nil
		}
		question.Status = status
		return txRepo.Question().Update(ctx, nil, question)
	})
}

// ===== OPTION SHAPE RULES =====

// validateOptionShape enforces per-type authoring invariants so every
// stored question is answerable and auto-scorable where its type allows.
func validateOptionShape(qt models.QuestionType, options []QuestionOptionRequest) error {
	if !qt.HasOptions() {
		if len(options) > 0 {
			return NewValidationError("options", "question type does not carry options", string(qt))
		}
		return nil
	}
	if len(options) == 0 {
		return NewValidationError("options", "at least one option is required", string(qt))
	}

	correct := 0
	for _, opt := range options {
		if opt.IsCorrect {
			correct++
		}
	}

	switch qt {
	case models.SingleChoice, models.TrueFalse:
		if correct != 1 {
			return NewValidationError("options", "exactly one option must be correct", correct)
		}
		if qt == models.TrueFalse && len(options) != 2 {
			return NewValidationError("options", "true/false questions need exactly two options", len(options))
		}
	case models.MultiSelect:
		if correct < 1 {
			return NewValidationError("options", "at least one option must be correct", correct)
		}
	case models.FillBlank:
		seen := make(map[int]struct{})
		for _, opt := range options {
			if opt.BlankIndex == nil {
				return NewValidationError("options", "every fill_blank option needs a blank index", opt.Text)
			}
			if !opt.IsCorrect {
				continue
			}
			if _, dup := seen[*opt.BlankIndex]; dup {
				return NewValidationError("options", "duplicate correct answer for blank", *opt.BlankIndex)
			}
			seen[*opt.BlankIndex] = struct{}{}
		}
		if len(seen) == 0 {
			return NewValidationError("options", "at least one blank needs a correct answer", nil)
		}
	case models.Match:
		for _, opt := range options {
			if opt.MatchTarget == nil || *opt.MatchTarget == "" {
				return NewValidationError("options", "every match option needs a target", opt.Text)
			}
		}
	}
	return nil
}

func buildOptions(reqs []QuestionOptionRequest) []models.QuestionOption {
	opts := make([]models.QuestionOption, len(reqs))
	for i, r := range reqs {
		opts[i] = models.QuestionOption{
			Text:        r.Text,
			IsCorrect:   r.IsCorrect,
			Marks:       r.Marks,
			Ordering:    r.Ordering,
			BlankIndex:  r.BlankIndex,
			MatchTarget: r.MatchTarget,
		}
	}
	return opts
}
