package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
	"github.com/classward/test-delivery-service/internal/validator"
)

const questionSheet = "Questions"

var questionHeader = []string{"Type", "Text", "Level", "Grading", "Marks", "Tags", "Options", "Correct"}

// importExportService moves questions and attempt results in and out as
// xlsx workbooks. Import is row-by-row best effort: bad rows collect
// errors, good rows are created.
type importExportService struct {
	questions QuestionService
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(questions QuestionService, repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ImportExportService {
	return &importExportService{
		questions: questions,
		repo:      repo,
		logger:    logger.With("service", "import_export"),
		validator: v,
	}
}

// ImportQuestions reads the Questions sheet. Option cells are "|"-separated
// texts; the Correct cell lists 1-based indexes into them.
func (s *importExportService) ImportQuestions(ctx context.Context, scope models.AuthContext, r io.Reader) ([]*models.Question, []error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, []error{fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	rows, err := f.GetRows(questionSheet)
	if err != nil {
		return nil, []error{fmt.Errorf("read sheet %s: %w", questionSheet, err)}
	}
	if len(rows) < 2 {
		return nil, []error{NewValidationError("sheet", "no question rows found", questionSheet)}
	}

	var created []*models.Question
	var errs []error
	for i, row := range rows[1:] {
		req, err := parseQuestionRow(row)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}
		q, err := s.questions.Create(ctx, scope, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+2, err))
			continue
		}
		created = append(created, q)
	}

	s.logger.Info("questions imported",
		"created", len(created),
		"failed", len(errs))
	return created, errs
}

func (s *importExportService) ExportQuestions(ctx context.Context, scope models.AuthContext, filters repositories.QuestionFilters, w io.Writer) error {
	questions, _, err := s.repo.Question().List(ctx, nil, scope, filters)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet, err := f.NewSheet(questionSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(sheet)
	f.DeleteSheet("Sheet1")

	if err := writeRow(f, 1, questionHeader); err != nil {
		return err
	}
	for i, q := range questions {
		texts := make([]string, len(q.Options))
		var correct []string
		for j, opt := range q.Options {
			texts[j] = opt.Text
			if opt.IsCorrect {
				correct = append(correct, strconv.Itoa(j+1))
			}
		}
		row := []string{
			string(q.Type),
			q.Text,
			string(q.Level),
			string(q.GradingType),
			strconv.Itoa(q.Marks),
			strings.Join(q.TagList(), "|"),
			strings.Join(texts, "|"),
			strings.Join(correct, "|"),
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func (s *importExportService) ExportAttempts(ctx context.Context, scope models.AuthContext, testID uint, w io.Writer) error {
	attempts, _, err := s.repo.Attempt().List(ctx, nil, scope, repositories.AttemptFilters{TestID: &testID})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Attempts"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := []string{"Attempt ID", "User", "Attempt #", "Status", "Review Status", "Score", "Result", "Started At", "Submitted At"}
	if err := writeRowOn(f, sheet, 1, header); err != nil {
		return err
	}
	for i, a := range attempts {
		score := ""
		if a.Score != nil {
			score = strconv.FormatFloat(*a.Score, 'f', 2, 64)
		}
		result := ""
		if a.Result != nil {
			result = string(*a.Result)
		}
		submitted := ""
		if a.SubmittedAt != nil {
			submitted = a.SubmittedAt.Format("2006-01-02 15:04:05")
		}
		row := []string{
			strconv.FormatUint(uint64(a.ID), 10),
			a.UserID,
			strconv.Itoa(a.Attempt),
			string(a.Status),
			string(a.ReviewStatus),
			score,
			result,
			a.StartedAt.Format("2006-01-02 15:04:05"),
			submitted,
		}
		if err := writeRowOn(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// ===== ROW CODEC =====

func parseQuestionRow(row []string) (*CreateQuestionRequest, error) {
	if len(row) < 5 {
		return nil, NewValidationError("row", "expected at least 5 columns", len(row))
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	marks, err := strconv.Atoi(cell(4))
	if err != nil {
		return nil, NewValidationError("marks", "marks must be a number", cell(4))
	}

	req := &CreateQuestionRequest{
		Type:    models.QuestionType(cell(0)),
		Text:    cell(1),
		Level:   models.DifficultyLevel(cell(2)),
		Grading: models.GradingType(cell(3)),
		Marks:   marks,
	}
	if tags := cell(5); tags != "" {
		req.Tags = strings.Split(tags, "|")
	}

	if texts := cell(6); texts != "" {
		correct := make(map[int]bool)
		for _, c := range strings.Split(cell(7), "|") {
			if c == "" {
				continue
			}
			idx, err := strconv.Atoi(strings.TrimSpace(c))
			if err != nil {
				return nil, NewValidationError("correct", "correct cell must list option numbers", c)
			}
			correct[idx] = true
		}
		for i, text := range strings.Split(texts, "|") {
			req.Options = append(req.Options, QuestionOptionRequest{
				Text:      strings.TrimSpace(text),
				IsCorrect: correct[i+1],
				Ordering:  i + 1,
			})
		}
	}
	return req, nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	return writeRowOn(f, questionSheet, rowNum, values)
}

func writeRowOn(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
