package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/repositories"
	"github.com/classward/test-delivery-service/internal/services"
	"github.com/classward/test-delivery-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	importExport    services.ImportExportService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		importExport:    importExport,
	}
}

// CreateQuestion creates a new question in draft status.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), scope, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), scope, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating question", "question_id", id)

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), scope, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), scope, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted successfully"})
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	response, err := h.questionService.List(c.Request.Context(), scope, h.parseQuestionFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *QuestionHandler) PublishQuestion(c *gin.Context) {
	h.setStatus(c, "Publishing question", "Question published successfully", h.questionService.Publish)
}

func (h *QuestionHandler) ArchiveQuestion(c *gin.Context) {
	h.setStatus(c, "Archiving question", "Question archived successfully", h.questionService.Archive)
}

// ImportQuestions ingests an xlsx workbook of questions. Rows that fail
// validation are reported without aborting the rest of the import.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	h.LogRequest(c, "Importing questions")

	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing upload file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	imported, rowErrors := h.importExport.ImportQuestions(c.Request.Context(), scope, file)

	errorMessages := make([]string, len(rowErrors))
	for i, rowErr := range rowErrors {
		errorMessages[i] = rowErr.Error()
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Import completed",
		Data: map[string]interface{}{
			"imported": len(imported),
			"failed":   len(rowErrors),
			"errors":   errorMessages,
		},
	})
}

// ExportQuestions streams the question catalog as an xlsx workbook.
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	h.LogRequest(c, "Exporting questions")

	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="questions.xlsx"`)

	if err := h.importExport.ExportQuestions(c.Request.Context(), scope, h.parseQuestionFilters(c), c.Writer); err != nil {
		h.handleServiceError(c, err)
		return
	}
}

func (h *QuestionHandler) setStatus(c *gin.Context, logMsg, okMsg string, op func(ctx context.Context, scope models.AuthContext, id uint) error) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, logMsg, "question_id", id)

	scope, ok := GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := op(c.Request.Context(), scope, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: okMsg})
}

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.QuestionFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if qType := c.Query("type"); qType != "" {
		questionType := models.QuestionType(qType)
		filters.Type = &questionType
	}
	if level := c.Query("level"); level != "" {
		difficultyLevel := models.DifficultyLevel(level)
		filters.Level = &difficultyLevel
	}
	if status := c.Query("status"); status != "" {
		questionStatus := models.QuestionStatus(status)
		filters.Status = &questionStatus
	}
	if categoryID := h.parseIntQuery(c, "category_id", 0); categoryID > 0 {
		id := uint(categoryID)
		filters.CategoryID = &id
	}

	return filters
}
