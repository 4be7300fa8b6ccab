package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classward/test-delivery-service/internal/config"
	"github.com/classward/test-delivery-service/internal/models"
	"github.com/classward/test-delivery-service/internal/services"
	"github.com/classward/test-delivery-service/internal/utils"
)

type HandlerManager struct {
	questionHandler *QuestionHandler
	testHandler     *TestHandler
	attemptHandler  *AttemptHandler
	authMiddleware  *CasdoorAuthMiddleware
	serviceManager  services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	return &HandlerManager{
		questionHandler: NewQuestionHandler(serviceManager.Question(), serviceManager.ImportExport(), logger),
		testHandler:     NewTestHandler(serviceManager.Test(), logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), serviceManager.ImportExport(), logger),
		authMiddleware:  NewCasdoorAuthMiddleware(casdoorConfig),
		serviceManager:  serviceManager,
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	authoring := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)
	reviewing := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleReviewer, models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", authoring, hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", authoring, hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", authoring, hm.questionHandler.DeleteQuestion)
			questions.POST("/:id/publish", authoring, hm.questionHandler.PublishQuestion)
			questions.POST("/:id/archive", authoring, hm.questionHandler.ArchiveQuestion)

			// Bulk import/export
			questions.POST("/import", authoring, hm.questionHandler.ImportQuestions)
			questions.GET("/export", authoring, hm.questionHandler.ExportQuestions)
		}

		// Test routes
		tests := v1.Group("/tests")
		{
			tests.POST("", authoring, hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.GET("/:id/details", hm.testHandler.GetTestWithDetails)
			tests.PUT("/:id", authoring, hm.testHandler.UpdateTest)
			tests.DELETE("/:id", authoring, hm.testHandler.DeleteTest)
			tests.POST("/:id/publish", authoring, hm.testHandler.PublishTest)
			tests.POST("/:id/archive", authoring, hm.testHandler.ArchiveTest)

			// Question management (plain tests and curated rule pools)
			tests.POST("/:id/questions", authoring, hm.testHandler.AddQuestions)
			tests.DELETE("/:id/questions/:question_id", authoring, hm.testHandler.RemoveQuestion)
			tests.PUT("/:id/questions/reorder", authoring, hm.testHandler.ReorderQuestions)

			// Section management
			tests.POST("/:id/sections", authoring, hm.testHandler.AddSection)
			tests.DELETE("/:id/sections/:section_id", authoring, hm.testHandler.RemoveSection)

			// Rule management (rule_based tests)
			tests.POST("/:id/rules", authoring, hm.testHandler.AddRule)
			tests.PUT("/:id/rules/:rule_id", authoring, hm.testHandler.UpdateRule)
			tests.DELETE("/:id/rules/:rule_id", authoring, hm.testHandler.RemoveRule)
			tests.GET("/:id/rules/:rule_id/preview", authoring, hm.testHandler.PreviewRule)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/:id/questions", hm.attemptHandler.GetAttemptQuestions)
			attempts.POST("/:id/answer", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.POST("/:id/review", reviewing, hm.attemptHandler.ReviewAttempt)

			attempts.GET("/count/:test_id", hm.attemptHandler.GetAttemptCount)
			attempts.GET("/export/:test_id", reviewing, hm.attemptHandler.ExportAttempts)
		}
	}

	// Health check endpoint (unauthenticated)
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "test-delivery-service",
		})
	})
}
