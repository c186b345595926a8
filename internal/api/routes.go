package api

import (
	"github.com/gin-gonic/gin"

	"studydesk/internal/api/handlers"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	// Apply CORS middleware
	router.Use(CORSMiddleware())

	api := router.Group("/api")
	{
		// --- Material Routes ---
		api.POST("/materials", handler.HandleUploadMaterial)                    // Upload a material (and select it)
		api.GET("/materials", handler.HandleListMaterials)                      // History list, newest first
		api.DELETE("/materials", handler.HandleClearMaterials)                  // Clear all stored materials
		api.GET("/materials/active", handler.HandleActiveMaterial)              // Current selection
		api.POST("/materials/:materialId/select", handler.HandleSelectMaterial) // Load a material from history

		// --- Ask Routes ---
		api.POST("/ask", handler.HandleAsk) // Streamed answer over the active material

		// --- Quiz Routes ---
		quiz := api.Group("/quiz")
		{
			quiz.GET("", handler.HandleQuizState)
			quiz.POST("/start", handler.HandleQuizStart)
			quiz.POST("/answer", handler.HandleQuizAnswer)
			quiz.POST("/next", handler.HandleQuizNext)
			quiz.POST("/review", handler.HandleQuizReview)
			quiz.POST("/review/next", handler.HandleQuizReviewNext)
			quiz.POST("/restart", handler.HandleQuizRestart)
			quiz.POST("/exit", handler.HandleQuizExit)
		}

		// --- Flashcard Routes ---
		flashcards := api.Group("/flashcards")
		{
			flashcards.GET("", handler.HandleFlashcardState)
			flashcards.POST("/start", handler.HandleFlashcardStart)
			flashcards.POST("/cancel", handler.HandleFlashcardCancel)
			flashcards.POST("/reveal", handler.HandleFlashcardReveal)
			flashcards.POST("/advance", handler.HandleFlashcardAdvance)
			flashcards.POST("/restart", handler.HandleFlashcardRestart)
			flashcards.POST("/exit", handler.HandleFlashcardExit)
		}
	}
}
