package session

import (
	"context"

	"studydesk/internal/models"
)

// Generator is the slice of the generation gateway the session flows use.
// Declared here so tests can drive the state machines without a live
// Gemini client.
type Generator interface {
	// GenerateQuiz produces the quiz questions for one quiz session.
	GenerateQuiz(ctx context.Context, m models.Material) ([]models.QuizQuestion, error)

	// GenerateFlashcards produces the flashcard deck for one game session.
	// Cancelling ctx aborts the in-flight request.
	GenerateFlashcards(ctx context.Context, m models.Material) ([]models.Flashcard, error)
}
