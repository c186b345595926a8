package session

import (
	"context"
	"fmt"
	"sync"

	"studydesk/internal/models"
)

// fakeGenerator is a controllable stand-in for the Gemini gateway.
type fakeGenerator struct {
	mu        sync.Mutex
	quizCalls int
	cardCalls int

	questions []models.QuizQuestion
	quizErr   error

	cards    []models.Flashcard
	cardsErr error

	// release, when non-nil, blocks generation until closed or the context
	// is cancelled. Lets tests hold a request "in flight".
	release chan struct{}
}

func (f *fakeGenerator) GenerateQuiz(ctx context.Context, _ models.Material) ([]models.QuizQuestion, error) {
	f.mu.Lock()
	f.quizCalls++
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.questions, f.quizErr
}

func (f *fakeGenerator) GenerateFlashcards(ctx context.Context, _ models.Material) ([]models.Flashcard, error) {
	f.mu.Lock()
	f.cardCalls++
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.cards, f.cardsErr
}

func (f *fakeGenerator) calls() (quiz, cards int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quizCalls, f.cardCalls
}

func makeQuestions(n int) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, n)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"Alpha", "Beta", "Gamma", "Delta"},
			CorrectAnswer: "Beta",
		}
	}
	return questions
}

func makeCards(n int) []models.Flashcard {
	cards := make([]models.Flashcard, n)
	for i := range cards {
		cards[i] = models.Flashcard{
			Term:       fmt.Sprintf("Term %d", i+1),
			Definition: fmt.Sprintf("Definition %d", i+1),
		}
	}
	return cards
}

func testMaterial() models.Material {
	return models.Material{
		ID:       "1",
		Name:     "notes.txt",
		Content:  []byte("some study notes"),
		MimeType: "text/plain",
	}
}
