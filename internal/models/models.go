package models

import (
	"strings"
	"time"
)

// Material represents a study document uploaded by the user.
// Materials are immutable once stored: they are inserted or deleted
// wholesale, never updated in place.
type Material struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   []byte    `json:"-"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// MaterialSummary is the listing view of a Material, without the content
// bytes. Used for the history list.
type MaterialSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the listing view of the material.
func (m Material) Summary() MaterialSummary {
	return MaterialSummary{
		ID:        m.ID,
		Name:      m.Name,
		MimeType:  m.MimeType,
		Size:      int64(len(m.Content)),
		CreatedAt: m.CreatedAt,
	}
}

// QuizQuestion represents a single multiple-choice question. Options always
// holds exactly four entries and CorrectAnswer matches one of them
// (case-insensitively, ignoring surrounding whitespace).
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// IsCorrect reports whether the selected option matches the question's
// correct answer. Comparison ignores case and surrounding whitespace,
// everywhere a selection is scored.
func (q QuizQuestion) IsCorrect(selected string) bool {
	return strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(q.CorrectAnswer))
}

// Flashcard represents a single term/definition pair.
type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Mistake records an incorrectly answered quiz question together with the
// option the user picked. Collected during a quiz pass and replayed by the
// mistake review.
type Mistake struct {
	Question QuizQuestion `json:"question"`
	Selected string       `json:"selected"`
}

// GeminiQuizResponse represents the structured JSON response from Gemini
// for quiz generation.
type GeminiQuizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

// GeminiFlashcardResponse represents the structured JSON response from
// Gemini for flashcard generation.
type GeminiFlashcardResponse struct {
	Flashcards []Flashcard `json:"flashcards"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
