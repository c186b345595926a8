package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"studydesk/internal/gemini"
	"studydesk/internal/models"
	"studydesk/internal/session"
	"studydesk/internal/store"

	"github.com/gin-gonic/gin"
)

// Gateway is the generation gateway surface the handlers use. *gemini.Client
// satisfies it; tests substitute a fake.
type Gateway interface {
	session.Generator

	// AskQuestion streams the answer to a free-text question about the
	// material onto chunks.
	AskQuestion(ctx context.Context, m models.Material, question string, chunks chan<- string) error
}

// Handler contains the API handlers dependencies
type Handler struct {
	Store      *store.MaterialStore
	Gateway    Gateway
	Selector   *session.Selector
	Gate       *session.Gate
	Quiz       *session.QuizSession
	Flashcards *session.FlashcardSession
}

// NewHandler creates a new Handler wired to the store and gateway. The two
// session flows share one generation gate, so only one model request can be
// in flight at a time.
func NewHandler(materialStore *store.MaterialStore, gateway Gateway) *Handler {
	gate := &session.Gate{}
	return &Handler{
		Store:      materialStore,
		Gateway:    gateway,
		Selector:   &session.Selector{},
		Gate:       gate,
		Quiz:       session.NewQuizSession(gateway, gate),
		Flashcards: session.NewFlashcardSession(gateway, gate),
	}
}

// respondError logs the error and writes the matching JSON error response.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		log.Printf("WARN: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: err.Error()})
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrMaterialNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, session.ErrNoActiveMaterial),
		errors.Is(err, gemini.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrGenerationInFlight),
		errors.Is(err, session.ErrInvalidAction),
		errors.Is(err, session.ErrAlreadyAnswered),
		errors.Is(err, session.ErrNotAnswered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// activeMaterial resolves the current selection or reports the missing
// precondition.
func (h *Handler) activeMaterial(c *gin.Context) (models.Material, bool) {
	material, ok := h.Selector.Current()
	if !ok {
		respondError(c, session.ErrNoActiveMaterial)
		return models.Material{}, false
	}
	return material, true
}
