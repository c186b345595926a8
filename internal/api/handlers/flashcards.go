package handlers

import (
	"fmt"
	"net/http"

	"studydesk/internal/models"

	"github.com/gin-gonic/gin"
)

// advanceRequest is the request body for HandleFlashcardAdvance.
type advanceRequest struct {
	Knew bool `json:"knew"`
}

// HandleFlashcardStart begins a flashcard session over the active
// material. The generation call runs in the background and can be
// cancelled with HandleFlashcardCancel while in flight.
func (h *Handler) HandleFlashcardStart(c *gin.Context) {
	material, ok := h.activeMaterial(c)
	if !ok {
		return
	}

	if err := h.Flashcards.Start(material); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.Flashcards.Snapshot())
}

// HandleFlashcardCancel signals cancellation of the loading flashcard
// session, or exits the loading screen after a failed generation.
func (h *Handler) HandleFlashcardCancel(c *gin.Context) {
	if err := h.Flashcards.Cancel(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Flashcards.Snapshot())
}

// HandleFlashcardReveal toggles the definition of the current card.
func (h *Handler) HandleFlashcardReveal(c *gin.Context) {
	if err := h.Flashcards.Reveal(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Flashcards.Snapshot())
}

// HandleFlashcardAdvance moves to the next card, self-scoring the current
// one.
func (h *Handler) HandleFlashcardAdvance(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("invalid advance payload: %v", err)})
		return
	}

	if err := h.Flashcards.Advance(req.Knew); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Flashcards.Snapshot())
}

// HandleFlashcardRestart re-runs the same deck with counters reset.
func (h *Handler) HandleFlashcardRestart(c *gin.Context) {
	if err := h.Flashcards.Restart(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Flashcards.Snapshot())
}

// HandleFlashcardExit discards the flashcard session.
func (h *Handler) HandleFlashcardExit(c *gin.Context) {
	if err := h.Flashcards.Exit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Flashcards.Snapshot())
}

// HandleFlashcardState returns the current flashcard snapshot.
func (h *Handler) HandleFlashcardState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Flashcards.Snapshot())
}
