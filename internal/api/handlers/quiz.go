package handlers

import (
	"fmt"
	"net/http"

	"studydesk/internal/models"

	"github.com/gin-gonic/gin"
)

// answerRequest is the request body for HandleQuizAnswer.
type answerRequest struct {
	Selected string `json:"selected"`
}

// HandleQuizStart begins a quiz session over the active material. The
// generation call runs in the background; poll HandleQuizState for
// progress.
func (h *Handler) HandleQuizStart(c *gin.Context) {
	material, ok := h.activeMaterial(c)
	if !ok {
		return
	}

	if err := h.Quiz.Start(material); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.Quiz.Snapshot())
}

// HandleQuizAnswer scores a selection against the current question.
func (h *Handler) HandleQuizAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("invalid answer payload: %v", err)})
		return
	}

	outcome, err := h.Quiz.Answer(req.Selected)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// HandleQuizNext advances to the next question or to the results.
func (h *Handler) HandleQuizNext(c *gin.Context) {
	if err := h.Quiz.Next(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Quiz.Snapshot())
}

// HandleQuizReview begins the mistake review.
func (h *Handler) HandleQuizReview(c *gin.Context) {
	if err := h.Quiz.StartReview(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Quiz.Snapshot())
}

// HandleQuizReviewNext advances through the mistake review.
func (h *Handler) HandleQuizReviewNext(c *gin.Context) {
	if err := h.Quiz.ReviewNext(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Quiz.Snapshot())
}

// HandleQuizRestart fetches a fresh quiz over the same material.
func (h *Handler) HandleQuizRestart(c *gin.Context) {
	if err := h.Quiz.Restart(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.Quiz.Snapshot())
}

// HandleQuizExit discards the quiz session.
func (h *Handler) HandleQuizExit(c *gin.Context) {
	if err := h.Quiz.Exit(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Quiz.Snapshot())
}

// HandleQuizState returns the current quiz snapshot.
func (h *Handler) HandleQuizState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Quiz.Snapshot())
}
