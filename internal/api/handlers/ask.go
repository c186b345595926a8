package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"studydesk/internal/gemini"
	"studydesk/internal/session"

	"github.com/gin-gonic/gin"
)

// askRequest is the request body for HandleAsk.
type askRequest struct {
	Question string `json:"question"`
}

// HandleAsk streams the model's answer to a question about the active
// material as Server-Sent Events. Each data event carries one JSON-encoded
// text chunk; the concatenation of all chunks is the full answer. If the
// stream fails midway, the chunks already delivered stand and an error
// event is appended.
func (h *Handler) HandleAsk(c *gin.Context) {
	material, ok := h.activeMaterial(c)
	if !ok {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", gemini.ErrEmptyInput, err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(c, gemini.ErrEmptyInput)
		return
	}

	if !h.Gate.TryAcquire() {
		respondError(c, session.ErrGenerationInFlight)
		return
	}
	defer h.Gate.Release()

	// Set up Server-Sent Events headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	chunks := make(chan string, 10)
	errCh := make(chan error, 1)

	go func() {
		defer close(chunks)
		errCh <- h.Gateway.AskQuestion(ctx, material, req.Question, chunks)
	}()

	c.Stream(func(w io.Writer) bool {
		chunk, open := <-chunks
		if !open {
			if err := <-errCh; err != nil {
				log.Printf("ERROR: ask streaming failed: %v", err)
				c.SSEvent("error", err.Error())
			} else {
				c.SSEvent("done", "")
			}
			return false
		}

		// Marshal the chunk to JSON so newlines and special characters
		// survive the SSE framing.
		jsonChunk, err := json.Marshal(chunk)
		if err != nil {
			log.Printf("ERROR: failed to marshal answer chunk: %v", err)
			return true
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonChunk); err != nil {
			return false
		}
		c.Writer.Flush()
		return true
	})
}
