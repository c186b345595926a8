package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"studydesk/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize caps uploaded materials at 20MB, the limit for inline
// document data on the model service.
const maxUploadSize = 20 * 1024 * 1024

// HandleUploadMaterial stores an uploaded document and makes it the active
// material.
func (h *Handler) HandleUploadMaterial(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("missing file in upload: %v", err)})
		return
	}

	if fileHeader.Size == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("file %s is empty", fileHeader.Filename)})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: fmt.Sprintf("file %s exceeds the %dMB limit", fileHeader.Filename, maxUploadSize/(1024*1024))})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = getMimeType(fileHeader.Filename)
	}

	material := models.Material{
		ID:        uuid.NewString(),
		Name:      fileHeader.Filename,
		Content:   data,
		MimeType:  mimeType,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.Store.Put(c.Request.Context(), material); err != nil {
		respondError(c, err)
		return
	}

	// An upload becomes the active material immediately.
	h.Selector.Select(material)
	log.Printf("INFO: stored material %s (%s, %d bytes)", material.ID, material.Name, len(data))

	c.JSON(http.StatusCreated, material.Summary())
}

// HandleListMaterials returns the stored materials, newest first.
func (h *Handler) HandleListMaterials(c *gin.Context) {
	materials, err := h.Store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]models.MaterialSummary, 0, len(materials))
	for _, m := range materials {
		summaries = append(summaries, m.Summary())
	}
	c.JSON(http.StatusOK, gin.H{"materials": summaries})
}

// HandleSelectMaterial re-fetches a stored material and makes it the active
// selection. Selecting the same material twice yields the same state.
func (h *Handler) HandleSelectMaterial(c *gin.Context) {
	id := c.Param("materialId")

	material, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Selector.Select(material)
	c.JSON(http.StatusOK, material.Summary())
}

// HandleClearMaterials deletes every stored material. The active selection
// is cleared too when it pointed at a stored record; a failed clear leaves
// both the records and the selection untouched.
func (h *Handler) HandleClearMaterials(c *gin.Context) {
	ctx := c.Request.Context()

	selectionStored := false
	if current, ok := h.Selector.Current(); ok {
		if _, err := h.Store.Get(ctx, current.ID); err == nil {
			selectionStored = true
		}
	}

	if err := h.Store.Clear(ctx); err != nil {
		respondError(c, err)
		return
	}

	if selectionStored {
		h.Selector.Clear()
	}

	log.Printf("INFO: cleared material history")
	c.Status(http.StatusNoContent)
}

// HandleActiveMaterial returns the current selection, if any.
func (h *Handler) HandleActiveMaterial(c *gin.Context) {
	material, ok := h.Selector.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"selected": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": true, "material": material.Summary()})
}

// getMimeType returns the MIME type for a file based on its extension.
func getMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
