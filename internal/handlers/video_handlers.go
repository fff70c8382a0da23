package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/models"
)

//
// --- Video CRUD ---
//

type CreateVideoRecordInput struct {
	Title        string         `json:"title" binding:"required"`
	OriginalText string         `json:"originalText"`
	Format       string         `json:"format"`
	Resolution   string         `json:"resolution"`
	Duration     int            `json:"duration"`
	Scenes       []models.Scene `json:"scenes"`
}

// CreateVideoRecord is the handler for POST /api/videos. It stores a
// draft record without starting the pipeline; the draft can later be
// handed to /api/ai/create-video by id.
func (h *Handlers) CreateVideoRecord(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input CreateVideoRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Format == "" {
		input.Format = models.FormatStandard16x9
	}
	if !models.ValidFormat(input.Format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown video format"})
		return
	}
	if input.Resolution == "" {
		input.Resolution = "720p"
	}
	if input.Duration == 0 {
		input.Duration = 60
	}

	record := &models.Video{
		UserID:       userID,
		Title:        input.Title,
		OriginalText: input.OriginalText,
		Format:       input.Format,
		Resolution:   input.Resolution,
		Duration:     input.Duration,
		Sections:     input.Scenes,
	}
	if err := h.Store.CreateVideo(c.Request.Context(), record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": record})
}

// GetMyVideos is the handler for GET /api/videos: the caller's own
// videos, newest first.
func (h *Handlers) GetMyVideos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	videos, err := h.Store.GetUserVideos(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load videos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// GetVideo is the handler for GET /api/videos/:id. Owner or admin
// only.
func (h *Handlers) GetVideo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video id"})
		return
	}

	record, err := h.Store.GetVideo(c.Request.Context(), videoID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if record.UserID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this video"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": record})
}

// DeleteVideo is the handler for DELETE /api/videos/:id. Owner or
// admin only. Deleting a video that is still processing is allowed;
// the running job notices on its terminal update and discards its
// result.
func (h *Handlers) DeleteVideo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video id"})
		return
	}

	record, err := h.Store.GetVideo(c.Request.Context(), videoID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if record.UserID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this video"})
		return
	}

	deleted, err := h.Store.DeleteVideo(c.Request.Context(), videoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}
