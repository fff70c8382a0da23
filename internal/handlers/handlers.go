package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/ai"
	"github.com/vidai-app/vidai-golang/internal/config"
	"github.com/vidai-app/vidai-golang/internal/store"
	"github.com/vidai-app/vidai-golang/internal/video"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store        store.Store
	Config       *config.Provider
	Segmenter    *ai.Segmenter
	Enhancer     *ai.Enhancer
	Images       *ai.ImageSynthesizer
	Orchestrator *video.Orchestrator
}

// currentUserID reads the authenticated user's ID, set by the auth
// middleware. The bool is false on routes the middleware never ran on.
func currentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

func isAdmin(c *gin.Context) bool {
	role, exists := c.Get("userRole")
	return exists && role.(string) == "admin"
}
