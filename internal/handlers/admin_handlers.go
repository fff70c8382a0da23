package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/models"
	"github.com/vidai-app/vidai-golang/internal/store"
)

//
// --- Admin: Stats & Listings ---
//

// GetAdminStats is the handler for GET /api/admin/stats.
func (h *Handlers) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()

	userCount, err := h.Store.CountUsers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	videoCount, err := h.Store.CountVideos(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count videos"})
		return
	}
	revenue, err := h.Store.RevenueTotal(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userCount":      userCount,
		"videoCount":     videoCount,
		"monthlyRevenue": revenue,
	})
}

// GetAllUsers is the handler for GET /api/admin/users. Password hashes
// never reach the response thanks to the json:"-" tag on the model.
func (h *Handlers) GetAllUsers(c *gin.Context) {
	users, err := h.Store.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetAllVideos is the handler for GET /api/admin/videos.
func (h *Handlers) GetAllVideos(c *gin.Context) {
	videos, err := h.Store.GetAllVideos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load videos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

//
// --- Admin: User Management ---
//

type UpdateUserRoleInput struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// UpdateUserRole is the handler for PUT /api/admin/users/:id/role.
// Only the two regular roles can be assigned here; banning has its own
// endpoint.
func (h *Handlers) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var input UpdateUserRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.UpdateUserRole(c.Request.Context(), userID, input.Role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User role updated"})
}

// BanUser is the handler for POST /api/admin/users/:id/ban. A banned
// account cannot authenticate anymore and loses its active
// subscription. Administrators cannot be banned.
func (h *Handlers) BanUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	ctx := c.Request.Context()

	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Role == "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Administrators cannot be banned"})
		return
	}

	if err := h.Store.UpdateUserRole(ctx, userID, "banned"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ban user"})
		return
	}

	// The subscription goes with the account.
	if sub, err := h.Store.GetActiveSubscription(ctx, userID); err == nil {
		if err := h.Store.DeactivateSubscription(ctx, sub.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "User banned, but failed to deactivate subscription"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "User banned"})
}

//
// --- Admin: Runtime Configuration ---
//

// configResponse is the masked view of an api_configs row. Secret
// values never leave the server in full.
func configResponse(cfg *models.APIConfig) gin.H {
	return gin.H{
		"name":        cfg.Name,
		"value":       cfg.MaskedValue(),
		"description": cfg.Description,
		"updatedAt":   cfg.UpdatedAt,
	}
}

// GetAPIConfigs is the handler for GET /api/admin/api-configs.
func (h *Handlers) GetAPIConfigs(c *gin.Context) {
	configs, err := h.Store.GetAllConfigs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load configuration"})
		return
	}

	response := make([]gin.H, 0, len(configs))
	for _, cfg := range configs {
		response = append(response, configResponse(cfg))
	}

	c.JSON(http.StatusOK, gin.H{"configs": response})
}

// GetAPIConfig is the handler for GET /api/admin/api-configs/:name.
func (h *Handlers) GetAPIConfig(c *gin.Context) {
	cfg, err := h.Store.GetConfig(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown configuration entry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"config": configResponse(cfg),
	})
}

type UpdateAPIConfigInput struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateAPIConfig is the handler for PUT /api/admin/api-configs. The
// new value takes effect on the next AI call; no restart needed.
func (h *Handlers) UpdateAPIConfig(c *gin.Context) {
	var input UpdateAPIConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.Store.UpdateConfig(c.Request.Context(), input.Name, input.Value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown configuration entry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Configuration updated",
		"config":  configResponse(cfg),
	})
}
