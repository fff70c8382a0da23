package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/models"
	"github.com/vidai-app/vidai-golang/internal/store"
)

//
// --- Subscriptions ---
//

// GetSubscriptionPlans is the handler for GET /api/subscription-plans.
// Public catalog read, ordered cheapest first.
func (h *Handlers) GetSubscriptionPlans(c *gin.Context) {
	plans, err := h.Store.GetAllPlans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetMySubscription is the handler for GET /api/user/subscription.
func (h *Handlers) GetMySubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()

	sub, err := h.Store.GetActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active subscription found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	plan, err := h.Store.GetPlan(ctx, sub.PlanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"plan":         plan,
	})
}

type UpgradeSubscriptionInput struct {
	PlanID int64 `json:"planId" binding:"required"`
}

// UpgradeSubscription is the handler for
// POST /api/user/subscription/upgrade. The existing subscription row
// is moved to the new plan with a fresh start date; a user without one
// gets a new row.
func (h *Handlers) UpgradeSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input UpgradeSubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Look Up the Target Plan ---
	newPlan, err := h.Store.GetPlan(ctx, input.PlanID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown subscription plan"})
		return
	}

	// 3. --- Move or Create the Subscription ---
	sub, err := h.Store.GetActiveSubscription(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
			return
		}
		created := &models.Subscription{UserID: userID, PlanID: newPlan.ID}
		if err := h.Store.CreateSubscription(ctx, created); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"subscription": created,
			"plan":         newPlan,
			"message":      fmt.Sprintf("Subscribed to the %s plan", newPlan.Name),
		})
		return
	}

	if sub.PlanID == newPlan.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already on this plan"})
		return
	}

	if err := h.Store.ChangeSubscriptionPlan(ctx, sub.ID, newPlan.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change plan"})
		return
	}

	updated, err := h.Store.GetActiveSubscription(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription": updated,
		"plan":         newPlan,
		"message":      fmt.Sprintf("Your subscription was changed to the %s plan", newPlan.Name),
	})
}

// CancelSubscription is the handler for
// POST /api/user/subscription/cancel. Cancelling means dropping back
// to the free plan; the free plan itself cannot be cancelled.
func (h *Handlers) CancelSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()

	sub, err := h.Store.GetActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active subscription found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	plan, err := h.Store.GetPlan(ctx, sub.PlanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription plan"})
		return
	}
	if plan.PriceMonthly == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The free plan cannot be cancelled"})
		return
	}

	// Find the free plan to fall back to.
	plans, err := h.Store.GetAllPlans(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}
	var freePlan *models.SubscriptionPlan
	for _, p := range plans {
		if p.PriceMonthly == 0 {
			freePlan = p
			break
		}
	}
	if freePlan == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No free plan configured"})
		return
	}

	if err := h.Store.ChangeSubscriptionPlan(ctx, sub.ID, freePlan.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Your subscription was cancelled; you are now on the free plan",
		"plan":    freePlan,
	})
}
