package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/auth"
	"github.com/vidai-app/vidai-golang/internal/models"
	"github.com/vidai-app/vidai-golang/internal/store"
)

//
// --- User Registration ---
//

// RegisterInput holds the *input* from the user. This is separate from
// 'models.User' because we never accept an 'id' or 'role' from the
// client.
type RegisterInput struct {
	Username    string `json:"username" binding:"required,min=3"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName"`
}

// Register is the handler for POST /api/auth/register. New accounts
// start on the free plan.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Uniqueness Checks ---
	if _, err := h.Store.GetUserByEmail(ctx, input.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This email address is already in use"})
		return
	}
	if _, err := h.Store.GetUserByUsername(ctx, input.Username); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This username is already taken"})
		return
	}

	// 3. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 4. --- Create User ---
	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: password.Hash,
		Role:         "user",
	}
	if input.DisplayName != "" {
		user.DisplayName = &input.DisplayName
	}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// 5. --- Start the Free Subscription ---
	if err := h.subscribeToFreePlan(c, user.ID); err != nil {
		// The account exists; a missing subscription is recoverable
		// via the upgrade endpoint, so we only log it.
		fmt.Println("Warning: failed to create free subscription for user", user.ID, ":", err)
	}

	// 6. --- Issue Token & Respond ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// subscribeToFreePlan puts a new account on the cheapest plan in the
// catalog (the seeded Free plan).
func (h *Handlers) subscribeToFreePlan(c *gin.Context, userID int64) error {
	plans, err := h.Store.GetAllPlans(c.Request.Context())
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		return errors.New("plan catalog is empty")
	}

	free := plans[0]
	for _, plan := range plans {
		if plan.PriceMonthly < free.PriceMonthly {
			free = plan
		}
	}

	return h.Store.CreateSubscription(c.Request.Context(), &models.Subscription{
		UserID:    userID,
		PlanID:    free.ID,
		StartDate: time.Now(),
		Active:    true,
	})
}

//
// --- Login ---
//

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /api/auth/login.
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Find the User ---
	user, err := h.Store.GetUserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		// Same response as a bad password, so the endpoint doesn't
		// leak which emails have accounts.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 3. --- Verify the Password ---
	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil || !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 4. --- Issue Token & Respond ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

//
// --- Social Login ---
//

type SocialLoginInput struct {
	Email           string `json:"email" binding:"required,email"`
	AuthProvider    string `json:"authProvider" binding:"required"`
	ProviderID      string `json:"providerId" binding:"required"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// SocialLogin is the handler for POST /api/auth/social-login. The
// provider identity has already been verified upstream by the identity
// provider; we upsert the account it maps to:
//   - known provider/providerId pair -> that account
//   - known email -> link the provider to the existing account
//   - otherwise -> brand new account on the free plan
func (h *Handlers) SocialLogin(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input SocialLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Resolve the Account ---
	user, err := h.Store.GetUserByProvider(ctx, input.AuthProvider, input.ProviderID)
	if err != nil && errors.Is(err, store.ErrNotFound) {
		user, err = h.Store.GetUserByEmail(ctx, input.Email)
		if err == nil {
			// Existing email account: attach the provider identity.
			var imageURL *string
			if input.ProfileImageURL != "" {
				imageURL = &input.ProfileImageURL
			}
			if linkErr := h.Store.LinkUserProvider(ctx, user.ID, input.AuthProvider, input.ProviderID, imageURL); linkErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link provider account"})
				return
			}
			user, err = h.Store.GetUser(ctx, user.ID)
		} else if errors.Is(err, store.ErrNotFound) {
			user, err = h.createSocialUser(c, input)
		}
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Social login failed"})
		return
	}

	// 3. --- Issue Token & Respond ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// createSocialUser registers a passwordless account from a social
// identity and starts it on the free plan.
func (h *Handlers) createSocialUser(c *gin.Context, input SocialLoginInput) (*models.User, error) {
	username := input.Username
	if username == "" {
		username = fmt.Sprintf("user_%d", time.Now().UnixMilli())
	}

	user := &models.User{
		Username:     username,
		Email:        input.Email,
		Role:         "user",
		AuthProvider: &input.AuthProvider,
		ProviderID:   &input.ProviderID,
	}
	if input.DisplayName != "" {
		user.DisplayName = &input.DisplayName
	}
	if input.ProfileImageURL != "" {
		user.ProfileImageURL = &input.ProfileImageURL
	}

	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		return nil, err
	}
	if err := h.subscribeToFreePlan(c, user.ID); err != nil {
		fmt.Println("Warning: failed to create free subscription for user", user.ID, ":", err)
	}
	return user, nil
}

//
// --- Current User ---
//

// Me is the handler for GET /api/auth/me. It returns the profile plus
// the active subscription and its plan, which the UI needs on every
// page load.
func (h *Handlers) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx := c.Request.Context()

	user, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	response := gin.H{
		"user":         user,
		"subscription": nil,
		"plan":         nil,
	}

	if sub, err := h.Store.GetActiveSubscription(ctx, userID); err == nil {
		response["subscription"] = sub
		if plan, err := h.Store.GetPlan(ctx, sub.PlanID); err == nil {
			response["plan"] = plan
		}
	}

	c.JSON(http.StatusOK, response)
}
