package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidai-app/vidai-golang/internal/ai"
	"github.com/vidai-app/vidai-golang/internal/models"
	"github.com/vidai-app/vidai-golang/internal/video"
)

//
// --- Scene Generation ---
//

type GenerateScenesInput struct {
	Text       string `json:"text" binding:"required"`
	SceneCount int    `json:"sceneCount"`
}

// GenerateScenes is the handler for POST /api/ai/generate-scenes. It
// splits the text into scenes without starting a video; the quota is
// only checked here, never consumed.
func (h *Handlers) GenerateScenes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input GenerateScenesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Check the Daily Quota ---
	plan, err := h.Orchestrator.Plan(ctx, userID)
	if err != nil {
		if errors.Is(err, video.ErrNoActiveSubscription) {
			c.JSON(http.StatusForbidden, gin.H{"error": "An active subscription is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	today := time.Now().Format("2006-01-02")
	usage, err := h.Store.GetDailyUsage(ctx, userID, today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load daily usage"})
		return
	}
	if usage >= plan.DailyVideoLimit {
		c.JSON(http.StatusForbidden, gin.H{
			"error":      "Daily video limit reached",
			"dailyUsage": gin.H{"count": usage, "limit": plan.DailyVideoLimit},
		})
		return
	}

	// 3. --- Segment the Text ---
	sceneCount := input.SceneCount
	if sceneCount == 0 {
		sceneCount = ai.SceneCountForText(input.Text)
	}

	scenes, err := h.Segmenter.Segment(ctx, input.Text, sceneCount)
	if err != nil {
		if errors.Is(err, ai.ErrInsufficientInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Text is too short to split into scenes"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scene generation failed"})
		return
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"scenes":     scenes,
		"dailyUsage": gin.H{"count": usage, "limit": plan.DailyVideoLimit},
	})
}

//
// --- Scene Enhancement ---
//

type EnhanceScenesInput struct {
	Scenes  []models.Scene `json:"scenes" binding:"required,min=1"`
	UseGrok bool           `json:"useGrok"`
}

// EnhanceScenes is the handler for POST /api/ai/enhance-scenes. The
// feature is gated on plans that allow custom AI models; which backend
// actually serves the request is the enhancer's decision and comes
// back in the response.
func (h *Handlers) EnhanceScenes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input EnhanceScenesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Check the Plan Feature ---
	plan, err := h.Orchestrator.Plan(ctx, userID)
	if err != nil {
		if errors.Is(err, video.ErrNoActiveSubscription) {
			c.JSON(http.StatusForbidden, gin.H{"error": "An active subscription is required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}
	if !plan.CustomAiModels {
		plans, _ := h.Store.GetAllPlans(ctx)
		c.JSON(http.StatusForbidden, gin.H{
			"error":        "Scene enhancement is only available on premium plans",
			"upgradePlans": plans,
		})
		return
	}

	// 3. --- Enhance ---
	enhanced, model := h.Enhancer.Enhance(ctx, input.Scenes, input.UseGrok)

	c.JSON(http.StatusOK, gin.H{
		"enhancedScenes": enhanced,
		"model":          model,
	})
}

//
// --- Image Generation ---
//

type GenerateImageInput struct {
	Description string `json:"description" binding:"required"`
	Style       string `json:"style"`
}

// GenerateImage is the handler for POST /api/ai/generate-image.
func (h *Handlers) GenerateImage(c *gin.Context) {
	var input GenerateImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL, err := h.Images.Synthesize(c.Request.Context(), input.Description, input.Style)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}

//
// --- Video Creation ---
//

type VideoOptionsInput struct {
	Format     string `json:"format"`
	Resolution string `json:"resolution"`
	Duration   int    `json:"duration"`
	AiModel    string `json:"aiModel"`
	Enhance    bool   `json:"enhance"`
}

type CreateVideoInput struct {
	VideoID      *int64            `json:"videoId"`
	Title        string            `json:"title"`
	Text         string            `json:"text"`
	Scenes       []models.Scene    `json:"scenes"`
	VideoOptions VideoOptionsInput `json:"videoOptions"`
}

// CreateVideo is the handler for POST /api/ai/create-video. It runs
// the full entitlement gate and, if the request is accepted, starts
// the asynchronous pipeline; the response carries the video already in
// its processing state.
func (h *Handlers) CreateVideo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// 1. --- Bind & Validate JSON ---
	var input CreateVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// 2. --- Fill Defaults ---
	options := input.VideoOptions
	if options.Format == "" {
		options.Format = models.FormatStandard16x9
	}
	if options.Resolution == "" {
		options.Resolution = "720p"
	}
	if options.Duration == 0 {
		options.Duration = 60
	}
	if options.AiModel == "" {
		options.AiModel = video.DefaultAiModel
	}

	if !models.ValidFormat(options.Format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown video format"})
		return
	}
	if !video.ValidResolution(options.Resolution) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown resolution"})
		return
	}
	if options.Duration < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be positive"})
		return
	}

	// 3. --- Resolve the Draft, If Any ---
	// A videoId points at a draft record created earlier; we reuse its
	// title and source text.
	title := input.Title
	text := input.Text
	if input.VideoID != nil {
		draft, err := h.Store.GetVideo(ctx, *input.VideoID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		if draft.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this video"})
			return
		}
		if title == "" {
			title = draft.Title
		}
		if text == "" {
			text = draft.OriginalText
		}
	}
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A title is required"})
		return
	}

	// 4. --- Submit the Job ---
	created, err := h.Orchestrator.Submit(ctx, video.CreateRequest{
		UserID:     userID,
		Title:      title,
		Text:       text,
		Scenes:     input.Scenes,
		Format:     options.Format,
		Resolution: options.Resolution,
		Duration:   options.Duration,
		AiModel:    options.AiModel,
		Enhance:    options.Enhance,
	})
	if err != nil {
		var entitlement *video.EntitlementError
		switch {
		case errors.As(err, &entitlement):
			c.JSON(http.StatusForbidden, gin.H{"error": entitlement.Error(), "reason": entitlement.Reason})
		case errors.Is(err, video.ErrNoActiveSubscription):
			c.JSON(http.StatusForbidden, gin.H{"error": "An active subscription is required"})
		case errors.Is(err, video.ErrNoScenes):
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one scene or a source text is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		}
		return
	}

	status, _ := h.Orchestrator.Tracker.Status(created.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":          "Video creation started",
		"video":            created,
		"processingResult": status,
	})
}

//
// --- Video Status Polling ---
//

// VideoStatus is the handler for GET /api/ai/video-status/:videoId.
// Clients poll it every few seconds while a video is processing.
func (h *Handlers) VideoStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	videoID, err := strconv.ParseInt(c.Param("videoId"), 10, 64)
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

	// The tracker only remembers recent jobs; older videos answer from
	// their persisted status.
	status, tracked := h.Orchestrator.Tracker.Status(videoID)
	if !tracked {
		status = video.JobStatus{Status: record.Status}
		if record.Status == models.StatusCompleted {
			status.Progress = 100
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"video":            record,
		"processingStatus": status,
	})
}
