package video

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/vidai-app/vidai-golang/internal/ai"
	"github.com/vidai-app/vidai-golang/internal/models"
	"github.com/vidai-app/vidai-golang/internal/store"
)

// ErrNoActiveSubscription means the user has no active plan and may
// not create videos.
var ErrNoActiveSubscription = errors.New("video: no active subscription")

// ErrNoScenes means a creation request arrived with neither scenes
// nor text to segment.
var ErrNoScenes = errors.New("video: request has no scenes and no text to segment")

// DefaultAiModel is the image model every plan may use; anything else
// counts as a custom model and is gated by the plan.
const DefaultAiModel = "stable_diffusion_xl"

// Per-scene image synthesis fans out across at most this many
// concurrent backend calls, to stay under external rate limits.
const defaultImageConcurrency = 4

// Overall wall-clock budget for one job, covering every external
// call it makes.
const jobTimeout = 10 * time.Minute

// CreateRequest is everything needed to start a video job.
type CreateRequest struct {
	UserID     int64
	Title      string
	Text       string // original source text
	Scenes     []models.Scene
	Format     string
	Resolution string
	Duration   int // seconds
	AiModel    string
	Enhance    bool // run premium scene enhancement inside the job
}

// Orchestrator drives the video pipeline: entitlement gate, usage
// ledger, segmentation, optional enhancement, per-scene image
// synthesis, timeline assembly and rendering, with the one-way
// processing -> completed/failed status transition.
type Orchestrator struct {
	Store     store.Store
	Segmenter *ai.Segmenter
	Enhancer  *ai.Enhancer
	Images    *ai.ImageSynthesizer
	Renderer  Renderer
	Tracker   *ProgressTracker

	ImageConcurrency int
}

func NewOrchestrator(st store.Store, seg *ai.Segmenter, enh *ai.Enhancer, img *ai.ImageSynthesizer, renderer Renderer) *Orchestrator {
	return &Orchestrator{
		Store:            st,
		Segmenter:        seg,
		Enhancer:         enh,
		Images:           img,
		Renderer:         renderer,
		Tracker:          NewProgressTracker(),
		ImageConcurrency: defaultImageConcurrency,
	}
}

// Plan resolves the caller's active subscription plan.
func (o *Orchestrator) Plan(ctx context.Context, userID int64) (*models.SubscriptionPlan, error) {
	sub, err := o.Store.GetActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return o.Store.GetPlan(ctx, sub.PlanID)
}

// Submit runs the entitlement gate, claims a usage slot, persists the
// video in the processing state and launches the job. The returned
// video is already visible to status polls.
//
// The ledger increment happens exactly once per accepted submission;
// a denied request leaves the counter untouched.
func (o *Orchestrator) Submit(ctx context.Context, req CreateRequest) (*models.Video, error) {
	if len(req.Scenes) == 0 && len(req.Text) == 0 {
		return nil, ErrNoScenes
	}

	plan, err := o.Plan(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	today := time.Now().Format("2006-01-02")
	usageToday, err := o.Store.GetDailyUsage(ctx, req.UserID, today)
	if err != nil {
		return nil, err
	}

	customModel := req.Enhance || (req.AiModel != "" && req.AiModel != DefaultAiModel)
	if err := CheckEntitlement(plan, usageToday, EntitlementRequest{
		Duration:       req.Duration,
		Resolution:     req.Resolution,
		CustomAiModels: customModel,
	}); err != nil {
		return nil, err
	}

	// The read above raced any concurrent submission; the conditional
	// increment is the authoritative gate.
	_, ok, err := o.Store.IncrementUsageIfBelow(ctx, req.UserID, today, plan.DailyVideoLimit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &EntitlementError{Reason: ReasonDailyLimitExceeded, Limit: plan.DailyVideoLimit}
	}

	originalText := req.Text
	if originalText == "" {
		for _, scene := range req.Scenes {
			if originalText != "" {
				originalText += " "
			}
			originalText += scene.TextSegment
		}
	}

	video := &models.Video{
		UserID:       req.UserID,
		Title:        req.Title,
		OriginalText: originalText,
		Format:       req.Format,
		Duration:     req.Duration,
		Resolution:   req.Resolution,
		Sections:     req.Scenes,
	}
	if req.AiModel != "" {
		video.AiModel = &req.AiModel
	}
	if err := o.Store.CreateVideo(ctx, video); err != nil {
		return nil, err
	}

	o.Tracker.begin(video.ID)
	go o.run(*video, req)

	return video, nil
}

// run executes the pipeline for one job. It owns the video row
// exclusively until the terminal transition; the guarded store
// updates make that transition one-way and detect deletion mid-job.
func (o *Orchestrator) run(video models.Video, req CreateRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	scenes := req.Scenes

	if len(scenes) == 0 {
		o.Tracker.advance(video.ID, "segmenting", 10)
		segmented, err := o.Segmenter.Segment(ctx, req.Text, ai.SceneCountForText(req.Text))
		if err != nil {
			log.Printf("Video %d: segmentation failed: %v", video.ID, err)
			o.fail(ctx, video.ID)
			return
		}
		scenes = segmented
	}

	if req.Enhance {
		o.Tracker.advance(video.ID, "enhancing", 25)
		scenes, _ = o.Enhancer.Enhance(ctx, scenes, true)
	}

	o.Tracker.advance(video.ID, "synthesizing_images", 40)
	scenes = o.fillImages(ctx, scenes, req.Format)

	o.Tracker.advance(video.ID, "assembling_timeline", 75)
	scenes = AssignTimings(scenes, video.Duration)

	o.Tracker.advance(video.ID, "rendering", 90)
	result, err := o.Renderer.Render(ctx, &video, scenes)
	if err != nil {
		log.Printf("Video %d: rendering failed: %v", video.ID, err)
		o.fail(ctx, video.ID)
		return
	}

	thumbnail := result.ThumbnailURL
	if thumbnail == "" && len(scenes) > 0 && scenes[0].ImageURL != "" {
		thumbnail = scenes[0].ImageURL
	}

	changed, err := o.Store.CompleteVideo(ctx, video.ID, result.VideoURL, thumbnail, scenes)
	if err != nil {
		log.Printf("Video %d: failed to persist completion: %v", video.ID, err)
		o.fail(ctx, video.ID)
		return
	}
	if !changed {
		// Deleted mid-job or already terminal; discard the result.
		log.Printf("Video %d: gone or terminal before completion, discarding render result", video.ID)
		return
	}

	o.Tracker.finish(video.ID, models.StatusCompleted)
	log.Printf("Video %d: completed (%s)", video.ID, result.VideoURL)
}

// fillImages synthesizes a still for every scene that does not have
// one yet, fanning out across a bounded worker pool. Results land at
// their original index, so scene order survives the parallelism. A
// failed scene keeps an empty image URL; the UI shows a placeholder.
func (o *Orchestrator) fillImages(ctx context.Context, scenes []models.Scene, format string) []models.Scene {
	style := ai.StyleForFormat(format)
	concurrency := o.ImageConcurrency
	if concurrency <= 0 {
		concurrency = defaultImageConcurrency
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	filled := make([]models.Scene, len(scenes))
	copy(filled, scenes)

	for i := range filled {
		if filled[i].ImageURL != "" {
			continue
		}
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			imageURL, err := o.Images.Synthesize(ctx, filled[idx].Prompt(), style)
			if err != nil {
				log.Printf("Scene %d: %v", idx, err)
				return
			}
			filled[idx].ImageURL = imageURL
		}(i)
	}

	wg.Wait()
	return filled
}

func (o *Orchestrator) fail(ctx context.Context, videoID int64) {
	changed, err := o.Store.FailVideo(ctx, videoID)
	if err != nil {
		log.Printf("Video %d: failed to persist failure: %v", videoID, err)
	}
	if changed {
		o.Tracker.finish(videoID, models.StatusFailed)
	}
}
