package video

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidai-app/vidai-golang/internal/ai"
	"github.com/vidai-app/vidai-golang/internal/config"
	"github.com/vidai-app/vidai-golang/internal/models"
	"github.com/vidai-app/vidai-golang/internal/store"
)

//
// --- Test Fixtures ---
//

// fakeRenderer returns a fixed result immediately, optionally blocking
// until released so tests can interleave store operations with a
// running job.
type fakeRenderer struct {
	result  RenderResult
	err     error
	started chan struct{} // closed when Render is first entered, may be nil
	release chan struct{} // Render waits for this when non-nil
}

func (r *fakeRenderer) Render(ctx context.Context, video *models.Video, scenes []models.Scene) (*RenderResult, error) {
	if r.started != nil {
		close(r.started)
		r.started = nil
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	result := r.result
	return &result, nil
}

type fakeBackend struct {
	name string
	fail bool
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Ready(ctx context.Context) bool { return true }

func (b *fakeBackend) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if b.fail {
		return "", errors.New("backend down")
	}
	return "enhanced: " + prompt, nil
}

// newTestOrchestrator wires an orchestrator against the in-memory
// store, a stub image backend and a fake renderer.
func newTestOrchestrator(t *testing.T, renderer Renderer) (*Orchestrator, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	cfg := config.NewProvider(st)

	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(imageServer.Close)

	images := &ai.ImageSynthesizer{
		BaseURL: imageServer.URL + "/",
		Model:   "test-model",
		Config:  cfg,
		HTTP:    imageServer.Client(),
	}
	enhancer := &ai.Enhancer{
		Default: &fakeBackend{name: "default"},
		Premium: &fakeBackend{name: "premium"},
		Config:  cfg,
	}

	o := NewOrchestrator(st, ai.NewSegmenter(cfg), enhancer, images, renderer)
	return o, st
}

// subscribe puts a user on the given seeded plan (by name) and returns
// the user ID.
func subscribe(t *testing.T, st *store.MemoryStore, planName string) int64 {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Username: "tester", Email: "tester@example.com"}
	require.NoError(t, st.CreateUser(ctx, user))

	plans, err := st.GetAllPlans(ctx)
	require.NoError(t, err)
	for _, plan := range plans {
		if plan.Name == planName {
			require.NoError(t, st.CreateSubscription(ctx, &models.Subscription{UserID: user.ID, PlanID: plan.ID}))
			return user.ID
		}
	}
	t.Fatalf("no seeded plan named %q", planName)
	return 0
}

func waitForStatus(t *testing.T, st store.Store, videoID int64, want string) *models.Video {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		v, err := st.GetVideo(context.Background(), videoID)
		require.NoError(t, err)
		if v.Status == want {
			return v
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("video %d never reached status %q", videoID, want)
	return nil
}

func testScenes() []models.Scene {
	return []models.Scene{
		{Index: 0, TextSegment: "first part", VisualDescription: "a sunrise over mountains"},
		{Index: 1, TextSegment: "second part", VisualDescription: "a river in a forest"},
		{Index: 2, TextSegment: "third part", VisualDescription: "a city at night"},
	}
}

//
// --- Submit ---
//

func TestSubmit_RequiresSubscription(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{})

	user := &models.User{Username: "nosub", Email: "nosub@example.com"}
	require.NoError(t, st.CreateUser(context.Background(), user))

	_, err := o.Submit(context.Background(), CreateRequest{
		UserID: user.ID, Title: "t", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 30,
	})
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestSubmit_RequiresScenesOrText(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{})
	userID := subscribe(t, st, "Free")

	_, err := o.Submit(context.Background(), CreateRequest{
		UserID: userID, Title: "t",
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 30,
	})
	assert.ErrorIs(t, err, ErrNoScenes)
}

func TestSubmit_DenialDoesNotConsumeQuota(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{})
	userID := subscribe(t, st, "Free")
	ctx := context.Background()

	// Free plan allows 60s; ask for more.
	_, err := o.Submit(ctx, CreateRequest{
		UserID: userID, Title: "too long", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 120,
	})

	var denial *EntitlementError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, ReasonDurationExceeded, denial.Reason)

	usage, err := st.GetDailyUsage(ctx, userID, time.Now().Format("2006-01-02"))
	require.NoError(t, err)
	assert.Zero(t, usage, "a denied request must not touch the ledger")
}

func TestSubmit_ConsumesOneSlotAndEnforcesLimit(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{result: RenderResult{VideoURL: "https://cdn.test/v.mp4"}})
	userID := subscribe(t, st, "Free") // 2 per day
	ctx := context.Background()

	req := CreateRequest{
		UserID: userID, Title: "video", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 30,
	}

	_, err := o.Submit(ctx, req)
	require.NoError(t, err)
	_, err = o.Submit(ctx, req)
	require.NoError(t, err)

	usage, err := st.GetDailyUsage(ctx, userID, time.Now().Format("2006-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 2, usage)

	// Third submission hits the daily cap.
	_, err = o.Submit(ctx, req)
	var denial *EntitlementError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, ReasonDailyLimitExceeded, denial.Reason)
}

func TestSubmit_CustomModelGatedByPlan(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{})
	userID := subscribe(t, st, "Free")

	_, err := o.Submit(context.Background(), CreateRequest{
		UserID: userID, Title: "custom", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 30,
		AiModel: "some-exotic-model",
	})

	var denial *EntitlementError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, ReasonFeatureRequiresUpgrade, denial.Reason)
}

//
// --- Pipeline ---
//

func TestRun_CompletesWithTimingsAndImages(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{result: RenderResult{VideoURL: "https://cdn.test/v.mp4"}})
	userID := subscribe(t, st, "Business")

	submitted, err := o.Submit(context.Background(), CreateRequest{
		UserID: userID, Title: "complete me", Scenes: testScenes(),
		Format: models.FormatTikTok, Resolution: "1080p", Duration: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, submitted.Status)

	done := waitForStatus(t, st, submitted.ID, models.StatusCompleted)

	require.NotNil(t, done.VideoURL)
	assert.Equal(t, "https://cdn.test/v.mp4", *done.VideoURL)

	// Scene order survives the parallel image fill, and every scene
	// carries an image and its timeline slot.
	require.Len(t, done.Sections, 3)
	source := testScenes()
	for i, scene := range done.Sections {
		assert.Equal(t, source[i].TextSegment, scene.TextSegment, "scene %d out of order", i)
		assert.Contains(t, scene.ImageURL, "data:image/jpeg;base64,")
		assert.Equal(t, i*30, scene.StartTime)
	}
	assert.Equal(t, 90, done.Sections[2].EndTime)

	// The renderer returned no thumbnail, so the first scene image
	// stands in.
	require.NotNil(t, done.ThumbnailURL)
	assert.Equal(t, done.Sections[0].ImageURL, *done.ThumbnailURL)

	status, ok := o.Tracker.Status(submitted.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)
}

func TestRun_RenderFailureMarksFailed(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{err: errors.New("encoder exploded")})
	userID := subscribe(t, st, "Pro")

	submitted, err := o.Submit(context.Background(), CreateRequest{
		UserID: userID, Title: "doomed", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 60,
	})
	require.NoError(t, err)

	failed := waitForStatus(t, st, submitted.ID, models.StatusFailed)
	assert.Nil(t, failed.VideoURL)

	status, ok := o.Tracker.Status(submitted.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusFailed, status.Status)
}

func TestRun_TerminalStatusIsOneWay(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{result: RenderResult{VideoURL: "https://cdn.test/v.mp4"}})
	userID := subscribe(t, st, "Pro")
	ctx := context.Background()

	submitted, err := o.Submit(ctx, CreateRequest{
		UserID: userID, Title: "final", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 60,
	})
	require.NoError(t, err)
	waitForStatus(t, st, submitted.ID, models.StatusCompleted)

	// A completed video can never flip to failed or back to
	// processing.
	changed, err := st.FailVideo(ctx, submitted.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = st.CompleteVideo(ctx, submitted.ID, "https://cdn.test/other.mp4", "", nil)
	require.NoError(t, err)
	assert.False(t, changed)

	v, err := st.GetVideo(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, v.Status)
	assert.Equal(t, "https://cdn.test/v.mp4", *v.VideoURL)
}

func TestRun_DeletionMidJobDiscardsResult(t *testing.T) {
	renderer := &fakeRenderer{
		result:  RenderResult{VideoURL: "https://cdn.test/v.mp4"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	started := renderer.started
	o, st := newTestOrchestrator(t, renderer)
	userID := subscribe(t, st, "Pro")
	ctx := context.Background()

	submitted, err := o.Submit(ctx, CreateRequest{
		UserID: userID, Title: "cancelled", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 60,
	})
	require.NoError(t, err)

	// Wait until the job is rendering, then pull the row out from
	// under it.
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never reached the renderer")
	}
	deleted, err := st.DeleteVideo(ctx, submitted.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	close(renderer.release)

	// The job finishes but must not resurrect the deleted row.
	assert.Eventually(t, func() bool {
		_, err := st.GetVideo(ctx, submitted.ID)
		return errors.Is(err, store.ErrNotFound)
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	_, err = st.GetVideo(ctx, submitted.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_EnhancementAppliedWhenRequested(t *testing.T) {
	o, st := newTestOrchestrator(t, &fakeRenderer{result: RenderResult{VideoURL: "https://cdn.test/v.mp4"}})
	userID := subscribe(t, st, "Business")

	submitted, err := o.Submit(context.Background(), CreateRequest{
		UserID: userID, Title: "enhanced", Scenes: testScenes(),
		Format: models.FormatStandard16x9, Resolution: "720p", Duration: 60,
		Enhance: true,
	})
	require.NoError(t, err)

	done := waitForStatus(t, st, submitted.ID, models.StatusCompleted)
	for i, scene := range done.Sections {
		assert.NotEmpty(t, scene.EnhancedDescription, "scene %d missing enhancement", i)
	}
}
