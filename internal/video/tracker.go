package video

import (
	"sync"
	"time"

	"github.com/vidai-app/vidai-golang/internal/models"
)

// JobStatus is a point-in-time snapshot of a running or recently
// finished job, consumed by the polling endpoint.
type JobStatus struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"` // 0-100
	Stage    string `json:"stage,omitempty"`
}

// JobStatusSource answers status polls. The in-memory tracker below
// implements it for the simulated renderer; a push-based renderer can
// replace it without touching the orchestrator's public contract.
type JobStatusSource interface {
	Status(videoID int64) (JobStatus, bool)
}

// retention keeps terminal entries around long enough for trailing
// polls before the map entry is dropped.
const trackerRetention = 10 * time.Minute

// ProgressTracker is a concurrency-safe map of video ID to job
// progress.
type ProgressTracker struct {
	mu   sync.RWMutex
	jobs map[int64]JobStatus
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{jobs: make(map[int64]JobStatus)}
}

func (t *ProgressTracker) Status(videoID int64) (JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status, ok := t.jobs[videoID]
	return status, ok
}

func (t *ProgressTracker) begin(videoID int64) {
	t.set(videoID, JobStatus{Status: models.StatusProcessing, Progress: 0, Stage: "queued"})
}

func (t *ProgressTracker) advance(videoID int64, stage string, progress int) {
	t.set(videoID, JobStatus{Status: models.StatusProcessing, Progress: progress, Stage: stage})
}

// finish records the terminal state. Terminal entries are immutable:
// once completed or failed, later writes for the same video are
// ignored, and the entry ages out after the retention window.
func (t *ProgressTracker) finish(videoID int64, status string) {
	t.mu.Lock()
	if existing, ok := t.jobs[videoID]; ok && existing.Status != models.StatusProcessing {
		t.mu.Unlock()
		return
	}
	progress := 100
	if status == models.StatusFailed {
		progress = 0
	}
	t.jobs[videoID] = JobStatus{Status: status, Progress: progress}
	t.mu.Unlock()

	time.AfterFunc(trackerRetention, func() {
		t.mu.Lock()
		delete(t.jobs, videoID)
		t.mu.Unlock()
	})
}

func (t *ProgressTracker) set(videoID int64, status JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.jobs[videoID]; ok && existing.Status != models.StatusProcessing {
		return
	}
	t.jobs[videoID] = status
}
