package video

import "github.com/vidai-app/vidai-golang/internal/models"

// AssignTimings stamps start/end offsets onto scenes by subdividing
// totalDuration equally. Scene i gets [i*perScene, (i+1)*perScene);
// the last scene absorbs the rounding remainder so the timeline ends
// exactly at totalDuration. Timings are contiguous, start at 0 and
// never overlap.
//
// The caller must guard against an empty scene list; a video with no
// scenes is rejected before it ever reaches the assembler.
func AssignTimings(scenes []models.Scene, totalDuration int) []models.Scene {
	timed := make([]models.Scene, len(scenes))
	copy(timed, scenes)

	perScene := totalDuration / len(scenes)
	for i := range timed {
		timed[i].StartTime = i * perScene
		timed[i].EndTime = (i + 1) * perScene
	}
	timed[len(timed)-1].EndTime = totalDuration

	return timed
}
