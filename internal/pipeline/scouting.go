package pipeline

import (
	"math"

	"github.com/kozaktomas/reframer/internal/config"
	"github.com/kozaktomas/reframer/internal/track"
)

// planSamples picks the frames to scout within one scene. The sample count
// scales with scene duration (sampleFrequency samples per second), clamped to
// [minSamples, maxSamples] and never exceeding the number of frames in the
// scene. Samples are spread evenly across the scene, endpoints included.
func planSamples(scene track.Scene, fps float64, tuning config.ScoutingTuning) []int {
	durationFrames := scene.EndFrame - scene.StartFrame

	durationSeconds := 0.0
	if fps > 0 {
		durationSeconds = float64(durationFrames) / fps
	}

	count := int(math.Ceil(durationSeconds * tuning.SampleFrequency))
	count = max(tuning.MinSamples, min(count, tuning.MaxSamples))
	count = min(count, durationFrames+1)

	return linspace(scene.StartFrame, scene.EndFrame, count)
}

// linspace returns count integer frames spread evenly across [start, end]
// inclusive. With count <= the frame span plus one, the result is strictly
// increasing.
func linspace(start, end, count int) []int {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []int{start}
	}

	frames := make([]int, count)
	step := float64(end-start) / float64(count-1)
	for i := range frames {
		frames[i] = start + int(math.Round(float64(i)*step))
	}
	return frames
}

// validDetections drops detections that violate the wire contract: a box with
// positive dimensions, a non-negative frame number and a confidence within
// [0, 1]. The sidecar's JSON decodes absent box fields to zero values, so
// malformed records must be rejected here, before they can reach the linker.
func validDetections(dets []track.Detection) (kept []track.Detection, dropped int) {
	for _, d := range dets {
		if d.Box.Width <= 0 || d.Box.Height <= 0 ||
			d.FrameNumber < 0 || d.Confidence < 0 || d.Confidence > 1 {
			dropped++
			continue
		}
		kept = append(kept, d)
	}
	return kept, dropped
}
