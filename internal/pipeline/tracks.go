package pipeline

import (
	"fmt"

	"github.com/kozaktomas/reframer/internal/config"
	"github.com/kozaktomas/reframer/internal/track"
)

// generateSceneTracks runs the full link/filter/reconstruct chain for one
// scene and one subject type. Surviving tracks are renumbered 1-based in
// linker order, prefixed by subject type (FACE_1, PERSON_2, ...).
func generateSceneTracks(detections []track.Detection, scene track.Scene, totalSampledFrames int, tuning config.TrackingTuning, modes []track.Mode, idPrefix string) ([]track.Reconstructed, error) {
	var inScene []track.Detection
	for _, d := range detections {
		if d.FrameNumber >= scene.StartFrame && d.FrameNumber <= scene.EndFrame {
			inScene = append(inScene, d)
		}
	}
	if len(inScene) == 0 {
		return nil, nil
	}

	linked := track.Link(inScene, tuning.DistanceThresholdFactor)
	kept := track.FilterPersistent(linked, totalSampledFrames, tuning.MinPersistenceRatio)

	results := make([]track.Reconstructed, 0, len(kept))
	for i, tr := range kept {
		rec, err := track.Reconstruct(tr, scene.StartFrame, scene.EndFrame, modes)
		if err != nil {
			return nil, fmt.Errorf("reconstructing track %d: %w", i+1, err)
		}
		rec.TrackID = fmt.Sprintf("%s_%d", idPrefix, i+1)
		results = append(results, rec)
	}
	return results, nil
}
