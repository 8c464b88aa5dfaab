package track

import "math"

// MinHits returns the minimum number of detections a track needs to survive
// filtering: ceil(totalSampledFrames * minPersistenceRatio).
func MinHits(totalSampledFrames int, minPersistenceRatio float64) int {
	return int(math.Ceil(float64(totalSampledFrames) * minPersistenceRatio))
}

// FilterPersistent keeps the tracks that appear in enough of the scene's
// sampled frames and drops the rest. This is the sole mechanism for
// suppressing short-lived spurious tracks; the linker itself never discards
// anything. Order of survivors follows the linker output.
func FilterPersistent(tracks []*Track, totalSampledFrames int, minPersistenceRatio float64) []*Track {
	minHits := MinHits(totalSampledFrames, minPersistenceRatio)

	var kept []*Track
	for _, tr := range tracks {
		if len(tr.Detections) >= minHits {
			kept = append(kept, tr)
		}
	}
	return kept
}
