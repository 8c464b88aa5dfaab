package track

import (
	"math"
	"sort"
)

// Link associates a scene's sparse detections into candidate tracks using
// greedy size-relative nearest-neighbor matching.
//
// Frames are processed in strictly increasing order. Within a frame, active
// tracks claim detections in track-creation order: each track considers the
// detections whose center lies within lastSize*distanceThresholdFactor of its
// own last center, and takes the closest one not already claimed by an
// earlier track. First-claimed-wins; the assignment is greedy, not globally
// optimal, and reruns over the same stream are bit-identical. Unmatched
// detections spawn new tracks. Tracks are never terminated here, no matter
// how long they go unmatched; acceptance is the persistence filter's job.
func Link(detections []Detection, distanceThresholdFactor float64) []*Track {
	if len(detections) == 0 {
		return nil
	}

	byFrame := make(map[int][]Detection)
	for _, d := range detections {
		byFrame[d.FrameNumber] = append(byFrame[d.FrameNumber], d)
	}
	frames := make([]int, 0, len(byFrame))
	for f := range byFrame {
		frames = append(frames, f)
	}
	sort.Ints(frames)

	var active []*Track

	for _, frame := range frames {
		current := byFrame[frame]

		centers := make([][2]float64, len(current))
		sizes := make([]float64, len(current))
		for i, d := range current {
			cx, cy := d.Box.Center()
			centers[i] = [2]float64{cx, cy}
			sizes[i] = float64(d.Box.Width)
		}

		claimed := make(map[int]bool, len(current))
		for _, tr := range active {
			maxDist := tr.lastSize * distanceThresholdFactor

			bestDist, bestIdx := math.Inf(1), -1
			for i := range current {
				if claimed[i] {
					continue
				}
				dist := math.Hypot(centers[i][0]-tr.lastCX, centers[i][1]-tr.lastCY)
				if dist < maxDist && dist < bestDist {
					bestDist, bestIdx = dist, i
				}
			}

			if bestIdx >= 0 {
				tr.Detections = append(tr.Detections, current[bestIdx])
				tr.lastCX, tr.lastCY = centers[bestIdx][0], centers[bestIdx][1]
				tr.lastSize = sizes[bestIdx]
				claimed[bestIdx] = true
			}
		}

		for i, d := range current {
			if claimed[i] {
				continue
			}
			active = append(active, &Track{
				Detections: []Detection{d},
				lastCX:     centers[i][0],
				lastCY:     centers[i][1],
				lastSize:   sizes[i],
			})
		}
	}

	return active
}
