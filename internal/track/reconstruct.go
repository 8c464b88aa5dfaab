package track

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/kozaktomas/reframer/internal/geometry"
)

// Reconstruct turns one surviving track's sparse measurements into the
// requested trajectory outputs for the scene spanning [startFrame, endFrame]
// inclusive.
//
// Fixed mode emits the union of all measured boxes: the worst-case static
// crop covering the subject's whole measured range of motion. Dynamic mode
// emits exactly one box per frame of the scene: measured boxes verbatim at
// their own frames, linear interpolation between consecutive measurements,
// and a constant hold of the first/last measured box before/after the
// measured range. Interpolated components are rounded to the nearest pixel;
// measured frames are emitted untouched, so rounding never drifts across
// segment boundaries.
func Reconstruct(tr *Track, startFrame, endFrame int, modes []Mode) (Reconstructed, error) {
	if tr == nil || len(tr.Detections) == 0 {
		return Reconstructed{}, fmt.Errorf("reconstruct: track has no detections")
	}

	measured := make([]Detection, len(tr.Detections))
	copy(measured, tr.Detections)
	sort.Slice(measured, func(i, j int) bool {
		return measured[i].FrameNumber < measured[j].FrameNumber
	})

	var out Reconstructed

	if slices.Contains(modes, ModeFixed) {
		boxes := make([]geometry.Box, len(measured))
		for i, d := range measured {
			boxes[i] = d.Box
		}
		fixed, err := geometry.Union(boxes)
		if err != nil {
			return Reconstructed{}, fmt.Errorf("reconstruct: %w", err)
		}
		out.FixedBox = &fixed
	}

	if slices.Contains(modes, ModeDynamic) {
		out.Dynamic = buildDynamic(measured, startFrame, endFrame)
	}

	return out, nil
}

func buildDynamic(measured []Detection, startFrame, endFrame int) []FrameBox {
	dynamic := make([]FrameBox, 0, endFrame-startFrame+1)

	// Interpolate each segment over [f0, f1); the measurement at f1 is
	// emitted by the next segment, and the final one just below.
	for i := 0; i < len(measured)-1; i++ {
		d0, d1 := measured[i], measured[i+1]
		for f := d0.FrameNumber; f < d1.FrameNumber; f++ {
			alpha := float64(f-d0.FrameNumber) / float64(d1.FrameNumber-d0.FrameNumber)
			dynamic = append(dynamic, FrameBox{
				FrameNumber: f,
				Box:         lerpBox(d0.Box, d1.Box, alpha),
			})
		}
	}
	last := measured[len(measured)-1]
	dynamic = append(dynamic, FrameBox{FrameNumber: last.FrameNumber, Box: last.Box})

	// Freeze at first/last known position outside the measured range.
	first := measured[0]
	for f := startFrame; f < first.FrameNumber; f++ {
		dynamic = append(dynamic, FrameBox{FrameNumber: f, Box: first.Box})
	}
	for f := last.FrameNumber + 1; f <= endFrame; f++ {
		dynamic = append(dynamic, FrameBox{FrameNumber: f, Box: last.Box})
	}

	sort.Slice(dynamic, func(i, j int) bool {
		return dynamic[i].FrameNumber < dynamic[j].FrameNumber
	})
	return dynamic
}

func lerpBox(b0, b1 geometry.Box, alpha float64) geometry.Box {
	return geometry.Box{
		X:      lerp(b0.X, b1.X, alpha),
		Y:      lerp(b0.Y, b1.Y, alpha),
		Width:  lerp(b0.Width, b1.Width, alpha),
		Height: lerp(b0.Height, b1.Height, alpha),
	}
}

func lerp(v0, v1 int, alpha float64) int {
	return int(math.Round((1-alpha)*float64(v0) + alpha*float64(v1)))
}
