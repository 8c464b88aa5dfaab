package track

import (
	"testing"

	"github.com/kozaktomas/reframer/internal/geometry"
)

func TestReconstructFixedBox(t *testing.T) {
	tr := &Track{Detections: []Detection{
		det(0, 0, 0, 10, 10),
		det(5, 5, 5, 10, 10),
	}}

	got, err := Reconstruct(tr, 0, 9, []Mode{ModeFixed})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	want := geometry.Box{X: 0, Y: 0, Width: 15, Height: 15}
	if got.FixedBox == nil || *got.FixedBox != want {
		t.Errorf("FixedBox = %+v, want %+v", got.FixedBox, want)
	}
	if got.Dynamic != nil {
		t.Errorf("Dynamic produced without being requested")
	}
}

func TestReconstructDynamicCoverage(t *testing.T) {
	tests := []struct {
		name       string
		detections []Detection
		start, end int
	}{
		{
			name:       "single detection mid scene",
			detections: []Detection{det(4, 10, 10, 20, 20)},
			start:      0, end: 9,
		},
		{
			name: "detections at scene edges",
			detections: []Detection{
				det(0, 0, 0, 10, 10),
				det(9, 90, 0, 10, 10),
			},
			start: 0, end: 9,
		},
		{
			name: "sparse irregular sampling",
			detections: []Detection{
				det(12, 0, 0, 10, 10),
				det(13, 5, 0, 10, 10),
				det(40, 100, 0, 10, 10),
			},
			start: 10, end: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconstruct(&Track{Detections: tt.detections}, tt.start, tt.end, []Mode{ModeDynamic})
			if err != nil {
				t.Fatalf("Reconstruct() error = %v", err)
			}

			wantLen := tt.end - tt.start + 1
			if len(got.Dynamic) != wantLen {
				t.Fatalf("dynamic track has %d entries, want %d", len(got.Dynamic), wantLen)
			}
			for i, fb := range got.Dynamic {
				if fb.FrameNumber != tt.start+i {
					t.Fatalf("entry %d has frame %d, want %d (gap or duplicate)", i, fb.FrameNumber, tt.start+i)
				}
			}
		})
	}
}

func TestReconstructMeasuredFramesExact(t *testing.T) {
	// Measured boxes must come through untouched at their own frames,
	// regardless of rounding in between.
	detections := []Detection{
		det(2, 1, 1, 11, 11),
		det(5, 8, 3, 14, 9),
		det(11, 100, 50, 33, 27),
	}

	got, err := Reconstruct(&Track{Detections: detections}, 0, 15, []Mode{ModeDynamic})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	byFrame := make(map[int]geometry.Box)
	for _, fb := range got.Dynamic {
		byFrame[fb.FrameNumber] = fb.Box
	}
	for _, d := range detections {
		if byFrame[d.FrameNumber] != d.Box {
			t.Errorf("frame %d box = %+v, want measured %+v", d.FrameNumber, byFrame[d.FrameNumber], d.Box)
		}
	}
}

func TestReconstructInterpolation(t *testing.T) {
	detections := []Detection{
		det(0, 0, 0, 10, 10),
		det(4, 8, 4, 10, 10),
	}

	got, err := Reconstruct(&Track{Detections: detections}, 0, 4, []Mode{ModeDynamic})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	// X moves 0->8 over 4 frames (2px/frame), Y moves 0->4 (1px/frame).
	want := []geometry.Box{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 2, Y: 1, Width: 10, Height: 10},
		{X: 4, Y: 2, Width: 10, Height: 10},
		{X: 6, Y: 3, Width: 10, Height: 10},
		{X: 8, Y: 4, Width: 10, Height: 10},
	}
	for i, fb := range got.Dynamic {
		if fb.Box != want[i] {
			t.Errorf("frame %d box = %+v, want %+v", fb.FrameNumber, fb.Box, want[i])
		}
	}
}

func TestReconstructRoundsToNearest(t *testing.T) {
	// X moves 0->1 over 2 frames: midpoint 0.5 rounds up to 1.
	detections := []Detection{
		det(0, 0, 0, 10, 10),
		det(2, 1, 0, 10, 10),
	}

	got, err := Reconstruct(&Track{Detections: detections}, 0, 2, []Mode{ModeDynamic})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	if got.Dynamic[1].Box.X != 1 {
		t.Errorf("midpoint X = %d, want 1 (round half up)", got.Dynamic[1].Box.X)
	}
}

func TestReconstructExtrapolationHolds(t *testing.T) {
	detections := []Detection{
		det(5, 50, 50, 20, 20),
		det(7, 60, 50, 20, 20),
	}

	got, err := Reconstruct(&Track{Detections: detections}, 0, 12, []Mode{ModeDynamic})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	first := geometry.Box{X: 50, Y: 50, Width: 20, Height: 20}
	last := geometry.Box{X: 60, Y: 50, Width: 20, Height: 20}
	for _, fb := range got.Dynamic {
		switch {
		case fb.FrameNumber < 5:
			if fb.Box != first {
				t.Errorf("frame %d = %+v, want first measured box held", fb.FrameNumber, fb.Box)
			}
		case fb.FrameNumber > 7:
			if fb.Box != last {
				t.Errorf("frame %d = %+v, want last measured box held", fb.FrameNumber, fb.Box)
			}
		}
	}
}

func TestReconstructEmptyTrack(t *testing.T) {
	if _, err := Reconstruct(&Track{}, 0, 9, []Mode{ModeFixed}); err == nil {
		t.Error("expected error for track with no detections")
	}
	if _, err := Reconstruct(nil, 0, 9, []Mode{ModeFixed}); err == nil {
		t.Error("expected error for nil track")
	}
}

// TestEndToEndScenario runs the full link/filter/reconstruct chain on one
// scene with a single subject detected at frames 0, 5 and 9.
func TestEndToEndScenario(t *testing.T) {
	detections := []Detection{
		det(0, 0, 0, 10, 10),
		det(5, 10, 10, 10, 10),
		det(9, 20, 20, 10, 10),
	}

	// Centers move ~14.1px between samples on a 10px-wide box, so the factor
	// must exceed 1.42 for the samples to link into one track.
	tracks := Link(detections, 1.5)
	if len(tracks) != 1 {
		t.Fatalf("expected 1 linked track, got %d", len(tracks))
	}

	kept := FilterPersistent(tracks, 3, 0.4) // minHits = 2
	if len(kept) != 1 {
		t.Fatalf("track did not survive persistence filter")
	}

	got, err := Reconstruct(kept[0], 0, 9, []Mode{ModeFixed, ModeDynamic})
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}

	wantFixed := geometry.Box{X: 0, Y: 0, Width: 30, Height: 30}
	if got.FixedBox == nil || *got.FixedBox != wantFixed {
		t.Errorf("FixedBox = %+v, want %+v", got.FixedBox, wantFixed)
	}

	if len(got.Dynamic) != 10 {
		t.Fatalf("dynamic track has %d entries, want 10", len(got.Dynamic))
	}
	checks := map[int]geometry.Box{
		0: {X: 0, Y: 0, Width: 10, Height: 10},
		5: {X: 10, Y: 10, Width: 10, Height: 10},
		9: {X: 20, Y: 20, Width: 10, Height: 10},
		2: {X: 4, Y: 4, Width: 10, Height: 10},   // 0 + 0.4*10
		7: {X: 15, Y: 15, Width: 10, Height: 10}, // 10 + 0.5*10
	}
	for frame, want := range checks {
		if got.Dynamic[frame].Box != want {
			t.Errorf("frame %d box = %+v, want %+v", frame, got.Dynamic[frame].Box, want)
		}
	}
}
