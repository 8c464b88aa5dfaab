package format

import (
	"math"
	"testing"

	"github.com/kozaktomas/reframer/internal/geometry"
	"github.com/kozaktomas/reframer/internal/pipeline"
	"github.com/kozaktomas/reframer/internal/track"
)

func sampleResult() *pipeline.Result {
	fixed := geometry.Box{X: 192, Y: 108, Width: 960, Height: 540}
	return &pipeline.Result{
		Scenes: []pipeline.SceneResult{{
			SceneNumber: 1,
			StartFrame:  0,
			EndFrame:    59,
			Detections: pipeline.SceneDetections{
				FaceTracks: []track.Reconstructed{{
					TrackID:  "FACE_1",
					FixedBox: &fixed,
					Dynamic: []track.FrameBox{
						{FrameNumber: 0, Box: fixed},
						{FrameNumber: 30, Box: fixed},
					},
				}},
			},
		}},
	}
}

func TestRunTimestamps(t *testing.T) {
	scenes := New(30.0, 1920, 1080).Run(sampleResult())

	if len(scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(scenes))
	}
	s := scenes[0]
	if s.StartTimeSeconds != 0 || math.Abs(s.EndTimeSeconds-59.0/30.0) > 1e-9 {
		t.Errorf("scene times = [%v, %v]", s.StartTimeSeconds, s.EndTimeSeconds)
	}

	frames := s.Detections.FaceTracks[0].DynamicTrack
	if math.Abs(frames[1].TimestampSeconds-1.0) > 1e-9 {
		t.Errorf("frame 30 timestamp = %v, want 1.0", frames[1].TimestampSeconds)
	}
}

func TestRunNormalizedBoxes(t *testing.T) {
	scenes := New(30.0, 1920, 1080).Run(sampleResult())

	norm := scenes[0].Detections.FaceTracks[0].FixedBoxNormalized
	if norm == nil {
		t.Fatal("fixed box not normalized")
	}
	want := NormalizedBox{XNorm: 0.1, YNorm: 0.1, WidthNorm: 0.5, HeightNorm: 0.5}
	if math.Abs(norm.XNorm-want.XNorm) > 1e-9 || math.Abs(norm.WidthNorm-want.WidthNorm) > 1e-9 ||
		math.Abs(norm.YNorm-want.YNorm) > 1e-9 || math.Abs(norm.HeightNorm-want.HeightNorm) > 1e-9 {
		t.Errorf("normalized = %+v, want %+v", norm, want)
	}

	// Pixel boxes ride along untouched.
	if scenes[0].Detections.FaceTracks[0].FixedBoxPixels.Width != 960 {
		t.Errorf("pixel box altered: %+v", scenes[0].Detections.FaceTracks[0].FixedBoxPixels)
	}
}

func TestRunNonDestructive(t *testing.T) {
	result := sampleResult()
	original := *result.Scenes[0].Detections.FaceTracks[0].FixedBox

	scenes := New(30.0, 1920, 1080).Run(result)
	scenes[0].Detections.FaceTracks[0].FixedBoxPixels.X = 9999

	if *result.Scenes[0].Detections.FaceTracks[0].FixedBox != original {
		t.Error("formatter mutated the pipeline result")
	}
}

func TestZeroFPSFallsBack(t *testing.T) {
	f := New(0, 1920, 1080)
	scenes := f.Run(sampleResult())

	// 30 fps fallback: frame 59 ends just before the 2-second mark.
	if math.Abs(scenes[0].EndTimeSeconds-59.0/30.0) > 1e-9 {
		t.Errorf("EndTimeSeconds = %v with fps fallback", scenes[0].EndTimeSeconds)
	}
}

func TestEmptyResult(t *testing.T) {
	scenes := New(30.0, 1920, 1080).Run(&pipeline.Result{})
	if len(scenes) != 0 {
		t.Errorf("expected no scenes, got %d", len(scenes))
	}
}
