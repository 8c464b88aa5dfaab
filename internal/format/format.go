// Package format turns the pipeline's internal pixel/frame output into the
// client-facing shape: timestamps in seconds and resolution-independent
// normalized coordinates alongside the raw pixel boxes. The transformation is
// non-destructive; the pipeline result is never modified.
package format

import (
	"github.com/kozaktomas/reframer/internal/geometry"
	"github.com/kozaktomas/reframer/internal/pipeline"
	"github.com/kozaktomas/reframer/internal/track"
)

// NormalizedBox is a bounding box expressed as fractions of the video frame.
type NormalizedBox struct {
	XNorm      float64 `json:"x_norm"`
	YNorm      float64 `json:"y_norm"`
	WidthNorm  float64 `json:"width_norm"`
	HeightNorm float64 `json:"height_norm"`
}

// Scene is one formatted per-scene record.
type Scene struct {
	SceneNumber      int        `json:"scene_number"`
	StartFrame       int        `json:"start_frame"`
	EndFrame         int        `json:"end_frame"`
	StartTimeSeconds float64    `json:"start_time_seconds"`
	EndTimeSeconds   float64    `json:"end_time_seconds"`
	Detections       Detections `json:"detections"`
}

// Detections groups a scene's formatted tracks by subject type.
type Detections struct {
	FaceTracks   []Track `json:"face_tracks"`
	PersonTracks []Track `json:"person_tracks"`
}

// Track is one formatted reconstructed track.
type Track struct {
	TrackID            string         `json:"track_id"`
	FixedBoxPixels     *geometry.Box  `json:"fixed_box_pixels,omitempty"`
	FixedBoxNormalized *NormalizedBox `json:"fixed_box_normalized,omitempty"`
	DynamicTrack       []FrameBox     `json:"dynamic_track,omitempty"`
}

// FrameBox is one formatted frame of a dynamic track.
type FrameBox struct {
	FrameNumber      int           `json:"frame_number"`
	TimestampSeconds float64       `json:"timestamp_seconds"`
	BoxPixels        geometry.Box  `json:"box_pixels"`
	BoxNormalized    NormalizedBox `json:"box_normalized"`
}

// Formatter converts pixel coordinates and frame numbers using the source
// video's metadata.
type Formatter struct {
	fps    float64
	width  int
	height int
}

// New creates a formatter for a video with the given metadata. A non-positive
// fps falls back to 30 so timestamps stay finite.
func New(fps float64, width, height int) *Formatter {
	if fps <= 0 {
		fps = 30.0
	}
	return &Formatter{fps: fps, width: width, height: height}
}

// Run formats the full pipeline result into per-scene client records.
func (f *Formatter) Run(result *pipeline.Result) []Scene {
	scenes := make([]Scene, len(result.Scenes))
	for i, s := range result.Scenes {
		scenes[i] = Scene{
			SceneNumber:      s.SceneNumber,
			StartFrame:       s.StartFrame,
			EndFrame:         s.EndFrame,
			StartTimeSeconds: float64(s.StartFrame) / f.fps,
			EndTimeSeconds:   float64(s.EndFrame) / f.fps,
			Detections: Detections{
				FaceTracks:   f.formatTracks(s.Detections.FaceTracks),
				PersonTracks: f.formatTracks(s.Detections.PersonTracks),
			},
		}
	}
	return scenes
}

func (f *Formatter) formatTracks(tracks []track.Reconstructed) []Track {
	formatted := make([]Track, 0, len(tracks))
	for _, tr := range tracks {
		out := Track{TrackID: tr.TrackID}
		if tr.FixedBox != nil {
			box := *tr.FixedBox
			norm := f.normalize(box)
			out.FixedBoxPixels = &box
			out.FixedBoxNormalized = &norm
		}
		for _, fb := range tr.Dynamic {
			out.DynamicTrack = append(out.DynamicTrack, FrameBox{
				FrameNumber:      fb.FrameNumber,
				TimestampSeconds: float64(fb.FrameNumber) / f.fps,
				BoxPixels:        fb.Box,
				BoxNormalized:    f.normalize(fb.Box),
			})
		}
		formatted = append(formatted, out)
	}
	return formatted
}

func (f *Formatter) normalize(box geometry.Box) NormalizedBox {
	if f.width <= 0 || f.height <= 0 {
		return NormalizedBox{}
	}
	return NormalizedBox{
		XNorm:      float64(box.X) / float64(f.width),
		YNorm:      float64(box.Y) / float64(f.height),
		WidthNorm:  float64(box.Width) / float64(f.width),
		HeightNorm: float64(box.Height) / float64(f.height),
	}
}
