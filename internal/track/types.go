// Package track links sparse per-frame subject detections into temporally
// continuous tracks and reconstructs per-frame trajectories from them.
//
// The package is pure computation: it performs no I/O and holds no state
// between calls. One linking pass owns its active-track table and discards it
// when the scene's detection stream is exhausted.
package track

import "github.com/kozaktomas/reframer/internal/geometry"

// Scene is an inclusive frame range treated as one continuous shot. Tracking
// never crosses scene boundaries.
type Scene struct {
	StartFrame int `json:"start_frame"`
	EndFrame   int `json:"end_frame"`
}

// Detection is one subject observation at one sampled frame.
type Detection struct {
	FrameNumber int          `json:"frame_number"`
	Box         geometry.Box `json:"box_pixels"`
	Confidence  float64      `json:"confidence"`
}

// Track is an ordered accumulation of detections believed to be the same
// physical subject within one scene. Detections are strictly increasing by
// frame number.
type Track struct {
	Detections []Detection `json:"detections"`

	// Cached state of the most recent detection, used only during linking.
	lastCX, lastCY float64
	lastSize       float64
}

// FrameBox is a bounding box pinned to a single frame of a dynamic track.
type FrameBox struct {
	FrameNumber int          `json:"frame_number"`
	Box         geometry.Box `json:"box_pixels"`
}

// Reconstructed is the output unit for one surviving track: a static union
// box and/or a per-frame box sequence covering the whole scene.
type Reconstructed struct {
	TrackID     string        `json:"track_id"`
	SceneNumber int           `json:"scene_number,omitempty"`
	FixedBox    *geometry.Box `json:"fixed_box_pixels,omitempty"`
	Dynamic     []FrameBox    `json:"dynamic_track,omitempty"`
}

// Mode selects which trajectory outputs Reconstruct produces.
type Mode string

// Output modes. Fixed produces the union box of all measured detections;
// Dynamic produces one box per frame across the entire scene.
const (
	ModeFixed   Mode = "fixed"
	ModeDynamic Mode = "dynamic"
)
