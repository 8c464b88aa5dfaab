// Package pipeline orchestrates the staged reframing analysis: scene
// detection, sparse scouting, and track generation. Stages are sequenced per
// project, keyed by deterministic output paths, and short-circuit through the
// cache so interrupted local runs resume where they left off.
package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/kozaktomas/reframer/internal/track"
	"github.com/kozaktomas/reframer/internal/vision"
)

// SceneResult is one scene's share of the final pipeline output.
type SceneResult struct {
	SceneNumber int             `json:"scene_number"`
	StartFrame  int             `json:"start_frame"`
	EndFrame    int             `json:"end_frame"`
	Detections  SceneDetections `json:"detections"`
}

// SceneDetections groups the reconstructed tracks of one scene by subject type.
type SceneDetections struct {
	FaceTracks   []track.Reconstructed `json:"face_tracks"`
	PersonTracks []track.Reconstructed `json:"person_tracks"`
}

// Result is the full pipeline output for one project.
type Result struct {
	Scenes []SceneResult    `json:"scenes"`
	Media  vision.MediaInfo `json:"media"`
}

// ScoutingResult is the cached output of the scouting stage: every detection
// found on the sampled frames, plus the frames sampled per scene so the
// persistence filter knows each scene's true sample count even on a cache hit.
type ScoutingResult struct {
	Faces         []track.Detection `json:"faces"`
	Persons       []track.Detection `json:"persons"`
	SampledFrames [][]int           `json:"sampled_frames"`
}

// projectPaths holds the deterministic stage output paths for one project.
// The project name is the source media's base name without extension.
type projectPaths struct {
	root         string
	media        string
	scenes       string
	scouting     string
	faceTracks   string
	personTracks string
	finalOutput  string
}

func newProjectPaths(dataDir, mediaPath string) projectPaths {
	base := filepath.Base(mediaPath)
	project := strings.TrimSuffix(base, filepath.Ext(base))
	root := filepath.Join(dataDir, project)
	return projectPaths{
		root:         root,
		media:        filepath.Join(root, base),
		scenes:       filepath.Join(root, project+"_scenes.json"),
		scouting:     filepath.Join(root, project+"_scouting.json"),
		faceTracks:   filepath.Join(root, project+"_face_tracks.json"),
		personTracks: filepath.Join(root, project+"_person_tracks.json"),
		finalOutput:  filepath.Join(root, project+"_final_output.json"),
	}
}
