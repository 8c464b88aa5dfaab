package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kozaktomas/reframer/internal/cache"
	"github.com/kozaktomas/reframer/internal/config"
	"github.com/kozaktomas/reframer/internal/track"
	"github.com/kozaktomas/reframer/internal/vision"
)

// Vision is the pipeline's view of the vision sidecar. *vision.Client
// satisfies it; tests inject fakes.
type Vision interface {
	Probe(ctx context.Context, mediaPath string) (*vision.MediaInfo, error)
	DetectScenes(ctx context.Context, mediaPath string, threshold float64) ([]track.Scene, error)
	Scout(ctx context.Context, mediaPath string, frames []int) (*vision.ScoutResult, error)
}

// Pipeline runs the staged analysis for one project (one source media file).
type Pipeline struct {
	tuning config.Tuning
	cache  cache.Cache
	vision Vision
	paths  projectPaths

	// OnSceneScouted, when set, is called after each scene's frames have been
	// scouted. Used by the CLI for progress reporting.
	OnSceneScouted func(done, total int)
}

// New creates a pipeline for the given source media file. Stage outputs land
// under dataDir/<project>/ where <project> is the media base name without
// extension.
func New(mediaPath, dataDir string, tuning config.Tuning, c cache.Cache, v Vision) *Pipeline {
	return &Pipeline{
		tuning: tuning,
		cache:  c,
		vision: v,
		paths:  newProjectPaths(dataDir, mediaPath),
	}
}

// MediaPath returns the project-internal copy of the source media.
func (p *Pipeline) MediaPath() string {
	return p.paths.media
}

// Run executes the three stages in order and assembles the per-scene result.
// For a fixed project and fixed cache contents the output is identical on
// repeated runs; cached stage outputs are trusted as-is and never revalidated
// against the source media.
func (p *Pipeline) Run(ctx context.Context, sourcePath string) (*Result, error) {
	if err := p.setupWorkspace(sourcePath); err != nil {
		return nil, fmt.Errorf("preparing project workspace: %w", err)
	}

	media, err := p.vision.Probe(ctx, p.paths.media)
	if err != nil {
		return nil, fmt.Errorf("probing media: %w", err)
	}

	scenes, err := p.detectScenes(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenes stage: %w", err)
	}

	scouting, err := p.runScouting(ctx, scenes, media.FPS)
	if err != nil {
		return nil, fmt.Errorf("scouting stage: %w", err)
	}

	faceTracks, personTracks, err := p.processTracks(scenes, scouting)
	if err != nil {
		return nil, fmt.Errorf("tracks stage: %w", err)
	}

	result := &Result{
		Scenes: assembleScenes(scenes, faceTracks, personTracks),
		Media:  *media,
	}
	if err := cache.SaveJSON(p.cache, p.paths.finalOutput, result); err != nil {
		log.Printf("pipeline: failed to save final output: %v", err)
	}
	return result, nil
}

// setupWorkspace creates the project directory and copies the source media
// into it so later (possibly cached) runs do not depend on the original path.
func (p *Pipeline) setupWorkspace(sourcePath string) error {
	if err := os.MkdirAll(p.paths.root, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(p.paths.media); err == nil {
		return nil
	}
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(p.paths.media)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return nil
}

// detectScenes is stage 1: split the video into contiguous scenes.
func (p *Pipeline) detectScenes(ctx context.Context) ([]track.Scene, error) {
	if cached, ok := cache.LoadJSON[[]track.Scene](p.cache, p.paths.scenes); ok {
		return *cached, nil
	}

	scenes, err := p.vision.DetectScenes(ctx, p.paths.media, p.tuning.SceneDetector.Threshold)
	if err != nil {
		return nil, err
	}
	if err := cache.SaveJSON(p.cache, p.paths.scenes, scenes); err != nil {
		log.Printf("pipeline: failed to save scenes: %v", err)
	}
	return scenes, nil
}

// runScouting is stage 2: sample keyframes per scene and collect detections.
func (p *Pipeline) runScouting(ctx context.Context, scenes []track.Scene, fps float64) (*ScoutingResult, error) {
	if cached, ok := cache.LoadJSON[ScoutingResult](p.cache, p.paths.scouting); ok {
		return cached, nil
	}

	result := &ScoutingResult{SampledFrames: make([][]int, len(scenes))}
	if len(scenes) == 0 {
		// Nothing to scout; record the empty result so reruns stay cheap.
		if err := cache.SaveJSON(p.cache, p.paths.scouting, result); err != nil {
			log.Printf("pipeline: failed to save scouting results: %v", err)
		}
		return result, nil
	}

	for i, scene := range scenes {
		frames := planSamples(scene, fps, p.tuning.Scouting)
		result.SampledFrames[i] = frames

		scout, err := p.vision.Scout(ctx, p.paths.media, frames)
		if err != nil {
			return nil, fmt.Errorf("scouting scene %d: %w", i+1, err)
		}
		faces, droppedFaces := validDetections(scout.Faces)
		persons, droppedPersons := validDetections(scout.Persons)
		if n := droppedFaces + droppedPersons; n > 0 {
			log.Printf("pipeline: dropped %d malformed detections in scene %d", n, i+1)
		}
		result.Faces = append(result.Faces, faces...)
		result.Persons = append(result.Persons, persons...)

		if p.OnSceneScouted != nil {
			p.OnSceneScouted(i+1, len(scenes))
		}
	}

	if err := cache.SaveJSON(p.cache, p.paths.scouting, result); err != nil {
		log.Printf("pipeline: failed to save scouting results: %v", err)
	}
	return result, nil
}

// processTracks is stage 3: link detections into tracks per scene and per
// subject type, filter, and reconstruct.
func (p *Pipeline) processTracks(scenes []track.Scene, scouting *ScoutingResult) (faces, persons [][]track.Reconstructed, err error) {
	faces, err = p.tracksForType(p.paths.faceTracks, "FACE", scouting.Faces, scenes, scouting.SampledFrames, p.tuning.FaceTracking)
	if err != nil {
		return nil, nil, fmt.Errorf("face tracks: %w", err)
	}
	persons, err = p.tracksForType(p.paths.personTracks, "PERSON", scouting.Persons, scenes, scouting.SampledFrames, p.tuning.PersonTracking)
	if err != nil {
		return nil, nil, fmt.Errorf("person tracks: %w", err)
	}
	return faces, persons, nil
}

// tracksForType generates reconstructed tracks for one subject type across
// all scenes, consulting the cache first. The result is indexed by scene.
func (p *Pipeline) tracksForType(cachePath, idPrefix string, detections []track.Detection, scenes []track.Scene, sampledFrames [][]int, tuning config.TrackingTuning) ([][]track.Reconstructed, error) {
	if cached, ok := cache.LoadJSON[[][]track.Reconstructed](p.cache, cachePath); ok {
		return *cached, nil
	}

	modes := outputModes(p.tuning.Output.Modes)
	perScene := make([][]track.Reconstructed, len(scenes))
	for i, scene := range scenes {
		totalSampled := 0
		if i < len(sampledFrames) {
			totalSampled = len(sampledFrames[i])
		}
		tracks, err := generateSceneTracks(detections, scene, totalSampled, tuning, modes, idPrefix)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i+1, err)
		}
		for j := range tracks {
			tracks[j].SceneNumber = i + 1
		}
		perScene[i] = tracks
	}

	if err := cache.SaveJSON(p.cache, cachePath, perScene); err != nil {
		log.Printf("pipeline: failed to save %s tracks: %v", idPrefix, err)
	}
	return perScene, nil
}

func outputModes(names []string) []track.Mode {
	modes := make([]track.Mode, 0, len(names))
	for _, n := range names {
		modes = append(modes, track.Mode(n))
	}
	return modes
}

func assembleScenes(scenes []track.Scene, faces, persons [][]track.Reconstructed) []SceneResult {
	results := make([]SceneResult, len(scenes))
	for i, scene := range scenes {
		results[i] = SceneResult{
			SceneNumber: i + 1,
			StartFrame:  scene.StartFrame,
			EndFrame:    scene.EndFrame,
		}
		if i < len(faces) {
			results[i].Detections.FaceTracks = faces[i]
		}
		if i < len(persons) {
			results[i].Detections.PersonTracks = persons[i]
		}
	}
	return results
}
