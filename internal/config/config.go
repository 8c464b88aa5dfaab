package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Vision VisionConfig
	Data   DataConfig
	Tuning Tuning
}

type VisionConfig struct {
	URL string // base URL of the vision sidecar (defaults to http://localhost:8400)
}

type DataConfig struct {
	Dir string // root directory for per-project workspaces (default "data")
}

// Tuning holds the algorithm parameters for every pipeline stage. Defaults
// ship embedded in the binary; callers may override them per run.
type Tuning struct {
	SceneDetector  SceneDetectorTuning `yaml:"scene_detector" json:"scene_detector"`
	Scouting       ScoutingTuning      `yaml:"scouting" json:"scouting"`
	FaceTracking   TrackingTuning      `yaml:"face_tracking" json:"face_tracking"`
	PersonTracking TrackingTuning      `yaml:"person_tracking" json:"person_tracking"`
	Output         OutputTuning        `yaml:"output" json:"output"`
}

type SceneDetectorTuning struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

type ScoutingTuning struct {
	MinSamples      int     `yaml:"min_samples" json:"min_samples"`
	MaxSamples      int     `yaml:"max_samples" json:"max_samples"`
	SampleFrequency float64 `yaml:"sample_frequency" json:"sample_frequency"` // samples per second of scene duration
}

type TrackingTuning struct {
	DistanceThresholdFactor float64 `yaml:"distance_threshold_factor" json:"distance_threshold_factor"`
	MinPersistenceRatio     float64 `yaml:"min_persistence_ratio" json:"min_persistence_ratio"`
}

type OutputTuning struct {
	Modes []string `yaml:"modes" json:"modes"`
}

// envStr reads an environment variable, falling back to a default.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	tuning := DefaultTuning()
	tuning.SceneDetector.Threshold = envFloat("SCENE_THRESHOLD", tuning.SceneDetector.Threshold)

	return &Config{
		Vision: VisionConfig{
			URL: os.Getenv("VISION_URL"),
		},
		Data: DataConfig{
			Dir: envStr("DATA_DIR", "data"),
		},
		Tuning: tuning,
	}
}

// DefaultTuning returns the embedded algorithm defaults.
func DefaultTuning() Tuning {
	var t Tuning
	if err := yaml.Unmarshal(defaultsYAML, &t); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return t
}

// ApplyJSONOverrides merges a JSON override document over the tuning values.
// Only keys present in the document are touched; everything else keeps its
// current value. Used by the CLI --config flag and per-request overrides.
func (t *Tuning) ApplyJSONOverrides(doc []byte) error {
	if len(doc) == 0 {
		return nil
	}
	if err := json.Unmarshal(doc, t); err != nil {
		return fmt.Errorf("parsing config overrides: %w", err)
	}
	return nil
}
