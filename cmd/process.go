package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/reframer/internal/cache"
	"github.com/kozaktomas/reframer/internal/config"
	"github.com/kozaktomas/reframer/internal/download"
	"github.com/kozaktomas/reframer/internal/format"
	"github.com/kozaktomas/reframer/internal/pipeline"
	"github.com/kozaktomas/reframer/internal/vision"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Analyze a video and print its subject tracks",
	Long: `Run the full analysis pipeline on a single video.

The video is either downloaded from a URL or read from a local path.
Intermediate results (scenes, scouting detections, tracks) are cached
under the data directory, so re-running on the same video only redoes
the stages whose cache entries are missing.

Examples:
  # Analyze a local file
  reframer process --path ./clips/interview.mp4

  # Download and analyze
  reframer process --url https://example.com/clip.mp4

  # Override tuning parameters
  reframer process --path clip.mp4 --config '{"output":{"modes":["fixed","dynamic"]}}'`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("url", "", "URL of the video to download and analyze")
	processCmd.Flags().String("path", "", "Local path of the video to analyze")
	processCmd.Flags().String("config", "", "JSON document with tuning overrides")
}

func runProcess(cmd *cobra.Command, args []string) error {
	videoURL := mustGetString(cmd, "url")
	videoPath := mustGetString(cmd, "path")
	overrides := mustGetString(cmd, "config")

	if (videoURL == "") == (videoPath == "") {
		return errors.New("exactly one of --url or --path is required")
	}

	ctx := context.Background()
	cfg := config.Load()

	tuning := cfg.Tuning
	if overrides != "" {
		if err := tuning.ApplyJSONOverrides([]byte(overrides)); err != nil {
			return fmt.Errorf("invalid --config document: %w", err)
		}
	}

	sourcePath := videoPath
	if videoURL != "" {
		tmpDir, err := os.MkdirTemp("", "reframer-*")
		if err != nil {
			return fmt.Errorf("creating download directory: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		fmt.Printf("Downloading %s...\n", videoURL)
		sourcePath, err = download.Video(ctx, videoURL, tmpDir)
		if err != nil {
			return fmt.Errorf("downloading video: %w", err)
		}
	}

	client := vision.NewClient(cfg.Vision.URL)
	p := pipeline.New(sourcePath, cfg.Data.Dir, tuning, cache.NewFilesystem(), client)

	var bar *progressbar.ProgressBar
	p.OnSceneScouted = func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Scouting scenes"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		bar.Add(1)
	}

	result, err := p.Run(ctx, sourcePath)
	if err != nil {
		return err
	}
	if bar != nil {
		fmt.Println()
	}

	scenes := format.New(result.Media.FPS, result.Media.Width, result.Media.Height).Run(result)

	out, err := json.MarshalIndent(scenes, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
