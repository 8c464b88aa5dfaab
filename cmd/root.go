package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reframer",
	Short: "A video analysis pipeline for automated reframing",
	Long: `Reframer analyzes a video and produces stable face and person tracks
usable for automated reframing: it detects scenes, samples sparse keyframes,
links detections into persistent tracks, and emits fixed and per-frame crop
boxes for every subject.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
