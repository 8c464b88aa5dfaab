package web

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/kozaktomas/reframer/internal/cache"
	"github.com/kozaktomas/reframer/internal/config"
	"github.com/kozaktomas/reframer/internal/download"
	"github.com/kozaktomas/reframer/internal/format"
	"github.com/kozaktomas/reframer/internal/pipeline"
)

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ProcessHandler runs the full pipeline for a posted video URL. The served
// context is stateless: every request gets a throwaway workspace and the
// no-op cache, so nothing persists between requests.
type ProcessHandler struct {
	config *config.Config
	vision pipeline.Vision
}

// NewProcessHandler creates the process handler.
func NewProcessHandler(cfg *config.Config, vision pipeline.Vision) *ProcessHandler {
	return &ProcessHandler{config: cfg, vision: vision}
}

// Process handles POST /process. The request body carries the video URL plus
// optional per-request tuning overrides in the same shape as the defaults
// file; overrides are merged over the server's base tuning for this request
// only.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var req struct {
		VideoURL string `json:"video_url"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.VideoURL == "" {
		respondError(w, http.StatusBadRequest, "request must include 'video_url' in JSON body")
		return
	}

	tuning := h.config.Tuning
	if err := tuning.ApplyJSONOverrides(body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	workDir, err := os.MkdirTemp("", "reframer-*")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create workspace")
		return
	}
	defer os.RemoveAll(workDir)

	localPath, err := download.Video(r.Context(), req.VideoURL, workDir)
	if err != nil {
		log.Printf("web: download failed for %s: %v", req.VideoURL, err)
		respondError(w, http.StatusBadRequest, "failed to download video from URL")
		return
	}

	p := pipeline.New(localPath, workDir, tuning, cache.NewNoop(), h.vision)
	result, err := p.Run(r.Context(), localPath)
	if err != nil {
		log.Printf("web: pipeline failed for %s: %v", req.VideoURL, err)
		respondError(w, http.StatusInternalServerError, "pipeline execution failed")
		return
	}

	formatter := format.New(result.Media.FPS, result.Media.Width, result.Media.Height)
	respondJSON(w, http.StatusOK, formatter.Run(result))
}
