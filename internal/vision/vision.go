// Package vision is the HTTP client for the vision sidecar service, which
// owns everything this module treats as external: video decoding, shot
// boundary detection, and the neural face/pose detectors. The sidecar exposes
// a small JSON API; this client wraps it in typed methods.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kozaktomas/reframer/internal/track"
)

const defaultBaseURL = "http://localhost:8400"

// Client talks to the vision sidecar.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a vision client for the given base URL. An empty URL
// falls back to the local default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

// MediaInfo describes a probed video file.
type MediaInfo struct {
	FPS        float64 `json:"fps"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FrameCount int     `json:"frame_count"`
}

// ScoutResult carries the detections found on a set of sampled frames.
// Frame numbers are already set on every detection.
type ScoutResult struct {
	Faces   []track.Detection `json:"faces"`
	Persons []track.Detection `json:"persons"`
}

// Probe returns fps, dimensions and frame count for a local video file.
func (c *Client) Probe(ctx context.Context, mediaPath string) (*MediaInfo, error) {
	endpoint := "/probe?path=" + url.QueryEscape(mediaPath)
	return doGetJSON[MediaInfo](ctx, c, endpoint)
}

// DetectScenes splits a video into contiguous scenes. The sidecar guarantees
// at least one scene for a non-empty video; an empty scene list means the
// video could not be analyzed.
func (c *Client) DetectScenes(ctx context.Context, mediaPath string, threshold float64) ([]track.Scene, error) {
	req := struct {
		MediaPath string  `json:"media_path"`
		Threshold float64 `json:"threshold"`
	}{MediaPath: mediaPath, Threshold: threshold}

	resp, err := doPostJSON[struct {
		Scenes []track.Scene `json:"scenes"`
	}](ctx, c, "/scenes", req)
	if err != nil {
		return nil, err
	}
	return resp.Scenes, nil
}

// Scout runs the face and person detectors on the given frames of a video
// and returns all detections, tagged with their frame numbers.
func (c *Client) Scout(ctx context.Context, mediaPath string, frames []int) (*ScoutResult, error) {
	req := struct {
		MediaPath string `json:"media_path"`
		Frames    []int  `json:"frames"`
	}{MediaPath: mediaPath, Frames: frames}

	return doPostJSON[ScoutResult](ctx, c, "/scout", req)
}

// doGetJSON performs a GET request and unmarshals the JSON response.
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	return doRequest[T](c, req)
}

// doPostJSON performs a POST request with a JSON body and unmarshals the
// JSON response.
func doPostJSON[T any](ctx context.Context, c *Client, endpoint string, body any) (*T, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return doRequest[T](c, req)
}

func doRequest[T any](c *Client, req *http.Request) (*T, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service returned status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// readErrorBody extracts a short error message from a failed response.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(body) == 0 {
		return "no response body"
	}
	return strings.TrimSpace(string(body))
}
