// Package download fetches remote source videos into a local directory so
// the pipeline can hand a file path to the vision sidecar.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var client = &http.Client{Timeout: 30 * time.Minute}

// Video downloads the file at rawURL into dir and returns the local path.
// The filename keeps the URL's base name, prefixed with a short unique id so
// concurrent requests for the same video never collide.
func Video(ctx context.Context, rawURL, dir string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid video URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	name := path.Base(parsed.Path)
	if name == "/" || name == "." || name == "" {
		name = "video.mp4"
	}
	dest := filepath.Join(dir, uuid.NewString()[:8]+"_"+name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("writing video data: %w", err)
	}
	return dest, nil
}
