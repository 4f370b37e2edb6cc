package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	frameTimeout = 6 * time.Second

	// Bodies smaller than this cannot be a real camera frame.
	minFrameBytes = 100
)

// FrameFetcher retrieves raw camera frames over HTTP. A fetch that fails or
// returns an implausibly small body is an error for that camera only; it is
// never retried.
type FrameFetcher struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFrameFetcher creates a FrameFetcher.
func NewFrameFetcher(logger *zap.Logger) *FrameFetcher {
	return &FrameFetcher{
		httpClient: &http.Client{Timeout: frameTimeout},
		logger:     logger,
	}
}

// FetchFrame downloads one frame from a camera source URL.
func (f *FrameFetcher) FetchFrame(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build frame request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("frame fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("frame fetch returned status %d", resp.StatusCode)
	}

	frame, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("frame read failed: %w", err)
	}
	if len(frame) < minFrameBytes {
		return nil, fmt.Errorf("frame too small to be an image: %d bytes", len(frame))
	}
	return frame, nil
}
