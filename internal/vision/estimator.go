package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable indicates the counting engine is not ready to serve. Callers
// treat the whole capture attempt as failed and fall back to other occupancy
// sources.
var ErrUnavailable = errors.New("occupancy estimator unavailable")

// Estimator counts people in a single camera frame. Implementations are
// opaque; the service only cares about the count.
type Estimator interface {
	CountPeople(ctx context.Context, image []byte) (int, error)
}

const remoteTimeout = 15 * time.Second

// RemoteEstimator delegates people counting to an external inference
// endpoint: POST {"image_b64": ...} returning {"people": n}.
type RemoteEstimator struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRemoteEstimator creates a RemoteEstimator for the given inference URL.
func NewRemoteEstimator(url string, logger *zap.Logger) *RemoteEstimator {
	return &RemoteEstimator{
		url:        url,
		httpClient: &http.Client{Timeout: remoteTimeout},
		logger:     logger,
	}
}

type countRequest struct {
	ImageB64 string `json:"image_b64"`
}

type countResponse struct {
	People int `json:"people"`
}

// CountPeople sends the frame to the inference endpoint and returns the
// people count. Transport failures and 5xx responses surface as
// ErrUnavailable; other non-success responses fail just this frame.
func (e *RemoteEstimator) CountPeople(ctx context.Context, image []byte) (int, error) {
	payload, err := json.Marshal(countRequest{
		ImageB64: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode count request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build count request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("count response read failed: %w", err)
	}
	if resp.StatusCode >= 500 {
		return 0, fmt.Errorf("%w: inference returned status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("inference returned status %d: %s", resp.StatusCode, string(body))
	}

	var out countResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("malformed count response: %w", err)
	}
	if out.People < 0 {
		return 0, fmt.Errorf("inference returned negative count %d", out.People)
	}
	return out.People, nil
}
