package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medirank/service-hospital/internal/domain"
	"github.com/medirank/service-hospital/internal/domain/hospital"
	"github.com/medirank/service-hospital/internal/events"
	"github.com/medirank/service-hospital/internal/provider"
	"github.com/medirank/service-hospital/internal/vision"
)

// OccupancySource identifies where a resolved occupancy figure came from.
type OccupancySource string

const (
	SourceLive      OccupancySource = "live"
	SourceCache     OccupancySource = "cache"
	SourceSynthetic OccupancySource = "synthetic"
)

// ResolverConfig holds the resolver's tunables.
type ResolverConfig struct {
	SyntheticEnabled bool
	PeopleMin        int
	PeopleMax        int
	MinutesMin       int
	MinutesMax       int

	CameraURLs           []string
	LivePerPersonMinutes int
}

// OccupancyResolver produces a current occupancy figure for one hospital,
// in precedence order: a just-captured live camera reading, an existing cache
// entry, a synthetic estimate. Every computed value is written through to the
// wait store.
type OccupancyResolver struct {
	store     hospital.WaitStore
	estimator vision.Estimator
	frames    *provider.FrameFetcher
	publisher *events.WaitEventPublisher
	cfg       ResolverConfig
	logger    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOccupancyResolver creates an OccupancyResolver. The random source is
// injected so tests can seed it; estimator may be nil when no counting engine
// is configured.
func NewOccupancyResolver(
	store hospital.WaitStore,
	estimator vision.Estimator,
	frames *provider.FrameFetcher,
	publisher *events.WaitEventPublisher,
	cfg ResolverConfig,
	rng *rand.Rand,
	logger *zap.Logger,
) *OccupancyResolver {
	return &OccupancyResolver{
		store:     store,
		estimator: estimator,
		frames:    frames,
		publisher: publisher,
		cfg:       cfg,
		rng:       rng,
		logger:    logger,
	}
}

// Resolve returns the occupancy record for a hospital, or nil when no source
// could produce one. live marks the single hospital designated to receive a
// fresh camera reading this request. A failed live attempt falls through to
// the synthetic source for this hospital only.
func (r *OccupancyResolver) Resolve(ctx context.Context, hospitalID string, live bool) (*hospital.WaitRecord, OccupancySource) {
	if live && len(r.cfg.CameraURLs) > 0 {
		rec, err := r.captureLive(ctx, hospitalID)
		if err == nil {
			return &rec, SourceLive
		}
		r.logger.Warn("live capture failed",
			zap.String("hospital_id", hospitalID),
			zap.Error(err),
		)
		return r.synthetic(ctx, hospitalID)
	}

	if rec, ok := r.store.Get(hospitalID); ok {
		return &rec, SourceCache
	}

	return r.synthetic(ctx, hospitalID)
}

// captureLive fetches every configured camera frame concurrently, counts
// people per frame, sums the counts and writes the record through. Frames
// that fail to fetch or fail counting contribute zero and are marked failed;
// only estimator unavailability fails the whole attempt.
func (r *OccupancyResolver) captureLive(ctx context.Context, hospitalID string) (hospital.WaitRecord, error) {
	if r.estimator == nil {
		return hospital.WaitRecord{}, domain.NewOccupancyUnavailableError("no occupancy estimator configured")
	}

	readings := make([]hospital.CameraReading, len(r.cfg.CameraURLs))
	g, gctx := errgroup.WithContext(ctx)

	for i, url := range r.cfg.CameraURLs {
		g.Go(func() error {
			cameraID := fmt.Sprintf("cam-%d", i+1)

			frame, err := r.frames.FetchFrame(gctx, url)
			if err != nil {
				r.logger.Warn("camera frame fetch failed",
					zap.String("hospital_id", hospitalID),
					zap.String("camera_id", cameraID),
					zap.Error(err),
				)
				readings[i] = hospital.CameraReading{CameraID: cameraID, Status: hospital.CameraStatusFailed}
				return nil
			}

			people, err := r.estimator.CountPeople(gctx, frame)
			if err != nil {
				if errors.Is(err, vision.ErrUnavailable) {
					return domain.NewOccupancyUnavailableError(err.Error())
				}
				r.logger.Warn("people count failed",
					zap.String("hospital_id", hospitalID),
					zap.String("camera_id", cameraID),
					zap.Error(err),
				)
				readings[i] = hospital.CameraReading{CameraID: cameraID, Status: hospital.CameraStatusFailed}
				return nil
			}

			readings[i] = hospital.CameraReading{CameraID: cameraID, People: people, Status: hospital.CameraStatusOK}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return hospital.WaitRecord{}, err
	}

	total := 0
	for _, reading := range readings {
		total += reading.People
	}

	rec, err := r.store.Set(hospitalID, total, r.cfg.LivePerPersonMinutes, readings)
	if err != nil {
		return hospital.WaitRecord{}, err
	}
	r.publisher.PublishWaitUpdated(ctx, rec)
	return rec, nil
}

// synthetic draws people and per-person minutes uniformly from the configured
// inclusive ranges and writes the record through. Returns nil when the
// fallback is disabled.
func (r *OccupancyResolver) synthetic(ctx context.Context, hospitalID string) (*hospital.WaitRecord, OccupancySource) {
	if !r.cfg.SyntheticEnabled {
		return nil, ""
	}

	r.mu.Lock()
	people := r.cfg.PeopleMin + r.rng.Intn(r.cfg.PeopleMax-r.cfg.PeopleMin+1)
	minutes := r.cfg.MinutesMin + r.rng.Intn(r.cfg.MinutesMax-r.cfg.MinutesMin+1)
	r.mu.Unlock()

	rec, err := r.store.Set(hospitalID, people, minutes, nil)
	if err != nil {
		r.logger.Error("failed to store synthetic estimate",
			zap.String("hospital_id", hospitalID),
			zap.Error(err),
		)
		return nil, ""
	}
	r.publisher.PublishWaitUpdated(ctx, rec)
	return &rec, SourceSynthetic
}
