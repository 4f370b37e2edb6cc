package application

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/domain"
	"github.com/medirank/service-hospital/internal/domain/hospital"
	"github.com/medirank/service-hospital/internal/events"
	"github.com/medirank/service-hospital/internal/vision"
)

// PushFramesRequest is the body of POST /camera-frame.
type PushFramesRequest struct {
	HospitalID       string   `json:"hospital_id"`
	ImagesB64        []string `json:"images_b64"`
	PerPersonMinutes *int     `json:"per_person_minutes"`
}

const defaultPerPersonMinutes = 10

// CameraService handles camera-frame pushes and wait-estimate reads.
type CameraService struct {
	store     hospital.WaitStore
	estimator vision.Estimator
	publisher *events.WaitEventPublisher
	logger    *zap.Logger
}

// NewCameraService creates a CameraService. estimator may be nil when no
// counting engine is configured; pushes then fail with OccupancyUnavailable.
func NewCameraService(
	store hospital.WaitStore,
	estimator vision.Estimator,
	publisher *events.WaitEventPublisher,
	logger *zap.Logger,
) *CameraService {
	return &CameraService{
		store:     store,
		estimator: estimator,
		publisher: publisher,
		logger:    logger,
	}
}

// PushFrames counts people across the pushed frames, stores the resulting
// wait record (replacing any prior record for the hospital) and returns it.
// A frame the estimator cannot count contributes zero and is marked failed.
func (s *CameraService) PushFrames(ctx context.Context, req PushFramesRequest) (*hospital.WaitRecord, error) {
	if req.HospitalID == "" {
		return nil, domain.NewValidationError("hospital_id required")
	}
	if len(req.ImagesB64) == 0 {
		return nil, domain.NewValidationError("images_b64 required")
	}

	perPerson := defaultPerPersonMinutes
	if req.PerPersonMinutes != nil {
		perPerson = *req.PerPersonMinutes
	}
	if perPerson < 1 || perPerson > 60 {
		return nil, domain.NewValidationError(
			fmt.Sprintf("per_person_minutes must be between 1 and 60, got %d", perPerson))
	}

	if s.estimator == nil {
		return nil, domain.NewOccupancyUnavailableError("no occupancy estimator configured")
	}

	readings := make([]hospital.CameraReading, len(req.ImagesB64))
	total := 0
	for i, b64 := range req.ImagesB64 {
		cameraID := fmt.Sprintf("cam-%d", i+1)

		image, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, domain.NewValidationError(
				fmt.Sprintf("images_b64[%d] is not valid base64", i))
		}

		people, err := s.estimator.CountPeople(ctx, image)
		if err != nil {
			if errors.Is(err, vision.ErrUnavailable) {
				return nil, domain.NewOccupancyUnavailableError(err.Error())
			}
			s.logger.Warn("people count failed for pushed frame",
				zap.String("hospital_id", req.HospitalID),
				zap.String("camera_id", cameraID),
				zap.Error(err),
			)
			readings[i] = hospital.CameraReading{CameraID: cameraID, Status: hospital.CameraStatusFailed}
			continue
		}

		readings[i] = hospital.CameraReading{CameraID: cameraID, People: people, Status: hospital.CameraStatusOK}
		total += people
	}

	rec, err := s.store.Set(req.HospitalID, total, perPerson, readings)
	if err != nil {
		return nil, err
	}
	s.publisher.PublishWaitUpdated(ctx, rec)

	s.logger.Info("camera frames stored",
		zap.String("hospital_id", req.HospitalID),
		zap.Int("people", rec.People),
		zap.Int("cameras", len(readings)),
	)
	return &rec, nil
}

// LatestEstimate returns the most recent stored wait record for a hospital.
func (s *CameraService) LatestEstimate(ctx context.Context, hospitalID string) (*hospital.WaitRecord, error) {
	if hospitalID == "" {
		return nil, domain.NewValidationError("hospital_id required")
	}

	rec, ok := s.store.Get(hospitalID)
	if !ok {
		return nil, domain.NewNotFoundError("no upload yet for this hospital")
	}
	return &rec, nil
}
