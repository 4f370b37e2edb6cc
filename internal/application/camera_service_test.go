package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/domain"
	"github.com/medirank/service-hospital/internal/domain/hospital"
	"github.com/medirank/service-hospital/internal/repository"
	"github.com/medirank/service-hospital/internal/vision"
)

func encodeFrame(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}

func intPtr(v int) *int { return &v }

func TestPushFrames_SumsAcrossImages(t *testing.T) {
	store := repository.NewInMemoryWaitStore()
	svc := NewCameraService(store, &stubEstimator{people: 3}, nil, zap.NewNop())

	rec, err := svc.PushFrames(context.Background(), PushFramesRequest{
		HospitalID:       "H1",
		ImagesB64:        []string{encodeFrame("frame-one"), encodeFrame("frame-two")},
		PerPersonMinutes: intPtr(10),
	})
	require.NoError(t, err)

	assert.Equal(t, "H1", rec.HospitalID)
	assert.Equal(t, 6, rec.People)
	assert.Equal(t, 10, rec.PerPersonMinutes)
	assert.Equal(t, 60, rec.EstimatedWaitMinutes)
	require.Len(t, rec.Cameras, 2)
	assert.Equal(t, "cam-1", rec.Cameras[0].CameraID)
	assert.Equal(t, "cam-2", rec.Cameras[1].CameraID)

	stored, ok := store.Get("H1")
	require.True(t, ok)
	assert.Equal(t, *rec, stored)
}

func TestPushFrames_DefaultsPerPersonMinutes(t *testing.T) {
	svc := NewCameraService(repository.NewInMemoryWaitStore(), &stubEstimator{people: 1}, nil, zap.NewNop())

	rec, err := svc.PushFrames(context.Background(), PushFramesRequest{
		HospitalID: "H1",
		ImagesB64:  []string{encodeFrame("frame")},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, rec.PerPersonMinutes)
}

func TestPushFrames_Validation(t *testing.T) {
	svc := NewCameraService(repository.NewInMemoryWaitStore(), &stubEstimator{people: 1}, nil, zap.NewNop())

	cases := []PushFramesRequest{
		{HospitalID: "", ImagesB64: []string{encodeFrame("f")}},
		{HospitalID: "H1", ImagesB64: nil},
		{HospitalID: "H1", ImagesB64: []string{encodeFrame("f")}, PerPersonMinutes: intPtr(0)},
		{HospitalID: "H1", ImagesB64: []string{encodeFrame("f")}, PerPersonMinutes: intPtr(61)},
		{HospitalID: "H1", ImagesB64: []string{"%%% not base64 %%%"}},
	}
	for i, req := range cases {
		_, err := svc.PushFrames(context.Background(), req)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr, "case %d", i)
	}
}

func TestPushFrames_NoEstimatorIsUnavailable(t *testing.T) {
	svc := NewCameraService(repository.NewInMemoryWaitStore(), nil, nil, zap.NewNop())

	_, err := svc.PushFrames(context.Background(), PushFramesRequest{
		HospitalID: "H1",
		ImagesB64:  []string{encodeFrame("frame")},
	})

	var unavailableErr *domain.OccupancyUnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
}

func TestPushFrames_EstimatorUnavailableMidBatch(t *testing.T) {
	svc := NewCameraService(
		repository.NewInMemoryWaitStore(),
		&stubEstimator{err: fmt.Errorf("%w: warming up", vision.ErrUnavailable)},
		nil,
		zap.NewNop(),
	)

	_, err := svc.PushFrames(context.Background(), PushFramesRequest{
		HospitalID: "H1",
		ImagesB64:  []string{encodeFrame("frame")},
	})

	var unavailableErr *domain.OccupancyUnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
}

type flakyEstimator struct {
	calls int
}

func (f *flakyEstimator) CountPeople(_ context.Context, _ []byte) (int, error) {
	f.calls++
	if f.calls == 2 {
		return 0, fmt.Errorf("unreadable frame")
	}
	return 5, nil
}

func TestPushFrames_UncountableFrameMarkedFailed(t *testing.T) {
	svc := NewCameraService(repository.NewInMemoryWaitStore(), &flakyEstimator{}, nil, zap.NewNop())

	rec, err := svc.PushFrames(context.Background(), PushFramesRequest{
		HospitalID: "H1",
		ImagesB64:  []string{encodeFrame("a"), encodeFrame("b"), encodeFrame("c")},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, rec.People)
	require.Len(t, rec.Cameras, 3)
	assert.Equal(t, hospital.CameraStatusOK, rec.Cameras[0].Status)
	assert.Equal(t, hospital.CameraStatusFailed, rec.Cameras[1].Status)
	assert.Equal(t, hospital.CameraStatusOK, rec.Cameras[2].Status)
}

func TestLatestEstimate_ReturnsStoredRecord(t *testing.T) {
	store := repository.NewInMemoryWaitStore()
	seeded, err := store.Set("H1", 4, 12, nil)
	require.NoError(t, err)

	svc := NewCameraService(store, nil, nil, zap.NewNop())

	rec, err := svc.LatestEstimate(context.Background(), "H1")
	require.NoError(t, err)
	assert.Equal(t, seeded, *rec)
}

func TestLatestEstimate_UnknownHospitalIsNotFound(t *testing.T) {
	svc := NewCameraService(repository.NewInMemoryWaitStore(), nil, nil, zap.NewNop())

	_, err := svc.LatestEstimate(context.Background(), "UNKNOWN")

	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
