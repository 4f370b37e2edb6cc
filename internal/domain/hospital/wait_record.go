package hospital

import (
	"fmt"
	"time"

	"github.com/medirank/service-hospital/internal/domain"
)

// Camera reading statuses.
const (
	CameraStatusOK     = "ok"
	CameraStatusFailed = "failed"
)

// CameraReading is the per-camera breakdown inside a wait record. A failed
// camera contributes zero people and keeps its slot in the sequence.
type CameraReading struct {
	CameraID string `json:"camera_id"`
	People   int    `json:"people"`
	Status   string `json:"status"`
}

// WaitRecord is the cached wait estimate for one hospital. EstimatedWaitMinutes
// is always People times PerPersonMinutes at the time of write, never set
// independently. Records are overwritten in place, last write wins, and live
// for the lifetime of the process.
type WaitRecord struct {
	HospitalID           string          `json:"hospital_id"`
	People               int             `json:"people"`
	PerPersonMinutes     int             `json:"per_person_minutes"`
	EstimatedWaitMinutes int             `json:"estimated_wait_minutes"`
	Cameras              []CameraReading `json:"cameras"`
	Timestamp            time.Time       `json:"ts"`
}

// NewWaitRecord builds a wait record, computing the estimate and stamping the
// current time.
func NewWaitRecord(hospitalID string, people, perPersonMinutes int, cameras []CameraReading) (WaitRecord, error) {
	if hospitalID == "" {
		return WaitRecord{}, domain.NewValidationError("hospital ID is required")
	}
	if people < 0 {
		return WaitRecord{}, domain.NewValidationError("people count cannot be negative")
	}
	if perPersonMinutes < 1 || perPersonMinutes > 60 {
		return WaitRecord{}, domain.NewValidationError(
			fmt.Sprintf("per-person minutes must be between 1 and 60, got %d", perPersonMinutes))
	}

	return WaitRecord{
		HospitalID:           hospitalID,
		People:               people,
		PerPersonMinutes:     perPersonMinutes,
		EstimatedWaitMinutes: people * perPersonMinutes,
		Cameras:              cameras,
		Timestamp:            time.Now().UTC(),
	}, nil
}

// WaitStore is the in-process cache of the most recent wait record per
// hospital. Set fully replaces any prior record for that id; readers never
// observe a partially written record. There is no eviction and no expiry.
type WaitStore interface {
	// Get returns the most recent record for the hospital, if any.
	Get(hospitalID string) (WaitRecord, bool)

	// Set computes and stores a fresh record for the hospital, replacing any
	// prior record, and returns the stored record.
	Set(hospitalID string, people, perPersonMinutes int, cameras []CameraReading) (WaitRecord, error)

	// Has reports whether a record exists for the hospital.
	Has(hospitalID string) bool
}
