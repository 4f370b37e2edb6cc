package repository

import (
	"sync"

	"github.com/medirank/service-hospital/internal/domain/hospital"
)

// InMemoryWaitStore implements hospital.WaitStore with a mutex-guarded map.
// Writes replace the whole record atomically, so concurrent readers never see
// fields from two different writes. Unbounded by design: the key space is the
// set of distinct hospital ids seen by this process.
type InMemoryWaitStore struct {
	mu      sync.RWMutex
	records map[string]hospital.WaitRecord
}

// NewInMemoryWaitStore creates an empty wait store.
func NewInMemoryWaitStore() *InMemoryWaitStore {
	return &InMemoryWaitStore{
		records: make(map[string]hospital.WaitRecord),
	}
}

// Get returns a copy of the most recent record for the hospital, if any.
func (s *InMemoryWaitStore) Get(hospitalID string) (hospital.WaitRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[hospitalID]
	if !ok {
		return hospital.WaitRecord{}, false
	}
	return copyRecord(rec), true
}

// Set computes a fresh record and stores it, fully replacing any prior record
// for the hospital. The stored record is returned.
func (s *InMemoryWaitStore) Set(hospitalID string, people, perPersonMinutes int, cameras []hospital.CameraReading) (hospital.WaitRecord, error) {
	rec, err := hospital.NewWaitRecord(hospitalID, people, perPersonMinutes, cameras)
	if err != nil {
		return hospital.WaitRecord{}, err
	}

	stored := copyRecord(rec)

	s.mu.Lock()
	s.records[hospitalID] = stored
	s.mu.Unlock()

	return rec, nil
}

// Has reports whether a record exists for the hospital.
func (s *InMemoryWaitStore) Has(hospitalID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[hospitalID]
	return ok
}

// copyRecord clones the camera slice so callers cannot alias stored state.
func copyRecord(rec hospital.WaitRecord) hospital.WaitRecord {
	if rec.Cameras != nil {
		cams := make([]hospital.CameraReading, len(rec.Cameras))
		copy(cams, rec.Cameras)
		rec.Cameras = cams
	}
	return rec
}
