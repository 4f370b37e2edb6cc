package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/domain"
	"github.com/medirank/service-hospital/internal/domain/hospital"
)

// PlaceSearcher is the contract for the place-search provider.
type PlaceSearcher interface {
	SearchNearbyHospitals(ctx context.Context, lat, lng float64, maxResults int) ([]hospital.Candidate, error)
}

// RouteMatrixer is the contract for the travel-time provider.
type RouteMatrixer interface {
	ComputeRouteMatrix(ctx context.Context, originLat, originLng float64, destinations []hospital.Candidate) ([]hospital.RouteResult, error)
}

// NearbyRequest is the body of POST /nearby-hospitals.
type NearbyRequest struct {
	Lat        *float64 `json:"lat" binding:"required"`
	Lng        *float64 `json:"lng" binding:"required"`
	MaxResults *int     `json:"max_results"`
}

// NearbyResponse is the ranked, enriched result list.
type NearbyResponse struct {
	Count     int                         `json:"count"`
	Hospitals []hospital.EnrichedHospital `json:"hospitals"`
}

const (
	defaultMaxResults = 20
	maxMaxResults     = 20
)

// RankingService orchestrates the enrichment and ranking pipeline: fetch
// candidates, fetch the route matrix, correlate by index, sort, designate the
// live hospital, resolve occupancy per hospital, respond. A provider failure
// aborts the whole request; a single hospital's occupancy failure does not.
type RankingService struct {
	places         PlaceSearcher
	routes         RouteMatrixer
	resolver       *OccupancyResolver
	liveHospitalID string
	logger         *zap.Logger
}

// NewRankingService creates a RankingService. liveHospitalID optionally pins
// which hospital receives the live camera reading.
func NewRankingService(
	places PlaceSearcher,
	routes RouteMatrixer,
	resolver *OccupancyResolver,
	liveHospitalID string,
	logger *zap.Logger,
) *RankingService {
	return &RankingService{
		places:         places,
		routes:         routes,
		resolver:       resolver,
		liveHospitalID: liveHospitalID,
		logger:         logger,
	}
}

// RankNearby runs the full pipeline for one caller coordinate.
func (s *RankingService) RankNearby(ctx context.Context, req NearbyRequest) (*NearbyResponse, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, domain.NewValidationError("lat and lng are required")
	}

	maxResults := defaultMaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}
	if maxResults < 1 || maxResults > maxMaxResults {
		return nil, domain.NewValidationError(
			fmt.Sprintf("max_results must be between 1 and %d, got %d", maxMaxResults, maxResults))
	}

	candidates, err := s.places.SearchNearbyHospitals(ctx, *req.Lat, *req.Lng, maxResults)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &NearbyResponse{Count: 0, Hospitals: []hospital.EnrichedHospital{}}, nil
	}

	routes, err := s.routes.ComputeRouteMatrix(ctx, *req.Lat, *req.Lng, candidates)
	if err != nil {
		return nil, err
	}

	rows, err := hospital.CorrelateRoutes(candidates, routes)
	if err != nil {
		return nil, err
	}
	hospital.SortByETA(rows)

	// Designated once per request, after ranking, so "first ranked" is
	// stable for this result set.
	liveID := s.designateLive(rows)

	for i := range rows {
		rec, source := s.resolver.Resolve(ctx, rows[i].HospitalID, rows[i].HospitalID == liveID)
		if rec == nil {
			continue
		}
		rows[i].People = &rec.People
		rows[i].PerPersonMinutes = &rec.PerPersonMinutes
		rows[i].EstimatedWaitMinutes = &rec.EstimatedWaitMinutes
		rows[i].OccupancySource = string(source)
	}

	s.logger.Info("nearby ranking completed",
		zap.Int("candidates", len(candidates)),
		zap.String("live_hospital_id", liveID),
	)
	return &NearbyResponse{Count: len(rows), Hospitals: rows}, nil
}

// designateLive picks the hospital that gets a fresh camera reading: the
// configured id when present in the result set, otherwise the first hospital
// in ranked order.
func (s *RankingService) designateLive(rows []hospital.EnrichedHospital) string {
	if s.liveHospitalID != "" {
		for _, row := range rows {
			if row.HospitalID == s.liveHospitalID {
				return s.liveHospitalID
			}
		}
	}
	if len(rows) > 0 {
		return rows[0].HospitalID
	}
	return ""
}
