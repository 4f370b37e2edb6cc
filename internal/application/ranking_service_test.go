package application

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/domain"
	"github.com/medirank/service-hospital/internal/domain/hospital"
	"github.com/medirank/service-hospital/internal/provider"
	"github.com/medirank/service-hospital/internal/repository"
)

type fakePlaces struct {
	candidates []hospital.Candidate
	err        error
	gotMax     int
}

func (f *fakePlaces) SearchNearbyHospitals(_ context.Context, _, _ float64, maxResults int) ([]hospital.Candidate, error) {
	f.gotMax = maxResults
	return f.candidates, f.err
}

type fakeRoutes struct {
	results []hospital.RouteResult
	err     error
	called  bool
}

func (f *fakeRoutes) ComputeRouteMatrix(_ context.Context, _, _ float64, _ []hospital.Candidate) ([]hospital.RouteResult, error) {
	f.called = true
	return f.results, f.err
}

func newTestRankingService(places PlaceSearcher, routes RouteMatrixer, liveID string, cfg ResolverConfig) *RankingService {
	log := zap.NewNop()
	resolver := NewOccupancyResolver(
		repository.NewInMemoryWaitStore(),
		nil,
		provider.NewFrameFetcher(log),
		nil,
		cfg,
		rand.New(rand.NewSource(7)),
		log,
	)
	return NewRankingService(places, routes, resolver, liveID, log)
}

func nearbyReq(lat, lng float64) NearbyRequest {
	return NearbyRequest{Lat: &lat, Lng: &lng}
}

func TestRankNearby_EndToEndScenario(t *testing.T) {
	dist := 5.0
	eta := 10.0
	places := &fakePlaces{candidates: []hospital.Candidate{
		{Index: 0, ID: "H1", Name: "Hospital One"},
		{Index: 1, ID: "H2", Name: "Hospital Two"},
	}}
	routes := &fakeRoutes{results: []hospital.RouteResult{
		{DestinationIndex: 0, DistanceKm: &dist, ETAMinutes: &eta, RouteExists: true},
	}}

	cfg := ResolverConfig{SyntheticEnabled: false}
	svc := newTestRankingService(places, routes, "", cfg)

	resp, err := svc.RankNearby(context.Background(), nearbyReq(3.139, 101.6869))
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)

	first := resp.Hospitals[0]
	assert.Equal(t, "H1", first.HospitalID)
	require.NotNil(t, first.DistanceKm)
	require.NotNil(t, first.ETAMinutes)
	assert.Equal(t, 5.0, *first.DistanceKm)
	assert.Equal(t, 10.0, *first.ETAMinutes)

	second := resp.Hospitals[1]
	assert.Equal(t, "H2", second.HospitalID)
	assert.Nil(t, second.DistanceKm)
	assert.Nil(t, second.ETAMinutes)
}

func TestRankNearby_SparseMatrixRanksKnownETAFirst(t *testing.T) {
	places := &fakePlaces{candidates: []hospital.Candidate{
		{Index: 0, ID: "A"}, {Index: 1, ID: "B"}, {Index: 2, ID: "C"}, {Index: 3, ID: "D"},
	}}
	d1, e1 := 2.0, 8.0
	d3, e3 := 4.0, 3.0
	routes := &fakeRoutes{results: []hospital.RouteResult{
		{DestinationIndex: 1, DistanceKm: &d1, ETAMinutes: &e1, RouteExists: true},
		{DestinationIndex: 3, DistanceKm: &d3, ETAMinutes: &e3, RouteExists: true},
	}}

	svc := newTestRankingService(places, routes, "", ResolverConfig{})
	resp, err := svc.RankNearby(context.Background(), nearbyReq(0, 0))
	require.NoError(t, err)

	ids := []string{
		resp.Hospitals[0].HospitalID,
		resp.Hospitals[1].HospitalID,
		resp.Hospitals[2].HospitalID,
		resp.Hospitals[3].HospitalID,
	}
	// D (eta 3) before B (eta 8); null-ETA rows keep candidate order.
	assert.Equal(t, []string{"D", "B", "A", "C"}, ids)
	assert.NotNil(t, resp.Hospitals[0].ETAMinutes)
	assert.NotNil(t, resp.Hospitals[1].ETAMinutes)
	assert.Nil(t, resp.Hospitals[2].ETAMinutes)
	assert.Nil(t, resp.Hospitals[3].ETAMinutes)
}

func TestRankNearby_PlaceSearchFailureAborts(t *testing.T) {
	places := &fakePlaces{err: domain.NewProviderError("place-search", 403, "denied")}
	routes := &fakeRoutes{}

	svc := newTestRankingService(places, routes, "", ResolverConfig{})
	_, err := svc.RankNearby(context.Background(), nearbyReq(0, 0))

	var providerErr *domain.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, 403, providerErr.StatusCode)
	assert.False(t, routes.called)
}

func TestRankNearby_RouteMatrixFailureAborts(t *testing.T) {
	places := &fakePlaces{candidates: []hospital.Candidate{{Index: 0, ID: "H1"}}}
	routes := &fakeRoutes{err: domain.NewProviderError("route-matrix", 500, "boom")}

	svc := newTestRankingService(places, routes, "", ResolverConfig{})
	_, err := svc.RankNearby(context.Background(), nearbyReq(0, 0))

	var providerErr *domain.ProviderError
	assert.ErrorAs(t, err, &providerErr)
}

func TestRankNearby_NoCandidatesShortCircuits(t *testing.T) {
	places := &fakePlaces{}
	routes := &fakeRoutes{}

	svc := newTestRankingService(places, routes, "", ResolverConfig{})
	resp, err := svc.RankNearby(context.Background(), nearbyReq(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Hospitals)
	assert.False(t, routes.called)
}

func TestRankNearby_MaxResultsValidation(t *testing.T) {
	svc := newTestRankingService(&fakePlaces{}, &fakeRoutes{}, "", ResolverConfig{})

	for _, bad := range []int{0, -3, 21, 100} {
		req := nearbyReq(0, 0)
		req.MaxResults = &bad
		_, err := svc.RankNearby(context.Background(), req)

		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}
}

func TestRankNearby_MissingCoordinates(t *testing.T) {
	svc := newTestRankingService(&fakePlaces{}, &fakeRoutes{}, "", ResolverConfig{})

	_, err := svc.RankNearby(context.Background(), NearbyRequest{})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRankNearby_DefaultsMaxResultsTo20(t *testing.T) {
	places := &fakePlaces{}
	svc := newTestRankingService(places, &fakeRoutes{}, "", ResolverConfig{})

	_, err := svc.RankNearby(context.Background(), nearbyReq(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 20, places.gotMax)
}

func TestDesignateLive_ConfiguredIDWinsWhenPresent(t *testing.T) {
	svc := newTestRankingService(&fakePlaces{}, &fakeRoutes{}, "H2", ResolverConfig{})

	rows := []hospital.EnrichedHospital{
		{HospitalID: "H1"}, {HospitalID: "H2"}, {HospitalID: "H3"},
	}
	assert.Equal(t, "H2", svc.designateLive(rows))
}

func TestDesignateLive_FallsBackToFirstRanked(t *testing.T) {
	svc := newTestRankingService(&fakePlaces{}, &fakeRoutes{}, "NOT-IN-SET", ResolverConfig{})

	rows := []hospital.EnrichedHospital{
		{HospitalID: "H1"}, {HospitalID: "H2"},
	}
	assert.Equal(t, "H1", svc.designateLive(rows))
	assert.Empty(t, svc.designateLive(nil))
}

// The designated hospital, and only it, receives a live camera reading.
func TestRankNearby_LiveReadingGoesToDesignatedHospital(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	places := &fakePlaces{candidates: []hospital.Candidate{
		{Index: 0, ID: "H1"},
		{Index: 1, ID: "H2"},
	}}
	routes := &fakeRoutes{}

	log := zap.NewNop()
	cfg := ResolverConfig{
		SyntheticEnabled:     true,
		PeopleMin:            1,
		PeopleMax:            2,
		MinutesMin:           1,
		MinutesMax:           2,
		CameraURLs:           []string{srv.URL},
		LivePerPersonMinutes: 10,
	}
	resolver := NewOccupancyResolver(
		repository.NewInMemoryWaitStore(),
		&stubEstimator{people: 5},
		provider.NewFrameFetcher(log),
		nil,
		cfg,
		rand.New(rand.NewSource(7)),
		log,
	)
	svc := NewRankingService(places, routes, resolver, "H2", log)

	resp, err := svc.RankNearby(context.Background(), nearbyReq(0, 0))
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)

	bySource := map[string]string{}
	for _, row := range resp.Hospitals {
		bySource[row.HospitalID] = row.OccupancySource
	}
	assert.Equal(t, string(SourceLive), bySource["H2"])
	assert.Equal(t, string(SourceSynthetic), bySource["H1"])
}
