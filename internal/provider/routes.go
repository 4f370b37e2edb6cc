package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/domain"
	"github.com/medirank/service-hospital/internal/domain/hospital"
)

const (
	routesBaseURL = "https://routes.googleapis.com"

	routesTimeout = 20 * time.Second

	routesFieldMask = "originIndex,destinationIndex,status,condition,distanceMeters,duration"

	conditionRouteExists = "ROUTE_EXISTS"
)

// RoutesClient queries the travel-time provider for one-to-many driving
// distance and duration. Results come back keyed by destination index, not
// necessarily complete and not necessarily in input order.
type RoutesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRoutesClient creates a RoutesClient against the real provider endpoint.
func NewRoutesClient(apiKey string, logger *zap.Logger) *RoutesClient {
	return &RoutesClient{
		apiKey:     apiKey,
		baseURL:    routesBaseURL,
		httpClient: &http.Client{Timeout: routesTimeout},
		logger:     logger,
	}
}

// NewRoutesClientWithBaseURL creates a RoutesClient against a custom endpoint.
func NewRoutesClientWithBaseURL(apiKey, baseURL string, logger *zap.Logger) *RoutesClient {
	c := NewRoutesClient(apiKey, logger)
	c.baseURL = baseURL
	return c
}

type routeMatrixRequest struct {
	Origins           []waypointWrapper `json:"origins"`
	Destinations      []waypointWrapper `json:"destinations"`
	TravelMode        string            `json:"travelMode"`
	RoutingPreference string            `json:"routingPreference"`
}

type waypointWrapper struct {
	Waypoint waypoint `json:"waypoint"`
}

type waypoint struct {
	Location location `json:"location"`
}

type location struct {
	LatLng latLng `json:"latLng"`
}

type rpcStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type routeMatrixRow struct {
	OriginIndex      int        `json:"originIndex"`
	DestinationIndex int        `json:"destinationIndex"`
	Status           *rpcStatus `json:"status,omitempty"`
	Condition        string     `json:"condition"`
	DistanceMeters   *int       `json:"distanceMeters,omitempty"`
	Duration         string     `json:"duration,omitempty"`
}

// ComputeRouteMatrix returns one RouteResult per row the provider attempted,
// in provider order. Rows with an error status or without an existing route
// are returned with RouteExists=false and nil distance/ETA. An empty
// destination list short-circuits to an empty result without calling the
// provider.
func (c *RoutesClient) ComputeRouteMatrix(ctx context.Context, originLat, originLng float64, destinations []hospital.Candidate) ([]hospital.RouteResult, error) {
	if len(destinations) == 0 {
		return nil, nil
	}

	dests := make([]waypointWrapper, len(destinations))
	for i, d := range destinations {
		dests[i] = waypointWrapper{
			Waypoint: waypoint{Location: location{LatLng: latLng{Latitude: d.Lat, Longitude: d.Lng}}},
		}
	}

	reqBody := routeMatrixRequest{
		Origins: []waypointWrapper{
			{Waypoint: waypoint{Location: location{LatLng: latLng{Latitude: originLat, Longitude: originLng}}}},
		},
		Destinations:      dests,
		TravelMode:        "DRIVE",
		RoutingPreference: "TRAFFIC_AWARE_OPTIMAL",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode route matrix request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/distanceMatrix/v2:computeRouteMatrix", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build route matrix request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", routesFieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError("route-matrix", http.StatusGatewayTimeout, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError("route-matrix", resp.StatusCode, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewProviderError("route-matrix", resp.StatusCode, string(body))
	}

	var rows []routeMatrixRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, domain.NewProviderError("route-matrix", http.StatusBadGateway,
			fmt.Sprintf("malformed response: %v", err))
	}

	results := make([]hospital.RouteResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, toRouteResult(row))
	}

	c.logger.Debug("route matrix completed",
		zap.Int("destinations", len(destinations)),
		zap.Int("rows", len(results)),
	)
	return results, nil
}

func toRouteResult(row routeMatrixRow) hospital.RouteResult {
	result := hospital.RouteResult{DestinationIndex: row.DestinationIndex}

	if row.Status != nil && row.Status.Code != 0 {
		return result
	}
	if row.Condition != conditionRouteExists {
		return result
	}

	result.RouteExists = true
	if row.DistanceMeters != nil {
		km := roundTo(float64(*row.DistanceMeters)/1000.0, 2)
		result.DistanceKm = &km
	}
	if row.Duration != "" {
		if seconds, err := parseDurationSeconds(row.Duration); err == nil {
			minutes := roundTo(seconds/60.0, 1)
			result.ETAMinutes = &minutes
		}
	}
	return result
}

// parseDurationSeconds parses the provider's "123s" / "123.45s" format.
func parseDurationSeconds(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
