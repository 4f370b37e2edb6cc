package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/domain"
	"github.com/medirank/service-hospital/internal/domain/hospital"
)

const (
	placesBaseURL = "https://places.googleapis.com/v1"

	// Search radius is fixed at 10 km by design.
	searchRadiusMeters = 10_000

	placesTimeout = 12 * time.Second

	// The v1 API requires a field mask; request only what the pipeline needs.
	placesFieldMask = "places.id,places.displayName,places.location,places.googleMapsUri"
)

// PlacesClient queries the place-search provider for hospitals around a
// coordinate. Calls are not retried; a non-success response surfaces as a
// ProviderError carrying the provider's status.
type PlacesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPlacesClient creates a PlacesClient against the real provider endpoint.
func NewPlacesClient(apiKey string, logger *zap.Logger) *PlacesClient {
	return &PlacesClient{
		apiKey:     apiKey,
		baseURL:    placesBaseURL,
		httpClient: &http.Client{Timeout: placesTimeout},
		logger:     logger,
	}
}

// NewPlacesClientWithBaseURL creates a PlacesClient against a custom endpoint.
func NewPlacesClientWithBaseURL(apiKey, baseURL string, logger *zap.Logger) *PlacesClient {
	c := NewPlacesClient(apiKey, logger)
	c.baseURL = baseURL
	return c
}

type searchNearbyRequest struct {
	IncludedTypes       []string            `json:"includedTypes"`
	MaxResultCount      int                 `json:"maxResultCount"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchNearbyResponse struct {
	Places []place `json:"places"`
}

type place struct {
	ID          string       `json:"id"`
	DisplayName *displayName `json:"displayName"`
	Location    *latLng      `json:"location"`
	MapsURI     string       `json:"googleMapsUri"`
}

type displayName struct {
	Text string `json:"text"`
}

// SearchNearbyHospitals returns hospitals within the fixed radius of the
// coordinate, ordered as the provider returned them. Places with no
// resolvable position are dropped silently; the remaining candidates are
// indexed by their position in the returned list.
func (c *PlacesClient) SearchNearbyHospitals(ctx context.Context, lat, lng float64, maxResults int) ([]hospital.Candidate, error) {
	reqBody := searchNearbyRequest{
		IncludedTypes:  []string{"hospital"},
		MaxResultCount: maxResults,
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: latLng{Latitude: lat, Longitude: lng},
				Radius: searchRadiusMeters,
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/places:searchNearby", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", placesFieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError("place-search", http.StatusGatewayTimeout, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError("place-search", resp.StatusCode, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewProviderError("place-search", resp.StatusCode, string(body))
	}

	var out searchNearbyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, domain.NewProviderError("place-search", http.StatusBadGateway,
			fmt.Sprintf("malformed response: %v", err))
	}

	candidates := make([]hospital.Candidate, 0, len(out.Places))
	for _, p := range out.Places {
		if p.Location == nil {
			continue
		}
		name := ""
		if p.DisplayName != nil {
			name = p.DisplayName.Text
		}
		candidates = append(candidates, hospital.Candidate{
			Index:   len(candidates),
			ID:      p.ID,
			Name:    name,
			Lat:     p.Location.Latitude,
			Lng:     p.Location.Longitude,
			MapLink: p.MapsURI,
		})
	}

	c.logger.Debug("place search completed",
		zap.Int("returned", len(out.Places)),
		zap.Int("usable", len(candidates)),
	)
	return candidates, nil
}
