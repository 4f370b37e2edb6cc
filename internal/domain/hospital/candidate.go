package hospital

// Candidate is a hospital returned by the place-search provider for one
// query. Index is the candidate's position in the search result list and is
// the correlation key into the route matrix. Candidates are request-scoped
// and never persisted.
type Candidate struct {
	Index   int     `json:"index"`
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	MapLink string  `json:"map_link"`
}

// RouteResult is one origin-destination attempt from the travel-time
// provider. DistanceKm and ETAMinutes are nil when the provider signalled an
// error or no route exists for that destination.
type RouteResult struct {
	DestinationIndex int      `json:"destination_index"`
	DistanceKm       *float64 `json:"distance_km"`
	ETAMinutes       *float64 `json:"eta_minutes"`
	RouteExists      bool     `json:"route_exists"`
}

// EnrichedHospital is one response row: candidate fields plus route fields
// (nil when no route) plus occupancy fields copied from the resolved wait
// record (nil when no occupancy signal was available). Recomputed per
// request, never stored.
type EnrichedHospital struct {
	HospitalID           string   `json:"hospital_id"`
	Name                 string   `json:"hospital_name"`
	Lat                  float64  `json:"lat"`
	Lng                  float64  `json:"lng"`
	MapLink              string   `json:"google_maps_location_link"`
	DistanceKm           *float64 `json:"distance_km"`
	ETAMinutes           *float64 `json:"eta_minutes"`
	People               *int     `json:"people,omitempty"`
	PerPersonMinutes     *int     `json:"per_person_minutes,omitempty"`
	EstimatedWaitMinutes *int     `json:"estimated_wait_minutes,omitempty"`
	OccupancySource      string   `json:"occupancy_source,omitempty"`
}
