package hospital

import (
	"fmt"
	"sort"

	"github.com/medirank/service-hospital/internal/domain"
)

// CorrelateRoutes joins candidates with route-matrix rows by destination
// index. The matrix may be sparse or out of order; a candidate with no valid
// row gets nil distance and ETA, which is not an error. A row whose index
// falls outside the candidate list is a malformed provider response and
// aborts the request. Duplicate indices are last-write-wins.
func CorrelateRoutes(candidates []Candidate, routes []RouteResult) ([]EnrichedHospital, error) {
	byIndex := make(map[int]RouteResult, len(routes))
	for _, r := range routes {
		if r.DestinationIndex < 0 || r.DestinationIndex >= len(candidates) {
			return nil, domain.NewProviderError("route-matrix", 502,
				fmt.Sprintf("destination index %d out of range for %d destinations",
					r.DestinationIndex, len(candidates)))
		}
		byIndex[r.DestinationIndex] = r
	}

	rows := make([]EnrichedHospital, len(candidates))
	for i, c := range candidates {
		row := EnrichedHospital{
			HospitalID: c.ID,
			Name:       c.Name,
			Lat:        c.Lat,
			Lng:        c.Lng,
			MapLink:    c.MapLink,
		}
		if r, ok := byIndex[c.Index]; ok && r.RouteExists {
			row.DistanceKm = r.DistanceKm
			row.ETAMinutes = r.ETAMinutes
		}
		rows[i] = row
	}
	return rows, nil
}

// SortByETA orders rows ascending by ETA, ties broken by distance. Rows with
// unknown ETA sort after all rows with a known one; among themselves they
// keep candidate order (the sort is stable).
func SortByETA(rows []EnrichedHospital) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.ETAMinutes == nil && b.ETAMinutes == nil:
			return false
		case a.ETAMinutes == nil:
			return false
		case b.ETAMinutes == nil:
			return true
		case *a.ETAMinutes != *b.ETAMinutes:
			return *a.ETAMinutes < *b.ETAMinutes
		}
		switch {
		case a.DistanceKm == nil && b.DistanceKm == nil:
			return false
		case a.DistanceKm == nil:
			return false
		case b.DistanceKm == nil:
			return true
		}
		return *a.DistanceKm < *b.DistanceKm
	})
}
