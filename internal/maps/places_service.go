package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Place represents a simplified location result.
type Place struct {
	Name    string
	Address string
	Rating  float32
	PlaceID string
}

// PlacesService handles interactions with Google Places API. It backs the
// off-property fallback when a destination is not one of the hotel's own
// locations.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// FindDestination resolves a free-text place name to nearby candidates.
// near biases the search toward the hotel's neighborhood.
func (s *PlacesService) FindDestination(ctx context.Context, query string, near string) ([]Place, error) {
	fullQuery := query
	if near != "" {
		fullQuery = fmt.Sprintf("%s near %s", query, near)
	}

	r := &maps.TextSearchRequest{
		Query:    fullQuery,
		Language: "vi",
		Region:   "VN",
	}

	resp, err := s.client.TextSearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	var results []Place
	for _, result := range resp.Results {
		results = append(results, Place{
			Name:    result.Name,
			Address: result.FormattedAddress,
			Rating:  result.Rating,
			PlaceID: result.PlaceID,
		})
		if len(results) >= 3 { // Limit to top 3
			break
		}
	}
	return results, nil
}
