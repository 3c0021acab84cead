// README: Location service — catalog access and fuzzy name resolution.
package location

import (
	"context"
	"log"
	"sort"
	"strings"

	"concierge/internal/maps"
)

// Match score thresholds. A candidate below minTopScore never becomes the
// top match; weaker candidates are still surfaced as alternatives.
const (
	minTopScore = 50
	minAltScore = 25
	maxMatches  = 6 // top + up to 5 alternatives
)

// PlacesFallback resolves place names that are not in the hotel catalog.
// Satisfied by maps.PlacesService; nil disables the fallback.
type PlacesFallback interface {
	FindDestination(ctx context.Context, query string, near string) ([]maps.Place, error)
}

type Service struct {
	store    *Store
	fallback PlacesFallback
	hotel    string // hotel name/address used to bias fallback searches
}

func NewService(store *Store, fallback PlacesFallback, hotel string) *Service {
	return &Service{store: store, fallback: fallback, hotel: hotel}
}

func (s *Service) List(ctx context.Context) ([]Place, error) {
	return s.store.List(ctx)
}

// Names returns the canonical catalog names, in catalog order.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	places, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.Name
	}
	return names, nil
}

// MatchOutcome is the result of resolving a free-text place name.
type MatchOutcome struct {
	Top          *Place
	Alternatives []Place
}

// Match fuzzy-resolves freeText against the catalog, tolerating partial and
// out-of-order phrasing. When nothing on-property scores high enough and a
// fallback is configured, the name is looked up as an off-property
// destination.
func (s *Service) Match(ctx context.Context, freeText string) (MatchOutcome, error) {
	places, err := s.store.List(ctx)
	if err != nil {
		return MatchOutcome{}, err
	}

	type scored struct {
		place Place
		score int
	}
	var candidates []scored
	for _, p := range places {
		sc := scorePlace(freeText, p)
		if sc >= minAltScore {
			candidates = append(candidates, scored{place: p, score: sc})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxMatches {
		candidates = candidates[:maxMatches]
	}

	var out MatchOutcome
	if len(candidates) > 0 && candidates[0].score >= minTopScore {
		top := candidates[0].place
		out.Top = &top
		for _, c := range candidates[1:] {
			out.Alternatives = append(out.Alternatives, c.place)
		}
		return out, nil
	}

	for _, c := range candidates {
		out.Alternatives = append(out.Alternatives, c.place)
	}

	if s.fallback != nil {
		found, err := s.fallback.FindDestination(ctx, freeText, s.hotel)
		if err != nil {
			// Fallback failure is not fatal: the caller still gets the
			// on-property alternatives collected above.
			log.Printf("location: places fallback failed for %q: %v", freeText, err)
			return out, nil
		}
		if len(found) > 0 {
			out.Top = &Place{Name: found[0].Name, Area: AreaOffProperty}
			for _, f := range found[1:] {
				out.Alternatives = append(out.Alternatives, Place{Name: f.Name, Area: AreaOffProperty})
			}
		}
	}
	return out, nil
}

// scorePlace rates how well freeText refers to p. Exact beats prefix beats
// substring beats token overlap; aliases count as much as the name.
func scorePlace(freeText string, p Place) int {
	best := scoreName(freeText, p.Name)
	for _, alias := range p.Aliases {
		if sc := scoreName(freeText, alias); sc > best {
			best = sc
		}
	}
	return best
}

func scoreName(freeText, name string) int {
	q := normalizeName(freeText)
	n := normalizeName(name)
	if q == "" || n == "" {
		return 0
	}
	switch {
	case q == n:
		return 100
	case strings.HasPrefix(n, q) || strings.HasPrefix(q, n):
		return 80
	case strings.Contains(n, q) || strings.Contains(q, n):
		return 60
	}

	qTokens := strings.Fields(q)
	nTokens := strings.Fields(n)
	overlap := 0
	for _, qt := range qTokens {
		for _, nt := range nTokens {
			if qt == nt {
				overlap++
				break
			}
		}
	}
	if overlap == 0 {
		return 0
	}
	denom := len(qTokens)
	if len(nTokens) > denom {
		denom = len(nTokens)
	}
	return 40 * overlap / denom
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
