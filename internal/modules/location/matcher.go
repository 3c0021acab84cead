package location

import (
	"context"

	"concierge/internal/modules/dialogue"
)

// Matcher adapts Service to the dialogue.LocationMatcher contract.
type Matcher struct {
	Service *Service
}

func (m Matcher) Match(ctx context.Context, freeText string) (dialogue.MatchResult, error) {
	outcome, err := m.Service.Match(ctx, freeText)
	if err != nil {
		return dialogue.MatchResult{}, err
	}
	var res dialogue.MatchResult
	if outcome.Top != nil {
		res.Top = outcome.Top.Name
		res.OffProperty = outcome.Top.Area == AreaOffProperty
	}
	for _, alt := range outcome.Alternatives {
		res.Alternatives = append(res.Alternatives, alt.Name)
	}
	return res, nil
}
