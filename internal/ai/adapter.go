package ai

import (
	"context"

	"concierge/internal/modules/dialogue"
)

// Extractor adapts a Provider to the dialogue.SlotExtractor contract.
type Extractor struct {
	Provider Provider
}

func (e Extractor) Extract(ctx context.Context, transcript string, step dialogue.Step, locations []string, current dialogue.RideSlots) (*dialogue.ExtractedSlots, error) {
	res, err := e.Provider.ExtractSlot(ctx, transcript, step, locations, current)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	out := &dialogue.ExtractedSlots{
		GuestCount: res.GuestCount,
		HasNotes:   res.HasNotes,
		Notes:      res.Notes,
	}
	if res.Place != nil {
		out.Place = *res.Place
	}
	return out, nil
}
