package ai

import (
	"context"

	"concierge/internal/modules/dialogue"
)

// Provider defines the contract for the natural-language slot extraction
// backend. This interface allows for swapping different AI providers
// (Gemini, OpenAI, etc.) in the future.
type Provider interface {
	// ExtractSlot analyzes one utterance in the context of the current
	// dialogue step and returns a structured guess. Implementations return
	// (nil, nil) for unparseable input instead of an error.
	ExtractSlot(ctx context.Context, transcript string, step dialogue.Step, locations []string, current dialogue.RideSlots) (*SlotResult, error)
}
