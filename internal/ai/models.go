package ai

// SlotResult captures the structured output of one extraction call.
type SlotResult struct {
	// Place is the free-text place name heard in the utterance, for the
	// pickup and destination steps. Nullable: absent when nothing place-like
	// was said.
	Place *string `json:"place,omitempty"`

	// GuestCount is the number of passengers heard at the guest-count step.
	// Zero means no number was recognized.
	GuestCount int `json:"guest_count"`

	// HasNotes distinguishes "the guest gave a note" from "the guest
	// declined" at the notes step.
	HasNotes bool `json:"has_notes"`

	// Notes is the extracted note text when HasNotes is true.
	Notes string `json:"notes"`
}
