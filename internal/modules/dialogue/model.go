// README: Conversation state, slot record and step definitions for the voice booking flow.
package dialogue

import "time"

// Step identifies one node of the fixed booking conversation graph.
type Step string

const (
	StepIdle             Step = "idle"
	StepListeningInitial Step = "listening_initial"
	StepAskingPickup     Step = "asking_pickup"
	StepAskingDest       Step = "asking_destination"
	StepAskingGuestCount Step = "asking_guest_count"
	StepAskingNotes      Step = "asking_notes"
	StepConfirming       Step = "confirming"
	StepCompleted        Step = "completed"
)

// stepOrder is the single source of truth for forward/backward navigation.
var stepOrder = []Step{
	StepIdle,
	StepListeningInitial,
	StepAskingPickup,
	StepAskingDest,
	StepAskingGuestCount,
	StepAskingNotes,
	StepConfirming,
	StepCompleted,
}

// ProgressPercent maps each step to the UI progress bar value.
var ProgressPercent = map[Step]int{
	StepIdle:             0,
	StepListeningInitial: 5,
	StepAskingPickup:     20,
	StepAskingDest:       40,
	StepAskingGuestCount: 60,
	StepAskingNotes:      75,
	StepConfirming:       90,
	StepCompleted:        100,
}

// MaxGuestCount is the largest party a single car can take.
const MaxGuestCount = 7

// DefaultMaxRetry bounds retryCount in steady state; attempts past the limit
// are still accepted, the limit only triggers the manual-fallback hint.
const DefaultMaxRetry = 3

func stepIndex(s Step) int {
	for i, v := range stepOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// NextStep returns the step immediately after s in the fixed order.
// The terminal step maps to itself.
func NextStep(s Step) Step {
	i := stepIndex(s)
	if i < 0 || i >= len(stepOrder)-1 {
		return s
	}
	return stepOrder[i+1]
}

// PrevStep returns the step immediately before s in the fixed order.
func PrevStep(s Step) Step {
	i := stepIndex(s)
	if i <= 0 {
		return s
	}
	return stepOrder[i-1]
}

// StepInfo reports the 1-based position of s among the user-visible steps
// and the total count, for the "step x of y" indicator.
func StepInfo(s Step) (current, total int) {
	total = len(stepOrder) - 1 // idle is not user visible
	i := stepIndex(s)
	if i <= 0 {
		return 0, total
	}
	return i, total
}

// RideSlots is the partial record of everything the conversation collects.
// Zero values mean "not collected yet"; Notes is a pointer because an empty
// note ("no notes, thanks") is a valid collected value.
type RideSlots struct {
	RoomNumber  string  `json:"room_number,omitempty"`
	GuestName   string  `json:"guest_name,omitempty"`
	Pickup      string  `json:"pickup,omitempty"`
	Destination string  `json:"destination,omitempty"`
	GuestCount  int     `json:"guest_count,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// merged returns a copy of s with every collected field of in laid over it.
// Set slots are only ever overwritten by a later collected value, never
// silently cleared.
func (s RideSlots) merged(in RideSlots) RideSlots {
	out := s
	if in.RoomNumber != "" {
		out.RoomNumber = in.RoomNumber
	}
	if in.GuestName != "" {
		out.GuestName = in.GuestName
	}
	if in.Pickup != "" {
		out.Pickup = in.Pickup
	}
	if in.Destination != "" {
		out.Destination = in.Destination
	}
	if in.GuestCount != 0 {
		out.GuestCount = in.GuestCount
	}
	if in.Notes != nil {
		v := *in.Notes
		out.Notes = &v
	}
	return out
}

// clone deep-copies the slot record (Notes is the only pointer field).
func (s RideSlots) clone() RideSlots {
	out := s
	if s.Notes != nil {
		v := *s.Notes
		out.Notes = &v
	}
	return out
}

// HistoryEntry is one snapshot appended per successful forward transition.
type HistoryEntry struct {
	Step       Step
	Data       RideSlots
	RecordedAt time.Time
}

// ConversationState is the sole unit of dialogue progress. It is replaced
// wholesale on every transition; engine functions take and return values.
type ConversationState struct {
	Step           Step
	Data           RideSlots
	Suggestions    []string
	LastTranscript string
	RetryCount     int
	History        []HistoryEntry
}

// ParsedVoiceData is the terminal projection of the collected slots, handed
// to the caller exactly once when the conversation completes.
type ParsedVoiceData struct {
	RoomNumber  string `json:"room_number"`
	GuestName   string `json:"guest_name"`
	Pickup      string `json:"pickup"`
	Destination string `json:"destination"`
	GuestCount  int    `json:"guest_count"`
	Notes       string `json:"notes"`
}

// Result converts the accumulated slots into the terminal value.
func (c ConversationState) Result() ParsedVoiceData {
	notes := ""
	if c.Data.Notes != nil {
		notes = *c.Data.Notes
	}
	return ParsedVoiceData{
		RoomNumber:  c.Data.RoomNumber,
		GuestName:   c.Data.GuestName,
		Pickup:      c.Data.Pickup,
		Destination: c.Data.Destination,
		GuestCount:  c.Data.GuestCount,
		Notes:       notes,
	}
}
