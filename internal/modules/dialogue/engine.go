// README: Transition engine — forward/backward navigation over the conversation graph.
package dialogue

import "time"

// Init returns a fresh conversation positioned at the listening step, with
// the synthetic initial history entry already recorded.
func Init() ConversationState {
	return ConversationState{
		Step: StepListeningInitial,
		History: []HistoryEntry{{
			Step:       StepListeningInitial,
			Data:       RideSlots{},
			RecordedAt: time.Now(),
		}},
	}
}

// Reset discards all progress and returns to the initial state. Used both
// for explicit restart and for cancellation.
func Reset() ConversationState {
	return Init()
}

// Next merges newSlots into the accumulated data and validates the current
// step. On success it advances to the following step, resets the retry
// count, clears suggestions and snapshots history; when the merge satisfies
// later steps too, it keeps advancing up to the confirmation step. On
// failure it stays on the step, keeps the previously accumulated data
// untouched and increments the retry count.
func Next(state ConversationState, newSlots RideSlots, locations []string) (ConversationState, StepCheck) {
	if state.Step == StepCompleted {
		return state, ok()
	}

	merged := state.Data.merged(newSlots)
	check := Validate(state.Step, merged, locations)
	if !check.OK {
		out := state
		out.RetryCount++
		out.Suggestions = append([]string(nil), check.Suggestions...)
		return out, check
	}

	out := state
	out.Data = merged
	out.RetryCount = 0
	out.Suggestions = nil
	out.Step = NextStep(state.Step)
	out.History = appendSnapshot(out.History, out.Step, out.Data)

	// Slots collected ahead of schedule let the conversation skip straight
	// to confirmation, one validated hop at a time.
	for slotFilled(out.Step, out.Data) && Validate(out.Step, out.Data, locations).OK {
		out.Step = NextStep(out.Step)
		out.History = appendSnapshot(out.History, out.Step, out.Data)
		if out.Step == StepConfirming || out.Step == StepCompleted {
			break
		}
	}
	return out, check
}

// Back moves to the step immediately preceding the current one, replaying
// the most recent history snapshot recorded for that step. Retry count and
// suggestions always reset; if no snapshot exists the accumulated data is
// kept unchanged.
func Back(state ConversationState) ConversationState {
	// The terminal step is only left through a full reset; navigating back
	// out of it would allow a second completion.
	if state.Step == StepCompleted {
		return state
	}

	out := state
	out.RetryCount = 0
	out.Suggestions = nil

	target := PrevStep(state.Step)
	if target == state.Step || target == StepIdle {
		return out
	}
	out.Step = target
	for i := len(state.History) - 1; i >= 0; i-- {
		if state.History[i].Step == target {
			out.Data = state.History[i].Data.clone()
			break
		}
	}
	return out
}

// slotFilled reports whether the slot a step asks for has already been
// collected. Steps outside the asking range never auto-skip.
func slotFilled(step Step, data RideSlots) bool {
	switch step {
	case StepAskingPickup:
		return data.Pickup != ""
	case StepAskingDest:
		return data.Destination != ""
	case StepAskingGuestCount:
		return data.GuestCount != 0
	case StepAskingNotes:
		return data.Notes != nil
	}
	return false
}

func appendSnapshot(history []HistoryEntry, step Step, data RideSlots) []HistoryEntry {
	return append(history, HistoryEntry{
		Step:       step,
		Data:       data.clone(),
		RecordedAt: time.Now(),
	})
}
