// README: Pure per-step validation of the accumulated slots.
package dialogue

import "strings"

// maxSuggestions caps the alternatives offered after a failed validation.
const maxSuggestions = 5

// StepCheck is the outcome of validating one step against the merged slots.
type StepCheck struct {
	OK          bool
	Reason      string
	Suggestions []string
}

func ok() StepCheck { return StepCheck{OK: true} }

func fail(reason string, suggestions []string) StepCheck {
	return StepCheck{Reason: reason, Suggestions: suggestions}
}

// Validate decides whether the required data for step is present and
// consistent. Deterministic, no side effects; locations is the read-only
// known-location list used to build suggestions.
func Validate(step Step, data RideSlots, locations []string) StepCheck {
	switch step {
	case StepIdle, StepListeningInitial, StepAskingNotes:
		// Nothing enforced: idle/initial collect nothing, notes are optional.
		return ok()

	case StepAskingPickup:
		if strings.TrimSpace(data.Pickup) == "" {
			return fail("Chưa có điểm đón. Quý khách muốn được đón ở đâu?", suggestFrom(locations, ""))
		}
		return ok()

	case StepAskingDest:
		dest := strings.TrimSpace(data.Destination)
		if dest == "" {
			return fail("Chưa có điểm đến. Quý khách muốn đi đâu?", suggestFrom(locations, data.Pickup))
		}
		if strings.EqualFold(dest, strings.TrimSpace(data.Pickup)) {
			return fail(
				"Điểm đến trùng với điểm đón. Vui lòng chọn một điểm đến khác.",
				suggestFrom(locations, data.Pickup),
			)
		}
		return ok()

	case StepAskingGuestCount:
		if data.GuestCount < 1 || data.GuestCount > MaxGuestCount {
			return fail("Số khách phải từ 1 đến 7 người.", nil)
		}
		return ok()

	case StepConfirming:
		if strings.TrimSpace(data.Pickup) == "" || strings.TrimSpace(data.Destination) == "" {
			return fail("Thiếu điểm đón hoặc điểm đến.", suggestFrom(locations, ""))
		}
		if data.GuestCount < 1 {
			return fail("Thiếu số lượng khách.", nil)
		}
		return ok()
	}
	return ok()
}

// suggestFrom returns up to maxSuggestions known locations, skipping the
// value that caused the conflict.
func suggestFrom(locations []string, exclude string) []string {
	var out []string
	for _, name := range locations {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(exclude)) {
			continue
		}
		out = append(out, name)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
