// README: Step validator tests (per-step rules, boundaries, suggestions).
package dialogue

import "testing"

var testLocations = []string{"Sảnh chính", "Hồ Bơi", "Nhà hàng Sen", "Spa", "Sân Tennis", "Bãi đỗ xe"}

func notesOf(s string) *string { return &s }

func TestValidateStepRules(t *testing.T) {
	cases := []struct {
		name string
		step Step
		data RideSlots
		want bool
	}{
		{"initial always valid", StepListeningInitial, RideSlots{}, true},
		{"notes always valid", StepAskingNotes, RideSlots{}, true},
		{"notes valid with empty note", StepAskingNotes, RideSlots{Notes: notesOf("")}, true},

		{"pickup missing", StepAskingPickup, RideSlots{}, false},
		{"pickup whitespace only", StepAskingPickup, RideSlots{Pickup: "   "}, false},
		{"pickup present", StepAskingPickup, RideSlots{Pickup: "Sảnh chính"}, true},

		{"destination missing", StepAskingDest, RideSlots{Pickup: "Sảnh chính"}, false},
		{"destination present", StepAskingDest, RideSlots{Pickup: "Sảnh chính", Destination: "Hồ Bơi"}, true},
		{"destination equals pickup", StepAskingDest, RideSlots{Pickup: "Lobby", Destination: "Lobby"}, false},
		{"destination equals pickup ignoring case", StepAskingDest, RideSlots{Pickup: "Lobby", Destination: "LOBBY"}, false},
		{"destination equals pickup ignoring whitespace", StepAskingDest, RideSlots{Pickup: "Lobby", Destination: "  Lobby "}, false},

		{"confirming complete", StepConfirming, RideSlots{Pickup: "Sảnh chính", Destination: "Hồ Bơi", GuestCount: 2}, true},
		{"confirming missing pickup", StepConfirming, RideSlots{Destination: "Hồ Bơi", GuestCount: 2}, false},
		{"confirming missing count", StepConfirming, RideSlots{Pickup: "Sảnh chính", Destination: "Hồ Bơi"}, false},
	}
	for _, tc := range cases {
		got := Validate(tc.step, tc.data, testLocations)
		if got.OK != tc.want {
			t.Errorf("%s: Validate(%s) = %v, want %v (reason: %q)", tc.name, tc.step, got.OK, tc.want, got.Reason)
		}
		if !got.OK && got.Reason == "" {
			t.Errorf("%s: failed validation must carry a reason", tc.name)
		}
	}
}

func TestValidateGuestCountBoundaries(t *testing.T) {
	base := RideSlots{Pickup: "Sảnh chính", Destination: "Hồ Bơi"}
	for _, n := range []int{-1, 0, 8, 10, 100} {
		data := base
		data.GuestCount = n
		if Validate(StepAskingGuestCount, data, nil).OK {
			t.Errorf("guest count %d should be rejected", n)
		}
	}
	for n := 1; n <= MaxGuestCount; n++ {
		data := base
		data.GuestCount = n
		if !Validate(StepAskingGuestCount, data, nil).OK {
			t.Errorf("guest count %d should be accepted", n)
		}
	}
}

func TestValidateSuggestionsExcludeConflict(t *testing.T) {
	got := Validate(StepAskingDest, RideSlots{Pickup: "Hồ Bơi", Destination: "Hồ Bơi"}, testLocations)
	if got.OK {
		t.Fatal("expected validation failure")
	}
	if len(got.Suggestions) == 0 || len(got.Suggestions) > 5 {
		t.Fatalf("want 1..5 suggestions, got %d", len(got.Suggestions))
	}
	for _, s := range got.Suggestions {
		if s == "Hồ Bơi" {
			t.Errorf("suggestions must exclude the conflicting value, got %v", got.Suggestions)
		}
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	data := RideSlots{Pickup: "Spa", Destination: "Spa"}
	first := Validate(StepAskingDest, data, testLocations)
	for i := 0; i < 10; i++ {
		again := Validate(StepAskingDest, data, testLocations)
		if again.OK != first.OK || again.Reason != first.Reason {
			t.Fatal("Validate must be deterministic for identical inputs")
		}
	}
}
