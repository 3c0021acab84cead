// README: Turn processor tests — full flows, failure paths, concurrency contract.
package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeExtractor struct {
	fn func(ctx context.Context, transcript string, step Step) (*ExtractedSlots, error)
}

func (f *fakeExtractor) Extract(ctx context.Context, transcript string, step Step, _ []string, _ RideSlots) (*ExtractedSlots, error) {
	return f.fn(ctx, transcript, step)
}

type fakeMatcher struct {
	canonical map[string]string
}

func (f *fakeMatcher) Match(_ context.Context, freeText string) (MatchResult, error) {
	if top, ok := f.canonical[strings.ToLower(strings.TrimSpace(freeText))]; ok {
		return MatchResult{Top: top, Alternatives: []string{"Spa"}}, nil
	}
	return MatchResult{Alternatives: []string{"Sảnh chính", "Hồ Bơi"}}, nil
}

// openWorldMatcher resolves catalog names on-property and everything else as
// an off-property candidate.
type openWorldMatcher struct {
	canonical map[string]string
}

func (f *openWorldMatcher) Match(_ context.Context, freeText string) (MatchResult, error) {
	if top, ok := f.canonical[strings.ToLower(strings.TrimSpace(freeText))]; ok {
		return MatchResult{Top: top}, nil
	}
	return MatchResult{Top: freeText, OffProperty: true}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) Names(context.Context) ([]string, error) {
	return []string{"Sảnh chính", "Hồ Bơi", "Lobby", "Spa", "Nhà hàng Sen"}, nil
}

type recorder struct {
	mu          sync.Mutex
	errors      []string
	cancels     int
	completes   []ParsedVoiceData
	retryLimits int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnError: func(msg string) {
			r.mu.Lock()
			r.errors = append(r.errors, msg)
			r.mu.Unlock()
		},
		OnCancel: func() {
			r.mu.Lock()
			r.cancels++
			r.mu.Unlock()
		},
		OnComplete: func(data ParsedVoiceData) {
			r.mu.Lock()
			r.completes = append(r.completes, data)
			r.mu.Unlock()
		},
		OnRetryLimit: func(Step) {
			r.mu.Lock()
			r.retryLimits++
			r.mu.Unlock()
		},
	}
}

func (r *recorder) snapshot() (errs []string, cancels int, completes []ParsedVoiceData, retryLimits int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...), r.cancels, append([]ParsedVoiceData(nil), r.completes...), r.retryLimits
}

func newTestProcessor(rec *recorder, fn func(ctx context.Context, transcript string, step Step) (*ExtractedSlots, error)) *Processor {
	return NewProcessor(ProcessorDeps{
		Extractor: &fakeExtractor{fn: fn},
		Matcher: &fakeMatcher{canonical: map[string]string{
			"lobby":  "Lobby",
			"hồ bơi": "Hồ Bơi",
			"spa":    "Spa",
		}},
		Catalog:      fakeCatalog{},
		Callbacks:    rec.callbacks(),
		ConfirmGrace: time.Hour, // tests that need the timer override this
	})
}

func mustProcess(t *testing.T, p *Processor, transcript string) {
	t.Helper()
	if err := p.ProcessTranscript(context.Background(), transcript); err != nil {
		t.Fatalf("ProcessTranscript(%q): %v", transcript, err)
	}
}

func TestFullBookingFlow(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, transcript string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			// multi-slot utterance: place and guest count in one breath
			return &ExtractedSlots{Place: "Lobby", GuestCount: 5}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingNotes:
			return &ExtractedSlots{HasNotes: false}, nil
		}
		return nil, nil
	})

	mustProcess(t, p, "tôi muốn đặt xe")
	if got := p.State().Step; got != StepAskingPickup {
		t.Fatalf("after warm-up: step = %s", got)
	}

	mustProcess(t, p, "5 khách từ Lobby")
	if got := p.State().Step; got != StepAskingDest {
		t.Fatalf("after pickup: step = %s", got)
	}

	mustProcess(t, p, "đến Hồ Bơi")
	if got := p.State().Step; got != StepAskingNotes {
		t.Fatalf("guest-count step should be skipped, step = %s", got)
	}

	mustProcess(t, p, "không có")
	if got := p.State().Step; got != StepConfirming {
		t.Fatalf("after notes: step = %s", got)
	}

	mustProcess(t, p, "đúng")

	_, _, completes, _ := rec.snapshot()
	if len(completes) != 1 {
		t.Fatalf("onComplete fired %d times, want 1", len(completes))
	}
	want := ParsedVoiceData{Pickup: "Lobby", Destination: "Hồ Bơi", GuestCount: 5, Notes: ""}
	if completes[0] != want {
		t.Errorf("result = %+v, want %+v", completes[0], want)
	}
	if got := p.State().Step; got != StepCompleted {
		t.Errorf("final step = %s", got)
	}
}

func TestDestinationEqualPickupRejected(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
		return &ExtractedSlots{Place: "Lobby"}, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Lobby") // extractor hears the same place again

	st := p.State()
	if st.Step != StepAskingDest {
		t.Fatalf("step = %s, want %s", st.Step, StepAskingDest)
	}
	if st.RetryCount != 1 {
		t.Errorf("retryCount = %d, want 1", st.RetryCount)
	}
	if st.Data.Destination != "" {
		t.Errorf("rejected destination leaked into data: %q", st.Data.Destination)
	}
	errs, _, completes, _ := rec.snapshot()
	if len(errs) != 1 {
		t.Fatalf("onError fired %d times, want 1", len(errs))
	}
	if len(completes) != 0 {
		t.Error("onComplete must not fire")
	}
}

func TestGuestCountOutOfRange(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, transcript string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			return &ExtractedSlots{Place: "Lobby"}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingGuestCount:
			return &ExtractedSlots{GuestCount: 10}, nil // "mười người"
		}
		return nil, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "mười người")

	st := p.State()
	if st.Step != StepAskingGuestCount {
		t.Fatalf("step = %s, want %s", st.Step, StepAskingGuestCount)
	}
	if st.Data.GuestCount != 0 {
		t.Errorf("out-of-range count persisted: %d", st.Data.GuestCount)
	}
	errs, _, _, _ := rec.snapshot()
	if len(errs) != 1 {
		t.Fatalf("onError fired %d times, want 1", len(errs))
	}
}

func TestCancelKeywordResets(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, _ Step) (*ExtractedSlots, error) {
		return &ExtractedSlots{Place: "Lobby"}, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "hủy")

	st := p.State()
	if st.Step != StepListeningInitial {
		t.Fatalf("step after cancel = %s, want %s", st.Step, StepListeningInitial)
	}
	if st.Data != (RideSlots{}) {
		t.Errorf("data after cancel = %+v, want empty", st.Data)
	}
	_, cancels, _, _ := rec.snapshot()
	if cancels != 1 {
		t.Errorf("onCancel fired %d times, want 1", cancels)
	}
}

func TestRetryLimitHint(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, _ Step) (*ExtractedSlots, error) {
		return nil, nil // nothing recognized, ever
	})

	mustProcess(t, p, "đặt xe")
	for i := 0; i < 3; i++ {
		mustProcess(t, p, "ừm...")
	}

	st := p.State()
	if st.Step != StepAskingPickup {
		t.Fatalf("step = %s, want %s (machine keeps accepting attempts)", st.Step, StepAskingPickup)
	}
	if st.RetryCount != 3 {
		t.Errorf("retryCount = %d, want 3", st.RetryCount)
	}
	errs, _, _, retryLimits := rec.snapshot()
	if retryLimits != 1 {
		t.Errorf("retry-limit hint fired %d times, want 1", retryLimits)
	}
	// three generic errors plus the fallback hint message
	if len(errs) != 4 {
		t.Errorf("onError fired %d times, want 4", len(errs))
	}
}

func TestExtractorFailureIsRecoverable(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("upstream down")
	failing := true
	p := newTestProcessor(rec, func(_ context.Context, _ string, _ Step) (*ExtractedSlots, error) {
		if failing {
			return nil, boom
		}
		return &ExtractedSlots{Place: "Lobby"}, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby") // extractor fails
	if st := p.State(); st.Step != StepAskingPickup || st.RetryCount != 1 {
		t.Fatalf("state after failure: step=%s retry=%d", st.Step, st.RetryCount)
	}

	failing = false
	mustProcess(t, p, "từ Lobby")
	if st := p.State(); st.Step != StepAskingDest || st.RetryCount != 0 {
		t.Fatalf("conversation must recover: step=%s retry=%d", st.Step, st.RetryCount)
	}
}

func TestNotesFallBackToRawTranscript(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			return &ExtractedSlots{Place: "Lobby"}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingGuestCount:
			return &ExtractedSlots{GuestCount: 2}, nil
		case StepAskingNotes:
			return nil, errors.New("extractor down")
		}
		return nil, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "2 người")
	mustProcess(t, p, "làm ơn chờ ở cổng phụ")

	st := p.State()
	if st.Step != StepConfirming {
		t.Fatalf("notes must never block progress, step = %s", st.Step)
	}
	if st.Data.Notes == nil || *st.Data.Notes != "làm ơn chờ ở cổng phụ" {
		t.Errorf("raw transcript not kept as notes: %v", st.Data.Notes)
	}
}

func TestTerminalRejectsFurtherTranscripts(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			return &ExtractedSlots{Place: "Lobby", GuestCount: 2}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingNotes:
			return &ExtractedSlots{}, nil
		}
		return nil, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby 2 người")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "không")
	mustProcess(t, p, "đúng")
	if got := p.State().Step; got != StepCompleted {
		t.Fatalf("setup failed, step = %s", got)
	}

	if err := p.ProcessTranscript(context.Background(), "đặt thêm xe"); !errors.Is(err, ErrCompleted) {
		t.Fatalf("terminal transcript err = %v, want ErrCompleted", err)
	}

	p.Reset()
	if got := p.State().Step; got != StepListeningInitial {
		t.Fatalf("reset after completion: step = %s", got)
	}
}

func TestGoBackAfterCompletionIsNoOp(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			return &ExtractedSlots{Place: "Lobby", GuestCount: 2}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingNotes:
			return &ExtractedSlots{}, nil
		}
		return nil, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby 2 người")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "không")
	mustProcess(t, p, "đúng")
	if got := p.State().Step; got != StepCompleted {
		t.Fatalf("setup failed, step = %s", got)
	}

	// Once booked, back navigation must not reopen the conversation: a
	// replayed confirmation would book the ride a second time.
	st := p.GoBack()
	if st.Step != StepCompleted {
		t.Fatalf("goBack escaped the terminal step: %s", st.Step)
	}
	p.Confirm(context.Background())

	_, _, completes, _ := rec.snapshot()
	if len(completes) != 1 {
		t.Fatalf("onComplete fired %d times, want exactly 1", len(completes))
	}
}

func TestCompleteRequiresCurrentGeneration(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			return &ExtractedSlots{Place: "Lobby"}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingGuestCount:
			return &ExtractedSlots{GuestCount: 2}, nil
		case StepAskingNotes:
			return &ExtractedSlots{}, nil
		}
		return nil, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "2 người")
	mustProcess(t, p, "không")
	if got := p.State().Step; got != StepConfirming {
		t.Fatalf("setup failed, step = %s", got)
	}

	p.mu.Lock()
	staleGen := p.generation
	p.mu.Unlock()

	// The guest acts, then lands on the confirmation step again under a new
	// generation. A completion decided under the old generation (such as an
	// expired grace timer) must not apply.
	p.GoBack()
	mustProcess(t, p, "không có gì")
	if got := p.State().Step; got != StepConfirming {
		t.Fatalf("setup failed, step = %s", got)
	}

	p.complete(context.Background(), staleGen)
	if got := p.State().Step; got == StepCompleted {
		t.Fatal("stale completion applied")
	}
	_, _, completes, _ := rec.snapshot()
	if len(completes) != 0 {
		t.Fatalf("onComplete fired %d times, want 0", len(completes))
	}

	p.Confirm(context.Background())
	_, _, completes, _ = rec.snapshot()
	if len(completes) != 1 {
		t.Fatalf("current-generation confirm: onComplete fired %d times, want 1", len(completes))
	}
}

func TestImplicitGoBackFromConfirming(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			return &ExtractedSlots{Place: "Lobby"}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingGuestCount:
			return &ExtractedSlots{GuestCount: 2}, nil
		case StepAskingNotes:
			return &ExtractedSlots{}, nil
		}
		return nil, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "2 người")
	mustProcess(t, p, "không")
	if got := p.State().Step; got != StepConfirming {
		t.Fatalf("setup failed, step = %s", got)
	}

	mustProcess(t, p, "sai rồi, đổi lại")
	if got := p.State().Step; got != StepAskingNotes {
		t.Fatalf("non-affirmative at confirmation should go back, step = %s", got)
	}
}

func TestOffPropertyAllowedAsDestinationOnly(t *testing.T) {
	rec := &recorder{}
	places := []string{"Quán cà phê gần đây", "Lobby", "Chợ đêm"}
	i := 0
	p := NewProcessor(ProcessorDeps{
		Extractor: &fakeExtractor{fn: func(_ context.Context, _ string, _ Step) (*ExtractedSlots, error) {
			place := places[i]
			i++
			return &ExtractedSlots{Place: place}, nil
		}},
		Matcher:      &openWorldMatcher{canonical: map[string]string{"lobby": "Lobby"}},
		Catalog:      fakeCatalog{},
		Callbacks:    rec.callbacks(),
		ConfirmGrace: time.Hour,
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "đón ở quán cà phê gần đây") // off-property, rejected as pickup
	st := p.State()
	if st.Step != StepAskingPickup || st.RetryCount != 1 || st.Data.Pickup != "" {
		t.Fatalf("off-property pickup must be rejected: step=%s retry=%d pickup=%q", st.Step, st.RetryCount, st.Data.Pickup)
	}

	mustProcess(t, p, "vậy đón ở Lobby")
	mustProcess(t, p, "đi Chợ đêm") // off-property, fine as a destination
	st = p.State()
	if st.Step != StepAskingGuestCount {
		t.Fatalf("off-property destination must be accepted: step=%s", st.Step)
	}
	if st.Data.Destination != "Chợ đêm" {
		t.Errorf("destination = %q, want %q", st.Data.Destination, "Chợ đêm")
	}
}

func TestReentrantTranscriptDropped(t *testing.T) {
	rec := &recorder{}
	entered := make(chan struct{})
	release := make(chan struct{})
	p := newTestProcessor(rec, func(_ context.Context, _ string, _ Step) (*ExtractedSlots, error) {
		close(entered)
		<-release
		return &ExtractedSlots{Place: "Lobby"}, nil
	})
	mustProcess(t, p, "đặt xe")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.ProcessTranscript(context.Background(), "từ Lobby")
	}()
	<-entered

	if err := p.ProcessTranscript(context.Background(), "đến Hồ Bơi"); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("concurrent transcript err = %v, want ErrTurnInFlight", err)
	}

	close(release)
	<-done
	if got := p.State().Step; got != StepAskingDest {
		t.Fatalf("first turn should still apply, step = %s", got)
	}
}

func TestStaleResultDiscardedAfterReset(t *testing.T) {
	rec := &recorder{}
	entered := make(chan struct{})
	release := make(chan struct{})
	p := newTestProcessor(rec, func(_ context.Context, _ string, _ Step) (*ExtractedSlots, error) {
		close(entered)
		<-release
		return &ExtractedSlots{Place: "Lobby"}, nil
	})
	mustProcess(t, p, "đặt xe")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.ProcessTranscript(context.Background(), "từ Lobby")
	}()
	<-entered

	p.Reset() // user bailed out while the extractor call is in flight
	close(release)
	<-done

	st := p.State()
	if st.Step != StepListeningInitial {
		t.Fatalf("stale result applied after reset: step = %s", st.Step)
	}
	if st.Data.Pickup != "" {
		t.Errorf("stale pickup applied: %q", st.Data.Pickup)
	}
}

func TestAutoConfirmAfterGrace(t *testing.T) {
	rec := &recorder{}
	p := NewProcessor(ProcessorDeps{
		Extractor: &fakeExtractor{fn: func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
			switch step {
			case StepAskingPickup:
				return &ExtractedSlots{Place: "Lobby"}, nil
			case StepAskingDest:
				return &ExtractedSlots{Place: "Hồ Bơi"}, nil
			case StepAskingGuestCount:
				// count and note in one utterance: skips straight to confirmation
				return &ExtractedSlots{GuestCount: 3, HasNotes: true, Notes: "mang nước"}, nil
			}
			return nil, nil
		}},
		Matcher:      &fakeMatcher{canonical: map[string]string{"lobby": "Lobby", "hồ bơi": "Hồ Bơi"}},
		Catalog:      fakeCatalog{},
		Callbacks:    rec.callbacks(),
		ConfirmGrace: 20 * time.Millisecond,
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "3 người, mang nước giúp")
	if got := p.State().Step; got != StepConfirming {
		t.Fatalf("step = %s, want %s", got, StepConfirming)
	}

	deadline := time.After(2 * time.Second)
	for {
		_, _, completes, _ := rec.snapshot()
		if len(completes) == 1 {
			if completes[0].Notes != "mang nước" {
				t.Errorf("auto-confirmed result = %+v", completes[0])
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("auto-confirm never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestAutoConfirmCancelledByUserAction(t *testing.T) {
	rec := &recorder{}
	p := NewProcessor(ProcessorDeps{
		Extractor: &fakeExtractor{fn: func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
			switch step {
			case StepAskingPickup:
				return &ExtractedSlots{Place: "Lobby"}, nil
			case StepAskingDest:
				return &ExtractedSlots{Place: "Hồ Bơi"}, nil
			case StepAskingGuestCount:
				return &ExtractedSlots{GuestCount: 3, HasNotes: true, Notes: "mang nước"}, nil
			}
			return nil, nil
		}},
		Matcher:      &fakeMatcher{canonical: map[string]string{"lobby": "Lobby", "hồ bơi": "Hồ Bơi"}},
		Catalog:      fakeCatalog{},
		Callbacks:    rec.callbacks(),
		ConfirmGrace: 50 * time.Millisecond,
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "3 người, mang nước giúp")

	p.GoBack() // user acts during the grace window
	time.Sleep(120 * time.Millisecond)

	_, _, completes, _ := rec.snapshot()
	if len(completes) != 0 {
		t.Fatalf("auto-confirm must lose to a user action, completes = %d", len(completes))
	}
	if got := p.State().Step; got == StepCompleted {
		t.Fatal("conversation completed despite go-back")
	}
}

func TestManualConfirmBypassesGrace(t *testing.T) {
	rec := &recorder{}
	p := newTestProcessor(rec, func(_ context.Context, _ string, step Step) (*ExtractedSlots, error) {
		switch step {
		case StepAskingPickup:
			return &ExtractedSlots{Place: "Lobby"}, nil
		case StepAskingDest:
			return &ExtractedSlots{Place: "Hồ Bơi"}, nil
		case StepAskingGuestCount:
			return &ExtractedSlots{GuestCount: 2}, nil
		case StepAskingNotes:
			return &ExtractedSlots{}, nil
		}
		return nil, nil
	})

	mustProcess(t, p, "đặt xe")
	mustProcess(t, p, "từ Lobby")
	mustProcess(t, p, "đến Hồ Bơi")
	mustProcess(t, p, "2 người")
	mustProcess(t, p, "không")

	p.Confirm(context.Background())
	_, _, completes, _ := rec.snapshot()
	if len(completes) != 1 {
		t.Fatalf("manual confirm: onComplete fired %d times, want 1", len(completes))
	}
	if got := p.State().Step; got != StepCompleted {
		t.Errorf("step = %s, want %s", got, StepCompleted)
	}
}
