// README: Turn processor — drives one conversation from finalized transcripts.
package dialogue

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrTurnInFlight is returned when a transcript arrives while the
	// previous one is still being processed. The new transcript is dropped,
	// not queued.
	ErrTurnInFlight = errors.New("turn already in flight")
	// ErrCompleted is returned for transcripts arriving after the terminal
	// step; only Reset makes the conversation usable again.
	ErrCompleted = errors.New("conversation already completed")
)

// ExtractedSlots is the best-effort structured guess from the external slot
// extractor. A nil result means nothing was recognized.
type ExtractedSlots struct {
	Place      string
	GuestCount int
	HasNotes   bool
	Notes      string
}

// SlotExtractor turns a raw transcript into a structured guess for the
// current step. Implementations must return a nil result rather than an
// error for unparseable input.
type SlotExtractor interface {
	Extract(ctx context.Context, transcript string, step Step, locations []string, current RideSlots) (*ExtractedSlots, error)
}

// MatchResult is the outcome of fuzzy-resolving a free-text place name.
// Top is empty when nothing matched well enough; OffProperty marks a top
// match resolved outside the hotel catalog.
type MatchResult struct {
	Top          string
	OffProperty  bool
	Alternatives []string
}

// LocationMatcher resolves a free-text place name against the hotel's
// known-location catalog.
type LocationMatcher interface {
	Match(ctx context.Context, freeText string) (MatchResult, error)
}

// LocationCatalog supplies the read-only known-location names used for
// validation suggestions and extractor context.
type LocationCatalog interface {
	Names(ctx context.Context) ([]string, error)
}

// Callbacks deliver the processor's outcomes to the caller. Each field is
// optional; nil callbacks are skipped.
type Callbacks struct {
	OnComplete   func(ParsedVoiceData)
	OnCancel     func()
	OnError      func(message string)
	OnRetryLimit func(step Step)
}

// ProcessorDeps wires a processor's collaborators.
type ProcessorDeps struct {
	Extractor    SlotExtractor
	Matcher      LocationMatcher
	Catalog      LocationCatalog
	Callbacks    Callbacks
	MaxRetry     int
	ConfirmGrace time.Duration
}

// Processor runs one conversation cooperatively, one turn at a time.
// Transcripts arriving mid-turn are dropped; every dispatched external call
// is tagged with the generation it was issued under so late results for a
// cancelled or reset conversation are discarded instead of applied.
type Processor struct {
	extractor    SlotExtractor
	matcher      LocationMatcher
	catalog      LocationCatalog
	callbacks    Callbacks
	maxRetry     int
	confirmGrace time.Duration

	inFlight atomic.Bool

	mu           sync.Mutex
	state        ConversationState
	generation   uint64
	confirmTimer *time.Timer
}

func NewProcessor(deps ProcessorDeps) *Processor {
	maxRetry := deps.MaxRetry
	if maxRetry <= 0 {
		maxRetry = DefaultMaxRetry
	}
	grace := deps.ConfirmGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Processor{
		extractor:    deps.Extractor,
		matcher:      deps.Matcher,
		catalog:      deps.Catalog,
		callbacks:    deps.Callbacks,
		maxRetry:     maxRetry,
		confirmGrace: grace,
		state:        Init(),
	}
}

// State returns a copy of the current conversation state.
func (p *Processor) State() ConversationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Reset abandons all progress and returns to the initial state.
func (p *Processor) Reset() ConversationState {
	p.mu.Lock()
	p.bumpGenerationLocked()
	p.state = Reset()
	st := p.state
	p.mu.Unlock()
	return st
}

// GoBack navigates to the previous step, replaying its history snapshot.
// Counts as a user action: it invalidates in-flight work and any pending
// auto-confirm.
func (p *Processor) GoBack() ConversationState {
	p.mu.Lock()
	p.bumpGenerationLocked()
	p.state = Back(p.state)
	st := p.state
	p.mu.Unlock()
	return st
}

// Cancel ends the conversation on behalf of the caller.
func (p *Processor) Cancel() {
	p.mu.Lock()
	p.bumpGenerationLocked()
	p.state = Reset()
	p.mu.Unlock()
	p.emitCancel()
}

// Confirm finalizes the booking from the confirmation step without waiting
// for an affirmative utterance or the auto-confirm delay.
func (p *Processor) Confirm(ctx context.Context) {
	p.mu.Lock()
	if p.state.Step != StepConfirming {
		p.mu.Unlock()
		return
	}
	p.bumpGenerationLocked()
	gen := p.generation
	p.mu.Unlock()
	p.complete(ctx, gen)
}

// ProcessTranscript handles one finalized utterance. Outcomes are delivered
// through the callbacks; the returned error only reports transcripts that
// were not processed at all (dropped or terminal).
func (p *Processor) ProcessTranscript(ctx context.Context, transcript string) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		log.Printf("dialogue: transcript dropped, turn in flight: %q", transcript)
		return ErrTurnInFlight
	}
	defer p.inFlight.Store(false)

	p.mu.Lock()
	if p.state.Step == StepCompleted {
		p.mu.Unlock()
		return ErrCompleted
	}
	gen := p.generation
	p.state.LastTranscript = transcript
	state := p.state
	p.mu.Unlock()

	if IsCancelIntent(transcript) {
		p.mu.Lock()
		if p.generation != gen {
			p.mu.Unlock()
			return nil
		}
		p.bumpGenerationLocked()
		p.state = Reset()
		p.mu.Unlock()
		p.emitCancel()
		return nil
	}

	names := p.locationNames(ctx)

	switch state.Step {
	case StepListeningInitial:
		// Warm-up utterance: no extraction path exists for the very first
		// transcript, it only moves the conversation to the pickup question.
		p.applyTransition(ctx, gen, RideSlots{}, nil, names)

	case StepAskingPickup, StepAskingDest:
		p.processPlaceTurn(ctx, gen, state, transcript, names)

	case StepAskingGuestCount:
		res, err := p.extractor.Extract(ctx, transcript, state.Step, names, state.Data)
		if err != nil {
			log.Printf("dialogue: slot extractor failed at %s: %v", state.Step, err)
			p.applyFailure(gen, msgNotRecognizedCount, nil)
			return nil
		}
		if res == nil || res.GuestCount == 0 {
			p.applyFailure(gen, msgNotRecognizedCount, nil)
			return nil
		}
		slots := RideSlots{GuestCount: res.GuestCount}
		if res.HasNotes {
			// "3 người, nhớ mang nước" — the note rides along and satisfies
			// the notes step ahead of schedule.
			notes := res.Notes
			slots.Notes = &notes
		}
		p.applyTransition(ctx, gen, slots, nil, names)

	case StepAskingNotes:
		notes := ""
		res, err := p.extractor.Extract(ctx, transcript, state.Step, names, state.Data)
		switch {
		case err != nil || res == nil:
			// The optional step never blocks progress: keep the raw
			// transcript verbatim when extraction fails.
			if err != nil {
				log.Printf("dialogue: slot extractor failed at %s: %v", state.Step, err)
			}
			notes = transcript
		case res.HasNotes:
			notes = res.Notes
			if notes == "" {
				notes = transcript
			}
		}
		p.applyTransition(ctx, gen, RideSlots{Notes: &notes}, nil, names)

	case StepConfirming:
		if IsAffirmative(transcript) {
			p.mu.Lock()
			if p.generation != gen {
				p.mu.Unlock()
				return nil
			}
			p.bumpGenerationLocked()
			confirmGen := p.generation
			p.mu.Unlock()
			p.complete(ctx, confirmGen)
			return nil
		}
		// Anything short of an affirmative is an implicit go-back.
		p.GoBack()
	}
	return nil
}

// processPlaceTurn runs the extractor/matcher pipeline for the pickup and
// destination steps.
func (p *Processor) processPlaceTurn(ctx context.Context, gen uint64, state ConversationState, transcript string, names []string) {
	res, err := p.extractor.Extract(ctx, transcript, state.Step, names, state.Data)
	if err != nil {
		log.Printf("dialogue: slot extractor failed at %s: %v", state.Step, err)
		p.applyFailure(gen, msgNotRecognizedPlace, nil)
		return
	}
	if res == nil || res.Place == "" {
		p.applyFailure(gen, msgNotRecognizedPlace, nil)
		return
	}

	match, err := p.matcher.Match(ctx, res.Place)
	if err != nil {
		// Logged distinctly from a no-match; the guest hears the same
		// "please repeat" either way.
		log.Printf("dialogue: location matcher failed for %q: %v", res.Place, err)
		p.applyFailure(gen, msgNotRecognizedPlace, nil)
		return
	}
	if match.Top == "" {
		p.applyFailure(gen, msgNotRecognizedPlace, match.Alternatives)
		return
	}
	if state.Step == StepAskingPickup && match.OffProperty {
		// Pickups happen on hotel grounds only; an off-property resolution is
		// a valid destination, never a pickup.
		p.applyFailure(gen, msgNotRecognizedPlace, match.Alternatives)
		return
	}

	// Guests often pack several slots into one breath ("5 khách từ Lobby
	// đến Hồ Bơi"); a count heard here is kept so later steps can be
	// skipped.
	slots := RideSlots{GuestCount: res.GuestCount}
	if state.Step == StepAskingPickup {
		slots.Pickup = match.Top
	} else {
		slots.Destination = match.Top
	}
	p.applyTransition(ctx, gen, slots, match.Alternatives, names)
}

// applyTransition feeds extracted slots through the engine, updates state if
// the turn is still current and reports the outcome.
func (p *Processor) applyTransition(ctx context.Context, gen uint64, slots RideSlots, alternatives []string, names []string) {
	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	before := stepIndex(p.state.Step)
	next, check := Next(p.state, slots, names)
	if check.OK && len(alternatives) > 0 {
		// Keep the matcher's runner-up candidates visible as chips even
		// though the successful transition cleared the failure suggestions.
		next.Suggestions = append([]string(nil), alternatives...)
	}
	p.state = next
	retryLimit := !check.OK && next.RetryCount >= p.maxRetry
	step := next.Step
	reachedConfirm := check.OK && step == StepConfirming && stepIndex(step)-before > 1
	p.mu.Unlock()

	if !check.OK {
		p.emitError(check.Reason)
		if retryLimit {
			p.emitError(msgRetryLimit)
			if p.callbacks.OnRetryLimit != nil {
				p.callbacks.OnRetryLimit(step)
			}
		}
		return
	}

	if reachedConfirm {
		// All slots satisfied ahead of schedule: auto-advance to completion
		// after a grace window unless the guest acts first.
		p.scheduleAutoConfirm(ctx, gen)
	}
}

// applyFailure records a retry for a turn whose external resolution failed
// (extractor error, matcher error, or no match). The accumulated data is
// left untouched.
func (p *Processor) applyFailure(gen uint64, message string, suggestions []string) {
	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	p.state.RetryCount++
	if len(suggestions) > 0 {
		p.state.Suggestions = append([]string(nil), suggestions...)
	}
	retryLimit := p.state.RetryCount >= p.maxRetry
	step := p.state.Step
	p.mu.Unlock()

	p.emitError(message)
	if retryLimit {
		p.emitError(msgRetryLimit)
		if p.callbacks.OnRetryLimit != nil {
			p.callbacks.OnRetryLimit(step)
		}
	}
}

// complete moves the conversation to the terminal step and hands the
// finalized slots to the caller. gen is the generation the completion was
// decided under; any user action since then aborts it.
func (p *Processor) complete(ctx context.Context, gen uint64) {
	names := p.locationNames(ctx)

	p.mu.Lock()
	if p.generation != gen || p.state.Step != StepConfirming {
		p.mu.Unlock()
		return
	}
	next, check := Next(p.state, RideSlots{}, names)
	if !check.OK {
		p.state = next
		p.mu.Unlock()
		p.emitError(check.Reason)
		return
	}
	p.state = next
	result := next.Result()
	p.mu.Unlock()

	if p.callbacks.OnComplete != nil {
		p.callbacks.OnComplete(result)
	}
}

func (p *Processor) scheduleAutoConfirm(ctx context.Context, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		return
	}
	if p.confirmTimer != nil {
		p.confirmTimer.Stop()
	}
	p.confirmTimer = time.AfterFunc(p.confirmGrace, func() {
		// complete re-verifies gen and step under its own lock, so a user
		// action racing this callback cannot be overridden.
		p.complete(context.WithoutCancel(ctx), gen)
	})
}

// bumpGenerationLocked invalidates every in-flight external call and pending
// timer issued under the previous generation. Callers must hold mu.
func (p *Processor) bumpGenerationLocked() {
	p.generation++
	if p.confirmTimer != nil {
		p.confirmTimer.Stop()
		p.confirmTimer = nil
	}
}

func (p *Processor) locationNames(ctx context.Context) []string {
	if p.catalog == nil {
		return nil
	}
	names, err := p.catalog.Names(ctx)
	if err != nil {
		log.Printf("dialogue: location catalog unavailable: %v", err)
		return nil
	}
	return names
}

func (p *Processor) emitError(message string) {
	if p.callbacks.OnError != nil {
		p.callbacks.OnError(message)
	}
}

func (p *Processor) emitCancel() {
	if p.callbacks.OnCancel != nil {
		p.callbacks.OnCancel()
	}
}

const (
	msgNotRecognizedPlace = "Xin lỗi, tôi chưa nhận ra địa điểm. Quý khách vui lòng nói lại."
	msgNotRecognizedCount = "Xin lỗi, tôi chưa nghe rõ số khách. Xe chở được từ 1 đến 7 người."
	msgRetryLimit         = "Quý khách đã thử nhiều lần. Có thể chạm vào màn hình để nhập thông tin trực tiếp."
)
