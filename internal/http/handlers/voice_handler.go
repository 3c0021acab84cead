// README: Voice session handler — the REST surface over the dialogue processor.
package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"concierge/internal/modules/dialogue"
	"concierge/internal/modules/ride"
	"concierge/internal/types"
)

// turnTimeout bounds each transcript turn; the dialogue core itself imposes
// no timeout on its external calls.
const turnTimeout = 10 * time.Second

// sessionEvents accumulates callback outcomes between turns so the HTTP
// response can report what a turn produced.
type sessionEvents struct {
	mu         sync.Mutex
	errors     []string
	cancelled  bool
	completed  *dialogue.ParsedVoiceData
	retryLimit bool
	rideID     types.ID
}

func (e *sessionEvents) drain() (errs []string, cancelled bool, completed *dialogue.ParsedVoiceData, retryLimit bool, rideID types.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs = e.errors
	cancelled = e.cancelled
	completed = e.completed
	retryLimit = e.retryLimit
	rideID = e.rideID
	e.errors = nil
	e.cancelled = false
	e.retryLimit = false
	return
}

// RideSink persists completed bookings. Satisfied by ride.Service.
type RideSink interface {
	CreateFromVoice(ctx context.Context, cmd ride.CreateCommand) (types.ID, error)
}

type VoiceHandler struct {
	sessions  *dialogue.Sessions
	rides     RideSink
	catalog   dialogue.LocationCatalog
	extractor dialogue.SlotExtractor
	matcher   dialogue.LocationMatcher
	maxRetry  int
	grace     time.Duration
	ttl       time.Duration

	mu     sync.Mutex
	events map[types.ID]*sessionEvents
}

type VoiceHandlerDeps struct {
	Rides        RideSink
	Catalog      dialogue.LocationCatalog
	Extractor    dialogue.SlotExtractor
	Matcher      dialogue.LocationMatcher
	MaxRetry     int
	ConfirmGrace time.Duration
	SessionTTL   time.Duration
}

func NewVoiceHandler(deps VoiceHandlerDeps) *VoiceHandler {
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	h := &VoiceHandler{
		rides:     deps.Rides,
		catalog:   deps.Catalog,
		extractor: deps.Extractor,
		matcher:   deps.Matcher,
		maxRetry:  deps.MaxRetry,
		grace:     deps.ConfirmGrace,
		ttl:       ttl,
		events:    make(map[types.ID]*sessionEvents),
	}
	h.sessions = dialogue.NewSessions(h.newProcessor)
	return h
}

// Janitor evicts conversations idle past the session TTL until ctx is done.
// Completed conversations are removed as soon as their final turn response
// has been delivered; the janitor covers the abandoned ones.
func (h *VoiceHandler) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range h.sessions.Reap(h.ttl) {
				h.dropEvents(id)
			}
		}
	}
}

func (h *VoiceHandler) remove(id types.ID) {
	h.sessions.Remove(id)
	h.dropEvents(id)
}

func (h *VoiceHandler) dropEvents(id types.ID) {
	h.mu.Lock()
	delete(h.events, id)
	h.mu.Unlock()
}

// newProcessor wires one conversation's callbacks: errors and cancellation
// are surfaced to the client on the next response, completion persists the
// ride through the sink.
func (h *VoiceHandler) newProcessor(id types.ID) *dialogue.Processor {
	ev := &sessionEvents{}
	h.mu.Lock()
	h.events[id] = ev
	h.mu.Unlock()

	return dialogue.NewProcessor(dialogue.ProcessorDeps{
		Extractor:    h.extractor,
		Matcher:      h.matcher,
		Catalog:      h.catalog,
		MaxRetry:     h.maxRetry,
		ConfirmGrace: h.grace,
		Callbacks: dialogue.Callbacks{
			OnError: func(msg string) {
				ev.mu.Lock()
				ev.errors = append(ev.errors, msg)
				ev.mu.Unlock()
			},
			OnCancel: func() {
				ev.mu.Lock()
				ev.cancelled = true
				ev.mu.Unlock()
			},
			OnRetryLimit: func(dialogue.Step) {
				ev.mu.Lock()
				ev.retryLimit = true
				ev.mu.Unlock()
			},
			OnComplete: func(data dialogue.ParsedVoiceData) {
				ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
				defer cancel()
				rideID, err := h.rides.CreateFromVoice(ctx, ride.CreateCommand{
					SessionID: id,
					Data:      data,
				})
				ev.mu.Lock()
				ev.completed = &data
				ev.rideID = rideID
				ev.mu.Unlock()
				if err != nil {
					log.Printf("voice: ride persistence failed for session %s: %v", id, err)
				}
			},
		},
	})
}

type stateView struct {
	SessionID   string             `json:"session_id"`
	Step        string             `json:"step"`
	Prompt      string             `json:"prompt"`
	Progress    int                `json:"progress_percentage"`
	StepCurrent int                `json:"step_current"`
	StepTotal   int                `json:"step_total"`
	Suggestions []string           `json:"suggestions"`
	Data        dialogue.RideSlots `json:"data"`
	RetryCount  int                `json:"retry_count"`
}

type turnResponse struct {
	State      stateView                 `json:"state"`
	Errors     []string                  `json:"errors,omitempty"`
	Cancelled  bool                      `json:"cancelled,omitempty"`
	RetryLimit bool                      `json:"retry_limit,omitempty"`
	Completed  *dialogue.ParsedVoiceData `json:"completed,omitempty"`
	RideID     string                    `json:"ride_id,omitempty"`
}

func viewOf(id types.ID, st dialogue.ConversationState) stateView {
	cur, total := dialogue.StepInfo(st.Step)
	return stateView{
		SessionID:   string(id),
		Step:        string(st.Step),
		Prompt:      dialogue.PromptFor(st.Step, st.Data, st.RetryCount),
		Progress:    dialogue.ProgressPercent[st.Step],
		StepCurrent: cur,
		StepTotal:   total,
		Suggestions: st.Suggestions,
		Data:        st.Data,
		RetryCount:  st.RetryCount,
	}
}

// Start handles POST /api/voice/sessions.
func (h *VoiceHandler) Start(c *gin.Context) {
	sess := h.sessions.Start()
	writeJSON(c, http.StatusCreated, viewOf(sess.ID, sess.Processor.State()))
}

// Get handles GET /api/voice/sessions/:id.
func (h *VoiceHandler) Get(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, viewOf(sess.ID, sess.Processor.State()))
}

type transcriptReq struct {
	Transcript string `json:"transcript"`
}

// Transcript handles POST /api/voice/sessions/:id/transcript.
func (h *VoiceHandler) Transcript(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	var req transcriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Transcript = strings.TrimSpace(req.Transcript)
	if req.Transcript == "" {
		writeError(c, http.StatusBadRequest, "missing transcript")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), turnTimeout)
	defer cancel()

	if err := sess.Processor.ProcessTranscript(ctx, req.Transcript); err != nil {
		writeDialogueError(c, err)
		return
	}
	h.respondTurn(c, sess)
}

// Back handles POST /api/voice/sessions/:id/back.
func (h *VoiceHandler) Back(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	st := sess.Processor.GoBack()
	writeJSON(c, http.StatusOK, viewOf(sess.ID, st))
}

// Confirm handles POST /api/voice/sessions/:id/confirm — manual confirmation
// bypassing the auto-confirm delay.
func (h *VoiceHandler) Confirm(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), turnTimeout)
	defer cancel()
	sess.Processor.Confirm(ctx)
	h.respondTurn(c, sess)
}

// Reset handles POST /api/voice/sessions/:id/reset.
func (h *VoiceHandler) Reset(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	st := sess.Processor.Reset()
	writeJSON(c, http.StatusOK, viewOf(sess.ID, st))
}

func (h *VoiceHandler) respondTurn(c *gin.Context, sess *dialogue.Session) {
	resp := turnResponse{State: viewOf(sess.ID, sess.Processor.State())}
	h.mu.Lock()
	ev := h.events[sess.ID]
	h.mu.Unlock()
	if ev != nil {
		errs, cancelled, completed, retryLimit, rideID := ev.drain()
		resp.Errors = errs
		resp.Cancelled = cancelled
		resp.Completed = completed
		resp.RetryLimit = retryLimit
		resp.RideID = string(rideID)
	}
	writeJSON(c, http.StatusOK, resp)
	if resp.Completed != nil {
		// The conversation is over and its outcome delivered; free the
		// session and its event buffer.
		h.remove(sess.ID)
	}
}

func (h *VoiceHandler) lookup(c *gin.Context) (*dialogue.Session, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	sess, err := h.sessions.Get(types.ID(id))
	if err != nil {
		writeDialogueError(c, err)
		return nil, false
	}
	return sess, true
}
