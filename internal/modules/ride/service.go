// README: Ride service — persists completed voice bookings and their state transitions.
package ride

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"concierge/internal/modules/dialogue"
	"concierge/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("ride request not found")
	ErrConflict     = errors.New("ride request state conflict")
	ErrBadRequest   = errors.New("bad request")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type CreateCommand struct {
	SessionID types.ID
	Data      dialogue.ParsedVoiceData
}

type CancelCommand struct {
	RideID    types.ID
	ActorType string
	Reason    string
}

// CreateFromVoice persists the finalized slots of a completed conversation
// and enqueues the ride for dispatch.
func (s *Service) CreateFromVoice(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if strings.TrimSpace(cmd.Data.Pickup) == "" || strings.TrimSpace(cmd.Data.Destination) == "" {
		return "", ErrBadRequest
	}
	if cmd.Data.GuestCount < 1 {
		return "", ErrBadRequest
	}

	id := newID()
	now := time.Now()
	r := &RideRequest{
		ID:            id,
		SessionID:     cmd.SessionID,
		RoomNumber:    cmd.Data.RoomNumber,
		GuestName:     cmd.Data.GuestName,
		Pickup:        cmd.Data.Pickup,
		Destination:   cmd.Data.Destination,
		GuestCount:    cmd.Data.GuestCount,
		Notes:         cmd.Data.Notes,
		Status:        StatusRequested,
		StatusVersion: 0,
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return "", err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		RideID:     id,
		FromStatus: StatusNone,
		ToStatus:   StatusRequested,
		ActorType:  "guest",
		CreatedAt:  now,
	})
	if err := s.store.EnqueueDispatch(ctx, id); err != nil {
		// The ride row is the source of truth; a missed queue push only
		// delays pickup by the dispatcher's reconciliation scan.
		log.Printf("ride: dispatch enqueue failed for %s: %v", id, err)
	}
	return id, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*RideRequest, error) {
	return s.store.Get(ctx, id)
}

// Dispatch marks a requested ride as handed to a driver.
func (s *Service) Dispatch(ctx context.Context, id types.ID) error {
	return s.transition(ctx, id, StatusDispatched, "system", nil)
}

// Complete marks a dispatched ride as finished.
func (s *Service) Complete(ctx context.Context, id types.ID) error {
	return s.transition(ctx, id, StatusCompleted, "system", nil)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	var reason *string
	if cmd.Reason != "" {
		reason = &cmd.Reason
	}
	actor := cmd.ActorType
	if actor == "" {
		actor = "guest"
	}
	return s.transition(ctx, cmd.RideID, StatusCancelled, actor, reason)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, actorType string, reason *string) error {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(r.Status, to) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, to, r.StatusVersion, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		RideID:     r.ID,
		FromStatus: r.Status,
		ToStatus:   to,
		ActorType:  actorType,
		CreatedAt:  time.Now(),
	})
	return nil
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
