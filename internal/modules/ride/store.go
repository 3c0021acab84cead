// README: Ride request store backed by PostgreSQL plus a Redis dispatch queue.
package ride

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"concierge/internal/types"
)

// dispatchQueueKey is the list the (external) dispatcher consumes ride ids
// from, newest last.
const dispatchQueueKey = "concierge:rides:dispatch"

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

func (s *Store) Create(ctx context.Context, r *RideRequest) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_requests (
			id, session_id, room_number, guest_name,
			pickup, destination, guest_count, notes,
			status, status_version, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11
		)`,
		string(r.ID),
		string(r.SessionID),
		r.RoomNumber,
		r.GuestName,
		r.Pickup,
		r.Destination,
		r.GuestCount,
		r.Notes,
		string(r.Status),
		r.StatusVersion,
		r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*RideRequest, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, session_id, room_number, guest_name,
		       pickup, destination, guest_count, notes,
		       status, status_version,
		       created_at, dispatched_at, completed_at, cancelled_at, cancel_reason
		FROM ride_requests
		WHERE id = $1`, string(id),
	)

	var r RideRequest
	var dispatchedAt, completedAt, cancelledAt sql.NullTime
	var cancelReason sql.NullString

	err := row.Scan(
		&r.ID, &r.SessionID, &r.RoomNumber, &r.GuestName,
		&r.Pickup, &r.Destination, &r.GuestCount, &r.Notes,
		&r.Status, &r.StatusVersion,
		&r.CreatedAt, &dispatchedAt, &completedAt, &cancelledAt, &cancelReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.DispatchedAt = toTimePtr(dispatchedAt)
	r.CompletedAt = toTimePtr(completedAt)
	r.CancelledAt = toTimePtr(cancelledAt)
	if cancelReason.Valid {
		r.CancelReason = &cancelReason.String
	}
	return &r, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE ride_requests
		SET status = $1,
		    status_version = status_version + 1,
		    dispatched_at = CASE WHEN $1 = 'dispatched' THEN NOW() ELSE dispatched_at END,
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END,
		    cancel_reason = COALESCE($2, cancel_reason)
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to),
		reason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_state_events (
			ride_id, from_status, to_status, actor_type, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(e.RideID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		e.CreatedAt,
	)
	return err
}

// EnqueueDispatch hands a freshly created ride to the dispatcher queue.
func (s *Store) EnqueueDispatch(ctx context.Context, id types.ID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.LPush(ctx, dispatchQueueKey, string(id)).Err()
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
