// README: Location store backed by Postgres with a Redis cache in front.
package location

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	catalogCacheKey = "concierge:locations:catalog"
	catalogCacheTTL = 5 * time.Minute
)

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

// List returns the full catalog, served from the cache when warm. The
// catalog changes rarely (housekeeping edits), so a short TTL is enough.
func (s *Store) List(ctx context.Context) ([]Place, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var cached []Place
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, aliases, lat, lng, area
		FROM hotel_locations
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Aliases, &p.Position.Lat, &p.Position.Lng, &p.Area); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(places); err == nil {
			_ = s.redis.Set(ctx, catalogCacheKey, raw, catalogCacheTTL).Err()
		}
	}
	return places, nil
}
