// Package redis provides Redis-backed persistence for drafting sessions.
// Sessions are stored as JSON values under a key prefix, with a sorted set
// indexing them by last update for listing.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pebblepay/scrivener/pkg/persistence"
)

const (
	sessionKeyPrefix = "scrivener:session:"
	sessionIndexKey  = "scrivener:sessions"
)

// Persistence implements persistence.Persistence on a Redis server.
type Persistence struct {
	client *goredis.Client
}

// NewPersistence connects to the Redis server named by a redis:// URL.
func NewPersistence(url string) (*Persistence, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	return &Persistence{client: goredis.NewClient(opts)}, nil
}

// NewPersistenceWithClient wraps an existing client. Used by tests.
func NewPersistenceWithClient(client *goredis.Client) *Persistence {
	return &Persistence{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (rp *Persistence) Sessions(ctx context.Context) ([]persistence.Summary, error) {
	// Most recently updated first.
	ids, err := rp.client.ZRevRange(ctx, sessionIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	summaries := make([]persistence.Summary, 0, len(ids))

	for _, id := range ids {
		session, err := rp.SessionByID(ctx, id)
		if err != nil {
			if persistence.IsSessionNotFound(err) {
				continue
			}

			return nil, err
		}

		summaries = append(summaries, persistence.Summarize(session))
	}

	return summaries, nil
}

func (rp *Persistence) SaveSession(ctx context.Context, session *persistence.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return persistence.NewSessionError("Save", session.ID, err)
	}

	pipe := rp.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, 0)
	pipe.ZAdd(ctx, sessionIndexKey, goredis.Z{
		Score:  float64(session.UpdatedAt.UnixNano()),
		Member: session.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewSessionError("Save", session.ID, err)
	}

	return nil
}

func (rp *Persistence) SessionByID(ctx context.Context, id string) (*persistence.Session, error) {
	data, err := rp.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	var session persistence.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	return &session, nil
}

func (rp *Persistence) DeleteSession(ctx context.Context, id string) error {
	removed, err := rp.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return persistence.NewSessionError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewSessionError("Delete", id, persistence.ErrSessionNotFound)
	}

	if err := rp.client.ZRem(ctx, sessionIndexKey, id).Err(); err != nil {
		return persistence.NewSessionError("Delete", id, err)
	}

	return nil
}

func (rp *Persistence) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}
