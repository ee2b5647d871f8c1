package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "portal:session"

// Redis persists session state in Redis as JSON with a sliding TTL.
type Redis struct {
	client  redis.UniversalClient
	ttl     time.Duration
	loading *loadingFlags
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, loading: newLoadingFlags()}
}

// Dial parses url, connects and verifies connectivity.
func Dial(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, ttl), nil
}

// Ping reports whether Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (r *Redis) Close() error {
	return r.client.Close()
}

func partyKey(session string) string { return keyNamespace + ":" + session + ":party" }
func knownKey(session string) string { return keyNamespace + ":" + session + ":known" }

func (r *Redis) SelectedParty(ctx context.Context, session string) (*domain.Party, error) {
	var p domain.Party
	found, err := r.getJSON(ctx, partyKey(session), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *Redis) SetSelectedParty(ctx context.Context, session string, p *domain.Party) error {
	return r.setJSON(ctx, partyKey(session), p)
}

func (r *Redis) ClearSelectedParty(ctx context.Context, session string) error {
	return r.client.Del(ctx, partyKey(session)).Err()
}

func (r *Redis) KnownParties(ctx context.Context, session string) ([]domain.Party, error) {
	var list []domain.Party
	if _, err := r.getJSON(ctx, knownKey(session), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Redis) SetKnownParties(ctx context.Context, session string, parties []domain.Party) error {
	return r.setJSON(ctx, knownKey(session), parties)
}

func (r *Redis) SetPartyLoading(session string, loading bool) {
	r.loading.set(session, loading)
}

func (r *Redis) PartyLoading(session string) bool {
	return r.loading.get(session)
}

func (r *Redis) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
