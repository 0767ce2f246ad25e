package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key holding the global append-only log.
	eventLogKey = "events:log"
	// Per-agent index keys: events:agent:<id>.
	eventAgentKeyPrefix = "events:agent:"
)

// RedisStore persists the event log in Redis lists. This is the recommended
// store when multiple instances share one event stream but Postgres is not
// deployed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, eventLogKey, payload)
	if event.AgentID != 0 {
		pipe.RPush(ctx, eventAgentKeyPrefix+event.AgentID.String(), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *RedisStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	raw, err := s.client.LRange(ctx, eventLogKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	return decodeAll(raw)
}

func (s *RedisStore) ListByAgent(ctx context.Context, agentID int64) ([]Event, error) {
	key := eventAgentKeyPrefix + strconv.FormatInt(agentID, 10)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list agent events: %w", err)
	}
	return decodeAll(raw)
}

func decodeAll(raw []string) ([]Event, error) {
	out := make([]Event, 0, len(raw))
	for _, r := range raw {
		var e Event
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
