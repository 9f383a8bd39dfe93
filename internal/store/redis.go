package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

const (
	redisEntryPrefix = "checkin:entry:"
	redisTimelineKey = "checkin:timeline"
)

// redisStore keeps each entry as a JSON value with a sorted-set index over
// entry dates for windowed reads.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisStore(client *redis.Client, ttl time.Duration) *redisStore {
	return &redisStore{client: client, ttl: ttl}
}

// SaveEntry implements Store. SET and ZADD both overwrite, so a retried save
// of the same entry ID is naturally idempotent.
func (s *redisStore) SaveEntry(ctx context.Context, entry checkin.Entry) (string, error) {
	val, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	key := redisEntryPrefix + entry.ID
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, val, s.ttl)
		pipe.ZAdd(ctx, redisTimelineKey, redis.Z{
			Score:  float64(entry.Date.UTC().Unix()),
			Member: entry.ID,
		})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}
	return entry.ID, nil
}

// RecentEntries implements Store.
func (s *redisStore) RecentEntries(ctx context.Context, windowDays int) ([]checkin.Entry, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays).Unix()

	ids, err := s.client.ZRevRangeByScore(ctx, redisTimelineKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read timeline index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisEntryPrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	entries := make([]checkin.Entry, 0, len(values))
	for _, raw := range values {
		text, ok := raw.(string)
		if !ok {
			// Entry value expired out from under the index; skip it.
			continue
		}
		var entry checkin.Entry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
