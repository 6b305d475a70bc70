package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/caresync/signaling/internal/domain"
)

// redisClient is the slice of go-redis the history store needs, kept
// narrow so tests can substitute it.
type redisClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// RedisHistory stores each room as a list of JSON documents under
// chat:{roomKey}, newest at the head. maxLen bounds the list; older
// messages fall off the tail.
type RedisHistory struct {
	client redisClient
	maxLen int64
}

func NewRedisHistory(client redisClient, maxLen int64) (*RedisHistory, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisHistory{client: client, maxLen: maxLen}, nil
}

func roomHistoryKey(key domain.RoomKey) string {
	return "chat:" + string(key)
}

func (s *RedisHistory) Append(ctx context.Context, msg domain.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}

	key := roomHistoryKey(msg.Room())
	if err := s.client.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("lpush chat history: %w", err)
	}
	if s.maxLen > 0 {
		if err := s.client.LTrim(ctx, key, 0, s.maxLen-1).Err(); err != nil {
			log.Warn().Err(err).Str("module", "storage.redis").Str("key", key).Msg("trim chat history")
		}
	}
	return nil
}

// History reads the newest limit messages and returns them oldest
// first. Documents that no longer unmarshal are skipped, not fatal.
func (s *RedisHistory) History(ctx context.Context, doctorID, patientID domain.UserID, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = int(s.maxLen)
	}
	key := roomHistoryKey(domain.RoomKeyFor(doctorID, patientID))

	payloads, err := s.client.LRange(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange chat history: %w", err)
	}

	out := make([]domain.ChatMessage, 0, len(payloads))
	for i := len(payloads) - 1; i >= 0; i-- {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(payloads[i]), &msg); err != nil {
			log.Warn().Err(err).Str("module", "storage.redis").Str("key", key).Msg("skipping unreadable history entry")
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
