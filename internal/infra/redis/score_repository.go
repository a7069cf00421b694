package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

const defaultScoresKey = "quiz:scores"

// ScoreRepository keeps the ledger as a Redis list of JSON entries, highest
// ranked first. The list is replaced wholesale inside a MULTI block so readers
// never see a partial ledger.
type ScoreRepository struct {
	client *redis.Client
	key    string
	log    *zap.Logger
}

func NewScoreRepository(client *redis.Client, key string, log *zap.Logger) *ScoreRepository {
	if key == "" {
		key = defaultScoresKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ScoreRepository{client: client, key: key, log: log}
}

func (r *ScoreRepository) LoadScores(ctx context.Context) ([]domain.ScoreEntry, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	entries := make([]domain.ScoreEntry, 0, len(raw))
	for i, item := range raw {
		var entry domain.ScoreEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			r.log.Warn("skipping corrupt score entry", zap.String("key", r.key), zap.Int("index", i), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *ScoreRepository) SaveScores(ctx context.Context, entries []domain.ScoreEntry) error {
	values := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode score: %w", err)
		}
		values = append(values, payload)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.RPush(ctx, r.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	return nil
}
