package file

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// ScoreRepository stores the ledger in a scores.json array.
type ScoreRepository struct {
	path string
	log  *zap.Logger

	mu      sync.RWMutex
	entries []domain.ScoreEntry
}

// OpenScoreRepository loads path, starting empty when it is missing or corrupt.
func OpenScoreRepository(path string, log *zap.Logger) *ScoreRepository {
	if log == nil {
		log = zap.NewNop()
	}
	r := &ScoreRepository{path: path, log: log}
	if !loadJSON(path, &r.entries, log) {
		r.entries = nil
	}
	return r
}

func (r *ScoreRepository) LoadScores(_ context.Context) ([]domain.ScoreEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ScoreEntry(nil), r.entries...), nil
}

func (r *ScoreRepository) SaveScores(_ context.Context, entries []domain.ScoreEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := append(make([]domain.ScoreEntry, 0, len(entries)), entries...)
	if err := writeJSON(r.path, next); err != nil {
		return err
	}
	r.entries = next
	return nil
}
