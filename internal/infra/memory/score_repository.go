package memory

import (
	"context"
	"sync"

	"quizdesk/internal/domain"
)

// ScoreRepository keeps the ledger in memory.
type ScoreRepository struct {
	mu      sync.RWMutex
	entries []domain.ScoreEntry
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{}
}

func (r *ScoreRepository) LoadScores(_ context.Context) ([]domain.ScoreEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ScoreEntry(nil), r.entries...), nil
}

func (r *ScoreRepository) SaveScores(_ context.Context, entries []domain.ScoreEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]domain.ScoreEntry(nil), entries...)
	return nil
}
