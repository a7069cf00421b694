package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// LedgerSize is how many entries the high score table keeps.
const LedgerSize = 10

// ScoreLedger is the capped, rank-ordered high score table.
type ScoreLedger struct {
	repo ScoreRepository
	log  *zap.Logger
	mu   sync.Mutex
}

func NewScoreLedger(repo ScoreRepository, log *zap.Logger) *ScoreLedger {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScoreLedger{repo: repo, log: log}
}

// Record appends entry, re-ranks by percentage (stable, so ties keep their
// earlier order), keeps the top LedgerSize and persists.
func (l *ScoreLedger) Record(ctx context.Context, entry domain.ScoreEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.repo.LoadScores(ctx)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	entries = rankScores(append(entries, entry))
	if err := l.repo.SaveScores(ctx, entries); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	l.log.Debug("score recorded",
		zap.String("name", entry.Name),
		zap.Float64("percentage", entry.Percentage),
		zap.Int("ledger_size", len(entries)),
	)
	return nil
}

// List returns the ledger in rank order.
func (l *ScoreLedger) List(ctx context.Context) ([]domain.ScoreEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.repo.LoadScores(ctx)
	if err != nil {
		return nil, err
	}
	return rankScores(entries), nil
}

func rankScores(entries []domain.ScoreEntry) []domain.ScoreEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percentage > entries[j].Percentage
	})
	if len(entries) > LedgerSize {
		entries = entries[:LedgerSize]
	}
	return entries
}
