package app

import (
	"context"

	"quizdesk/internal/domain"
)

// UserRepository stores accounts keyed by case-sensitive username.
// Get returns domain.ErrUserNotFound for unknown usernames. Save persists immediately.
type UserRepository interface {
	Get(ctx context.Context, username string) (domain.User, error)
	Save(ctx context.Context, user domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

// QuestionRepository stores categories in insertion order.
// GetCategory returns domain.ErrCategoryNotFound for unknown names.
// AppendQuestion creates the category when it is new and persists immediately.
type QuestionRepository interface {
	ListCategories(ctx context.Context) ([]string, error)
	GetCategory(ctx context.Context, name string) (domain.Category, error)
	AppendQuestion(ctx context.Context, category string, q domain.Question) error
}

// ScoreRepository loads and replaces the whole ledger.
type ScoreRepository interface {
	LoadScores(ctx context.Context) ([]domain.ScoreEntry, error)
	SaveScores(ctx context.Context, entries []domain.ScoreEntry) error
}
