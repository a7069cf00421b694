package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// QuestionBank exposes the category/question rules on top of a QuestionRepository.
type QuestionBank struct {
	repo QuestionRepository
	log  *zap.Logger
}

func NewQuestionBank(repo QuestionRepository, log *zap.Logger) *QuestionBank {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuestionBank{repo: repo, log: log}
}

// EnsureSeeded installs the default categories when the bank is empty.
func (b *QuestionBank) EnsureSeeded(ctx context.Context) error {
	names, err := b.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(names) > 0 {
		return nil
	}
	for _, category := range DefaultCategories() {
		for _, q := range category.Questions {
			if err := b.repo.AppendQuestion(ctx, category.Name, q); err != nil {
				return fmt.Errorf("seed category %q: %w", category.Name, err)
			}
		}
	}
	b.log.Info("seeded default question bank")
	return nil
}

// ListCategories returns category names in insertion order.
func (b *QuestionBank) ListCategories(ctx context.Context) ([]string, error) {
	return b.repo.ListCategories(ctx)
}

// GetCategory returns a copy of the named category.
func (b *QuestionBank) GetCategory(ctx context.Context, name string) (domain.Category, error) {
	category, err := b.repo.GetCategory(ctx, name)
	if err != nil {
		return domain.Category{}, err
	}
	return category.Clone(), nil
}

// AddQuestion validates and appends a question, creating the category if needed.
func (b *QuestionBank) AddQuestion(ctx context.Context, category, text string, choices []string, correctIndex int) error {
	category = strings.TrimSpace(category)
	text = strings.TrimSpace(text)
	if category == "" || text == "" || len(choices) != domain.ChoiceCount {
		return domain.ErrMissingFields
	}
	trimmed := make([]string, len(choices))
	for i, c := range choices {
		trimmed[i] = strings.TrimSpace(c)
		if trimmed[i] == "" {
			return domain.ErrMissingFields
		}
	}
	if correctIndex < 0 || correctIndex >= domain.ChoiceCount {
		return domain.ErrInvalidChoice
	}

	q := domain.Question{Text: text, Choices: trimmed, CorrectIndex: correctIndex}
	if err := b.repo.AppendQuestion(ctx, category, q); err != nil {
		return fmt.Errorf("append question: %w", err)
	}
	b.log.Info("question added", zap.String("category", category))
	return nil
}
