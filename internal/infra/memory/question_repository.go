package memory

import (
	"context"
	"sync"

	"quizdesk/internal/domain"
)

// QuestionRepository keeps categories in memory, in insertion order.
type QuestionRepository struct {
	mu         sync.RWMutex
	order      []string
	categories map[string]*domain.Category
}

func NewQuestionRepository(seed ...domain.Category) *QuestionRepository {
	r := &QuestionRepository{categories: make(map[string]*domain.Category)}
	for _, c := range seed {
		cat := c.Clone()
		if _, ok := r.categories[cat.Name]; !ok {
			r.order = append(r.order, cat.Name)
		}
		r.categories[cat.Name] = &cat
	}
	return r
}

func (r *QuestionRepository) ListCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...), nil
}

func (r *QuestionRepository) GetCategory(_ context.Context, name string) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.categories[name]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return cat.Clone(), nil
}

func (r *QuestionRepository) AppendQuestion(_ context.Context, category string, q domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, ok := r.categories[category]
	if !ok {
		cat = &domain.Category{Name: category}
		r.categories[category] = cat
		r.order = append(r.order, category)
	}
	cat.Questions = append(cat.Questions, q.Clone())
	return nil
}
