package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// categoryRecord is one value of the questions.json object. The three slices
// are index-aligned.
type categoryRecord struct {
	Questions []string   `json:"questions"`
	Choices   [][]string `json:"choices"`
	Answers   []int      `json:"answers"`
}

// QuestionRepository stores the question bank in a questions.json file. The
// file is a JSON object whose key order is the category insertion order.
type QuestionRepository struct {
	path string
	log  *zap.Logger

	mu         sync.RWMutex
	order      []string
	categories map[string]*categoryRecord
}

// OpenQuestionRepository loads path, starting empty when it is missing or corrupt.
func OpenQuestionRepository(path string, log *zap.Logger) *QuestionRepository {
	if log == nil {
		log = zap.NewNop()
	}
	r := &QuestionRepository{path: path, log: log, categories: make(map[string]*categoryRecord)}

	data, err := readFile(path)
	if err != nil {
		log.Warn("store unreadable, starting empty", zap.String("path", path), zap.Error(err))
		return r
	}
	if data == nil {
		return r
	}
	order, categories, err := decodeBank(data)
	if err != nil {
		log.Warn("store corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return r
	}
	r.order, r.categories = order, categories
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
	rec, ok := r.categories[name]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return rec.toCategory(name, r.log), nil
}

func (r *QuestionRepository) AppendQuestion(_ context.Context, category string, q domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, existed := r.categories[category]
	if !existed {
		rec = &categoryRecord{}
		r.categories[category] = rec
		r.order = append(r.order, category)
	}
	rec.Questions = append(rec.Questions, q.Text)
	rec.Choices = append(rec.Choices, append([]string(nil), q.Choices...))
	rec.Answers = append(rec.Answers, q.CorrectIndex)

	if err := r.flushLocked(); err != nil {
		if existed {
			n := len(rec.Questions) - 1
			rec.Questions, rec.Choices, rec.Answers = rec.Questions[:n], rec.Choices[:n], rec.Answers[:n]
		} else {
			delete(r.categories, category)
			r.order = r.order[:len(r.order)-1]
		}
		return err
	}
	return nil
}

func (r *QuestionRepository) flushLocked() error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encode category name: %w", err)
		}
		value, err := json.Marshal(r.categories[name])
		if err != nil {
			return fmt.Errorf("encode category %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return writeIndented(r.path, buf.Bytes())
}

// decodeBank reads the top-level object token by token so the category order
// survives.
func decodeBank(data []byte) ([]string, map[string]*categoryRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var order []string
	categories := make(map[string]*categoryRecord)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected category name, got %v", tok)
		}
		rec := &categoryRecord{}
		if err := dec.Decode(rec); err != nil {
			return nil, nil, fmt.Errorf("category %q: %w", name, err)
		}
		if _, dup := categories[name]; !dup {
			order = append(order, name)
		}
		categories[name] = rec
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return order, categories, nil
}

// toCategory skips malformed rows instead of failing the whole category.
func (rec *categoryRecord) toCategory(name string, log *zap.Logger) domain.Category {
	n := len(rec.Questions)
	if len(rec.Choices) < n {
		n = len(rec.Choices)
	}
	if len(rec.Answers) < n {
		n = len(rec.Answers)
	}
	cat := domain.Category{Name: name, Questions: make([]domain.Question, 0, n)}
	for i := 0; i < n; i++ {
		choices := rec.Choices[i]
		answer := rec.Answers[i]
		if len(choices) != domain.ChoiceCount || answer < 0 || answer >= len(choices) {
			log.Warn("skipping malformed question", zap.String("category", name), zap.Int("index", i))
			continue
		}
		cat.Questions = append(cat.Questions, domain.Question{
			Text:         rec.Questions[i],
			Choices:      append([]string(nil), choices...),
			CorrectIndex: answer,
		})
	}
	return cat
}
