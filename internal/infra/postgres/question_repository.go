package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizdesk/internal/domain"
)

// QuestionRepository stores the question bank in the categories and questions
// tables. Serial ids give both the category order and the question order.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func (r *QuestionRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *QuestionRepository) GetCategory(ctx context.Context, name string) (domain.Category, error) {
	var categoryID int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM categories WHERE name=$1`, name).Scan(&categoryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("load category: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT text, choices, correct_index FROM questions WHERE category_id=$1 ORDER BY id`,
		categoryID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	category := domain.Category{Name: name}
	for rows.Next() {
		var (
			q       domain.Question
			correct int16
		)
		if err := rows.Scan(&q.Text, &q.Choices, &correct); err != nil {
			return domain.Category{}, fmt.Errorf("scan question: %w", err)
		}
		q.CorrectIndex = int(correct)
		category.Questions = append(category.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Category{}, fmt.Errorf("load questions: %w", err)
	}
	return category, nil
}

// AppendQuestion creates the category on first use. Both writes share one
// transaction.
func (r *QuestionRepository) AppendQuestion(ctx context.Context, category string, q domain.Question) error {
	return r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var categoryID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, category).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("upsert category: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO questions (category_id, text, choices, correct_index) VALUES ($1, $2, $3, $4)`,
			categoryID, q.Text, q.Choices, int16(q.CorrectIndex))
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		return nil
	})
}
