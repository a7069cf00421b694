package domain

import (
	"strings"
	"time"
)

// ChoiceCount is the number of choices every question carries.
const ChoiceCount = 4

// Question models an MCQ question with exactly one correct choice.
type Question struct {
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
}

// Clone returns a deep copy so callers can hold it past later bank edits.
func (q Question) Clone() Question {
	choices := make([]string, len(q.Choices))
	copy(choices, q.Choices)
	return Question{Text: q.Text, Choices: choices, CorrectIndex: q.CorrectIndex}
}

// Category is a named, ordered list of questions.
type Category struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Clone returns a deep copy of the category.
func (c Category) Clone() Category {
	questions := make([]Question, len(c.Questions))
	for i, q := range c.Questions {
		questions[i] = q.Clone()
	}
	return Category{Name: c.Name, Questions: questions}
}

// Difficulty drives both the number of questions and the time allowed per question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty accepts any casing of Easy, Medium or Hard.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return "", ErrInvalidDifficulty
}

// QuestionCount returns how many of the available questions a session at this
// difficulty draws. Hard takes everything.
func (d Difficulty) QuestionCount(available int) int {
	requested := available
	switch d {
	case DifficultyEasy:
		requested = 5
	case DifficultyMedium:
		requested = 10
	}
	if requested > available {
		return available
	}
	return requested
}

// PerQuestion is the time allowance per question when the timer is on.
func (d Difficulty) PerQuestion() time.Duration {
	switch d {
	case DifficultyEasy:
		return 45 * time.Second
	case DifficultyHard:
		return 15 * time.Second
	default:
		return 30 * time.Second
	}
}

// ScoreDateLayout is the layout of ScoreEntry.Date.
const ScoreDateLayout = "2006-01-02 15:04"

// ScoreEntry is one finished quiz as kept in the ledger.
type ScoreEntry struct {
	Name       string     `json:"name"`
	Score      int        `json:"score"`
	Total      int        `json:"total"`
	Percentage float64    `json:"percentage"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Date       string     `json:"date"`
}

// Rating turns a percentage into the message shown on the result screen.
func Rating(percentage float64) string {
	switch {
	case percentage >= 90:
		return "OUTSTANDING!"
	case percentage >= 80:
		return "EXCELLENT!"
	case percentage >= 70:
		return "GOOD JOB!"
	case percentage >= 60:
		return "KEEP PRACTICING!"
	default:
		return "NEED MORE STUDY!"
	}
}
