package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// SessionState is the lifecycle position of a quiz session.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateInProgress
	StateTimedOut
	StateCompleted
	StateReviewed
)

func (s SessionState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateTimedOut:
		return "timed_out"
	case StateCompleted:
		return "completed"
	case StateReviewed:
		return "reviewed"
	}
	return "unknown"
}

// finished reports whether scoring is over.
func (s SessionState) finished() bool {
	return s == StateTimedOut || s == StateCompleted || s == StateReviewed
}

// AnswerResult is the outcome of one submission.
type AnswerResult struct {
	Correct      bool `json:"correct"`
	Chosen       int  `json:"chosen"`
	CorrectIndex int  `json:"correctIndex"`
	Finished     bool `json:"finished"`
}

// TimerStatus is what a tick observed.
type TimerStatus struct {
	Remaining time.Duration
	Expired   bool
}

// Seconds is the whole seconds left, rounded down.
func (t TimerStatus) Seconds() int {
	return int(t.Remaining / time.Second)
}

// ReviewItem is one line of the answer review. Chosen is -1 when the question
// was never answered (the quiz timed out first).
type ReviewItem struct {
	Number       int      `json:"number"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
	Chosen       int      `json:"chosen"`
	Answered     bool     `json:"answered"`
	Correct      bool     `json:"correct"`
}

// Engine draws quiz sessions from the question bank.
type Engine struct {
	bank *QuestionBank
	now  func() time.Time
	log  *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewEngine(bank *QuestionBank, log *zap.Logger) *Engine {
	return NewEngineWithSource(bank, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now, log)
}

// NewEngineWithSource is test-only for deterministic shuffles and timestamps.
func NewEngineWithSource(bank *QuestionBank, rnd *rand.Rand, now func() time.Time, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{bank: bank, now: now, log: log, rnd: rnd}
}

// Start draws a fresh random selection from the category. The session keeps its
// own copies of the questions, so later bank edits do not affect it.
func (e *Engine) Start(ctx context.Context, category string, difficulty domain.Difficulty, timerEnabled bool) (*Session, error) {
	difficulty, err := domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return nil, err
	}
	cat, err := e.bank.GetCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	available := len(cat.Questions)
	if available == 0 {
		return nil, domain.ErrEmptyCategory
	}

	e.mu.Lock()
	order := e.rnd.Perm(available)
	e.mu.Unlock()

	count := difficulty.QuestionCount(available)
	selected := make([]domain.Question, count)
	for i := 0; i < count; i++ {
		selected[i] = cat.Questions[order[i]]
	}

	session := &Session{
		id:           uuid.NewString(),
		category:     cat.Name,
		difficulty:   difficulty,
		questions:    selected,
		answers:      make([]int, 0, count),
		timerEnabled: timerEnabled,
		now:          e.now,
		state:        StateInProgress,
	}
	if timerEnabled {
		session.startedAt = e.now()
		session.budget = time.Duration(count) * difficulty.PerQuestion()
	}
	e.log.Debug("quiz started",
		zap.String("session_id", session.id),
		zap.String("category", cat.Name),
		zap.String("difficulty", string(difficulty)),
		zap.Int("questions", count),
		zap.Bool("timer", timerEnabled),
	)
	return session, nil
}

// Session is one attempt at a quiz.
type Session struct {
	id           string
	category     string
	difficulty   domain.Difficulty
	questions    []domain.Question
	index        int
	score        int
	answers      []int
	timerEnabled bool
	startedAt    time.Time
	budget       time.Duration
	now          func() time.Time

	mu    sync.Mutex
	state SessionState
}

func (s *Session) ID() string                    { return s.id }
func (s *Session) Category() string              { return s.category }
func (s *Session) Difficulty() domain.Difficulty { return s.difficulty }
func (s *Session) Len() int                      { return len(s.questions) }
func (s *Session) TimerEnabled() bool            { return s.timerEnabled }
func (s *Session) Budget() time.Duration         { return s.budget }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Index is the zero-based position of the current question.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Answers returns the submitted choices in order.
func (s *Session) Answers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.answers))
	copy(out, s.answers)
	return out
}

// CurrentQuestion returns the question at the current index, or false once
// every question has been consumed.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[s.index].Clone(), true
}

// SubmitAnswer records a choice for the current question and advances.
func (s *Session) SubmitAnswer(choice int) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress || s.index >= len(s.questions) {
		return AnswerResult{}, domain.ErrNoActiveSession
	}
	q := s.questions[s.index]
	if choice < 0 || choice >= len(q.Choices) {
		return AnswerResult{}, domain.ErrInvalidChoice
	}

	s.answers = append(s.answers, choice)
	correct := choice == q.CorrectIndex
	if correct {
		s.score++
	}
	s.index++
	if s.index >= len(s.questions) {
		s.state = StateCompleted
	}
	return AnswerResult{
		Correct:      correct,
		Chosen:       choice,
		CorrectIndex: q.CorrectIndex,
		Finished:     s.state == StateCompleted,
	}, nil
}

// Tick evaluates the countdown at now. Reaching zero while in progress moves
// the session to TimedOut; unanswered questions stay unanswered.
func (s *Session) Tick(now time.Time) TimerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.timerEnabled {
		return TimerStatus{}
	}
	if s.state == StateTimedOut {
		return TimerStatus{Expired: true}
	}
	remaining := s.budget - now.Sub(s.startedAt)
	if remaining > 0 {
		return TimerStatus{Remaining: remaining}
	}
	if s.state == StateInProgress {
		s.state = StateTimedOut
		return TimerStatus{Expired: true}
	}
	return TimerStatus{}
}

// Finalize produces the ledger entry for a finished session. It does not
// persist anything.
func (s *Session) Finalize(player string) (domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted && s.state != StateTimedOut {
		return domain.ScoreEntry{}, domain.ErrSessionNotFinished
	}
	total := len(s.questions)
	percentage := 0.0
	if total > 0 {
		percentage = 100 * float64(s.score) / float64(total)
	}
	return domain.ScoreEntry{
		Name:       player,
		Score:      s.score,
		Total:      total,
		Percentage: percentage,
		Category:   s.category,
		Difficulty: s.difficulty,
		Date:       s.now().Format(domain.ScoreDateLayout),
	}, nil
}

// Review lists every question with the submitted choice and moves the session
// to Reviewed.
func (s *Session) Review() ([]ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.finished() {
		return nil, domain.ErrSessionNotFinished
	}
	items := make([]ReviewItem, len(s.questions))
	for i, q := range s.questions {
		item := ReviewItem{
			Number:       i + 1,
			Text:         q.Text,
			Choices:      append([]string(nil), q.Choices...),
			CorrectIndex: q.CorrectIndex,
			Chosen:       -1,
		}
		if i < len(s.answers) {
			item.Answered = true
			item.Chosen = s.answers[i]
			item.Correct = s.answers[i] == q.CorrectIndex
		}
		items[i] = item
	}
	s.state = StateReviewed
	return items, nil
}
