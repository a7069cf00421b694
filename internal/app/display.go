package app

import (
	"time"

	"quizdesk/internal/domain"
)

// NotifyKind tells the display how to present a message.
type NotifyKind string

const (
	NotifyInfo    NotifyKind = "info"
	NotifyWarning NotifyKind = "warning"
	NotifyError   NotifyKind = "error"
)

// Action is a main-menu entry.
type Action string

const (
	ActionStartQuiz   Action = "start"
	ActionScores      Action = "scores"
	ActionAddQuestion Action = "add_question"
	ActionManageUsers Action = "manage_users"
	ActionLogout      Action = "logout"
)

// ActionsFor lists the menu entries a role may use.
func ActionsFor(role domain.Role) []Action {
	actions := []Action{ActionStartQuiz, ActionScores}
	if role.CanAddQuestions() {
		actions = append(actions, ActionAddQuestion)
	}
	if role.CanManageUsers() {
		actions = append(actions, ActionManageUsers)
	}
	return append(actions, ActionLogout)
}

// MenuView is what the main menu shows.
type MenuView struct {
	Username     string              `json:"username"`
	Role         domain.Role         `json:"role"`
	Categories   []string            `json:"categories"`
	Difficulties []domain.Difficulty `json:"difficulties"`
	Actions      []Action            `json:"actions"`
}

// QuestionView is one question as presented to the player.
type QuestionView struct {
	Number   int      `json:"number"`
	Total    int      `json:"total"`
	Category string   `json:"category"`
	Text     string   `json:"text"`
	Choices  []string `json:"choices"`
}

// ResultView is the end-of-quiz screen.
type ResultView struct {
	Entry    domain.ScoreEntry `json:"entry"`
	Rating   string            `json:"rating"`
	TimedOut bool              `json:"timedOut"`
}

// Display is the presentation boundary. Implementations render; they never
// call back into the controller from inside these methods.
type Display interface {
	PromptCredentials()
	PromptSecurityQuestion(username, question string)
	RenderMenu(menu MenuView)
	RenderQuestion(q QuestionView)
	RenderFeedback(result AnswerResult)
	RenderTimer(remaining time.Duration)
	RenderResult(result ResultView)
	RenderReview(items []ReviewItem)
	RenderScores(entries []domain.ScoreEntry)
	RenderUsers(users []domain.User)
	Notify(message string, kind NotifyKind)
}
