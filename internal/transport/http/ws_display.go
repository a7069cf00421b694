package http

import (
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

type promptPayload struct {
	Kind     string `json:"kind"`
	Username string `json:"username,omitempty"`
	Question string `json:"question,omitempty"`
}

type timerPayload struct {
	Remaining int `json:"remaining"`
}

type notifyPayload struct {
	Message string         `json:"message"`
	Kind    app.NotifyKind `json:"kind"`
}

type reviewPayload struct {
	Items []app.ReviewItem `json:"items"`
}

type scoresPayload struct {
	Entries []domain.ScoreEntry `json:"entries"`
}

type usersPayload struct {
	Users []domain.User `json:"users"`
}

// wsDisplay queues every render as a JSON message for the connection writer.
type wsDisplay struct {
	send       chan<- outboundMessage[any]
	writerDone <-chan struct{}
}

func (d *wsDisplay) emit(typ string, payload any) {
	select {
	case d.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-d.writerDone:
	}
}

func (d *wsDisplay) PromptCredentials() {
	d.emit("prompt", promptPayload{Kind: "credentials"})
}

func (d *wsDisplay) PromptSecurityQuestion(username, question string) {
	d.emit("prompt", promptPayload{Kind: "security_question", Username: username, Question: question})
}

func (d *wsDisplay) RenderMenu(menu app.MenuView) { d.emit("menu", menu) }

func (d *wsDisplay) RenderQuestion(q app.QuestionView) { d.emit("question", q) }

func (d *wsDisplay) RenderFeedback(result app.AnswerResult) { d.emit("feedback", result) }

func (d *wsDisplay) RenderTimer(remaining time.Duration) {
	d.emit("timer", timerPayload{Remaining: int(remaining / time.Second)})
}

func (d *wsDisplay) RenderResult(result app.ResultView) { d.emit("result", result) }

func (d *wsDisplay) RenderReview(items []app.ReviewItem) {
	d.emit("review", reviewPayload{Items: items})
}

func (d *wsDisplay) RenderScores(entries []domain.ScoreEntry) {
	d.emit("scores", scoresPayload{Entries: entries})
}

func (d *wsDisplay) RenderUsers(users []domain.User) {
	d.emit("users", usersPayload{Users: users})
}

func (d *wsDisplay) Notify(message string, kind app.NotifyKind) {
	d.emit("notify", notifyPayload{Message: message, Kind: kind})
}
