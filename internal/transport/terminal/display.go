package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// Display renders controller output as plain text. Choices are numbered from 1.
type Display struct {
	out io.Writer
}

func NewDisplay(out io.Writer) *Display {
	return &Display{out: out}
}

func (d *Display) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *Display) PromptCredentials() {
	d.printf("\n== Quiz Application ==\n")
	d.printf("login <username> <password> | signup | recover <username> | help\n")
}

func (d *Display) PromptSecurityQuestion(username, question string) {
	d.printf("Security question for %s: %s\n", username, question)
	d.printf("verify <answer>\n")
}

func (d *Display) RenderMenu(menu app.MenuView) {
	d.printf("\nWelcome, %s! (%s)\n", menu.Username, menu.Role)
	d.printf("Categories:\n")
	for _, name := range menu.Categories {
		d.printf("  - %s\n", name)
	}
	levels := make([]string, len(menu.Difficulties))
	for i, level := range menu.Difficulties {
		levels[i] = string(level)
	}
	d.printf("Difficulties: %s\n", strings.Join(levels, ", "))
	for _, action := range menu.Actions {
		d.printf("  %s\n", actionUsage(action))
	}
}

func actionUsage(action app.Action) string {
	switch action {
	case app.ActionStartQuiz:
		return "start <difficulty> <timer on|off> <category>"
	case app.ActionScores:
		return "scores"
	case app.ActionAddQuestion:
		return "add <category> | <question> | <choice 1> | <choice 2> | <choice 3> | <choice 4> | <correct 1-4>"
	case app.ActionManageUsers:
		return "users | role <username> <user|admin> | create <username> <password> <confirm> <question 1-5> <answer>"
	case app.ActionLogout:
		return "logout"
	}
	return string(action)
}

func (d *Display) RenderQuestion(q app.QuestionView) {
	d.printf("\n[%s] Question %d/%d\n%s\n", q.Category, q.Number, q.Total, q.Text)
	for i, choice := range q.Choices {
		d.printf("  %d) %s\n", i+1, choice)
	}
}

func (d *Display) RenderFeedback(result app.AnswerResult) {
	if result.Correct {
		d.printf("Correct!\n")
		return
	}
	d.printf("Wrong. The correct answer was %d.\n", result.CorrectIndex+1)
}

// RenderTimer stays quiet most of the time so the countdown does not drown the prompt.
func (d *Display) RenderTimer(remaining time.Duration) {
	secs := int(remaining / time.Second)
	if secs%10 != 0 && secs > 5 {
		return
	}
	d.printf("Time left: %02d:%02d\n", secs/60, secs%60)
}

func (d *Display) RenderResult(result app.ResultView) {
	entry := result.Entry
	if result.TimedOut {
		d.printf("\nTime's up!\n")
	}
	d.printf("\nQuiz complete: %s (%s)\n", entry.Category, entry.Difficulty)
	d.printf("Score: %d/%d (%.2f%%)\n%s\n", entry.Score, entry.Total, entry.Percentage, result.Rating)
	d.printf("review | menu\n")
}

func (d *Display) RenderReview(items []app.ReviewItem) {
	d.printf("\n== Answer review ==\n")
	for _, item := range items {
		d.printf("%d. %s\n", item.Number, item.Text)
		yours := "no answer"
		if item.Answered {
			yours = item.Choices[item.Chosen]
		}
		mark := "x"
		if item.Correct {
			mark = "ok"
		}
		d.printf("   your answer: %s [%s]\n", yours, mark)
		d.printf("   correct answer: %s\n", item.Choices[item.CorrectIndex])
	}
}

func (d *Display) RenderScores(entries []domain.ScoreEntry) {
	d.printf("\n== High scores ==\n")
	if len(entries) == 0 {
		d.printf("No scores yet.\n")
		return
	}
	for i, e := range entries {
		d.printf("%2d. %-12s %3d/%-3d %6.2f%%  %s (%s)  %s\n",
			i+1, e.Name, e.Score, e.Total, e.Percentage, e.Category, e.Difficulty, e.Date)
	}
}

func (d *Display) RenderUsers(users []domain.User) {
	d.printf("\n== Users ==\n")
	for _, u := range users {
		d.printf("  %-16s %s\n", u.Username, u.Role)
	}
}

func (d *Display) Notify(message string, kind app.NotifyKind) {
	switch kind {
	case app.NotifyError:
		d.printf("Error: %s\n", message)
	case app.NotifyWarning:
		d.printf("Warning: %s\n", message)
	default:
		d.printf("%s\n", message)
	}
}
