// Package terminal is the line-oriented front end. One goroutine reads input
// lines; the event loop owns the Controller and multiplexes those lines with
// the countdown ticker.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

type Terminal struct {
	services app.Services
	in       io.Reader
	out      io.Writer
	log      *zap.Logger
	tick     time.Duration
}

func New(services app.Services, in io.Reader, out io.Writer, log *zap.Logger) *Terminal {
	if log == nil {
		log = zap.NewNop()
	}
	return &Terminal{services: services, in: in, out: out, log: log, tick: time.Second}
}

// Run drives one player session until input ends, the player quits, or ctx
// is cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	display := NewDisplay(t.out)
	ctrl := t.services.NewController(display)

	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	ctrl.Open()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if quit := t.handle(ctx, ctrl, display, line); quit {
				return nil
			}
		case now := <-ticker.C:
			if ctrl.TimerActive() {
				_ = ctrl.Tick(ctx, now)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handle runs one command line. It reports true when the player quits.
func (t *Terminal) handle(ctx context.Context, ctrl *app.Controller, display *Display, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	t.log.Debug("command", zap.String("cmd", cmd), zap.Int("args", len(args)))

	// A bare number answers the current question.
	if n, err := strconv.Atoi(cmd); err == nil {
		if ctrl.SelectChoice(n-1) == nil {
			_ = ctrl.Submit(ctx)
		}
		return false
	}

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return true
	case "help":
		t.printHelp()
	case "login":
		if len(args) != 2 {
			return usage(display, "login <username> <password>")
		}
		_ = ctrl.Login(ctx, args[0], args[1])
	case "logout":
		ctrl.Logout()
	case "signup":
		req, ok := parseAccount(args)
		if !ok {
			t.printSecurityQuestions()
			return usage(display, "signup <username> <password> <confirm> <question 1-5> <answer>")
		}
		_ = ctrl.SignUp(ctx, req)
	case "recover":
		if len(args) != 1 {
			return usage(display, "recover <username>")
		}
		_ = ctrl.ForgotPasswordBegin(ctx, args[0])
	case "verify":
		_ = ctrl.ForgotPasswordVerify(ctx, rest)
	case "reset":
		if len(args) != 2 {
			return usage(display, "reset <new password> <confirm>")
		}
		_ = ctrl.ForgotPasswordCommit(ctx, args[0], args[1])
	case "menu":
		_ = ctrl.ReturnToMenu(ctx)
	case "start":
		if len(args) < 3 {
			return usage(display, "start <difficulty> <timer on|off> <category>")
		}
		timer, ok := parseSwitch(args[1])
		if !ok {
			return usage(display, "start <difficulty> <timer on|off> <category>")
		}
		_ = ctrl.StartQuiz(ctx, strings.Join(args[2:], " "), args[0], timer)
	case "select":
		n, ok := singleInt(args)
		if !ok {
			return usage(display, "select <choice 1-4>")
		}
		_ = ctrl.SelectChoice(n - 1)
	case "submit":
		_ = ctrl.Submit(ctx)
	case "answer":
		n, ok := singleInt(args)
		if !ok {
			return usage(display, "answer <choice 1-4>")
		}
		if ctrl.SelectChoice(n-1) == nil {
			_ = ctrl.Submit(ctx)
		}
	case "review":
		_ = ctrl.ShowReview()
	case "scores":
		_ = ctrl.ShowScores(ctx)
	case "add":
		category, text, choices, correct, ok := parseQuestion(rest)
		if !ok {
			return usage(display, "add <category> | <question> | <choice 1> | <choice 2> | <choice 3> | <choice 4> | <correct 1-4>")
		}
		_ = ctrl.AddQuestion(ctx, category, text, choices, correct-1)
	case "users":
		_ = ctrl.ManageUsers(ctx)
	case "role":
		if len(args) != 2 {
			return usage(display, "role <username> <user|admin>")
		}
		_ = ctrl.SetRole(ctx, args[0], domain.Role(strings.ToLower(args[1])))
	case "create":
		req, ok := parseAccount(args)
		if !ok {
			t.printSecurityQuestions()
			return usage(display, "create <username> <password> <confirm> <question 1-5> <answer>")
		}
		_ = ctrl.CreateUser(ctx, req)
	default:
		display.Notify(fmt.Sprintf("unknown command %q, type help", cmd), app.NotifyWarning)
	}
	return false
}

func usage(display *Display, text string) bool {
	display.Notify("usage: "+text, app.NotifyWarning)
	return false
}

func (t *Terminal) printHelp() {
	fmt.Fprint(t.out, `Commands:
  login <username> <password>
  signup <username> <password> <confirm> <question 1-5> <answer>
  recover <username> | verify <answer> | reset <new password> <confirm>
  start <easy|medium|hard> <timer on|off> <category>
  <1-4> | select <1-4> | submit | answer <1-4>
  review | scores | menu | logout | quit
  add <category> | <question> | <choice 1> | <choice 2> | <choice 3> | <choice 4> | <correct 1-4>
  users | role <username> <user|admin> | create <username> <password> <confirm> <question 1-5> <answer>
`)
	t.printSecurityQuestions()
}

func (t *Terminal) printSecurityQuestions() {
	fmt.Fprintln(t.out, "Security questions:")
	for i, q := range domain.SecurityQuestions {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, q)
	}
}

// parseAccount reads "<username> <password> <confirm> <question> <answer...>".
// The question number is 1-based.
func parseAccount(args []string) (app.RegisterRequest, bool) {
	if len(args) < 5 {
		return app.RegisterRequest{}, false
	}
	idx, err := strconv.Atoi(args[3])
	if err != nil {
		return app.RegisterRequest{}, false
	}
	return app.RegisterRequest{
		Username:              args[0],
		Password:              args[1],
		Confirm:               args[2],
		SecurityQuestionIndex: idx - 1,
		SecurityAnswer:        strings.Join(args[4:], " "),
	}, true
}

// parseQuestion splits the add command on '|'. The correct answer is 1-based.
func parseQuestion(rest string) (string, string, []string, int, bool) {
	parts := strings.Split(rest, "|")
	if len(parts) != 3+domain.ChoiceCount {
		return "", "", nil, 0, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	correct, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", "", nil, 0, false
	}
	return parts[0], parts[1], parts[2 : 2+domain.ChoiceCount], correct, true
}

func parseSwitch(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "on", "yes", "true":
		return true, true
	case "off", "no", "false":
		return false, true
	}
	return false, false
}

func singleInt(args []string) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	return n, err == nil
}
