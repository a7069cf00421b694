package app_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

func TestControllerLoginAndMenu(t *testing.T) {
	ctx := context.Background()
	ctrl, display, _ := newController(t)

	ctrl.Open()
	if display.prompts != 1 {
		t.Fatalf("expected credentials prompt, got %d", display.prompts)
	}

	if err := ctrl.Login(ctx, "demo", "nope"); err != domain.ErrWrongPassword {
		t.Fatalf("expected wrong password, got %v", err)
	}
	if display.lastNotify() != "incorrect password" {
		t.Fatalf("expected error notice, got %q", display.lastNotify())
	}

	if err := ctrl.Login(ctx, "demo", "demo"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if display.menu == nil || display.menu.Username != "demo" {
		t.Fatalf("expected menu for demo, got %+v", display.menu)
	}
	for _, action := range display.menu.Actions {
		if action == app.ActionAddQuestion || action == app.ActionManageUsers {
			t.Fatalf("regular users must not see %s", action)
		}
	}

	if err := ctrl.AddQuestion(ctx, "General", "Q?", []string{"a", "b", "c", "d"}, 0); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden for regular user, got %v", err)
	}
}

func TestControllerRequiresLogin(t *testing.T) {
	ctrl, display, _ := newController(t)
	if err := ctrl.ShowScores(context.Background()); err != domain.ErrNotLoggedIn {
		t.Fatalf("expected not logged in, got %v", err)
	}
	if display.prompts != 1 {
		t.Fatalf("expected credentials re-prompt, got %d", display.prompts)
	}
}

func TestControllerPlaysAndRecords(t *testing.T) {
	ctx := context.Background()
	ctrl, display, ledger := newController(t)
	_ = ctrl.Login(ctx, "demo", "demo")

	if err := ctrl.StartQuiz(ctx, "General", "easy", false); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(display.questions) != 1 || display.questions[0].Total != 3 {
		t.Fatalf("expected first of 3 questions, got %+v", display.questions)
	}

	if err := ctrl.Submit(ctx); err != nil {
		t.Fatalf("submit without choice: %v", err)
	}
	if display.lastNotify() != "Please select an answer!" {
		t.Fatalf("expected selection warning, got %q", display.lastNotify())
	}
	if ctrl.Session().Index() != 0 {
		t.Fatalf("submit without choice must not advance")
	}

	for i := 0; i < 3; i++ {
		q, _ := ctrl.Session().CurrentQuestion()
		if err := ctrl.SelectChoice(q.CorrectIndex); err != nil {
			t.Fatalf("select: %v", err)
		}
		if err := ctrl.Submit(ctx); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if len(display.feedback) != 3 {
		t.Fatalf("expected feedback per answer, got %d", len(display.feedback))
	}
	if display.result == nil || display.result.Entry.Percentage != 100 || display.result.Rating != "OUTSTANDING!" {
		t.Fatalf("unexpected result %+v", display.result)
	}

	entries, _ := ledger.List(ctx)
	if len(entries) != 1 || entries[0].Name != "demo" {
		t.Fatalf("expected recorded entry, got %+v", entries)
	}

	if err := ctrl.ShowReview(); err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(display.review) != 3 {
		t.Fatalf("expected 3 review items, got %d", len(display.review))
	}
	if err := ctrl.ReturnToMenu(ctx); err != nil {
		t.Fatalf("menu: %v", err)
	}
	if ctrl.Session() != nil {
		t.Fatalf("returning to the menu discards the session")
	}
}

func TestControllerTimeout(t *testing.T) {
	ctx := context.Background()
	ctrl, display, ledger := newController(t)
	_ = ctrl.Login(ctx, "demo", "demo")

	if err := ctrl.StartQuiz(ctx, "General", "Hard", true); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !ctrl.TimerActive() {
		t.Fatalf("expected timer to run")
	}
	if display.timer != 45*time.Second {
		t.Fatalf("expected 45s shown, got %v", display.timer)
	}

	_ = ctrl.Tick(ctx, fixedNow.Add(10*time.Second))
	if display.timer != 35*time.Second {
		t.Fatalf("expected 35s shown, got %v", display.timer)
	}
	_ = ctrl.Tick(ctx, fixedNow.Add(time.Minute))
	if ctrl.TimerActive() {
		t.Fatalf("timer must stop after expiry")
	}
	if display.result == nil || !display.result.TimedOut || display.result.Entry.Score != 0 {
		t.Fatalf("expected timed out result, got %+v", display.result)
	}
	entries, _ := ledger.List(ctx)
	if len(entries) != 1 || entries[0].Percentage != 0 {
		t.Fatalf("expected zero score recorded, got %+v", entries)
	}

	if err := ctrl.Submit(ctx); err != domain.ErrNoActiveSession {
		t.Fatalf("expected no active session, got %v", err)
	}
}

func TestControllerLogsSessionOnTimeout(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	auth, _ := newAuth(t)
	bank := app.NewQuestionBank(memory.NewQuestionRepository(numberedCategory("General", 3)), nil)
	engine := app.NewEngineWithSource(bank, rand.New(rand.NewSource(3)), func() time.Time { return fixedNow }, nil)
	ledger := app.NewScoreLedger(memory.NewScoreRepository(), nil)
	ctrl := app.NewController(auth, bank, engine, ledger, &recordingDisplay{}, zap.New(core))

	_ = ctrl.Login(ctx, "demo", "demo")
	if err := ctrl.StartQuiz(ctx, "General", "Easy", true); err != nil {
		t.Fatalf("start: %v", err)
	}
	id := ctrl.Session().ID()
	if id == "" {
		t.Fatalf("expected a session id")
	}
	_ = ctrl.Tick(ctx, fixedNow.Add(time.Hour))

	finished := logs.FilterMessage("quiz finished").All()
	if len(finished) != 1 {
		t.Fatalf("expected one completion log, got %d", len(finished))
	}
	fields := finished[0].ContextMap()
	if fields["session_id"] != id || fields["timed_out"] != true || fields["username"] != "demo" {
		t.Fatalf("unexpected completion fields %v", fields)
	}
}

func TestControllerRootManagesUsers(t *testing.T) {
	ctx := context.Background()
	ctrl, display, _ := newController(t)
	_ = ctrl.Login(ctx, "root", "root123@R")

	if err := ctrl.CreateUser(ctx, aliceRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(display.users) != 2 {
		t.Fatalf("expected alice and demo listed, got %+v", display.users)
	}
	if err := ctrl.SetRole(ctx, "alice", domain.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if display.lastNotify() != "User 'alice' has been updated to 'admin'." {
		t.Fatalf("unexpected notice %q", display.lastNotify())
	}

	ctrl.Logout()
	if err := ctrl.Login(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("login as alice: %v", err)
	}
	if err := ctrl.AddQuestion(ctx, "General", "New?", []string{"a", "b", "c", "d"}, 2); err != nil {
		t.Fatalf("admin add question: %v", err)
	}
	if err := ctrl.ManageUsers(ctx); err != domain.ErrForbidden {
		t.Fatalf("admins cannot manage users, got %v", err)
	}
}

func TestControllerPasswordRecovery(t *testing.T) {
	ctx := context.Background()
	ctrl, display, _ := newController(t)

	if err := ctrl.SignUp(ctx, aliceRequest()); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := ctrl.ForgotPasswordCommit(ctx, "newpass", "newpass"); err != domain.ErrRecoveryNotVerified {
		t.Fatalf("commit before verify must fail, got %v", err)
	}
	if err := ctrl.ForgotPasswordBegin(ctx, "alice"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if display.securityQuestion != domain.SecurityQuestions[0] {
		t.Fatalf("expected first security question, got %q", display.securityQuestion)
	}
	if err := ctrl.ForgotPasswordVerify(ctx, "rex"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := ctrl.ForgotPasswordCommit(ctx, "newpass", "newpass"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := ctrl.Login(ctx, "alice", "newpass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func newController(t *testing.T) (*app.Controller, *recordingDisplay, *app.ScoreLedger) {
	t.Helper()
	auth, _ := newAuth(t)
	bank := app.NewQuestionBank(memory.NewQuestionRepository(numberedCategory("General", 3)), nil)
	engine := app.NewEngineWithSource(bank, rand.New(rand.NewSource(3)), func() time.Time { return fixedNow }, nil)
	ledger := app.NewScoreLedger(memory.NewScoreRepository(), nil)
	display := &recordingDisplay{}
	return app.NewController(auth, bank, engine, ledger, display, nil), display, ledger
}

type recordingDisplay struct {
	prompts          int
	securityQuestion string
	menu             *app.MenuView
	questions        []app.QuestionView
	feedback         []app.AnswerResult
	timer            time.Duration
	result           *app.ResultView
	review           []app.ReviewItem
	scores           []domain.ScoreEntry
	users            []domain.User
	notices          []string
}

func (d *recordingDisplay) PromptCredentials() { d.prompts++ }

func (d *recordingDisplay) PromptSecurityQuestion(_, question string) {
	d.securityQuestion = question
}

func (d *recordingDisplay) RenderMenu(menu app.MenuView) { d.menu = &menu }

func (d *recordingDisplay) RenderQuestion(q app.QuestionView) { d.questions = append(d.questions, q) }

func (d *recordingDisplay) RenderFeedback(r app.AnswerResult) { d.feedback = append(d.feedback, r) }

func (d *recordingDisplay) RenderTimer(remaining time.Duration) { d.timer = remaining }

func (d *recordingDisplay) RenderResult(r app.ResultView) { d.result = &r }

func (d *recordingDisplay) RenderReview(items []app.ReviewItem) { d.review = items }

func (d *recordingDisplay) RenderScores(entries []domain.ScoreEntry) { d.scores = entries }

func (d *recordingDisplay) RenderUsers(users []domain.User) { d.users = users }

func (d *recordingDisplay) Notify(message string, _ app.NotifyKind) {
	d.notices = append(d.notices, message)
}

func (d *recordingDisplay) lastNotify() string {
	if len(d.notices) == 0 {
		return ""
	}
	return d.notices[len(d.notices)-1]
}
