package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// Controller turns input events into service calls and service results into
// Display calls. It is owned by a single event loop and is not safe for
// concurrent use.
type Controller struct {
	auth    *AuthService
	bank    *QuestionBank
	engine  *Engine
	ledger  *ScoreLedger
	display Display
	log     *zap.Logger

	user     *Actor
	session  *Session
	pending  int
	recovery recoveryState
}

type recoveryState struct {
	username string
	verified bool
}

// Services bundles what every Controller needs. Transports build one
// Controller per player from it.
type Services struct {
	Auth   *AuthService
	Bank   *QuestionBank
	Engine *Engine
	Ledger *ScoreLedger
	Log    *zap.Logger
}

func (s Services) NewController(display Display) *Controller {
	return NewController(s.Auth, s.Bank, s.Engine, s.Ledger, display, s.Log)
}

func NewController(auth *AuthService, bank *QuestionBank, engine *Engine, ledger *ScoreLedger, display Display, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		auth:    auth,
		bank:    bank,
		engine:  engine,
		ledger:  ledger,
		display: display,
		log:     log,
		pending: -1,
	}
}

// CurrentUser returns the logged-in identity, if any.
func (c *Controller) CurrentUser() (Actor, bool) {
	if c.user == nil {
		return Actor{}, false
	}
	return *c.user, true
}

// Session returns the active quiz session, or nil.
func (c *Controller) Session() *Session {
	return c.session
}

// TimerActive reports whether the event loop should keep delivering ticks.
func (c *Controller) TimerActive() bool {
	return c.session != nil && c.session.TimerEnabled() && c.session.State() == StateInProgress
}

// Open shows the first screen.
func (c *Controller) Open() {
	c.display.PromptCredentials()
}

func (c *Controller) Login(ctx context.Context, username, password string) error {
	role, err := c.auth.Authenticate(ctx, username, password)
	if err != nil {
		return c.fail(err)
	}
	c.user = &Actor{Username: username, Role: role}
	c.session = nil
	c.pending = -1
	c.log.Info("logged in", zap.String("username", username), zap.String("role", string(role)))
	return c.ShowMenu(ctx)
}

func (c *Controller) Logout() {
	if c.user != nil {
		c.log.Info("logged out", zap.String("username", c.user.Username))
	}
	c.user = nil
	c.session = nil
	c.pending = -1
	c.recovery = recoveryState{}
	c.display.PromptCredentials()
}

func (c *Controller) SignUp(ctx context.Context, req RegisterRequest) error {
	if err := c.auth.Register(ctx, req); err != nil {
		return c.fail(err)
	}
	c.display.Notify("Account created successfully! You can now log in.", NotifyInfo)
	return nil
}

func (c *Controller) ForgotPasswordBegin(ctx context.Context, username string) error {
	c.recovery = recoveryState{}
	idx, err := c.auth.ResetPasswordBegin(ctx, username)
	if err != nil {
		return c.fail(err)
	}
	question, _ := domain.SecurityQuestion(idx)
	c.recovery.username = username
	c.display.PromptSecurityQuestion(username, question)
	return nil
}

func (c *Controller) ForgotPasswordVerify(ctx context.Context, answer string) error {
	if c.recovery.username == "" {
		return c.fail(domain.ErrRecoveryNotVerified)
	}
	if err := c.auth.ResetPasswordVerify(ctx, c.recovery.username, answer); err != nil {
		return c.fail(err)
	}
	c.recovery.verified = true
	c.display.Notify("Answer accepted. Choose a new password.", NotifyInfo)
	return nil
}

func (c *Controller) ForgotPasswordCommit(ctx context.Context, password, confirm string) error {
	if !c.recovery.verified {
		return c.fail(domain.ErrRecoveryNotVerified)
	}
	if err := c.auth.ResetPasswordCommit(ctx, c.recovery.username, password, confirm); err != nil {
		return c.fail(err)
	}
	c.recovery = recoveryState{}
	c.display.Notify("Your password has been reset successfully. You can now log in.", NotifyInfo)
	c.display.PromptCredentials()
	return nil
}

func (c *Controller) ShowMenu(ctx context.Context) error {
	actor, err := c.requireLogin()
	if err != nil {
		return err
	}
	categories, err := c.bank.ListCategories(ctx)
	if err != nil {
		return c.fail(err)
	}
	c.display.RenderMenu(MenuView{
		Username:     actor.Username,
		Role:         actor.Role,
		Categories:   categories,
		Difficulties: []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard},
		Actions:      ActionsFor(actor.Role),
	})
	return nil
}

func (c *Controller) StartQuiz(ctx context.Context, category, difficulty string, timer bool) error {
	actor, err := c.requireLogin()
	if err != nil {
		return err
	}
	if !actor.Role.CanTakeQuiz() {
		return c.fail(domain.ErrForbidden)
	}
	d, err := domain.ParseDifficulty(difficulty)
	if err != nil {
		return c.fail(err)
	}
	session, err := c.engine.Start(ctx, category, d, timer)
	if err != nil {
		return c.fail(err)
	}
	c.session = session
	c.pending = -1
	c.renderCurrent()
	if session.TimerEnabled() {
		c.display.RenderTimer(session.Budget())
	}
	return nil
}

// SelectChoice marks a choice without submitting it.
func (c *Controller) SelectChoice(idx int) error {
	if c.session == nil || c.session.State() != StateInProgress {
		return c.fail(domain.ErrNoActiveSession)
	}
	q, ok := c.session.CurrentQuestion()
	if !ok {
		return c.fail(domain.ErrNoActiveSession)
	}
	if idx < 0 || idx >= len(q.Choices) {
		return c.fail(domain.ErrInvalidChoice)
	}
	c.pending = idx
	return nil
}

// Submit answers the current question with the selected choice.
func (c *Controller) Submit(ctx context.Context) error {
	if c.session == nil || c.session.State() != StateInProgress {
		return c.fail(domain.ErrNoActiveSession)
	}
	if c.pending < 0 {
		c.display.Notify("Please select an answer!", NotifyWarning)
		return nil
	}
	result, err := c.session.SubmitAnswer(c.pending)
	if err != nil {
		return c.fail(err)
	}
	c.pending = -1
	c.display.RenderFeedback(result)
	if result.Finished {
		return c.finish(ctx, false)
	}
	c.renderCurrent()
	return nil
}

// Tick advances the countdown. Callers stop ticking once TimerActive is false.
func (c *Controller) Tick(ctx context.Context, now time.Time) error {
	if !c.TimerActive() {
		return nil
	}
	status := c.session.Tick(now)
	if !status.Expired {
		c.display.RenderTimer(status.Remaining)
		return nil
	}
	c.display.Notify("Time's up! Quiz will end now.", NotifyWarning)
	return c.finish(ctx, true)
}

func (c *Controller) ShowReview() error {
	if c.session == nil {
		return c.fail(domain.ErrNoActiveSession)
	}
	items, err := c.session.Review()
	if err != nil {
		return c.fail(err)
	}
	c.display.RenderReview(items)
	return nil
}

func (c *Controller) ShowScores(ctx context.Context) error {
	if _, err := c.requireLogin(); err != nil {
		return err
	}
	entries, err := c.ledger.List(ctx)
	if err != nil {
		return c.fail(err)
	}
	c.display.RenderScores(entries)
	return nil
}

// ReturnToMenu discards the current session.
func (c *Controller) ReturnToMenu(ctx context.Context) error {
	c.session = nil
	c.pending = -1
	return c.ShowMenu(ctx)
}

func (c *Controller) AddQuestion(ctx context.Context, category, text string, choices []string, correctIndex int) error {
	actor, err := c.requireLogin()
	if err != nil {
		return err
	}
	if !actor.Role.CanAddQuestions() {
		return c.fail(domain.ErrForbidden)
	}
	if err := c.bank.AddQuestion(ctx, category, text, choices, correctIndex); err != nil {
		return c.fail(err)
	}
	c.display.Notify("Question added successfully!", NotifyInfo)
	return c.ShowMenu(ctx)
}

func (c *Controller) ManageUsers(ctx context.Context) error {
	actor, err := c.requireLogin()
	if err != nil {
		return err
	}
	users, err := c.auth.ListUsers(ctx, actor)
	if err != nil {
		return c.fail(err)
	}
	c.display.RenderUsers(users)
	return nil
}

func (c *Controller) SetRole(ctx context.Context, target string, role domain.Role) error {
	actor, err := c.requireLogin()
	if err != nil {
		return err
	}
	if err := c.auth.SetRole(ctx, actor, target, role); err != nil {
		return c.fail(err)
	}
	c.display.Notify("User '"+target+"' has been updated to '"+string(role)+"'.", NotifyInfo)
	return c.ManageUsers(ctx)
}

func (c *Controller) CreateUser(ctx context.Context, req RegisterRequest) error {
	actor, err := c.requireLogin()
	if err != nil {
		return err
	}
	if err := c.auth.CreateAccount(ctx, actor, req); err != nil {
		return c.fail(err)
	}
	c.display.Notify("User created successfully.", NotifyInfo)
	return c.ManageUsers(ctx)
}

func (c *Controller) finish(ctx context.Context, timedOut bool) error {
	player := ""
	if c.user != nil {
		player = c.user.Username
	}
	entry, err := c.session.Finalize(player)
	if err != nil {
		return c.fail(err)
	}
	c.log.Info("quiz finished",
		zap.String("session_id", c.session.ID()),
		zap.String("username", player),
		zap.String("category", entry.Category),
		zap.Int("score", entry.Score),
		zap.Int("total", entry.Total),
		zap.Bool("timed_out", timedOut),
	)
	if player != "" {
		if err := c.ledger.Record(ctx, entry); err != nil {
			c.log.Error("record score", zap.String("session_id", c.session.ID()), zap.Error(err))
			c.display.Notify("Could not save your score.", NotifyError)
		}
	}
	c.display.RenderResult(ResultView{
		Entry:    entry,
		Rating:   domain.Rating(entry.Percentage),
		TimedOut: timedOut,
	})
	return nil
}

func (c *Controller) renderCurrent() {
	q, ok := c.session.CurrentQuestion()
	if !ok {
		return
	}
	c.display.RenderQuestion(QuestionView{
		Number:   c.session.Index() + 1,
		Total:    c.session.Len(),
		Category: c.session.Category(),
		Text:     q.Text,
		Choices:  q.Choices,
	})
}

func (c *Controller) requireLogin() (Actor, error) {
	if c.user == nil {
		err := c.fail(domain.ErrNotLoggedIn)
		c.display.PromptCredentials()
		return Actor{}, err
	}
	return *c.user, nil
}

// fail reports err on the display and returns it. Domain errors carry a
// user-facing message; anything else is logged and shown generically.
func (c *Controller) fail(err error) error {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindUnknown:
		c.log.Error("unexpected error", zap.Error(err))
		c.display.Notify("Something went wrong. Please try again.", NotifyError)
	case domain.KindSession:
		c.log.Warn("session out of sync", zap.Error(err))
		c.display.Notify(err.Error(), NotifyWarning)
	default:
		c.display.Notify(err.Error(), NotifyError)
	}
	return err
}
