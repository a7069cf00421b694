package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

type WSHandler struct {
	services app.Services
	log      *zap.Logger
	upgrader websocket.Upgrader
	tick     time.Duration
}

func NewWSHandler(services app.Services, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		services: services,
		log:      log,
		tick:     time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes mounts the WebSocket endpoint and a liveness probe.
func (h *WSHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", h.ServeWS)
	return mux
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and runs one Controller for the connection.
// Inbound messages and timer ticks are handled on this goroutine only.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	inbound := make(chan inboundMessage)

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-closeSignals:
				return
			}
		}
	}()

	display := &wsDisplay{send: send, writerDone: writerDone}
	ctrl := h.services.NewController(display)
	ctrl.Open()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

loop:
	for {
		select {
		case msg, ok := <-inbound:
			if !ok {
				break loop
			}
			h.dispatch(ctx, ctrl, display, msg)
		case now := <-ticker.C:
			if ctrl.TimerActive() {
				_ = ctrl.Tick(ctx, now)
			}
		case <-writerDone:
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	close(closeSignals)
	close(send)
	<-writerDone
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountPayload struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	Confirm          string `json:"confirm"`
	SecurityQuestion int    `json:"securityQuestion"`
	SecurityAnswer   string `json:"securityAnswer"`
}

func (p accountPayload) request() app.RegisterRequest {
	return app.RegisterRequest{
		Username:              p.Username,
		Password:              p.Password,
		Confirm:               p.Confirm,
		SecurityQuestionIndex: p.SecurityQuestion,
		SecurityAnswer:        p.SecurityAnswer,
	}
}

type recoveryPayload struct {
	Username string `json:"username"`
	Answer   string `json:"answer"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type startPayload struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Timer      bool   `json:"timer"`
}

type choicePayload struct {
	Choice *int `json:"choice"`
}

func (p choicePayload) valid(display *wsDisplay) bool {
	if p.Choice == nil {
		display.Notify("missing choice", app.NotifyError)
		return false
	}
	return true
}

type questionPayload struct {
	Category     string   `json:"category"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
}

type rolePayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// dispatch maps one inbound message to a controller event. The controller
// reports failures on the display itself, so returned errors are dropped.
func (h *WSHandler) dispatch(ctx context.Context, ctrl *app.Controller, display *wsDisplay, msg inboundMessage) {
	decode := func(v any) bool {
		if raw := bytes.TrimSpace(msg.Payload); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			display.Notify("missing "+msg.Type+" payload", app.NotifyError)
			return false
		}
		if err := json.Unmarshal(msg.Payload, v); err != nil {
			display.Notify("invalid "+msg.Type+" payload", app.NotifyError)
			return false
		}
		return true
	}

	switch msg.Type {
	case "login":
		var p credentialsPayload
		if decode(&p) {
			_ = ctrl.Login(ctx, p.Username, p.Password)
		}
	case "logout":
		ctrl.Logout()
	case "signup":
		var p accountPayload
		if decode(&p) {
			_ = ctrl.SignUp(ctx, p.request())
		}
	case "forgot_begin":
		var p recoveryPayload
		if decode(&p) {
			_ = ctrl.ForgotPasswordBegin(ctx, p.Username)
		}
	case "forgot_verify":
		var p recoveryPayload
		if decode(&p) {
			_ = ctrl.ForgotPasswordVerify(ctx, p.Answer)
		}
	case "forgot_commit":
		var p recoveryPayload
		if decode(&p) {
			_ = ctrl.ForgotPasswordCommit(ctx, p.Password, p.Confirm)
		}
	case "menu":
		_ = ctrl.ReturnToMenu(ctx)
	case "start":
		var p startPayload
		if decode(&p) {
			_ = ctrl.StartQuiz(ctx, p.Category, p.Difficulty, p.Timer)
		}
	case "select":
		var p choicePayload
		if decode(&p) && p.valid(display) {
			_ = ctrl.SelectChoice(*p.Choice)
		}
	case "submit":
		_ = ctrl.Submit(ctx)
	case "answer":
		var p choicePayload
		if decode(&p) && p.valid(display) && ctrl.SelectChoice(*p.Choice) == nil {
			_ = ctrl.Submit(ctx)
		}
	case "review":
		_ = ctrl.ShowReview()
	case "scores":
		_ = ctrl.ShowScores(ctx)
	case "add_question":
		var p questionPayload
		if decode(&p) {
			_ = ctrl.AddQuestion(ctx, p.Category, p.Text, p.Choices, p.CorrectIndex)
		}
	case "users":
		_ = ctrl.ManageUsers(ctx)
	case "set_role":
		var p rolePayload
		if decode(&p) {
			_ = ctrl.SetRole(ctx, p.Username, p.Role)
		}
	case "create_user":
		var p accountPayload
		if decode(&p) {
			_ = ctrl.CreateUser(ctx, p.request())
		}
	default:
		display.Notify("unsupported message type", app.NotifyError)
	}
}
