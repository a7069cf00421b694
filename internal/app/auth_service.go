package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

const minPasswordLength = 6

// Seed names the accounts guaranteed to exist after Bootstrap.
type Seed struct {
	RootUsername string
	RootPassword string
	DemoUsername string
	DemoPassword string
}

// DefaultSeed is used when the config does not override the seeded accounts.
func DefaultSeed() Seed {
	return Seed{
		RootUsername: "root",
		RootPassword: "root123@R",
		DemoUsername: "demo",
		DemoPassword: "demo",
	}
}

// Actor is the logged-in identity performing a privileged action.
type Actor struct {
	Username string
	Role     domain.Role
}

// RegisterRequest carries the signup form.
type RegisterRequest struct {
	Username              string
	Password              string
	Confirm               string
	SecurityQuestionIndex int
	SecurityAnswer        string
}

// AuthService validates credentials, creates accounts and enforces role rules.
type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
	seed   Seed
	log    *zap.Logger

	// mu serializes read-check-write sequences against the store.
	mu sync.Mutex
}

func NewAuthService(users UserRepository, hasher PasswordHasher, seed Seed, log *zap.Logger) *AuthService {
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, seed: seed, log: log}
}

// Bootstrap makes sure the root admin exists with the root_admin role and that
// the demo account exists. A root account with the wrong role gets its role and
// password reset; its other fields are kept. Running it twice is a no-op.
func (s *AuthService) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.users.Get(ctx, s.seed.RootUsername)
	missing := errors.Is(err, domain.ErrUserNotFound)
	if err != nil && !missing {
		return fmt.Errorf("load root account: %w", err)
	}
	if missing || root.Role != domain.RoleRootAdmin {
		hash, err := s.hasher.Hash(s.seed.RootPassword)
		if err != nil {
			return fmt.Errorf("hash root password: %w", err)
		}
		root.Username = s.seed.RootUsername
		root.PasswordHash = hash
		root.Role = domain.RoleRootAdmin
		if err := s.users.Save(ctx, root); err != nil {
			return fmt.Errorf("save root account: %w", err)
		}
		s.log.Info("seeded root admin", zap.String("username", root.Username), zap.Bool("created", missing))
	}
	if err := s.demoteOtherRootsLocked(ctx); err != nil {
		return err
	}

	if s.seed.DemoUsername == "" {
		return nil
	}
	_, err = s.users.Get(ctx, s.seed.DemoUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("load demo account: %w", err)
	}
	hash, err := s.hasher.Hash(s.seed.DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	demo := domain.User{Username: s.seed.DemoUsername, PasswordHash: hash, Role: domain.RoleUser}
	if err := s.users.Save(ctx, demo); err != nil {
		return fmt.Errorf("save demo account: %w", err)
	}
	s.log.Info("seeded demo account", zap.String("username", demo.Username))
	return nil
}

// demoteOtherRootsLocked keeps the seeded account the only root_admin. Stores
// carried over from another root name are demoted to admin.
func (s *AuthService) demoteOtherRootsLocked(ctx context.Context) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	for _, u := range users {
		if u.Role != domain.RoleRootAdmin || u.Username == s.seed.RootUsername {
			continue
		}
		u.Role = domain.RoleAdmin
		if err := s.users.Save(ctx, u); err != nil {
			return fmt.Errorf("demote %s: %w", u.Username, err)
		}
		s.log.Warn("demoted extra root admin",
			zap.String("username", u.Username),
			zap.String("root", s.seed.RootUsername),
		)
	}
	return nil
}

// Authenticate checks a username/password pair and returns the account role.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.Role, error) {
	if username == "" || password == "" {
		return "", domain.ErrMissingFields
	}
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", domain.ErrWrongPassword
	}
	role := user.Role
	if !role.Valid() {
		role = domain.RoleUser
	}
	return role, nil
}

// Register creates a regular user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(ctx, req)
}

// CreateAccount lets the root admin create an account on someone else's behalf.
func (s *AuthService) CreateAccount(ctx context.Context, actor Actor, req RegisterRequest) error {
	if !actor.Role.CanManageUsers() {
		return domain.ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registerLocked(ctx, req); err != nil {
		return err
	}
	s.log.Info("account created by admin", zap.String("actor", actor.Username), zap.String("username", req.Username))
	return nil
}

func (s *AuthService) registerLocked(ctx context.Context, req RegisterRequest) error {
	if req.Username == "" || req.Password == "" || req.Confirm == "" || strings.TrimSpace(req.SecurityAnswer) == "" {
		return domain.ErrMissingFields
	}
	_, err := s.users.Get(ctx, req.Username)
	if err == nil {
		return domain.ErrDuplicateUsername
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if err := validateNewPassword(req.Password, req.Confirm); err != nil {
		return err
	}
	if _, ok := domain.SecurityQuestion(req.SecurityQuestionIndex); !ok {
		return domain.ErrInvalidSecurityQuestion
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	answerHash, err := s.hasher.Hash(normalizeAnswer(req.SecurityAnswer))
	if err != nil {
		return fmt.Errorf("hash security answer: %w", err)
	}
	idx := req.SecurityQuestionIndex
	user := domain.User{
		Username:              req.Username,
		PasswordHash:          passwordHash,
		Role:                  domain.RoleUser,
		SecurityQuestionIndex: &idx,
		SecurityAnswerHash:    answerHash,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	s.log.Info("account registered", zap.String("username", user.Username))
	return nil
}

// ResetPasswordBegin returns the security question index for the account.
func (s *AuthService) ResetPasswordBegin(ctx context.Context, username string) (int, error) {
	if username == "" {
		return 0, domain.ErrMissingFields
	}
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return 0, err
	}
	if !user.HasRecovery() {
		return 0, domain.ErrRecoveryNotConfigured
	}
	return *user.SecurityQuestionIndex, nil
}

// ResetPasswordVerify checks the security answer. There is no retry limit.
func (s *AuthService) ResetPasswordVerify(ctx context.Context, username, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return domain.ErrMissingFields
	}
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if !user.HasRecovery() {
		return domain.ErrRecoveryNotConfigured
	}
	if !s.hasher.Verify(user.SecurityAnswerHash, normalizeAnswer(answer)) {
		return domain.ErrWrongAnswer
	}
	return nil
}

// ResetPasswordCommit overwrites the password hash.
func (s *AuthService) ResetPasswordCommit(ctx context.Context, username, newPassword, confirm string) error {
	if newPassword == "" || confirm == "" {
		return domain.ErrMissingFields
	}
	if err := validateNewPassword(newPassword, confirm); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	s.log.Info("password reset", zap.String("username", username))
	return nil
}

// SetRole promotes or demotes another account. Only the root admin may do it,
// never on itself, and only between user and admin.
func (s *AuthService) SetRole(ctx context.Context, actor Actor, target string, role domain.Role) error {
	if !actor.Role.CanManageUsers() {
		return domain.ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.users.Get(ctx, target)
	if err != nil {
		return err
	}
	if target == actor.Username {
		return domain.ErrSelfModification
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return domain.ErrInvalidRole
	}
	if user.Role == domain.RoleRootAdmin {
		return domain.ErrForbidden
	}
	user.Role = role
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	s.log.Info("role changed",
		zap.String("actor", actor.Username),
		zap.String("username", target),
		zap.String("role", string(role)),
	)
	return nil
}

// ListUsers returns every account except the actor's, sorted by username.
func (s *AuthService) ListUsers(ctx context.Context, actor Actor) ([]domain.User, error) {
	if !actor.Role.CanManageUsers() {
		return nil, domain.ErrForbidden
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Username == actor.Username {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func validateNewPassword(password, confirm string) error {
	if password != confirm {
		return domain.ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}
	return nil
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
