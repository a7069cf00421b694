package app_test

import (
	"context"
	"errors"
	"testing"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

func TestRegisterThenAuthenticate(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	if err := auth.Register(ctx, aliceRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}
	role, err := auth.Authenticate(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if role != domain.RoleUser {
		t.Fatalf("expected user role, got %s", role)
	}
	if _, err := auth.Authenticate(ctx, "alice", "wrong"); err != domain.ErrWrongPassword {
		t.Fatalf("expected wrong password, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "Alice", "secret1"); err != domain.ErrUserNotFound {
		t.Fatalf("usernames are case-sensitive, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "", "secret1"); err != domain.ErrMissingFields {
		t.Fatalf("expected missing fields, got %v", err)
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	if err := auth.Register(ctx, aliceRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*app.RegisterRequest)
		want   error
	}{
		{"missing username", func(r *app.RegisterRequest) { r.Username = "" }, domain.ErrMissingFields},
		{"missing answer", func(r *app.RegisterRequest) { r.SecurityAnswer = "  " }, domain.ErrMissingFields},
		{"duplicate before mismatch", func(r *app.RegisterRequest) { r.Confirm = "other12" }, domain.ErrDuplicateUsername},
		{"mismatch", func(r *app.RegisterRequest) { r.Username = "bob"; r.Confirm = "other12" }, domain.ErrPasswordMismatch},
		{"too short", func(r *app.RegisterRequest) { r.Username = "bob"; r.Password = "abc"; r.Confirm = "abc" }, domain.ErrPasswordTooShort},
		{"bad question", func(r *app.RegisterRequest) { r.Username = "bob"; r.SecurityQuestionIndex = 9 }, domain.ErrInvalidSecurityQuestion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := aliceRequest()
			tc.mutate(&req)
			err := auth.Register(ctx, req)
			if err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation kind, got %s", domain.KindOf(err))
			}
		})
	}
}

func TestBootstrapSeedsRootAndDemo(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuth(t)

	root, err := users.Get(ctx, "root")
	if err != nil {
		t.Fatalf("root missing: %v", err)
	}
	if root.Role != domain.RoleRootAdmin {
		t.Fatalf("expected root_admin, got %s", root.Role)
	}
	if _, err := auth.Authenticate(ctx, "demo", "demo"); err != nil {
		t.Fatalf("demo login: %v", err)
	}

	// Running again changes nothing.
	if err := auth.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap again: %v", err)
	}
	again, _ := users.Get(ctx, "root")
	if again.PasswordHash != root.PasswordHash || again.Role != root.Role {
		t.Fatalf("bootstrap is not idempotent: %+v vs %+v", again, root)
	}
	list, _ := users.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(list))
	}
}

func TestBootstrapRepairsRootRoleAndKeepsRecovery(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	idx := 2
	_ = users.Save(ctx, domain.User{
		Username:              "root",
		PasswordHash:          "stale",
		Role:                  domain.RoleUser,
		SecurityQuestionIndex: &idx,
		SecurityAnswerHash:    "kept",
	})

	auth := app.NewAuthService(users, app.SHA256Hasher{}, app.DefaultSeed(), nil)
	if err := auth.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	root, _ := users.Get(ctx, "root")
	if root.Role != domain.RoleRootAdmin {
		t.Fatalf("expected role repaired, got %s", root.Role)
	}
	if root.SecurityAnswerHash != "kept" || root.SecurityQuestionIndex == nil || *root.SecurityQuestionIndex != 2 {
		t.Fatalf("expected recovery fields kept, got %+v", root)
	}
	if _, err := auth.Authenticate(ctx, "root", "root123@R"); err != nil {
		t.Fatalf("expected seeded password, got %v", err)
	}
}

func TestBootstrapLeavesSingleRootAdmin(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	_ = users.Save(ctx, domain.User{Username: "sai kiran", PasswordHash: "old", Role: domain.RoleRootAdmin})

	auth := app.NewAuthService(users, app.SHA256Hasher{}, app.DefaultSeed(), nil)
	for i := 0; i < 2; i++ {
		if err := auth.Bootstrap(ctx); err != nil {
			t.Fatalf("bootstrap: %v", err)
		}
	}

	all, _ := users.List(ctx)
	var roots []string
	for _, u := range all {
		if u.Role == domain.RoleRootAdmin {
			roots = append(roots, u.Username)
		}
	}
	if len(roots) != 1 || roots[0] != "root" {
		t.Fatalf("expected only root as root_admin, got %v", roots)
	}
	old, _ := users.Get(ctx, "sai kiran")
	if old.Role != domain.RoleAdmin || old.PasswordHash != "old" {
		t.Fatalf("expected previous root demoted to admin, got %+v", old)
	}
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	if err := auth.Register(ctx, aliceRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	idx, err := auth.ResetPasswordBegin(ctx, "alice")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected question 0, got %d", idx)
	}
	if err := auth.ResetPasswordVerify(ctx, "alice", "Spot"); err != domain.ErrWrongAnswer {
		t.Fatalf("expected wrong answer, got %v", err)
	}
	// Answers are compared trimmed and lower-cased.
	if err := auth.ResetPasswordVerify(ctx, "alice", "  REX "); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := auth.ResetPasswordCommit(ctx, "alice", "newpass", "newpas"); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := auth.ResetPasswordCommit(ctx, "alice", "newpass", "newpass"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := auth.Authenticate(ctx, "alice", "newpass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if _, err := auth.ResetPasswordBegin(ctx, "demo"); err != domain.ErrRecoveryNotConfigured {
		t.Fatalf("expected recovery not configured for demo, got %v", err)
	}
}

func TestSetRoleRules(t *testing.T) {
	ctx := context.Background()
	auth, users := newAuth(t)
	if err := auth.Register(ctx, aliceRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}
	root := app.Actor{Username: "root", Role: domain.RoleRootAdmin}
	admin := app.Actor{Username: "alice", Role: domain.RoleAdmin}

	if err := auth.SetRole(ctx, admin, "demo", domain.RoleAdmin); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden for admin actor, got %v", err)
	}
	if err := auth.SetRole(ctx, root, "root", domain.RoleUser); err != domain.ErrSelfModification {
		t.Fatalf("expected self modification, got %v", err)
	}
	if err := auth.SetRole(ctx, root, "ghost", domain.RoleAdmin); err != domain.ErrUserNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := auth.SetRole(ctx, root, "alice", domain.RoleRootAdmin); err != domain.ErrInvalidRole {
		t.Fatalf("expected invalid role, got %v", err)
	}
	if err := auth.SetRole(ctx, root, "alice", domain.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	alice, _ := users.Get(ctx, "alice")
	if alice.Role != domain.RoleAdmin {
		t.Fatalf("expected admin, got %s", alice.Role)
	}
	if !alice.HasRecovery() {
		t.Fatalf("role change must keep recovery data")
	}
}

func TestListUsersAndCreateAccount(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	root := app.Actor{Username: "root", Role: domain.RoleRootAdmin}

	if err := auth.CreateAccount(ctx, app.Actor{Username: "demo", Role: domain.RoleUser}, aliceRequest()); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := auth.CreateAccount(ctx, root, aliceRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := auth.ListUsers(ctx, root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Username != "alice" || list[1].Username != "demo" {
		t.Fatalf("expected alice and demo, got %+v", list)
	}
	if _, err := auth.ListUsers(ctx, app.Actor{Username: "alice", Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for admin, got %v", err)
	}
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher, err := app.NewHasher("bcrypt", 4)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !hasher.Verify(hash, "secret1") || hasher.Verify(hash, "secret2") {
		t.Fatalf("bcrypt verify mismatch")
	}
	if _, err := app.NewHasher("md5", 0); err == nil {
		t.Fatalf("expected unknown hasher to fail")
	}
}

func TestSHA256HasherMatchesStoredDigests(t *testing.T) {
	cases := map[string]string{
		"abc123":    "6ca13d52ca70c883e0f0bb101e425a89e8624de51db2d2392593af6a84118090",
		"root123@R": "c2c392faca2e79d25b5bcf292a2893eca418f97d47924b753a03e0c028def176",
	}
	hasher := app.SHA256Hasher{}
	for secret, want := range cases {
		hash, err := hasher.Hash(secret)
		if err != nil {
			t.Fatalf("hash %q: %v", secret, err)
		}
		if hash != want {
			t.Fatalf("hash %q = %s, want %s", secret, hash, want)
		}
		if !hasher.Verify(want, secret) {
			t.Fatalf("verify %q against stored digest failed", secret)
		}
	}
}

func newAuth(t *testing.T) (*app.AuthService, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	auth := app.NewAuthService(users, app.SHA256Hasher{}, app.DefaultSeed(), nil)
	if err := auth.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return auth, users
}

func aliceRequest() app.RegisterRequest {
	return app.RegisterRequest{
		Username:              "alice",
		Password:              "secret1",
		Confirm:               "secret1",
		SecurityQuestionIndex: 0,
		SecurityAnswer:        "Rex",
	}
}
