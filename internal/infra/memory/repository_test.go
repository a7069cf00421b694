package memory

import (
	"context"
	"testing"

	"quizdesk/internal/domain"
)

func TestQuestionRepositoryKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository()
	q := domain.Question{Text: "q", Choices: []string{"a", "b", "c", "d"}}

	for _, name := range []string{"Zeta", "Alpha", "Mid", "Alpha"} {
		if err := repo.AppendQuestion(ctx, name, q); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	names, _ := repo.ListCategories(ctx)
	want := []string{"Zeta", "Alpha", "Mid"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	alpha, _ := repo.GetCategory(ctx, "Alpha")
	if len(alpha.Questions) != 2 {
		t.Fatalf("expected 2 questions in Alpha, got %d", len(alpha.Questions))
	}
}

func TestUserRepositoryIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	idx := 2
	_ = repo.Save(ctx, domain.User{Username: "alice", Role: domain.RoleUser, SecurityQuestionIndex: &idx})
	idx = 4

	user, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *user.SecurityQuestionIndex != 2 {
		t.Fatalf("stored index changed through caller pointer: %d", *user.SecurityQuestionIndex)
	}
	if _, err := repo.Get(ctx, "Alice"); err != domain.ErrUserNotFound {
		t.Fatalf("usernames must be case-sensitive, got %v", err)
	}
}

func TestUserRepositoryListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	for _, name := range []string{"carol", "alice", "bob"} {
		_ = repo.Save(ctx, domain.User{Username: name, Role: domain.RoleUser})
	}
	users, _ := repo.List(ctx)
	if len(users) != 3 || users[0].Username != "alice" || users[2].Username != "carol" {
		t.Fatalf("unexpected order: %+v", users)
	}
}
