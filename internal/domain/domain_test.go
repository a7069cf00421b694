package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestParseDifficulty(t *testing.T) {
	for _, raw := range []string{"easy", "EASY", " Easy "} {
		if d, err := ParseDifficulty(raw); err != nil || d != DifficultyEasy {
			t.Fatalf("ParseDifficulty(%q) = %v, %v", raw, d, err)
		}
	}
	if _, err := ParseDifficulty("extreme"); err != ErrInvalidDifficulty {
		t.Fatalf("expected invalid difficulty, got %v", err)
	}
}

func TestQuestionCountClampsToAvailable(t *testing.T) {
	cases := []struct {
		difficulty Difficulty
		available  int
		want       int
	}{
		{DifficultyEasy, 3, 3},
		{DifficultyEasy, 20, 5},
		{DifficultyMedium, 7, 7},
		{DifficultyMedium, 20, 10},
		{DifficultyHard, 20, 20},
		{DifficultyHard, 0, 0},
	}
	for _, tc := range cases {
		if got := tc.difficulty.QuestionCount(tc.available); got != tc.want {
			t.Fatalf("%s with %d available: got %d, want %d", tc.difficulty, tc.available, got, tc.want)
		}
	}
}

func TestPerQuestion(t *testing.T) {
	if DifficultyEasy.PerQuestion() != 45*time.Second ||
		DifficultyMedium.PerQuestion() != 30*time.Second ||
		DifficultyHard.PerQuestion() != 15*time.Second {
		t.Fatalf("unexpected per-question allowances")
	}
}

func TestRatingThresholds(t *testing.T) {
	cases := map[float64]string{
		100:   "OUTSTANDING!",
		90:    "OUTSTANDING!",
		89.99: "EXCELLENT!",
		80:    "EXCELLENT!",
		70:    "GOOD JOB!",
		60:    "KEEP PRACTICING!",
		59.9:  "NEED MORE STUDY!",
		0:     "NEED MORE STUDY!",
	}
	for pct, want := range cases {
		if got := Rating(pct); got != want {
			t.Fatalf("Rating(%v) = %q, want %q", pct, got, want)
		}
	}
}

func TestRolePermissions(t *testing.T) {
	if RoleUser.CanAddQuestions() || RoleUser.CanManageUsers() {
		t.Fatalf("users have no admin rights")
	}
	if !RoleAdmin.CanAddQuestions() || RoleAdmin.CanManageUsers() {
		t.Fatalf("admins add questions only")
	}
	if !RoleRootAdmin.CanAddQuestions() || !RoleRootAdmin.CanManageUsers() {
		t.Fatalf("root admin has every right")
	}
	if Role("superuser").Valid() {
		t.Fatalf("unknown roles are invalid")
	}
}

func TestKindOfWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", ErrDuplicateUsername)
	if KindOf(wrapped) != KindValidation {
		t.Fatalf("expected validation kind, got %s", KindOf(wrapped))
	}
	if KindOf(fmt.Errorf("disk full")) != KindUnknown {
		t.Fatalf("plain errors are unknown")
	}
	if KindOf(ErrNoActiveSession) != KindSession || KindOf(ErrCategoryNotFound) != KindNotFound {
		t.Fatalf("unexpected kinds")
	}
}

func TestCloneIsDeep(t *testing.T) {
	cat := Category{Name: "General", Questions: []Question{{Text: "Q", Choices: []string{"a", "b", "c", "d"}}}}
	clone := cat.Clone()
	clone.Questions[0].Choices[0] = "changed"
	if cat.Questions[0].Choices[0] != "a" {
		t.Fatalf("clone shares choice storage")
	}
}
