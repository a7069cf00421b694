package domain

// Role is the privilege level of an account.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleRootAdmin Role = "root_admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleRootAdmin:
		return true
	}
	return false
}

// CanTakeQuiz covers taking quizzes and viewing scores.
func (r Role) CanTakeQuiz() bool { return r.Valid() }

// CanAddQuestions is granted to admins and the root admin.
func (r Role) CanAddQuestions() bool { return r == RoleAdmin || r == RoleRootAdmin }

// CanManageUsers covers listing, promoting, demoting and creating accounts.
func (r Role) CanManageUsers() bool { return r == RoleRootAdmin }

// User is a stored account. Hashes never leave the process.
type User struct {
	Username              string `json:"username"`
	PasswordHash          string `json:"-"`
	Role                  Role   `json:"role"`
	SecurityQuestionIndex *int   `json:"-"`
	SecurityAnswerHash    string `json:"-"`
}

// HasRecovery reports whether password recovery was set up for the account.
func (u User) HasRecovery() bool {
	return u.SecurityQuestionIndex != nil && u.SecurityAnswerHash != ""
}

// SecurityQuestions are the prompts offered at signup, referenced by index.
var SecurityQuestions = []string{
	"What was your first pet's name?",
	"What is your mother's maiden name?",
	"What was the name of your elementary school?",
	"In what city were you born?",
	"What is your favorite book?",
}

// SecurityQuestion returns the prompt at idx.
func SecurityQuestion(idx int) (string, bool) {
	if idx < 0 || idx >= len(SecurityQuestions) {
		return "", false
	}
	return SecurityQuestions[idx], true
}
