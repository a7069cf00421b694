package file

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// userRecord is one value of the users.json object, keyed by username.
type userRecord struct {
	Password            string      `json:"password"`
	Role                domain.Role `json:"role"`
	SecurityQuestionIdx *int        `json:"security_question_idx,omitempty"`
	SecurityAnswerHash  string      `json:"security_answer_hash,omitempty"`
}

// UserRepository stores accounts in a users.json file.
type UserRepository struct {
	path string
	log  *zap.Logger

	mu    sync.RWMutex
	users map[string]userRecord
}

// OpenUserRepository loads path, starting empty when it is missing or corrupt.
func OpenUserRepository(path string, log *zap.Logger) *UserRepository {
	if log == nil {
		log = zap.NewNop()
	}
	r := &UserRepository{path: path, log: log, users: make(map[string]userRecord)}
	if !loadJSON(path, &r.users, log) || r.users == nil {
		r.users = make(map[string]userRecord)
	}
	return r
}

func (r *UserRepository) Get(_ context.Context, username string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return rec.toUser(username), nil
}

func (r *UserRepository) Save(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.users[user.Username]
	r.users[user.Username] = fromUser(user)
	if err := writeJSON(r.path, r.users); err != nil {
		if existed {
			r.users[user.Username] = prev
		} else {
			delete(r.users, user.Username)
		}
		return err
	}
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for name, rec := range r.users {
		out = append(out, rec.toUser(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (rec userRecord) toUser(username string) domain.User {
	user := domain.User{
		Username:           username,
		PasswordHash:       rec.Password,
		Role:               rec.Role,
		SecurityAnswerHash: rec.SecurityAnswerHash,
	}
	if !user.Role.Valid() {
		user.Role = domain.RoleUser
	}
	if rec.SecurityQuestionIdx != nil {
		idx := *rec.SecurityQuestionIdx
		user.SecurityQuestionIndex = &idx
	}
	return user
}

func fromUser(user domain.User) userRecord {
	rec := userRecord{
		Password:           user.PasswordHash,
		Role:               user.Role,
		SecurityAnswerHash: user.SecurityAnswerHash,
	}
	if user.SecurityQuestionIndex != nil {
		idx := *user.SecurityQuestionIndex
		rec.SecurityQuestionIdx = &idx
	}
	return rec
}
