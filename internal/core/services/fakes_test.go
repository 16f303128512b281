package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
)

type memoryStore struct {
	mu        sync.Mutex
	surveys   map[uuid.UUID]*domain.Survey
	responses []*domain.SurveyResponse
	users     map[uuid.UUID]*domain.User
	sessions  map[uuid.UUID]*domain.Session
	saveErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		surveys:  make(map[uuid.UUID]*domain.Survey),
		users:    make(map[uuid.UUID]*domain.User),
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

func cloneSurvey(s *domain.Survey) *domain.Survey {
	c := *s
	c.Options = append([]domain.SurveyOption(nil), s.Options...)
	return &c
}

type memorySurveyRepo struct{ *memoryStore }

func (r memorySurveyRepo) Save(_ context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.surveys[survey.ID] = cloneSurvey(survey)
	return nil
}

func (r memorySurveyRepo) GetOwned(_ context.Context, id, ownerID uuid.UUID) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok || s.OwnerID != ownerID {
		return nil, domain.ErrSurveyNotFound
	}
	return cloneSurvey(s), nil
}

func (r memorySurveyRepo) GetActive(_ context.Context, id uuid.UUID) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok || !s.IsActive {
		return nil, domain.ErrSurveyUnavailable
	}
	return cloneSurvey(s), nil
}

func (r memorySurveyRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Survey
	for _, s := range r.surveys {
		if s.OwnerID == ownerID {
			out = append(out, cloneSurvey(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memorySurveyRepo) ToggleActive(_ context.Context, id, ownerID uuid.UUID) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok || s.OwnerID != ownerID {
		return nil, domain.ErrSurveyNotFound
	}
	s.IsActive = !s.IsActive
	return cloneSurvey(s), nil
}

func (r memorySurveyRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok || s.OwnerID != ownerID {
		return domain.ErrSurveyNotFound
	}
	kept := r.responses[:0]
	for _, resp := range r.responses {
		if resp.SurveyID != id {
			kept = append(kept, resp)
		}
	}
	r.responses = kept
	delete(r.surveys, id)
	return nil
}

type memoryResponseRepo struct{ *memoryStore }

func (r memoryResponseRepo) Save(_ context.Context, response *domain.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *response
	r.responses = append(r.responses, &c)
	return nil
}

func (r memoryResponseRepo) CountByOption(_ context.Context, surveyID uuid.UUID) ([]domain.OptionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[surveyID]
	if !ok {
		return nil, nil
	}
	results := make([]domain.OptionResult, 0, len(s.Options))
	for _, opt := range s.Options {
		res := domain.OptionResult{OptionID: opt.ID, Text: opt.Text, Order: opt.Order}
		for _, resp := range r.responses {
			if resp.OptionID == opt.ID {
				res.VoteCount++
			}
		}
		results = append(results, res)
	}
	return results, nil
}

type memoryUserRepo struct{ *memoryStore }

func (r memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r memoryUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

type memorySessionRepo struct{ *memoryStore }

func (r memorySessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *session
	r.sessions[session.ID] = &c
	return nil
}

func (r memorySessionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r memorySessionRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Revoked = true
	}
	return nil
}

// plainHasher keeps tests fast; bcrypt itself is covered by the password adapter.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	return "plain:" + password, nil
}

func (plainHasher) Verify(hash, password string) bool {
	return strings.TrimPrefix(hash, "plain:") == password && strings.HasPrefix(hash, "plain:")
}
