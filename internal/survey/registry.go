package survey

import (
	"errors"
	"sync"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry holds live sessions so an HTTP client can drive one question
// at a time across requests. Sessions are discarded on submission.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*Session{}}
}

func (r *Registry) Start(subjectID string, qn Questionnaire) *Session {
	s := NewSession(subjectID, qn)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
