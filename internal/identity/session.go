package identity

import (
	"context"
	"sync"
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// LoginService is what a Session needs from Service.
type LoginService interface {
	Login(ctx context.Context, email, password string) (Identity, Tokens, error)
	Logout(ctx context.Context, accessToken string) error
}

// Session holds the signed-in identity of one interactive process. It
// starts anonymous. Subscribers are told about every transition and
// receive nil on logout.
type Session struct {
	svc LoginService

	mu      sync.Mutex
	current *Identity
	tokens  Tokens
	subs    map[int]func(*Identity)
	nextSub int
}

func NewSession(svc LoginService) *Session {
	return &Session{svc: svc, subs: make(map[int]func(*Identity))}
}

// Login authenticates and publishes the new identity. A failed login leaves
// the session unchanged.
func (s *Session) Login(ctx context.Context, email, password string) (Identity, error) {
	id, tokens, err := s.svc.Login(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	s.current = &id
	s.tokens = tokens
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		published := id
		fn(&published)
	}
	return id, nil
}

// Logout returns the session to anonymous. Calling it on an anonymous
// session does nothing.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}
	token := s.tokens.AccessToken
	s.current = nil
	s.tokens = Tokens{}
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
	return s.svc.Logout(ctx, token)
}

func (s *Session) Current() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return StateAnonymous
	}
	return StateAuthenticated
}

func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.AccessToken
}

// Subscribe registers fn for identity changes and returns a cancel func.
func (s *Session) Subscribe(fn func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) snapshotSubs() []func(*Identity) {
	out := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
