package identity_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agency-portal/internal/identity"
	"agency-portal/internal/models"
)

type fakeAuth struct {
	mu        sync.Mutex
	passwords map[string]string
	ids       map[string]uuid.UUID
	signedOut []string
	createErr error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{passwords: map[string]string{}, ids: map[string]uuid.UUID{}}
}

func (f *fakeAuth) add(email, password string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.passwords[email] = password
	f.ids[email] = id
	return id
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (identity.AuthUser, identity.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return identity.AuthUser{}, identity.Tokens{}, errors.New(`response status code 400: {"error_code":"invalid_credentials"}`)
	}
	return identity.AuthUser{ID: f.ids[email], Email: email}, identity.Tokens{AccessToken: "token-" + email}, nil
}

func (f *fakeAuth) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, token)
	return nil
}

func (f *fakeAuth) CreateUser(_ context.Context, email, password string) (identity.AuthUser, error) {
	if f.createErr != nil {
		return identity.AuthUser{}, f.createErr
	}
	f.mu.Lock()
	_, exists := f.ids[email]
	f.mu.Unlock()
	if exists {
		return identity.AuthUser{}, fmt.Errorf(`response status code 422: {"error_code":"email_exists"}`)
	}
	return identity.AuthUser{ID: f.add(email, password), Email: email}, nil
}

func (f *fakeAuth) FindUserByEmail(_ context.Context, email string) (identity.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.ids[email]
	if !ok {
		return identity.AuthUser{}, models.ErrNotFound
	}
	return identity.AuthUser{ID: id, Email: email}, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]models.UserProfile
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[uuid.UUID]models.UserProfile{}}
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, p *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = *p
	return nil
}

type fakeInvites struct {
	mu      sync.Mutex
	invites map[uuid.UUID]models.Invite
}

func newFakeInvites() *fakeInvites {
	return &fakeInvites{invites: map[uuid.UUID]models.Invite{}}
}

func (f *fakeInvites) CreateInvite(_ context.Context, inv *models.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites[inv.ID] = *inv
	return nil
}

func (f *fakeInvites) GetInvite(_ context.Context, id uuid.UUID) (*models.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &inv, nil
}

func (f *fakeInvites) ConsumeInvite(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok || inv.AcceptedAt != nil {
		return models.ErrNotFound
	}
	inv.AcceptedAt = &at
	f.invites[id] = inv
	return nil
}

func (f *fakeInvites) ReleaseInvite(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.invites[id]
	inv.AcceptedAt = nil
	f.invites[id] = inv
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (f *fakeMailer) SendInvite(_ context.Context, email, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.links == nil {
		f.links = map[string]string{}
	}
	f.links[email] = link
	return nil
}

func secretFromLink(link string) string {
	i := strings.Index(link, "secret=")
	return link[i+len("secret="):]
}
