package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portal/internal/identity"
	"agency-portal/internal/models"
)

func TestService_LoginResolvesRole(t *testing.T) {
	auth := newFakeAuth()
	profiles := newFakeProfiles()
	id := auth.add("boss@agency.com", "secret123")
	profiles.profiles[id] = models.UserProfile{ID: id, Email: "boss@agency.com", Role: models.RoleAdmin}

	svc := identity.NewService(auth, profiles, nil)
	got, tokens, err := svc.Login(context.Background(), "boss@agency.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.IsAdmin())
	assert.Equal(t, "token-boss@agency.com", tokens.AccessToken)
}

func TestService_LoginDefaultsToTeamMember(t *testing.T) {
	auth := newFakeAuth()
	auth.add("new@agency.com", "secret123")

	svc := identity.NewService(auth, newFakeProfiles(), nil)
	got, _, err := svc.Login(context.Background(), "new@agency.com", "secret123")

	require.NoError(t, err)
	assert.Equal(t, models.RoleTeamMember, got.Role)
	assert.False(t, got.IsAdmin())
}

func TestService_WrongPasswordIsGeneric(t *testing.T) {
	auth := newFakeAuth()
	auth.add("jane@agency.com", "secret123")
	svc := identity.NewService(auth, newFakeProfiles(), nil)

	_, _, err := svc.Login(context.Background(), "jane@agency.com", "nope")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@agency.com", "secret123")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestService_ProfileStoreFailure(t *testing.T) {
	auth := newFakeAuth()
	auth.add("jane@agency.com", "secret123")
	profiles := newFakeProfiles()
	profiles.err = errors.New("connection reset")

	svc := identity.NewService(auth, profiles, nil)
	_, _, err := svc.Login(context.Background(), "jane@agency.com", "secret123")

	require.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, identity.ValidatePassword("abcdefg1"))
	assert.ErrorIs(t, identity.ValidatePassword("abc1"), identity.ErrWeakPassword)
	assert.ErrorIs(t, identity.ValidatePassword("abcdefgh"), identity.ErrWeakPassword)
	assert.ErrorIs(t, identity.ValidatePassword("12345678"), identity.ErrWeakPassword)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, identity.ValidateEmail("jane@agency.com"))
	assert.ErrorIs(t, identity.ValidateEmail("jane"), identity.ErrInvalidEmail)
	assert.ErrorIs(t, identity.ValidateEmail(""), identity.ErrInvalidEmail)
}

func TestMapProviderError(t *testing.T) {
	assert.ErrorIs(t, identity.MapProviderError(errors.New(`response status code 422: {"code":422,"error_code":"email_exists"}`)), identity.ErrEmailInUse)
	assert.ErrorIs(t, identity.MapProviderError(errors.New("A user with this email address has already been registered")), identity.ErrEmailInUse)
	assert.ErrorIs(t, identity.MapProviderError(errors.New(`{"error_code":"weak_password"}`)), identity.ErrWeakPassword)

	other := errors.New("response status code 500: boom")
	assert.Equal(t, other, identity.MapProviderError(other))
	assert.NoError(t, identity.MapProviderError(nil))
}
