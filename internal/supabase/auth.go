package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"agency-portal/internal/identity"
	"agency-portal/internal/models"
)

// AuthClient adapts GoTrue to the identity package.
type AuthClient struct {
	auth  gotrue.Client
	admin gotrue.Client
	users UserLookup
}

// UserLookup finds an auth account by email. DatabaseClient implements it
// by reading auth.users directly.
type UserLookup interface {
	FindAuthUserByEmail(ctx context.Context, email string) (identity.AuthUser, error)
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{
		auth:  c.Supabase.Auth,
		admin: c.Admin.Auth.WithToken(c.Config.SupabaseServiceRoleKey),
	}
}

// WithUserLookup routes FindUserByEmail through l instead of the admin
// user list.
func (a *AuthClient) WithUserLookup(l UserLookup) *AuthClient {
	a.users = l
	return a
}

func (a *AuthClient) SignIn(ctx context.Context, email, password string) (identity.AuthUser, identity.Tokens, error) {
	if err := ctx.Err(); err != nil {
		return identity.AuthUser{}, identity.Tokens{}, err
	}

	resp, err := a.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return identity.AuthUser{}, identity.Tokens{}, err
	}

	user := identity.AuthUser{ID: resp.User.ID, Email: resp.User.Email}
	tokens := identity.Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiry(resp.Session),
	}
	return user, tokens, nil
}

func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.auth.WithToken(accessToken).Logout()
}

func (a *AuthClient) CreateUser(ctx context.Context, email, password string) (identity.AuthUser, error) {
	if err := ctx.Err(); err != nil {
		return identity.AuthUser{}, err
	}

	resp, err := a.admin.AdminCreateUser(types.AdminCreateUserRequest{
		Email:        email,
		Password:     &password,
		EmailConfirm: true,
	})
	if err != nil {
		return identity.AuthUser{}, err
	}
	return identity.AuthUser{ID: resp.ID, Email: resp.Email}, nil
}

// FindUserByEmail matches case-insensitively. Without a UserLookup only the
// first page of the admin user list is searched.
func (a *AuthClient) FindUserByEmail(ctx context.Context, email string) (identity.AuthUser, error) {
	if err := ctx.Err(); err != nil {
		return identity.AuthUser{}, err
	}
	if a.users != nil {
		return a.users.FindAuthUserByEmail(ctx, email)
	}

	resp, err := a.admin.AdminListUsers()
	if err != nil {
		return identity.AuthUser{}, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range resp.Users {
		if strings.EqualFold(u.Email, email) {
			return identity.AuthUser{ID: u.ID, Email: u.Email}, nil
		}
	}
	return identity.AuthUser{}, models.ErrNotFound
}

func expiry(s types.Session) int64 {
	if s.ExpiresAt > 0 {
		return s.ExpiresAt
	}
	return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second).Unix()
}
