package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agency-portal/internal/models"
)

const DefaultInviteTTL = 7 * 24 * time.Hour

// InviteStore persists invites. ConsumeInvite marks an invite accepted and
// returns models.ErrNotFound when it was already consumed.
type InviteStore interface {
	CreateInvite(ctx context.Context, invite *models.Invite) error
	GetInvite(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	ConsumeInvite(ctx context.Context, id uuid.UUID, at time.Time) error
	ReleaseInvite(ctx context.Context, id uuid.UUID) error
}

type InviteMailer interface {
	SendInvite(ctx context.Context, email, link string) error
}

// Inviter issues one-time team invites and turns accepted invites into
// team member accounts.
type Inviter struct {
	store    InviteStore
	admin    AdminAuthenticator
	profiles ProfileStore
	mailer   InviteMailer
	baseURL  string
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewInviter(store InviteStore, admin AdminAuthenticator, profiles ProfileStore, mailer InviteMailer, baseURL string, logger *slog.Logger) *Inviter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inviter{
		store:    store,
		admin:    admin,
		profiles: profiles,
		mailer:   mailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		ttl:      DefaultInviteTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source.
func (i *Inviter) WithClock(now func() time.Time) *Inviter {
	i.now = now
	return i
}

// Invite stores a new invite for email and mails the acceptance link. A
// failed email is logged; the link is still returned so an admin can pass
// it on by hand.
func (i *Inviter) Invite(ctx context.Context, email string, invitedBy uuid.UUID) (*models.Invite, string, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, "", err
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash invite secret: %w", err)
	}

	now := i.now()
	invite := &models.Invite{
		ID:         uuid.New(),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		SecretHash: string(hash),
		InvitedBy:  invitedBy,
		ExpiresAt:  now.Add(i.ttl),
		CreatedAt:  now,
	}
	if err := i.store.CreateInvite(ctx, invite); err != nil {
		return nil, "", fmt.Errorf("failed to create invite: %w", err)
	}

	link := i.link(invite.ID, secret)
	if i.mailer != nil {
		if err := i.mailer.SendInvite(ctx, invite.Email, link); err != nil {
			i.logger.Error("failed to send invite email",
				slog.String("invite_id", invite.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	return invite, link, nil
}

// Accept consumes the invite exactly once and creates the team member's
// account. If account creation fails the invite is released again.
func (i *Inviter) Accept(ctx context.Context, inviteID uuid.UUID, secret, password string) (Identity, error) {
	invite, err := i.store.GetInvite(ctx, inviteID)
	if errors.Is(err, models.ErrNotFound) {
		return Identity{}, ErrInviteInvalid
	}
	if err != nil {
		return Identity{}, fmt.Errorf("failed to load invite: %w", err)
	}
	if invite.AcceptedAt != nil {
		return Identity{}, ErrInviteUsed
	}
	if i.now().After(invite.ExpiresAt) {
		return Identity{}, ErrInviteExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(invite.SecretHash), []byte(secret)) != nil {
		return Identity{}, ErrInviteInvalid
	}
	if err := ValidatePassword(password); err != nil {
		return Identity{}, err
	}

	if err := i.store.ConsumeInvite(ctx, inviteID, i.now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Identity{}, ErrInviteUsed
		}
		return Identity{}, fmt.Errorf("failed to consume invite: %w", err)
	}

	user, err := i.admin.CreateUser(ctx, invite.Email, password)
	if err != nil {
		if relErr := i.store.ReleaseInvite(ctx, inviteID); relErr != nil {
			i.logger.Error("failed to release invite",
				slog.String("invite_id", inviteID.String()),
				slog.String("error", relErr.Error()))
		}
		return Identity{}, MapProviderError(err)
	}

	profile := &models.UserProfile{
		ID:          user.ID,
		Email:       invite.Email,
		Role:        models.RoleTeamMember,
		Permissions: map[string]models.AccessLevel{},
	}
	if err := i.profiles.UpsertProfile(ctx, profile); err != nil {
		return Identity{}, fmt.Errorf("failed to create profile: %w", err)
	}

	return Identity{ID: user.ID, Email: invite.Email, Role: models.RoleTeamMember, Permissions: profile.Permissions}, nil
}

func (i *Inviter) link(id uuid.UUID, secret string) string {
	q := url.Values{}
	q.Set("invite", id.String())
	q.Set("secret", secret)
	return i.baseURL + "/invite/accept?" + q.Encode()
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
