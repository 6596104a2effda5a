package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"agency-portal/internal/config"
)

// Client holds two Supabase clients: one with the publishable key for
// user-facing auth calls and one with the service role key for admin work.
type Client struct {
	Supabase *supabase.Client
	Admin    *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	admin, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase admin client: %w", err)
	}

	return &Client{
		Supabase: client,
		Admin:    admin,
		Config:   cfg,
	}, nil
}
