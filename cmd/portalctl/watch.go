package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"agency-portal/internal/authz"
	"agency-portal/internal/identity"
	"agency-portal/internal/livesync"
	"agency-portal/internal/models"
	"agency-portal/internal/supabase"
)

type watchTarget struct {
	resource string
	query    livesync.Query
}

var watchTargets = map[string]watchTarget{
	"clients":  {authz.ResourceClients, livesync.NewQuery("clients").OrderByDesc("created_at")},
	"invoices": {authz.ResourceInvoices, livesync.NewQuery("invoices").OrderByDesc("created_at")},
	"team":     {authz.ResourceTeam, livesync.NewQuery("users").Where("role", models.RoleTeamMember).OrderByAsc("email")},
}

// resolveWatchTarget picks the query for a collection name and applies the
// optional client status filter.
func resolveWatchTarget(name, status string) (watchTarget, error) {
	target, ok := watchTargets[name]
	if !ok {
		return watchTarget{}, fmt.Errorf("unknown collection %q", name)
	}
	if status == "" || status == models.StatusFilterAll {
		return target, nil
	}
	if name != "clients" {
		return watchTarget{}, errors.New("--status only applies to clients")
	}
	if !models.ClientStatus(status).Valid() {
		return watchTarget{}, fmt.Errorf("unknown client status %q", status)
	}
	target.query = target.query.Where("status", status)
	return target, nil
}

func watchCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:       "watch <clients|invoices|team>",
		Short:     "Print live snapshots of a collection until interrupted",
		Long:      "Signs in with PORTAL_EMAIL and PORTAL_PASSWORD and prints a JSON line per snapshot.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"clients", "invoices", "team"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveWatchTarget(args[0], status)
			if err != nil {
				return err
			}
			return runWatch(cmd, target)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "client status filter (all, Active, On Hold, Completed)")
	return cmd
}

func runWatch(cmd *cobra.Command, target watchTarget) error {
	if err := cfg.Require("SUPABASE_URL", "SUPABASE_PUBLISHABLE_KEY", "DATABASE_URL"); err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	sb, err := supabase.NewClient(cfg)
	if err != nil {
		return err
	}

	session := identity.NewSession(identity.NewService(supabase.NewAuthClient(sb), db, appLogger))
	id, err := session.Login(ctx, os.Getenv("PORTAL_EMAIL"), os.Getenv("PORTAL_PASSWORD"))
	if err != nil {
		return err
	}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = session.Logout(logoutCtx)
	}()

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return err
	}
	allowed, err := enforcer.Can(id, target.resource, authz.ActionRead)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%s may not read %s", id.Email, target.resource)
	}

	live := livesync.NewManager(db, appLogger)
	defer live.Close()

	changes := supabase.NewRealtimeClient(cfg.DatabaseURL, appLogger)
	changes.AddSink(live)
	feedErr := make(chan error, 1)
	go func() { feedErr <- changes.Run(ctx) }()

	out := cmd.OutOrStdout()
	unsubscribe := live.Subscribe(ctx, target.query, func(docs []livesync.Document) {
		printSnapshot(out, target.query.Collection, docs)
	}, func(err error) {
		fmt.Fprintln(cmd.ErrOrStderr(), "failed to load:", err)
	})
	defer unsubscribe()

	// Signing out from elsewhere in the process ends the watch.
	done := make(chan struct{})
	stopWatching := session.Subscribe(func(current *identity.Identity) {
		if current == nil {
			select {
			case <-done:
			default:
				close(done)
			}
		}
	})
	defer stopWatching()

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s as %s, press Ctrl+C to stop\n", target.query.Collection, id.Email)
	return waitWatch(ctx, done, feedErr)
}

// waitWatch blocks until the watch is cancelled, the session ends or the
// change feed fails. Snapshots would go stale without the feed, so its
// failure ends the watch with an error.
func waitWatch(ctx context.Context, done <-chan struct{}, feedErr <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return nil
	case err := <-feedErr:
		if err == nil || ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("change feed stopped: %w", err)
	}
}

func printSnapshot(w io.Writer, collection string, docs []livesync.Document) {
	line, err := json.Marshal(map[string]any{
		"at":         time.Now().UTC().Format(time.RFC3339),
		"collection": collection,
		"count":      len(docs),
		"documents":  docs,
	})
	if err != nil {
		fmt.Fprintln(w, strings.TrimSpace(err.Error()))
		return
	}
	fmt.Fprintln(w, string(line))
}
