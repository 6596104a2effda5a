// Package authz decides what an identity may do, from its role and its
// per-project access levels.
package authz

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"

	"agency-portal/internal/identity"
	"agency-portal/internal/models"
)

//go:embed model.conf
var modelText string

//go:embed policy.csv
var policyText string

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Global resources gated by role alone.
const (
	ResourceClients  = "clients"
	ResourceProjects = "projects"
	ResourceInvoices = "invoices"
	ResourceTeam     = "team"
)

// DefaultLevel applies to projects missing from a team member's
// permission map.
const DefaultLevel = models.AccessRead

type Enforcer struct {
	enforcer *casbin.Enforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to load authz model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if err := loadPolicy(e, policyText); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: e}, nil
}

func loadPolicy(e *casbin.Enforcer, text string) error {
	r := csv.NewReader(strings.NewReader(text))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse authz policy: %w", err)
	}
	for _, rec := range records {
		params := make([]interface{}, 0, len(rec)-1)
		for _, f := range rec[1:] {
			params = append(params, strings.TrimSpace(f))
		}
		switch strings.TrimSpace(rec[0]) {
		case "p":
			_, err = e.AddPolicy(params...)
		case "g":
			_, err = e.AddGroupingPolicy(params...)
		default:
			err = fmt.Errorf("unknown policy type %q", rec[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load authz policy: %w", err)
		}
	}
	return nil
}

// Can reports whether id may perform act on a role-gated resource.
func (e *Enforcer) Can(id identity.Identity, resource string, act Action) (bool, error) {
	return e.enforcer.Enforce(roleSubject(id), resource, string(act))
}

// CanProject reports whether id may perform act on the given project.
// Admins may do anything; team members act through their access level.
func (e *Enforcer) CanProject(id identity.Identity, projectID string, act Action) (bool, error) {
	if id.IsAdmin() {
		return e.enforcer.Enforce(roleSubject(id), "project", string(act))
	}
	level := LevelFor(id, projectID)
	if level == models.AccessNone {
		return false, nil
	}
	return e.enforcer.Enforce(string(level), "project", string(act))
}

// LevelFor returns id's access level on a project.
func LevelFor(id identity.Identity, projectID string) models.AccessLevel {
	if id.IsAdmin() {
		return models.AccessAdmin
	}
	if level, ok := id.Permissions[projectID]; ok && level.Valid() {
		return level
	}
	return DefaultLevel
}

func roleSubject(id identity.Identity) string {
	role := id.Role
	if role == "" {
		role = models.RoleTeamMember
	}
	return "role:" + role
}
