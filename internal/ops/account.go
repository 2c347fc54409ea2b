package ops

import (
	"context"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/project"
	"github.com/hpungsan/blueprint/internal/session"
)

// Login signs a user in and makes sure they own at least one project.
// A failed login leaves the current session unchanged.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (*session.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	u, err := o.auth.Login(email, password)
	if err != nil {
		o.logger.Info("login rejected", zap.String("email", email))
		return nil, err
	}
	if _, err := o.projects.EnsureDefault(ctx, u.ID); err != nil {
		o.logger.Warn("default project not created", zap.String("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

// Logout clears the user and selected project. Documents stay in memory.
func (o *Orchestrator) Logout() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.auth.Logout()
}

// CurrentUser returns the signed-in user, or nil.
func (o *Orchestrator) CurrentUser() *session.User {
	return o.auth.CurrentUser()
}

// CurrentProject returns the selected project id, or "".
func (o *Orchestrator) CurrentProject() string {
	return o.auth.CurrentProject()
}

// ListProjects returns the signed-in user's projects.
func (o *Orchestrator) ListProjects(ctx context.Context) ([]project.Project, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	u := o.auth.CurrentUser()
	if u == nil {
		return nil, errors.NewUnauthenticated("list projects")
	}
	return o.projects.ListProjects(ctx, u.ID)
}

// CreateProject adds a project for the signed-in user.
func (o *Orchestrator) CreateProject(ctx context.Context, name string) (*project.Project, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	u := o.auth.CurrentUser()
	if u == nil {
		return nil, errors.NewUnauthenticated("create project")
	}
	return o.projects.CreateProject(ctx, u.ID, name)
}

// SelectProject makes id the current project and loads its saved documents
// into the state store. Slots with no saved copy keep their content.
func (o *Orchestrator) SelectProject(ctx context.Context, id string) (*project.Project, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	u := o.auth.CurrentUser()
	if u == nil {
		return nil, errors.NewUnauthenticated("select project")
	}
	p, err := o.projects.GetProject(ctx, u.ID, id)
	if err != nil {
		return nil, err
	}
	saved, err := o.projects.GetDocuments(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	o.auth.SelectProject(p.ID)
	for slot, rec := range saved {
		if err := o.docs.Patch(slot, rec.Content); err != nil {
			return nil, err
		}
		if err := o.docs.MarkPersisted(slot, rec.UpdatedAt); err != nil {
			return nil, err
		}
	}
	o.logger.Info("project selected", zap.String("project_id", p.ID), zap.Int("documents", len(saved)))
	return p, nil
}
