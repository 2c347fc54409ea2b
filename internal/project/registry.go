// Package project stores each user's projects and their saved documents
// in the record store.
package project

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/recordstore"
)

// DefaultProjectName names the project created for a user with none.
const DefaultProjectName = "My Business Plan"

// Project is one planning workspace owned by a user.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentRecord is a saved document: markdown plus its section outline.
type DocumentRecord struct {
	DocumentType string            `json:"document_type"`
	Content      string            `json:"content"`
	Raw          map[string]string `json:"raw,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Registry reads and writes projects through a recordstore.Store.
type Registry struct {
	store recordstore.Store
	now   func() time.Time
	mu    sync.Mutex
}

// NewRegistry returns a registry over store. A nil now uses time.Now.
func NewRegistry(store recordstore.Store, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{store: store, now: now}
}

func projectsKey(userID string) string     { return "projects:" + userID }
func documentsKey(projectID string) string { return "documents:" + projectID }

// ListProjects returns userID's projects in creation order.
func (r *Registry) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	var projects []Project
	if err := r.load(ctx, projectsKey(userID), &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// CreateProject adds a project for userID.
func (r *Registry) CreateProject(ctx context.Context, userID, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewInvalidRequest("project name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := Project{ID: ulid.Make().String(), Name: name, OwnerID: userID, CreatedAt: r.now().UTC()}
	projects = append(projects, p)
	if err := r.save(ctx, projectsKey(userID), projects); err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureDefault creates DefaultProjectName when userID has no projects and
// returns the user's projects.
func (r *Registry) EnsureDefault(ctx context.Context, userID string) ([]Project, error) {
	projects, err := r.ListProjects(ctx, userID)
	if err != nil || len(projects) > 0 {
		return projects, err
	}
	if _, err := r.CreateProject(ctx, userID, DefaultProjectName); err != nil {
		return nil, err
	}
	return r.ListProjects(ctx, userID)
}

// GetProject returns userID's project with projectID.
func (r *Registry) GetProject(ctx context.Context, userID, projectID string) (*Project, error) {
	projects, err := r.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == projectID {
			return &projects[i], nil
		}
	}
	return nil, errors.NewNotFound("project", projectID)
}

// GetDocuments returns every saved document of projectID keyed by slot.
func (r *Registry) GetDocuments(ctx context.Context, projectID string) (map[document.Slot]DocumentRecord, error) {
	raw := map[string]DocumentRecord{}
	if err := r.load(ctx, documentsKey(projectID), &raw); err != nil {
		return nil, err
	}
	docs := make(map[document.Slot]DocumentRecord, len(raw))
	for k, v := range raw {
		if slot, ok := document.ParseSlot(k); ok {
			docs[slot] = v
		}
	}
	return docs, nil
}

// SaveDocument writes one document of projectID and returns its timestamp.
// The write replaces any earlier copy.
func (r *Registry) SaveDocument(ctx context.Context, projectID string, slot document.Slot, content string, raw map[string]string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := map[string]DocumentRecord{}
	if err := r.load(ctx, documentsKey(projectID), &docs); err != nil {
		return time.Time{}, err
	}
	now := r.now().UTC()
	docs[slot.String()] = DocumentRecord{DocumentType: slot.String(), Content: content, Raw: raw, UpdatedAt: now}
	if err := r.save(ctx, documentsKey(projectID), docs); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (r *Registry) load(ctx context.Context, key string, v any) error {
	data, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return errors.NewInternal(err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func (r *Registry) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return errors.NewPersistenceFailure(key, err)
	}
	return nil
}
