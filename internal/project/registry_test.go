package project

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/hpungsan/blueprint/internal/db"
	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/recordstore"
)

var fixedNow = time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

func newTestRegistry(store recordstore.Store) *Registry {
	return NewRegistry(store, func() time.Time { return fixedNow })
}

func TestCreateAndListProjects(t *testing.T) {
	r := newTestRegistry(recordstore.NewMemory())
	ctx := context.Background()

	projects, err := r.ListProjects(ctx, "u1")
	if err != nil || len(projects) != 0 {
		t.Fatalf("ListProjects() = %v, %v; want empty", projects, err)
	}

	p, err := r.CreateProject(ctx, "u1", "  Launch plan ")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if p.Name != "Launch plan" || p.OwnerID != "u1" || p.ID == "" {
		t.Errorf("project = %+v", p)
	}
	_, _ = r.CreateProject(ctx, "u2", "Other user")

	projects, _ = r.ListProjects(ctx, "u1")
	if len(projects) != 1 || projects[0].ID != p.ID {
		t.Errorf("ListProjects(u1) = %v", projects)
	}

	if _, err := r.GetProject(ctx, "u2", p.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetProject(other owner) error = %v, want NOT_FOUND", err)
	}
}

func TestCreateProject_EmptyName(t *testing.T) {
	_, err := newTestRegistry(recordstore.NewMemory()).CreateProject(context.Background(), "u1", " ")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("CreateProject() error = %v, want INVALID_REQUEST", err)
	}
}

func TestEnsureDefault(t *testing.T) {
	r := newTestRegistry(recordstore.NewMemory())
	ctx := context.Background()

	projects, err := r.EnsureDefault(ctx, "u1")
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}
	if len(projects) != 1 || projects[0].Name != DefaultProjectName {
		t.Fatalf("projects = %v", projects)
	}
	again, _ := r.EnsureDefault(ctx, "u1")
	if len(again) != 1 {
		t.Errorf("second EnsureDefault() created another project: %v", again)
	}
}

func TestSaveAndGetDocuments(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer database.Close()

	r := newTestRegistry(recordstore.NewSQLite(database))
	ctx := context.Background()

	ts, err := r.SaveDocument(ctx, "p1", document.Strategy, "# v1", nil)
	if err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
	if !ts.Equal(fixedNow) {
		t.Errorf("timestamp = %v, want %v", ts, fixedNow)
	}
	_, _ = r.SaveDocument(ctx, "p1", document.Strategy, "# v2", map[string]string{"Vision": "x"})
	_, _ = r.SaveDocument(ctx, "p1", document.OKRs, "# okrs", nil)

	docs, err := r.GetDocuments(ctx, "p1")
	if err != nil {
		t.Fatalf("GetDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %v, want 2", docs)
	}
	if docs[document.Strategy].Content != "# v2" || docs[document.Strategy].Raw["Vision"] != "x" {
		t.Errorf("strategy = %+v, want last write", docs[document.Strategy])
	}

	empty, err := r.GetDocuments(ctx, "p2")
	if err != nil || len(empty) != 0 {
		t.Errorf("GetDocuments(p2) = %v, %v; want empty", empty, err)
	}
}

func TestSaveDocument_PersistenceFailure(t *testing.T) {
	mem := recordstore.NewMemory()
	mem.FailSet = stderrors.New("quota exceeded")

	_, err := newTestRegistry(mem).SaveDocument(context.Background(), "p1", document.Canvas, "x", nil)
	if !errors.Is(err, errors.ErrPersistenceFailure) {
		t.Errorf("SaveDocument() error = %v, want PERSISTENCE_FAILURE", err)
	}
}
