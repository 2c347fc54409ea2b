// Package ops exposes the orchestrator: every operation the CLI, MCP server
// and web API call.
package ops

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/ingest"
	"github.com/hpungsan/blueprint/internal/logger"
	"github.com/hpungsan/blueprint/internal/project"
	"github.com/hpungsan/blueprint/internal/recordstore"
	"github.com/hpungsan/blueprint/internal/sched"
	"github.com/hpungsan/blueprint/internal/session"
	"github.com/hpungsan/blueprint/internal/suggest"
	"github.com/hpungsan/blueprint/internal/wizard"
)

// Options wires an Orchestrator. Zero values get in-memory defaults.
type Options struct {
	Config      *config.Config
	Store       recordstore.Store
	Clock       sched.Clock
	Logger      *zap.Logger
	Credentials []session.Credential
}

// Orchestrator routes external calls to the document store, suggestion
// engine, wizard and ingestion pipeline. Every public operation and every
// deferred task body runs under one mutex, so callers observe a single
// logical execution order.
type Orchestrator struct {
	mu sync.Mutex

	cfg        *config.Config
	storageDir string

	docs       *document.Store
	engine     *suggest.Engine
	wizard     *wizard.Wizard
	normalizer *ingest.Normalizer
	files      *recordstore.Files
	projects   *project.Registry
	auth       *session.Auth
	queue      *sched.Queue

	inflight   map[string]*sched.Task
	transcript []Message
	logger     *zap.Logger
}

// New builds an Orchestrator with seeded documents.
func New(opts Options) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	store := opts.Store
	if store == nil {
		store = recordstore.NewMemory()
	}
	creds := opts.Credentials
	if creds == nil {
		creds = session.DefaultCredentials
	}
	l := logger.OrNop(opts.Logger)

	auth, err := session.NewAuth(creds)
	if err != nil {
		return nil, err
	}

	queue := sched.NewQueue(opts.Clock, l)
	now := queue.Clock().Now

	o := &Orchestrator{
		cfg:        cfg,
		storageDir: cfg.StorageDirectory,
		docs:       document.NewStore(),
		wizard:     wizard.New(),
		normalizer: ingest.New(now, l),
		files:      recordstore.NewFiles(store),
		projects:   project.NewRegistry(store, now),
		auth:       auth,
		queue:      queue,
		inflight:   make(map[string]*sched.Task),
		logger:     l.Named("ops"),
	}
	o.engine = suggest.NewEngine(o.docs, suggest.NewImplementedSet(), projectSaver{o}, l)
	return o, nil
}

// Drain runs every pending completion, waiting on the clock as needed.
// Do not call it from inside an operation.
func (o *Orchestrator) Drain(ctx context.Context) error {
	return o.queue.Drain(ctx)
}

// RunDue runs completions that are already due.
func (o *Orchestrator) RunDue() int {
	return o.queue.RunDue()
}

// Run executes completions as they come due until ctx ends.
func (o *Orchestrator) Run(ctx context.Context) {
	o.queue.Run(ctx)
}

// Task returns a scheduled completion by id.
func (o *Orchestrator) Task(id string) (*sched.Task, bool) {
	return o.queue.Task(id)
}

func (o *Orchestrator) delay() time.Duration {
	return o.cfg.ApplyDelay()
}

func (o *Orchestrator) now() time.Time {
	return o.queue.Clock().Now()
}

// projectSaver persists documents to the selected project. It is called
// with the orchestrator lock held.
type projectSaver struct{ o *Orchestrator }

// SaveDocument saves content when a user is signed in and a project is
// selected, and is a no-op otherwise.
func (s projectSaver) SaveDocument(ctx context.Context, slot document.Slot, content string) error {
	o := s.o
	if o.auth.CurrentUser() == nil {
		return nil
	}
	projectID := o.auth.CurrentProject()
	if projectID == "" {
		return nil
	}
	ts, err := o.projects.SaveDocument(ctx, projectID, slot, content, document.Outline(content))
	if err != nil {
		return err
	}
	return o.docs.MarkPersisted(slot, ts)
}
