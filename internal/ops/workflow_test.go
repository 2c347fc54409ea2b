package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/db"
	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/recordstore"
	"github.com/hpungsan/blueprint/internal/sched"
)

// TestFullWorkflow drives a session against SQLite:
// login → apply → wizard → import → export → reopen and reload.
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}
	cfg.StorageDirectory = "acme"
	clock := sched.NewFakeClock(testStart)

	o, err := New(Options{Config: cfg, Store: recordstore.NewSQLite(database), Clock: clock})
	require.NoError(t, err)
	ctx := context.Background()

	// 1. Login and select the default project
	_, err = o.Login(ctx, "demo@blueprint.local", "demo")
	require.NoError(t, err)
	projects, err := o.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	projectID := projects[0].ID
	_, err = o.SelectProject(ctx, projectID)
	require.NoError(t, err)

	// 2. Apply the marketing budget reconciliation
	task, err := o.ApplySuggestion(ctx, "financial-i1")
	require.NoError(t, err)
	require.NoError(t, o.Drain(ctx))
	require.Equal(t, sched.StatusCompleted, task.Status())

	fin, err := o.DocumentState("Financial Projection")
	require.NoError(t, err)
	require.Contains(t, fin.Content, "$200,000")
	require.Equal(t, 0, fin.InconsistencyCount)
	require.NotNil(t, fin.LastModified)

	// 3. Run the wizard
	o.StartWizard()
	for _, a := range []string{"Food waste", "$39 per store", "400 stores", "$250k"} {
		_, err := o.SubmitMessage(a)
		require.NoError(t, err)
	}
	require.NoError(t, o.Drain(ctx))
	strategy, err := o.DocumentState("strategy")
	require.NoError(t, err)
	require.Contains(t, strategy.Content, "Food waste")

	// 4. Import a CSV into the Canvas
	out, err := o.ImportFile(ctx, ImportInput{FileName: "segments.csv", Data: []byte("segment,stores\nGrocers,400\n"), DocumentType: "canvas"})
	require.NoError(t, err)
	require.Equal(t, "acme/canvas_segments.csv", out.Path)

	files, err := o.ListFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"acme/canvas_segments.csv"}, files)

	// 5. Export
	exportPath := filepath.Join(tmpDir, "snapshot.jsonl")
	exp, err := o.ExportDocuments(ctx, ExportInput{Path: exportPath})
	require.NoError(t, err)
	require.Equal(t, 4, exp.Count)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Equal(t, 5, strings.Count(string(data), "\n"))

	// 6. A new session over the same database sees the saved wizard output
	o2, err := New(Options{Config: cfg, Store: recordstore.NewSQLite(database), Clock: clock})
	require.NoError(t, err)
	_, err = o2.Login(ctx, "demo@blueprint.local", "demo")
	require.NoError(t, err)
	_, err = o2.SelectProject(ctx, projectID)
	require.NoError(t, err)

	reloaded, err := o2.DocumentState("strategy")
	require.NoError(t, err)
	require.Equal(t, strategy.Content, reloaded.Content)

	count, err := o2.CountFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rec, err := o2.GetFile(ctx, "acme/canvas_segments.csv")
	require.NoError(t, err)
	require.Equal(t, document.Canvas.String(), rec.DocumentType)
}
