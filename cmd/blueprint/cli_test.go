package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/ops"
	"github.com/hpungsan/blueprint/internal/recordstore"
	"github.com/hpungsan/blueprint/internal/sched"
)

// setupTestEnv builds an orchestrator over an in-memory store and a
// virtual clock, so apply and wizard complete without sleeping.
func setupTestEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.DefaultConfig()
	o, err := ops.New(ops.Options{
		Config: cfg,
		Store:  recordstore.NewMemory(),
		Clock:  sched.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("ops.New: %v", err)
	}
	return &env{o: o, cfg: cfg, logger: zap.NewNop()}
}

// runCLI runs args against e and returns what the command wrote to stdout.
func runCLI(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	runErr := newCLIApp(e).Run(append([]string{"blueprint"}, args...))

	w.Close()
	os.Stdout = oldStdout
	return string(<-done), runErr
}

func TestReadLines(t *testing.T) {
	lines, err := readLines(strings.NewReader("first\n\n  second  \nthird, with comma\n"))
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	want := []string{"first", "second", "third, with comma"}
	if len(lines) != len(want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCLIHelpWithoutEnv(t *testing.T) {
	if _, err := runCLI(t, nil, "--help"); err != nil {
		t.Fatalf("--help failed: %v", err)
	}
}

func TestCLIDoc(t *testing.T) {
	e := setupTestEnv(t)

	out, err := runCLI(t, e, "doc", "--markdown", "okrs")
	if err != nil {
		t.Fatalf("doc failed: %v", err)
	}
	if !strings.HasPrefix(out, "# OKRs") {
		t.Errorf("expected OKRs markdown, got %q", out)
	}

	out, err = runCLI(t, e, "doc", "financial")
	if err != nil {
		t.Fatalf("doc failed: %v", err)
	}
	var st document.State
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("parse output: %v\nOutput: %s", err, out)
	}
	if st.Slot != document.FinancialProjection {
		t.Errorf("slot = %s, want FinancialProjection", st.Slot)
	}
}

func TestCLIDoc_UnknownType(t *testing.T) {
	e := setupTestEnv(t)

	_, err := runCLI(t, e, "doc", "roadmap")
	if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestCLICounts(t *testing.T) {
	e := setupTestEnv(t)

	out, err := runCLI(t, e, "counts")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if counts["Canvas"] != 2 || counts["OKRs"] != 2 || counts["Strategy"] != 1 || counts["FinancialProjection"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestCLIItems(t *testing.T) {
	e := setupTestEnv(t)

	out, err := runCLI(t, e, "items", "--type", "strategy", "--kind", "suggestion")
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	var items []ops.ItemView
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(items) != 1 || items[0].ID != "strategy-s1" {
		t.Errorf("items = %+v", items)
	}
}

func TestCLIApply(t *testing.T) {
	e := setupTestEnv(t)

	out, err := runCLI(t, e, "apply", "financial-i1")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	var info struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if info.Status != "completed" {
		t.Errorf("status = %q, want completed", info.Status)
	}

	st, _ := e.o.DocumentState("FinancialProjection")
	if !strings.Contains(st.Content, "$200,000") {
		t.Error("expected reconciled marketing budget")
	}
	if st.InconsistencyCount != 0 {
		t.Errorf("count = %d, want 0", st.InconsistencyCount)
	}
}

func TestCLIApply_UnknownItem(t *testing.T) {
	e := setupTestEnv(t)

	_, err := runCLI(t, e, "apply", "nope")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCLIWizard(t *testing.T) {
	e := setupTestEnv(t)

	out, err := runCLI(t, e, "wizard",
		"--answer", "Independent cafes waste stock",
		"--answer", "$39 per month, per location",
		"--answer", "100 paying cafes, break even",
		"--answer", "$50k, two founders")
	if err != nil {
		t.Fatalf("wizard failed: %v", err)
	}
	var result struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if result.Counts["OKRs"] != 0 || result.Counts["Canvas"] != 1 {
		t.Errorf("counts = %v", result.Counts)
	}

	st, _ := e.o.DocumentState("Strategy")
	if !strings.Contains(st.Content, "- 100 paying cafes") {
		t.Errorf("expected goals as bullets, got:\n%s", st.Content)
	}
}

func TestCLIWizard_NeedsFourAnswers(t *testing.T) {
	e := setupTestEnv(t)

	_, err := runCLI(t, e, "wizard", "--answer", "one", "--answer", "two")
	if err == nil || !strings.Contains(err.Error(), "4 answers") {
		t.Fatalf("expected answer count error, got %v", err)
	}
	if e.o.WizardState().Active {
		t.Error("wizard should not be left running")
	}
}

func TestCLISignInAndProjects(t *testing.T) {
	e := setupTestEnv(t)

	out, err := runCLI(t, e, "--email", "demo@blueprint.local", "--password", "demo", "projects")
	if err != nil {
		t.Fatalf("projects failed: %v", err)
	}
	var result struct {
		Projects []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"projects"`
		Selected string `json:"selected"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(result.Projects) != 1 || result.Projects[0].Name != "My Business Plan" {
		t.Fatalf("projects = %+v", result.Projects)
	}
	if result.Selected != result.Projects[0].ID {
		t.Errorf("selected = %q, want %q", result.Selected, result.Projects[0].ID)
	}
}

func TestCLISignIn_BadPassword(t *testing.T) {
	e := setupTestEnv(t)

	_, err := runCLI(t, e, "--email", "demo@blueprint.local", "--password", "nope", "counts")
	if err == nil || !strings.Contains(err.Error(), "INVALID_CREDENTIALS") {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

func TestCLIProjectWithoutEmail(t *testing.T) {
	e := setupTestEnv(t)

	_, err := runCLI(t, e, "--project", "abc", "counts")
	if err == nil || !strings.Contains(err.Error(), "UNAUTHENTICATED") {
		t.Fatalf("expected UNAUTHENTICATED, got %v", err)
	}
}

func TestCLIImportAndFiles(t *testing.T) {
	e := setupTestEnv(t)
	dir := t.TempDir()
	e.cfg.AllowedPaths = []string{dir}

	path := filepath.Join(dir, "plan.csv")
	if err := os.WriteFile(path, []byte("month,revenue\njan,100\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := runCLI(t, e, "import", "--type", "financial", path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	var imported ops.ImportOutput
	if err := json.Unmarshal([]byte(out), &imported); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if imported.Path != "financialprojection_plan.csv" {
		t.Errorf("path = %q", imported.Path)
	}

	out, err = runCLI(t, e, "files")
	if err != nil {
		t.Fatalf("files failed: %v", err)
	}
	if !strings.Contains(out, "financialprojection_plan.csv") {
		t.Errorf("expected imported file in listing, got %s", out)
	}
}

func TestCLIImport_MissingPath(t *testing.T) {
	e := setupTestEnv(t)

	_, err := runCLI(t, e, "import")
	if err == nil || !strings.Contains(err.Error(), "path is required") {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

func TestCLIExport(t *testing.T) {
	e := setupTestEnv(t)
	dir := t.TempDir()
	e.cfg.AllowedPaths = []string{dir}
	path := filepath.Join(dir, "plan.jsonl")

	out, err := runCLI(t, e, "export", "--path", path)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var result ops.ExportOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if result.Count != len(document.Slots) {
		t.Errorf("count = %d, want %d", result.Count, len(document.Slots))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}
