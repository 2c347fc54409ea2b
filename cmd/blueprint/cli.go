package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/ops"
	"github.com/hpungsan/blueprint/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "blueprint",
		Usage:   "Business plan workspace",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", EnvVars: []string{"BLUEPRINT_EMAIL"}, Usage: "Sign in before running the command"},
			&cli.StringFlag{Name: "password", EnvVars: []string{"BLUEPRINT_PASSWORD"}, Usage: "Password for --email"},
			&cli.StringFlag{Name: "project", Usage: "Project id to open (defaults to the first project)"},
			&cli.BoolFlag{Name: "no-delay", Usage: "Resolve suggestions and the wizard without the apply delay"},
		},
		Before: func(c *cli.Context) error {
			if e == nil {
				return nil
			}
			if c.Bool("no-delay") {
				e.cfg.NoDelay = true
			}
			return signIn(c, e)
		},
		Commands: []*cli.Command{
			importCmd(e),
			filesCmd(e),
			docCmd(e),
			countsCmd(e),
			itemsCmd(e),
			applyCmd(e),
			wizardCmd(e),
			projectsCmd(e),
			exportCmd(e),
			serveCmd(e),
		},
		// Wizard answers routinely contain commas.
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// signIn logs in and opens a project when --email is given, so the command
// runs against that project's saved documents.
func signIn(c *cli.Context, e *env) error {
	email := c.String("email")
	if email == "" {
		if c.IsSet("project") {
			return outputError(errors.NewUnauthenticated("open a project"))
		}
		return nil
	}

	ctx := c.Context
	if _, err := e.o.Login(ctx, email, c.String("password")); err != nil {
		return outputError(err)
	}

	id := c.String("project")
	if id == "" {
		projects, err := e.o.ListProjects(ctx)
		if err != nil {
			return outputError(err)
		}
		if len(projects) == 0 {
			return nil
		}
		id = projects[0].ID
	}
	if _, err := e.o.SelectProject(ctx, id); err != nil {
		return outputError(err)
	}
	return nil
}

// importCmd creates the import command.
func importCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a CSV, JSON, XLSX, XLS, DOCX or text file into a document",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Target document (defaults to Strategy)"},
			&cli.StringFlag{Name: "storage-dir", Usage: "Prefix for the imported file's virtual path"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}
			if dir := c.String("storage-dir"); dir != "" {
				e.o.SetStorageDirectory(dir)
			}

			output, err := e.o.ImportPath(c.Context, ops.ImportPathInput{
				Path:         c.Args().First(),
				DocumentType: c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// filesCmd creates the files command.
func filesCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "files",
		Usage:     "List imported files, or show one by virtual path",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				rec, err := e.o.GetFile(c.Context, c.Args().First())
				if err != nil {
					return outputError(err)
				}
				return outputJSON(rec)
			}

			paths, err := e.o.ListFiles(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"files": paths, "count": len(paths)})
		},
	}
}

// docCmd creates the doc command.
func docCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "doc",
		Usage:     "Show a document",
		ArgsUsage: "<Canvas|Strategy|FinancialProjection|OKRs>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Print only the markdown content"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("document type is required"))
			}
			st, err := e.o.DocumentState(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if c.Bool("markdown") {
				_, err := fmt.Fprint(os.Stdout, st.Content)
				return err
			}
			return outputJSON(st)
		},
	}
}

// countsCmd creates the counts command.
func countsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "counts",
		Usage: "Show the inconsistency count of every document",
		Action: func(c *cli.Context) error {
			return outputJSON(countsJSON(e.o.InconsistencyCounts()))
		},
	}
}

// itemsCmd creates the items command.
func itemsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "List suggestions and inconsistencies",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Filter by document"},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Filter by kind: suggestion|inconsistency"},
		},
		Action: func(c *cli.Context) error {
			items, err := e.o.ListItems(c.String("type"), c.String("kind"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(items)
		},
	}
}

// applyCmd creates the apply command. It waits for the change to complete.
func applyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Apply a suggestion or resolve an inconsistency",
		ArgsUsage: "<item-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("item id is required"))
			}
			task, err := e.o.ApplySuggestion(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			if err := e.o.Drain(c.Context); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(ops.DescribeTask(task))
		},
	}
}

// wizardCmd creates the wizard command. Answers come from repeated --answer
// flags or, when none are given, one per line on stdin.
func wizardCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "wizard",
		Usage: "Generate all four documents from four answers",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "answer", Aliases: []string{"a"}, Usage: "Answer for the next step (repeat 4 times)"},
		},
		Action: func(c *cli.Context) error {
			answers := c.StringSlice("answer")
			if len(answers) == 0 && stdinHasData() {
				lines, err := readLines(os.Stdin)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				answers = lines
			}
			if len(answers) != 4 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("the wizard needs 4 answers, got %d", len(answers))))
			}

			e.o.StartWizard()
			for _, a := range answers {
				if _, err := e.o.SubmitMessage(a); err != nil {
					e.o.CancelWizard()
					return outputError(err)
				}
			}
			if err := e.o.Drain(c.Context); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(map[string]any{
				"counts":     countsJSON(e.o.InconsistencyCounts()),
				"transcript": e.o.Transcript(),
			})
		},
	}
}

// projectsCmd creates the projects command.
func projectsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "List projects of the signed-in user (requires --email)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "create", Usage: "Create a project with this name"},
		},
		Action: func(c *cli.Context) error {
			if name := c.String("create"); name != "" {
				p, err := e.o.CreateProject(c.Context, name)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(p)
			}

			projects, err := e.o.ListProjects(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"projects": projects, "selected": e.o.CurrentProject()})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all four documents to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.blueprint/exports/<project>-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := e.o.ExportDocuments(c.Context, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8484, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(e.o, e.cfg, Version, c.String("bind"), c.Int("port"), e.logger)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(e.o, srv, e.logger)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if bErr := errors.As(err); bErr != nil {
		return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func countsJSON(counts map[document.Slot]int) map[string]int {
	out := make(map[string]int, len(counts))
	for slot, n := range counts {
		out[string(slot)] = n
	}
	return out
}
