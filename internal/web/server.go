package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/logger"
	"github.com/hpungsan/blueprint/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the Blueprint UI and API.
func NewServer(o *ops.Orchestrator, cfg *config.Config, version, bind string, port int, l *zap.Logger) (*http.Server, error) {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	l = logger.OrNop(l).Named("web")
	h := &Handlers{
		o:        o,
		cfg:      cfg,
		renderer: NewRenderer(templateSub, version, l),
		logger:   l,
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           securityHeaders(routes(h, staticSub)),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func routes(h *Handlers, static fs.FS) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/documents", http.StatusFound)
	})
	mux.HandleFunc("GET /documents", h.HandleDocuments)
	mux.HandleFunc("GET /documents/{slot}", h.HandleDocument)
	mux.HandleFunc("GET /counts", h.HandleCounts)
	mux.HandleFunc("GET /items", h.HandleItems)
	mux.HandleFunc("POST /items/{id}/apply", h.HandleApply)
	mux.HandleFunc("GET /tasks/{id}", h.HandleTask)
	mux.HandleFunc("POST /wizard/start", h.HandleWizardStart)
	mux.HandleFunc("POST /wizard/cancel", h.HandleWizardCancel)
	mux.HandleFunc("POST /chat", h.HandleChat)
	mux.HandleFunc("GET /transcript", h.HandleTranscript)
	mux.HandleFunc("GET /files", h.HandleFiles)
	mux.HandleFunc("POST /files", h.HandleUpload)
	mux.HandleFunc("POST /login", h.HandleLogin)
	mux.HandleFunc("POST /logout", h.HandleLogout)
	mux.HandleFunc("GET /projects", h.HandleProjects)
	mux.HandleFunc("POST /projects", h.HandleCreateProject)
	mux.HandleFunc("POST /projects/{id}/select", h.HandleSelectProject)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	return mux
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and the orchestrator's completion loop, and
// shuts both down on SIGINT/SIGTERM.
func Run(o *ops.Orchestrator, srv *http.Server, l *zap.Logger) error {
	l = logger.OrNop(l).Named("web")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go o.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	l.Info("blueprint UI running", zap.String("url", "http://"+srv.Addr))
	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		l.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		l.Info("shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	}
}
