package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/ops"
	"github.com/hpungsan/blueprint/internal/session"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: a slot name or "files"
	Slots   []document.Slot
	User    *session.User
}

// DocumentView is one document as shown on a page.
type DocumentView struct {
	Slot               document.Slot
	Title              string
	Content            string
	RenderedHTML       template.HTML
	InconsistencyCount int
	LastModified       *time.Time
}

// DocumentPageData is the template data for the document page.
type DocumentPageData struct {
	PageData
	Document   DocumentView
	Counts     map[document.Slot]int
	Items      []ops.ItemView
	Transcript []ops.Message
	Wizard     bool
	WizardStep int
}

// FilesPageData is the template data for the imported files page.
type FilesPageData struct {
	PageData
	Files []string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	markdown  goldmark.Markdown
	logger    *zap.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, l *zap.Logger) *Renderer {
	funcMap := template.FuncMap{
		"formatTime":  formatTime,
		"displayName": func(s document.Slot) string { return s.DisplayName() },
		"countFor":    func(m map[document.Slot]int, s document.Slot) int { return m[s] },
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"document": "document.html",
		"files":    "files.html",
		"error":    "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:    l,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	bErr := errors.As(err)
	if bErr == nil {
		bErr = errors.NewInternal(err)
	}
	if bErr.Status >= 500 {
		r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
	}

	status := bErr.Status
	message := bErr.Message

	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		errObj := map[string]any{
			"code":    string(bErr.Code),
			"message": message,
			"status":  status,
		}
		if bErr.Code != errors.ErrInternal && bErr.Details != nil {
			errObj["details"] = bErr.Details
		}
		renderJSON(w, status, map[string]any{"error": errObj})
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
			Slots:   document.Slots,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// wantsJSON reports whether the client asked for JSON, by Accept header or
// by sending a JSON body.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(req.Header.Get("Content-Type"), "application/json")
}

// renderMarkdown converts markdown text to HTML using goldmark.
// Raw HTML in the source is dropped.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
	return template.HTML(buf.String())
}

func (r *Renderer) documentView(st document.State) DocumentView {
	return DocumentView{
		Slot:               st.Slot,
		Title:              st.Slot.DisplayName(),
		Content:            st.Content,
		RenderedHTML:       r.renderMarkdown(st.Content),
		InconsistencyCount: st.InconsistencyCount,
		LastModified:       st.LastModified,
	}
}

// formatTime formats a timestamp as "2006-01-02 15:04" UTC, or "never".
func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
