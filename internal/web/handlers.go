package web

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI and JSON API.
type Handlers struct {
	o        *ops.Orchestrator
	cfg      *config.Config
	renderer *Renderer
	logger   *zap.Logger
}

// HandleDocuments handles GET /documents: every document with its count.
func (h *Handlers) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/documents/"+url.PathEscape(string(document.Strategy)), http.StatusFound)
		return
	}

	docs := h.o.Documents()
	out := make([]map[string]any, 0, len(document.Slots))
	for _, slot := range document.Slots {
		out = append(out, documentJSON(h.renderer.documentView(docs[slot])))
	}
	renderJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// HandleDocument handles GET /documents/{slot}: one document, rendered.
func (h *Handlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	st, err := h.o.DocumentState(r.PathValue("slot"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	view := h.renderer.documentView(st)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, documentJSON(view))
		return
	}

	items, err := h.o.ListItems(string(st.Slot), "")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	ws := h.o.WizardState()
	h.renderer.renderPage(w, r, "document", DocumentPageData{
		PageData:   h.pageData(view.Title, string(st.Slot)),
		Document:   view,
		Counts:     h.o.InconsistencyCounts(),
		Items:      items,
		Transcript: h.o.Transcript(),
		Wizard:     ws.Active,
		WizardStep: ws.Step,
	})
}

// HandleCounts handles GET /counts.
func (h *Handlers) HandleCounts(w http.ResponseWriter, r *http.Request) {
	counts := h.o.InconsistencyCounts()
	out := make(map[string]int, len(counts))
	for slot, n := range counts {
		out[string(slot)] = n
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleItems handles GET /items?document_type=&kind=.
func (h *Handlers) HandleItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.o.ListItems(q.Get("document_type"), q.Get("kind"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"items": items})
}

// HandleApply handles POST /items/{id}/apply. The change completes after
// the configured delay; JSON clients get 202 and poll /tasks/{id}.
func (h *Handlers) HandleApply(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, err := h.o.ApplySuggestion(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusAccepted, ops.DescribeTask(task))
		return
	}
	h.redirectBack(w, r)
}

// HandleTask handles GET /tasks/{id}.
func (h *Handlers) HandleTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := h.o.Task(id)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound("task", id))
		return
	}
	renderJSON(w, http.StatusOK, ops.DescribeTask(task))
}

// HandleWizardStart handles POST /wizard/start.
func (h *Handlers) HandleWizardStart(w http.ResponseWriter, r *http.Request) {
	reply := h.o.StartWizard()
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, reply)
		return
	}
	h.redirectBack(w, r)
}

// HandleWizardCancel handles POST /wizard/cancel.
func (h *Handlers) HandleWizardCancel(w http.ResponseWriter, r *http.Request) {
	cancelled := h.o.CancelWizard()
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"cancelled": cancelled})
		return
	}
	h.redirectBack(w, r)
}

// HandleChat handles POST /chat with a "text" form field or JSON body.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := h.decodeBody(r, &body, "text"); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	reply, err := h.o.SubmitMessage(body.Text)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		out := map[string]any{"reply": reply.Reply, "step": reply.Step, "wizard": reply.State}
		status := http.StatusOK
		if reply.Task != nil {
			out["task"] = ops.DescribeTask(reply.Task)
			status = http.StatusAccepted
		}
		renderJSON(w, status, out)
		return
	}
	h.redirectBack(w, r)
}

// HandleTranscript handles GET /transcript.
func (h *Handlers) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"messages": h.o.Transcript()})
}

// HandleUpload handles POST /files, a multipart upload with a "file" part
// and an optional "document_type" field.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	limit := int64(h.cfg.MaxImportBytes)
	if limit > 0 {
		// Leave room for the multipart envelope around the file.
		r.Body = http.MaxBytesReader(w, r.Body, limit+64*1024)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.renderer.renderError(w, r, errors.NewFileTooLarge(h.cfg.MaxImportBytes, int(r.ContentLength)))
			return
		}
		h.renderer.renderError(w, r, errors.NewInvalidRequest("expected a multipart upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, header, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("file is required"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	out, err := h.o.ImportFile(r.Context(), ops.ImportInput{
		FileName:     header.Filename,
		Data:         data,
		DocumentType: r.FormValue("document_type"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, out)
		return
	}
	http.Redirect(w, r, "/documents/"+url.PathEscape(string(out.Slot)), http.StatusSeeOther)
}

// HandleFiles handles GET /files.
func (h *Handlers) HandleFiles(w http.ResponseWriter, r *http.Request) {
	paths, err := h.o.ListFiles(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"files": paths, "count": len(paths)})
		return
	}
	h.renderer.renderPage(w, r, "files", FilesPageData{
		PageData: h.pageData("Imported files", "files"),
		Files:    paths,
	})
}

// HandleLogin handles POST /login.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := h.decodeBody(r, &body, "email", "password"); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	u, err := h.o.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, u)
		return
	}
	h.redirectBack(w, r)
}

// HandleLogout handles POST /logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.o.Logout()
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"signed_out": true})
		return
	}
	h.redirectBack(w, r)
}

// HandleProjects handles GET /projects.
func (h *Handlers) HandleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.o.ListProjects(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"projects": projects, "selected": h.o.CurrentProject()})
}

// HandleCreateProject handles POST /projects.
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := h.decodeBody(r, &body, "name"); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	p, err := h.o.CreateProject(r.Context(), body.Name)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, p)
}

// HandleSelectProject handles POST /projects/{id}/select.
func (h *Handlers) HandleSelectProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.o.SelectProject(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	h.redirectBack(w, r)
}

// decodeBody fills dst from a JSON body, or from the named form fields
// when the request is a form post.
func (h *Handlers) decodeBody(r *http.Request, dst any, fields ...string) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
			return errors.NewInvalidRequest("invalid JSON body")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return errors.NewInvalidRequest("invalid form data")
	}
	form := make(map[string]string, len(fields))
	for _, f := range fields {
		form[f] = r.FormValue(f)
	}
	b, _ := json.Marshal(form)
	return json.Unmarshal(b, dst)
}

func (h *Handlers) pageData(title, nav string) PageData {
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		Slots:   document.Slots,
		User:    h.o.CurrentUser(),
	}
}

// redirectBack sends form posts back to the page they came from. Only
// same-site paths are followed.
func (h *Handlers) redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/documents"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && strings.HasPrefix(ref.Path, "/") {
		target = ref.Path
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func documentJSON(v DocumentView) map[string]any {
	return map[string]any{
		"document_type":       v.Slot,
		"title":               v.Title,
		"content":             v.Content,
		"html":                string(v.RenderedHTML),
		"inconsistency_count": v.InconsistencyCount,
		"last_modified":       v.LastModified,
	}
}
