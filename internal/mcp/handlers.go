package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/ops"
	"github.com/hpungsan/blueprint/internal/sched"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	o *ops.Orchestrator
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(o *ops.Orchestrator) *Handlers {
	return &Handlers{o: o}
}

// Request types for each tool

// DocumentGetRequest represents the arguments for document_get.
type DocumentGetRequest struct {
	DocumentType string `json:"document_type"`
}

// DocumentExportRequest represents the arguments for document_export.
type DocumentExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ItemListRequest represents the arguments for item_list.
type ItemListRequest struct {
	DocumentType string `json:"document_type,omitempty"`
	Kind         string `json:"kind,omitempty"`
}

// ItemApplyRequest represents the arguments for item_apply.
type ItemApplyRequest struct {
	ID   string `json:"id"`
	Wait *bool  `json:"wait,omitempty"`
}

// WizardSubmitRequest represents the arguments for wizard_submit.
type WizardSubmitRequest struct {
	Text string `json:"text"`
	Wait *bool  `json:"wait,omitempty"`
}

// FileImportRequest represents the arguments for file_import.
type FileImportRequest struct {
	Path          string `json:"path,omitempty"`
	FileName      string `json:"file_name,omitempty"`
	Content       string `json:"content,omitempty"`
	ContentBase64 string `json:"content_base64,omitempty"`
	DocumentType  string `json:"document_type,omitempty"`
}

// AuthLoginRequest represents the arguments for auth_login.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProjectCreateRequest represents the arguments for project_create.
type ProjectCreateRequest struct {
	Name string `json:"name"`
}

// ProjectSelectRequest represents the arguments for project_select.
type ProjectSelectRequest struct {
	ID string `json:"id"`
}

// HandleDocumentGet handles the document_get tool call.
func (h *Handlers) HandleDocumentGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.DocumentType == "" {
		return errorResult(errors.NewInvalidRequest("document_type is required")), nil
	}

	st, err := h.o.DocumentState(input.DocumentType)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"document_type":       st.Slot,
		"title":               st.Slot.DisplayName(),
		"content":             st.Content,
		"inconsistency_count": st.InconsistencyCount,
		"last_modified":       st.LastModified,
	})
}

// HandleDocumentCounts handles the document_counts tool call.
func (h *Handlers) HandleDocumentCounts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts := h.o.InconsistencyCounts()
	out := make(map[string]int, len(counts))
	total := 0
	for _, slot := range document.Slots {
		out[string(slot)] = counts[slot]
		total += counts[slot]
	}
	return successResult(map[string]any{"counts": out, "total": total})
}

// HandleDocumentExport handles the document_export tool call.
func (h *Handlers) HandleDocumentExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.o.ExportDocuments(ctx, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleItemList handles the item_list tool call.
func (h *Handlers) HandleItemList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ItemListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	items, err := h.o.ListItems(input.DocumentType, input.Kind)
	if err != nil {
		return errorResult(err), nil
	}
	if items == nil {
		items = []ops.ItemView{}
	}
	return successResult(map[string]any{"items": items})
}

// HandleItemApply handles the item_apply tool call.
func (h *Handlers) HandleItemApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ItemApplyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	task, err := h.o.ApplySuggestion(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return h.taskResult(ctx, task, input.Wait)
}

// HandleWizardStart handles the wizard_start tool call.
func (h *Handlers) HandleWizardStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.o.StartWizard())
}

// HandleWizardSubmit handles the wizard_submit tool call.
func (h *Handlers) HandleWizardSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WizardSubmitRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	reply, err := h.o.SubmitMessage(input.Text)
	if err != nil {
		return errorResult(err), nil
	}
	out := map[string]any{"reply": reply.Reply, "step": reply.Step, "wizard": reply.State}
	if reply.Task != nil {
		if waitFor(input.Wait) {
			if err := reply.Task.Wait(ctx); err != nil {
				return errorResult(errors.NewInternal(err)), nil
			}
		}
		out["task"] = ops.DescribeTask(reply.Task)
	}
	return successResult(out)
}

// HandleWizardCancel handles the wizard_cancel tool call.
func (h *Handlers) HandleWizardCancel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{"cancelled": h.o.CancelWizard()})
}

// HandleFileImport handles the file_import tool call.
func (h *Handlers) HandleFileImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FileImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.Path != "" {
		if input.Content != "" || input.ContentBase64 != "" {
			return errorResult(errors.NewInvalidRequest("pass either path or content, not both")), nil
		}
		result, err := h.o.ImportPath(ctx, ops.ImportPathInput{Path: input.Path, DocumentType: input.DocumentType})
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(result)
	}

	data := []byte(input.Content)
	if input.ContentBase64 != "" {
		if input.Content != "" {
			return errorResult(errors.NewInvalidRequest("pass either content or content_base64, not both")), nil
		}
		data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(input.ContentBase64))
		if err != nil {
			return errorResult(errors.NewInvalidRequest("content_base64 is not valid base64")), nil
		}
	}

	result, err := h.o.ImportFile(ctx, ops.ImportInput{
		FileName:     input.FileName,
		Data:         data,
		DocumentType: input.DocumentType,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFileList handles the file_list tool call.
func (h *Handlers) HandleFileList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := h.o.ListFiles(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"files": paths, "count": len(paths)})
}

// HandleAuthLogin handles the auth_login tool call.
func (h *Handlers) HandleAuthLogin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AuthLoginRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	u, err := h.o.Login(ctx, input.Email, input.Password)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(u)
}

// HandleAuthLogout handles the auth_logout tool call.
func (h *Handlers) HandleAuthLogout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.o.Logout()
	return successResult(map[string]any{"signed_out": true})
}

// HandleProjectList handles the project_list tool call.
func (h *Handlers) HandleProjectList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := h.o.ListProjects(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"projects": projects, "selected": h.o.CurrentProject()})
}

// HandleProjectCreate handles the project_create tool call.
func (h *Handlers) HandleProjectCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	p, err := h.o.CreateProject(ctx, input.Name)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleProjectSelect handles the project_select tool call.
func (h *Handlers) HandleProjectSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectSelectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	p, err := h.o.SelectProject(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

func (h *Handlers) taskResult(ctx context.Context, task *sched.Task, wait *bool) (*mcp.CallToolResult, error) {
	if waitFor(wait) {
		if err := task.Wait(ctx); err != nil {
			return errorResult(errors.NewInternal(err)), nil
		}
	}
	return successResult(ops.DescribeTask(task))
}

// waitFor defaults to waiting when the caller did not say.
func waitFor(wait *bool) bool {
	return wait == nil || *wait
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if bErr := errors.As(err); bErr != nil {
		msg := bErr.Message
		// Keep context added by wrapping, e.g. "line 3: NOT_FOUND: ...".
		if prefix := strings.TrimSuffix(err.Error(), bErr.Error()); prefix != err.Error() && prefix != "" {
			msg = prefix + msg
		}
		errorObj := map[string]any{
			"code":    bErr.Code,
			"message": msg,
			"status":  bErr.Status,
		}
		if bErr.Code != errors.ErrInternal && bErr.Details != nil {
			errorObj["details"] = bErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
