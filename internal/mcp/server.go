package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"document", "item", "wizard", "file", "auth", "project"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"document_get":    {documentGetToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentGet }},
	"document_counts": {documentCountsToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentCounts }},
	"document_export": {documentExportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDocumentExport }},
	"item_list":       {itemListToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleItemList }},
	"item_apply":      {itemApplyToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleItemApply }},
	"wizard_start":    {wizardStartToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleWizardStart }},
	"wizard_submit":   {wizardSubmitToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleWizardSubmit }},
	"wizard_cancel":   {wizardCancelToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleWizardCancel }},
	"file_import":     {fileImportToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleFileImport }},
	"file_list":       {fileListToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleFileList }},
	"auth_login":      {authLoginToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleAuthLogin }},
	"auth_logout":     {authLogoutToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleAuthLogout }},
	"project_list":    {projectListToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectList }},
	"project_create":  {projectCreateToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectCreate }},
	"project_select":  {projectSelectToolDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectSelect }},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "item_apply" → "item").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server with the Blueprint tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(o *ops.Orchestrator, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"blueprint",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(o)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves MCP over stdio. Deferred completions run in the background
// until the server exits.
func Run(ctx context.Context, o *ops.Orchestrator, cfg *config.Config, version string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go o.Run(ctx)

	return server.ServeStdio(NewServer(o, cfg, version))
}
