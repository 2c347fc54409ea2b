package mcp

import "github.com/mark3labs/mcp-go/mcp"

var documentGetToolDef = mcp.NewTool("document_get",
	mcp.WithDescription("Return one planning document (Canvas, Strategy, FinancialProjection or OKRs) with its markdown content and inconsistency count."),
	mcp.WithString("document_type", mcp.Required(), mcp.Description("Document slot; aliases such as \"financial\" or \"business model canvas\" are accepted")),
)

var documentCountsToolDef = mcp.NewTool("document_counts",
	mcp.WithDescription("Return the inconsistency count of every planning document."),
)

var documentExportToolDef = mcp.NewTool("document_export",
	mcp.WithDescription("Write a JSONL snapshot of the four documents. Defaults to ~/.blueprint/exports."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path")),
)

var itemListToolDef = mcp.NewTool("item_list",
	mcp.WithDescription("List suggestions and inconsistencies with their implemented and pending status."),
	mcp.WithString("document_type", mcp.Description("Only items for this document")),
	mcp.WithString("kind", mcp.Description("suggestion or inconsistency")),
)

var itemApplyToolDef = mcp.NewTool("item_apply",
	mcp.WithDescription("Apply a suggestion or fix an inconsistency. The change lands after a short delay; set wait=false to return immediately."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item id, e.g. strategy-s1")),
	mcp.WithBoolean("wait", mcp.Description("Wait for the change to complete (default true)")),
)

var wizardStartToolDef = mcp.NewTool("wizard_start",
	mcp.WithDescription("Start the four-step strategy wizard, discarding any run in progress."),
)

var wizardSubmitToolDef = mcp.NewTool("wizard_submit",
	mcp.WithDescription("Send a chat message. While the wizard runs it answers the current step; the fourth answer generates all four documents."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Message text")),
	mcp.WithBoolean("wait", mcp.Description("After the final answer, wait for the documents to be generated (default true)")),
)

var wizardCancelToolDef = mcp.NewTool("wizard_cancel",
	mcp.WithDescription("Cancel the strategy wizard and discard its answers."),
)

var fileImportToolDef = mcp.NewTool("file_import",
	mcp.WithDescription("Import a CSV, Excel, Word, JSON or text file into a document. Pass either a local path or file_name with content."),
	mcp.WithString("path", mcp.Description("Local file directly inside ~/.blueprint/files or an allowed path")),
	mcp.WithString("file_name", mcp.Description("Name of the uploaded file; its extension picks the parser")),
	mcp.WithString("content", mcp.Description("File content as text")),
	mcp.WithString("content_base64", mcp.Description("File content, base64 encoded, for binary formats")),
	mcp.WithString("document_type", mcp.Description("Target document (default Strategy)")),
)

var fileListToolDef = mcp.NewTool("file_list",
	mcp.WithDescription("List the virtual paths of every imported file."),
)

var authLoginToolDef = mcp.NewTool("auth_login",
	mcp.WithDescription("Sign in so document changes are saved to a project."),
	mcp.WithString("email", mcp.Required(), mcp.Description("Account email")),
	mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
)

var authLogoutToolDef = mcp.NewTool("auth_logout",
	mcp.WithDescription("Sign out and clear the selected project."),
)

var projectListToolDef = mcp.NewTool("project_list",
	mcp.WithDescription("List the signed-in user's projects."),
)

var projectCreateToolDef = mcp.NewTool("project_create",
	mcp.WithDescription("Create a project for the signed-in user."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
)

var projectSelectToolDef = mcp.NewTool("project_select",
	mcp.WithDescription("Select a project and load its saved documents."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
)
