package main

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverInstructions = "This API manages shared entries (notes, files, links) across multiple projects. " +
	"IMPORTANT: Always filter entries by project. Do NOT list all entries. " +
	"If SHARE_API_PROJECT_ID is configured, entries are automatically filtered by project, " +
	"so you can skip the manual project lookup and call list_entries directly. " +
	"Workflow (only needed when SHARE_API_PROJECT_ID is NOT configured): " +
	"1) Call list_field_options with field_name='project' to get all available projects. " +
	"2) Call list_field_options with field_name='status' to get all available statuses. " +
	"3) Pick the project matching your current context or ask the user which project to use. " +
	"4) Store the project_id and status IDs for the rest of the session and do NOT look them up again. " +
	"5) Call list_entries with filters='{\"project_id\": <id>}' to list only that project's entries. " +
	"You can combine filters, e.g. '{\"project_id\": 1, \"status_id\": 2}'. " +
	"Discover all available filter fields via list_fields or list_custom_fields."

const baseURLDescription = "Base URL of the share API (e.g. http://host/share). Falls back to SHARE_API_BASE_URL if empty."

func withBaseURL() mcp.ToolOption {
	return mcp.WithString("base_url", mcp.Description(baseURLDescription))
}

// toolDefinitions pairs every tool with its handler
func toolDefinitions(env *toolEnv) []server.ServerTool {
	return []server.ServerTool{
		{Tool: createFetchSharedEntryTool(), Handler: handleFetchSharedEntry(env)},
		{Tool: createListEntriesTool(), Handler: handleListEntries(env)},
		{Tool: createUpdateEntryTool(), Handler: handleUpdateEntry(env)},
		{Tool: createDeleteEntryTool(), Handler: handleDeleteEntry(env)},
		{Tool: createCreateEntryTool(), Handler: handleCreateEntry(env)},
		{Tool: createListCustomFieldsTool(), Handler: handleListCustomFields(env)},
		{Tool: createCreateCustomFieldTool(), Handler: handleCreateCustomField(env)},
		{Tool: createUpdateCustomFieldTool(), Handler: handleUpdateCustomField(env)},
		{Tool: createDeleteCustomFieldTool(), Handler: handleDeleteCustomField(env)},
		{Tool: createExportCustomFieldsTool(), Handler: handleExportCustomFields(env)},
		{Tool: createImportCustomFieldsTool(), Handler: handleImportCustomFields(env)},
		{Tool: createListFieldOptionsTool(), Handler: handleListFieldOptions(env)},
		{Tool: createCreateFieldOptionTool(), Handler: handleCreateFieldOption(env)},
		{Tool: createUpdateFieldOptionTool(), Handler: handleUpdateFieldOption(env)},
		{Tool: createDeleteFieldOptionTool(), Handler: handleDeleteFieldOption(env)},
		{Tool: createDeleteAttachmentTool(), Handler: handleDeleteAttachment(env)},
		{Tool: createGetAuthInfoTool(), Handler: handleGetAuthInfo(env)},
		{Tool: createListFieldsTool(), Handler: handleListFields(env)},
	}
}

// createFetchSharedEntryTool returns the fetch_shared_entry tool definition
func createFetchSharedEntryTool() mcp.Tool {
	return mcp.NewTool("fetch_shared_entry",
		mcp.WithDescription("Fetch a shared entry by ID. Downloads all file attachments and returns the entry content with file paths. "+
			"A content.md summary is written next to the downloaded files."),
		mcp.WithNumber("entry_id",
			mcp.Required(),
			mcp.Description("The numeric ID of the shared entry to fetch"),
		),
		withBaseURL(),
		mcp.WithString("download_dir",
			mcp.Description("Directory to save downloaded files. Falls back to SHARE_API_DOWNLOAD_DIR or ./downloads"),
		),
	)
}

// createListEntriesTool returns the list_entries tool definition
func createListEntriesTool() mcp.Tool {
	return mcp.NewTool("list_entries",
		mcp.WithDescription("List shared entries with pagination and optional filters. "+
			"IMPORTANT: Always filter by project to avoid listing unrelated entries. "+
			"If SHARE_API_PROJECT_ID is set, entries are automatically filtered by that project. "+
			"An explicit project_id in filters overrides it. "+
			"If no project_id is configured, call list_field_options(field_name='project') first."),
		withBaseURL(),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
		mcp.WithNumber("per_page",
			mcp.Description("Entries per page (default: 20)"),
		),
		mcp.WithString("filters",
			mcp.Description(`JSON object of filters, e.g. '{"project_id": 1}' or '{"project_id": 1, "status_id": 2}'. `+
				"Discover filter fields via list_fields or list_custom_fields"),
		),
	)
}

func createUpdateEntryTool() mcp.Tool {
	return mcp.NewTool("update_entry",
		mcp.WithDescription("Update a shared entry by ID"),
		mcp.WithNumber("entry_id",
			mcp.Required(),
			mcp.Description("The numeric ID of the entry to update"),
		),
		withBaseURL(),
		mcp.WithString("subject",
			mcp.Description("New subject for the entry"),
		),
		mcp.WithString("body",
			mcp.Description(`New body content as JSON (e.g. '{"content": "text"}')`),
		),
		mcp.WithString("custom_fields",
			mcp.Description(`JSON object of custom field values set as top-level keys, e.g. '{"status_id": 3}'`),
		),
	)
}

func createDeleteEntryTool() mcp.Tool {
	return mcp.NewTool("delete_entry",
		mcp.WithDescription("Delete a shared entry by ID (cascades to attachments)"),
		mcp.WithNumber("entry_id",
			mcp.Required(),
			mcp.Description("The numeric ID of the entry to delete"),
		),
		withBaseURL(),
	)
}

// createCreateEntryTool returns the create_entry tool definition
func createCreateEntryTool() mcp.Tool {
	return mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new entry via the webhook endpoint"),
		withBaseURL(),
		mcp.WithString("text_or_url",
			mcp.Description("Text content or URL to share"),
		),
		mcp.WithString("file_path",
			mcp.Description("Path to a local file to upload"),
		),
		mcp.WithString("extra_fields",
			mcp.Description(`JSON object of extra fields (e.g. '{"_status": "open"}')`),
		),
	)
}

func createListCustomFieldsTool() mcp.Tool {
	return mcp.NewTool("list_custom_fields",
		mcp.WithDescription("List all custom fields"),
		withBaseURL(),
	)
}

func createCreateCustomFieldTool() mcp.Tool {
	return mcp.NewTool("create_custom_field",
		mcp.WithDescription("Create a new custom field"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the custom field to create"),
		),
		withBaseURL(),
		mcp.WithString("description",
			mcp.Description("Optional description for the field"),
		),
		mcp.WithNumber("sort_order",
			mcp.Description("Sort order (default: 0)"),
		),
	)
}

func createUpdateCustomFieldTool() mcp.Tool {
	return mcp.NewTool("update_custom_field",
		mcp.WithDescription("Update an existing custom field"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the custom field to update"),
		),
		withBaseURL(),
		mcp.WithString("description",
			mcp.Description("New description for the field"),
		),
		mcp.WithNumber("sort_order",
			mcp.Description("New sort order"),
		),
	)
}

func createDeleteCustomFieldTool() mcp.Tool {
	return mcp.NewTool("delete_custom_field",
		mcp.WithDescription("Delete a custom field by name (cascades to options)"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the custom field to delete"),
		),
		withBaseURL(),
	)
}

func createExportCustomFieldsTool() mcp.Tool {
	return mcp.NewTool("export_custom_fields",
		mcp.WithDescription("Export all custom fields with their options"),
		withBaseURL(),
	)
}

func createImportCustomFieldsTool() mcp.Tool {
	return mcp.NewTool("import_custom_fields",
		mcp.WithDescription("Import custom fields from a JSON structure (merge mode)"),
		mcp.WithString("fields_json",
			mcp.Required(),
			mcp.Description("JSON object containing the fields to import, in the export format"),
		),
		withBaseURL(),
	)
}

func createListFieldOptionsTool() mcp.Tool {
	return mcp.NewTool("list_field_options",
		mcp.WithDescription("List all options for a custom field"),
		mcp.WithString("field_name",
			mcp.Required(),
			mcp.Description("Name of the custom field"),
		),
		withBaseURL(),
	)
}

func createCreateFieldOptionTool() mcp.Tool {
	return mcp.NewTool("create_field_option",
		mcp.WithDescription("Create a new option for a custom field"),
		mcp.WithString("field_name",
			mcp.Required(),
			mcp.Description("Name of the custom field"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the option to create"),
		),
		withBaseURL(),
	)
}

func createUpdateFieldOptionTool() mcp.Tool {
	return mcp.NewTool("update_field_option",
		mcp.WithDescription("Rename a field option"),
		mcp.WithString("field_name",
			mcp.Required(),
			mcp.Description("Name of the custom field"),
		),
		mcp.WithNumber("option_id",
			mcp.Required(),
			mcp.Description("ID of the option to update"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("New name for the option"),
		),
		withBaseURL(),
	)
}

func createDeleteFieldOptionTool() mcp.Tool {
	return mcp.NewTool("delete_field_option",
		mcp.WithDescription("Delete a field option (cascades to entries using it)"),
		mcp.WithString("field_name",
			mcp.Required(),
			mcp.Description("Name of the custom field"),
		),
		mcp.WithNumber("option_id",
			mcp.Required(),
			mcp.Description("ID of the option to delete"),
		),
		withBaseURL(),
	)
}

func createDeleteAttachmentTool() mcp.Tool {
	return mcp.NewTool("delete_attachment",
		mcp.WithDescription("Delete an attachment by ID"),
		mcp.WithNumber("attachment_id",
			mcp.Required(),
			mcp.Description("ID of the attachment to delete"),
		),
		withBaseURL(),
	)
}

func createGetAuthInfoTool() mcp.Tool {
	return mcp.NewTool("get_auth_info",
		mcp.WithDescription("Get authentication method info from the API"),
		withBaseURL(),
	)
}

func createListFieldsTool() mcp.Tool {
	return mcp.NewTool("list_fields",
		mcp.WithDescription("List all field descriptors (schema discovery)"),
		withBaseURL(),
	)
}
