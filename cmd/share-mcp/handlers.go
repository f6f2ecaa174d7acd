package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/share-mcp/internal/common"
	"github.com/ternarybob/share-mcp/internal/interfaces"
	"github.com/ternarybob/share-mcp/internal/services/share"
)

// serviceFactory builds the share API service for one invocation's config
type serviceFactory func(config *common.Config, logger arbor.ILogger) interfaces.ShareService

// toolEnv holds what every handler needs. Configuration is loaded on each
// call so environment and config file changes apply without a restart.
type toolEnv struct {
	loadConfig func() (*common.Config, error)
	newService serviceFactory
	logger     arbor.ILogger
}

func newToolEnv(configPath string, logger arbor.ILogger) *toolEnv {
	return &toolEnv{
		loadConfig: func() (*common.Config, error) {
			return common.LoadConfig(configPath)
		},
		newService: func(config *common.Config, logger arbor.ILogger) interfaces.ShareService {
			return share.NewClient(config, share.WithLogger(logger))
		},
		logger: logger,
	}
}

// invocation is the state of a single tool call
type invocation struct {
	tool    string
	config  *common.Config
	baseURL string
	logger  arbor.ILogger
	service interfaces.ShareService
}

// begin loads the config, applies the base_url and download_dir arguments
// as overrides and resolves the base URL. No request is made and no service
// is built when either step fails.
func (e *toolEnv) begin(tool string, request mcp.CallToolRequest) (*invocation, error) {
	logger := e.logger.WithCorrelationId(common.NewInvocationID())

	config, err := e.loadConfig()
	if err != nil {
		logger.Error().Err(err).Str("tool", tool).Msg("Failed to load configuration")
		return nil, err
	}

	config = config.WithOverrides(request.GetString("base_url", ""), request.GetString("download_dir", ""))

	baseURL, err := config.ResolveBaseURL("")
	if err != nil {
		logger.Warn().Str("tool", tool).Msg("No base URL configured")
		return nil, err
	}

	logger.Info().Str("tool", tool).Str("base_url", baseURL).Msg("Tool invoked")

	return &invocation{
		tool:    tool,
		config:  config,
		baseURL: baseURL,
		logger:  logger,
		service: e.newService(config, logger),
	}, nil
}

type formatter interface {
	FormatOutput() string
}

// respond formats a service result, or logs err and reports it as text
func (inv *invocation) respond(result formatter, err error, failure string) *mcp.CallToolResult {
	if err != nil {
		return inv.fail(err, failure)
	}
	return textResult(result.FormatOutput())
}

func (inv *invocation) fail(err error, msg string) *mcp.CallToolResult {
	inv.logger.Error().Err(err).Str("tool", inv.tool).Msg(msg)
	return errorResult(err)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return textResult("Error: " + err.Error())
}

func missingParam(name string) *mcp.CallToolResult {
	return textResult(fmt.Sprintf("Error: %s parameter is required", name))
}

// parseJSONObject decodes a JSON object argument. An empty string is nil.
func parseJSONObject(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// formValue stringifies a decoded JSON value for a form field. Objects and
// arrays are sent as compact JSON.
func formValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return cast.ToString(v)
}

// handleFetchSharedEntry implements the fetch_shared_entry tool
func handleFetchSharedEntry(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entryID, err := request.RequireInt("entry_id")
		if err != nil {
			return missingParam("entry_id"), nil
		}

		inv, err := env.begin("fetch_shared_entry", request)
		if err != nil {
			return errorResult(err), nil
		}

		downloadDir := inv.config.Share.DownloadDir

		inv.logger.Info().Int("entry_id", entryID).Str("download_dir", downloadDir).Msg("Fetching entry")

		result, err := inv.service.FetchEntryWithFiles(ctx, inv.baseURL, entryID, downloadDir)
		if err != nil {
			return inv.fail(err, "Error fetching entry"), nil
		}

		inv.logger.Info().
			Int("entry_id", entryID).
			Int("downloaded", len(result.DownloadedFiles)).
			Int("failed", len(result.FailedDownloads)).
			Msg("Fetched entry")
		return textResult(result.FormatOutput()), nil
	}
}

// handleListEntries implements the list_entries tool. The configured project
// id is added to the filters unless the caller supplies one.
func handleListEntries(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := env.begin("list_entries", request)
		if err != nil {
			return errorResult(err), nil
		}

		filters, err := parseJSONObject(request.GetString("filters", ""))
		if err != nil {
			return textResult(fmt.Sprintf("Error: Invalid filters JSON: %v", err)), nil
		}

		projectID, ok, err := inv.config.DefaultProjectID()
		if err != nil {
			return inv.fail(err, "Invalid project id"), nil
		}
		if ok {
			if _, set := filters["project_id"]; !set {
				if filters == nil {
					filters = map[string]any{}
				}
				filters["project_id"] = projectID
			}
		}

		page := request.GetInt("page", 1)
		perPage := request.GetInt("per_page", 20)

		result, err := inv.service.ListEntries(ctx, inv.baseURL, page, perPage, filters)
		return inv.respond(result, err, "Error listing entries"), nil
	}
}

func handleUpdateEntry(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entryID, err := request.RequireInt("entry_id")
		if err != nil {
			return missingParam("entry_id"), nil
		}

		inv, err := env.begin("update_entry", request)
		if err != nil {
			return errorResult(err), nil
		}

		payload := map[string]any{}
		if subject := request.GetString("subject", ""); subject != "" {
			payload["subject"] = subject
		}
		if body := request.GetString("body", ""); body != "" {
			var parsed any
			if err := json.Unmarshal([]byte(body), &parsed); err != nil {
				return textResult(fmt.Sprintf("Error: Invalid body JSON: %v", err)), nil
			}
			payload["body"] = parsed
		}
		customFields, err := parseJSONObject(request.GetString("custom_fields", ""))
		if err != nil {
			return textResult(fmt.Sprintf("Error: Invalid custom_fields JSON: %v", err)), nil
		}
		for k, v := range customFields {
			payload[k] = v
		}

		entry, err := inv.service.UpdateEntry(ctx, inv.baseURL, entryID, payload)
		if err != nil {
			return inv.fail(err, "Error updating entry"), nil
		}
		return textResult(fmt.Sprintf("Updated entry #%d: %s", entry.ID, entry.Subject)), nil
	}
}

func handleDeleteEntry(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entryID, err := request.RequireInt("entry_id")
		if err != nil {
			return missingParam("entry_id"), nil
		}

		inv, err := env.begin("delete_entry", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.DeleteEntry(ctx, inv.baseURL, entryID)
		return inv.respond(result, err, "Error deleting entry"), nil
	}
}

func handleListCustomFields(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := env.begin("list_custom_fields", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.ListCustomFields(ctx, inv.baseURL)
		return inv.respond(result, err, "Error listing custom fields"), nil
	}
}

func handleCreateCustomField(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return missingParam("name"), nil
		}

		inv, err := env.begin("create_custom_field", request)
		if err != nil {
			return errorResult(err), nil
		}

		field, err := inv.service.CreateCustomField(ctx, inv.baseURL, name,
			request.GetString("description", ""), request.GetInt("sort_order", 0))
		return inv.respond(field, err, "Error creating custom field"), nil
	}
}

func handleUpdateCustomField(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return missingParam("name"), nil
		}

		inv, err := env.begin("update_custom_field", request)
		if err != nil {
			return errorResult(err), nil
		}

		payload := map[string]any{
			"description": request.GetString("description", ""),
			"sort_order":  request.GetInt("sort_order", 0),
		}
		field, err := inv.service.UpdateCustomField(ctx, inv.baseURL, name, payload)
		return inv.respond(field, err, "Error updating custom field"), nil
	}
}

func handleDeleteCustomField(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return missingParam("name"), nil
		}

		inv, err := env.begin("delete_custom_field", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.DeleteCustomField(ctx, inv.baseURL, name)
		return inv.respond(result, err, "Error deleting custom field"), nil
	}
}

func handleExportCustomFields(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := env.begin("export_custom_fields", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.ExportCustomFields(ctx, inv.baseURL)
		return inv.respond(result, err, "Error exporting custom fields"), nil
	}
}

func handleImportCustomFields(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fieldsJSON, err := request.RequireString("fields_json")
		if err != nil {
			return missingParam("fields_json"), nil
		}

		inv, err := env.begin("import_custom_fields", request)
		if err != nil {
			return errorResult(err), nil
		}

		payload, err := parseJSONObject(fieldsJSON)
		if err == nil && payload == nil {
			err = errors.New("expected a JSON object")
		}
		if err != nil {
			return textResult(fmt.Sprintf("Error: Invalid fields_json: %v", err)), nil
		}

		result, err := inv.service.ImportCustomFields(ctx, inv.baseURL, payload)
		return inv.respond(result, err, "Error importing custom fields"), nil
	}
}

func handleListFieldOptions(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fieldName, err := request.RequireString("field_name")
		if err != nil || fieldName == "" {
			return missingParam("field_name"), nil
		}

		inv, err := env.begin("list_field_options", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.ListFieldOptions(ctx, inv.baseURL, fieldName)
		return inv.respond(result, err, "Error listing field options"), nil
	}
}

func handleCreateFieldOption(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fieldName, err := request.RequireString("field_name")
		if err != nil || fieldName == "" {
			return missingParam("field_name"), nil
		}
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return missingParam("name"), nil
		}

		inv, err := env.begin("create_field_option", request)
		if err != nil {
			return errorResult(err), nil
		}

		option, err := inv.service.CreateFieldOption(ctx, inv.baseURL, fieldName, name)
		return inv.respond(option, err, "Error creating field option"), nil
	}
}

func handleUpdateFieldOption(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fieldName, err := request.RequireString("field_name")
		if err != nil || fieldName == "" {
			return missingParam("field_name"), nil
		}
		optionID, err := request.RequireInt("option_id")
		if err != nil {
			return missingParam("option_id"), nil
		}
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return missingParam("name"), nil
		}

		inv, err := env.begin("update_field_option", request)
		if err != nil {
			return errorResult(err), nil
		}

		option, err := inv.service.UpdateFieldOption(ctx, inv.baseURL, fieldName, optionID, name)
		return inv.respond(option, err, "Error updating field option"), nil
	}
}

func handleDeleteFieldOption(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fieldName, err := request.RequireString("field_name")
		if err != nil || fieldName == "" {
			return missingParam("field_name"), nil
		}
		optionID, err := request.RequireInt("option_id")
		if err != nil {
			return missingParam("option_id"), nil
		}

		inv, err := env.begin("delete_field_option", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.DeleteFieldOption(ctx, inv.baseURL, fieldName, optionID)
		return inv.respond(result, err, "Error deleting field option"), nil
	}
}

func handleDeleteAttachment(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		attachmentID, err := request.RequireInt("attachment_id")
		if err != nil {
			return missingParam("attachment_id"), nil
		}

		inv, err := env.begin("delete_attachment", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.DeleteAttachment(ctx, inv.baseURL, attachmentID)
		return inv.respond(result, err, "Error deleting attachment"), nil
	}
}

func handleGetAuthInfo(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := env.begin("get_auth_info", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.GetAuthInfo(ctx, inv.baseURL)
		return inv.respond(result, err, "Error getting auth info"), nil
	}
}

func handleListFields(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := env.begin("list_fields", request)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := inv.service.ListFields(ctx, inv.baseURL)
		return inv.respond(result, err, "Error listing fields"), nil
	}
}

// handleCreateEntry implements the create_entry tool. Extra field values of
// any JSON type are sent as strings.
func handleCreateEntry(env *toolEnv) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := env.begin("create_entry", request)
		if err != nil {
			return errorResult(err), nil
		}

		parsed, err := parseJSONObject(request.GetString("extra_fields", ""))
		if err != nil {
			return textResult(fmt.Sprintf("Error: Invalid extra_fields JSON: %v", err)), nil
		}
		var extra map[string]string
		if parsed != nil {
			extra = make(map[string]string, len(parsed))
			for k, v := range parsed {
				extra[k] = formValue(v)
			}
		}

		created, err := inv.service.CreateEntry(ctx, inv.baseURL,
			request.GetString("text_or_url", ""), request.GetString("file_path", ""), extra)
		return inv.respond(created, err, "Error creating entry"), nil
	}
}
