package main

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/share-mcp/internal/common"
	"github.com/ternarybob/share-mcp/internal/interfaces"
	"github.com/ternarybob/share-mcp/internal/models"
)

const testBaseURL = "http://share.test"

// MockShareService is a mock implementation of interfaces.ShareService
type MockShareService struct {
	mock.Mock
}

func (m *MockShareService) FetchEntryWithFiles(ctx context.Context, baseURL string, entryID int, downloadDir string) (models.EntryResult, error) {
	args := m.Called(ctx, baseURL, entryID, downloadDir)
	return args.Get(0).(models.EntryResult), args.Error(1)
}

func (m *MockShareService) ListEntries(ctx context.Context, baseURL string, page, perPage int, filters map[string]any) (models.EntryListResult, error) {
	args := m.Called(ctx, baseURL, page, perPage, filters)
	return args.Get(0).(models.EntryListResult), args.Error(1)
}

func (m *MockShareService) UpdateEntry(ctx context.Context, baseURL string, entryID int, payload map[string]any) (models.Entry, error) {
	args := m.Called(ctx, baseURL, entryID, payload)
	return args.Get(0).(models.Entry), args.Error(1)
}

func (m *MockShareService) DeleteEntry(ctx context.Context, baseURL string, entryID int) (models.MessageResult, error) {
	args := m.Called(ctx, baseURL, entryID)
	return args.Get(0).(models.MessageResult), args.Error(1)
}

func (m *MockShareService) CreateEntry(ctx context.Context, baseURL, textOrURL, filePath string, extraFields map[string]string) (models.CreatedEntry, error) {
	args := m.Called(ctx, baseURL, textOrURL, filePath, extraFields)
	return args.Get(0).(models.CreatedEntry), args.Error(1)
}

func (m *MockShareService) ListCustomFields(ctx context.Context, baseURL string) (models.CustomFieldListResult, error) {
	args := m.Called(ctx, baseURL)
	return args.Get(0).(models.CustomFieldListResult), args.Error(1)
}

func (m *MockShareService) CreateCustomField(ctx context.Context, baseURL, name, description string, sortOrder int) (models.CustomField, error) {
	args := m.Called(ctx, baseURL, name, description, sortOrder)
	return args.Get(0).(models.CustomField), args.Error(1)
}

func (m *MockShareService) UpdateCustomField(ctx context.Context, baseURL, name string, payload map[string]any) (models.CustomField, error) {
	args := m.Called(ctx, baseURL, name, payload)
	return args.Get(0).(models.CustomField), args.Error(1)
}

func (m *MockShareService) DeleteCustomField(ctx context.Context, baseURL, name string) (models.MessageResult, error) {
	args := m.Called(ctx, baseURL, name)
	return args.Get(0).(models.MessageResult), args.Error(1)
}

func (m *MockShareService) ExportCustomFields(ctx context.Context, baseURL string) (models.CustomFieldExportResult, error) {
	args := m.Called(ctx, baseURL)
	return args.Get(0).(models.CustomFieldExportResult), args.Error(1)
}

func (m *MockShareService) ImportCustomFields(ctx context.Context, baseURL string, payload map[string]any) (models.ImportResult, error) {
	args := m.Called(ctx, baseURL, payload)
	return args.Get(0).(models.ImportResult), args.Error(1)
}

func (m *MockShareService) ListFieldOptions(ctx context.Context, baseURL, fieldName string) (models.FieldOptionListResult, error) {
	args := m.Called(ctx, baseURL, fieldName)
	return args.Get(0).(models.FieldOptionListResult), args.Error(1)
}

func (m *MockShareService) CreateFieldOption(ctx context.Context, baseURL, fieldName, name string) (models.FieldOption, error) {
	args := m.Called(ctx, baseURL, fieldName, name)
	return args.Get(0).(models.FieldOption), args.Error(1)
}

func (m *MockShareService) UpdateFieldOption(ctx context.Context, baseURL, fieldName string, optionID int, name string) (models.FieldOption, error) {
	args := m.Called(ctx, baseURL, fieldName, optionID, name)
	return args.Get(0).(models.FieldOption), args.Error(1)
}

func (m *MockShareService) DeleteFieldOption(ctx context.Context, baseURL, fieldName string, optionID int) (models.MessageResult, error) {
	args := m.Called(ctx, baseURL, fieldName, optionID)
	return args.Get(0).(models.MessageResult), args.Error(1)
}

func (m *MockShareService) DeleteAttachment(ctx context.Context, baseURL string, attachmentID int) (models.MessageResult, error) {
	args := m.Called(ctx, baseURL, attachmentID)
	return args.Get(0).(models.MessageResult), args.Error(1)
}

func (m *MockShareService) GetAuthInfo(ctx context.Context, baseURL string) (models.AuthInfo, error) {
	args := m.Called(ctx, baseURL)
	return args.Get(0).(models.AuthInfo), args.Error(1)
}

func (m *MockShareService) ListFields(ctx context.Context, baseURL string) (models.FieldListResult, error) {
	args := m.Called(ctx, baseURL)
	return args.Get(0).(models.FieldListResult), args.Error(1)
}

// newTestEnv returns an env whose config is cfg and whose service is svc
func newTestEnv(cfg *common.Config, svc interfaces.ShareService) *toolEnv {
	return &toolEnv{
		loadConfig: func() (*common.Config, error) {
			return cfg, nil
		},
		newService: func(*common.Config, arbor.ILogger) interfaces.ShareService {
			return svc
		},
		logger: arbor.NewLogger(),
	}
}

func configWithBaseURL() *common.Config {
	cfg := common.NewDefaultConfig()
	cfg.Share.BaseURL = testBaseURL
	return cfg
}

func newRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func callTool(t *testing.T, env *toolEnv, name string, args map[string]any) string {
	t.Helper()
	for _, tool := range toolDefinitions(env) {
		if tool.Tool.Name == name {
			result, err := tool.Handler(context.Background(), newRequest(name, args))
			require.NoError(t, err)
			return resultText(t, result)
		}
	}
	t.Fatalf("tool %s not registered", name)
	return ""
}

func TestToolDefinitions_Names(t *testing.T) {
	var names []string
	for _, tool := range toolDefinitions(newTestEnv(configWithBaseURL(), nil)) {
		names = append(names, tool.Tool.Name)
		assert.NotNil(t, tool.Handler, tool.Tool.Name)
	}

	assert.ElementsMatch(t, []string{
		"fetch_shared_entry", "list_entries", "update_entry", "delete_entry", "create_entry",
		"list_custom_fields", "create_custom_field", "update_custom_field", "delete_custom_field",
		"export_custom_fields", "import_custom_fields",
		"list_field_options", "create_field_option", "update_field_option", "delete_field_option",
		"delete_attachment", "get_auth_info", "list_fields",
	}, names)
}

func TestHandlers_NoBaseURL(t *testing.T) {
	requiredArgs := map[string]map[string]any{
		"fetch_shared_entry":   {"entry_id": 1},
		"list_entries":         {},
		"update_entry":         {"entry_id": 1, "subject": "x"},
		"delete_entry":         {"entry_id": 1},
		"create_entry":         {"text_or_url": "hello"},
		"list_custom_fields":   {},
		"create_custom_field":  {"name": "project"},
		"update_custom_field":  {"name": "project"},
		"delete_custom_field":  {"name": "project"},
		"export_custom_fields": {},
		"import_custom_fields": {"fields_json": `{"fields": []}`},
		"list_field_options":   {"field_name": "project"},
		"create_field_option":  {"field_name": "project", "name": "Alpha"},
		"update_field_option":  {"field_name": "project", "option_id": 1, "name": "Beta"},
		"delete_field_option":  {"field_name": "project", "option_id": 1},
		"delete_attachment":    {"attachment_id": 1},
		"get_auth_info":        {},
		"list_fields":          {},
	}

	serviceBuilt := false
	env := newTestEnv(common.NewDefaultConfig(), nil)
	env.newService = func(*common.Config, arbor.ILogger) interfaces.ShareService {
		serviceBuilt = true
		return nil
	}

	tools := toolDefinitions(env)
	require.Len(t, tools, len(requiredArgs))

	for _, tool := range tools {
		args, ok := requiredArgs[tool.Tool.Name]
		require.True(t, ok, tool.Tool.Name)

		text := callTool(t, env, tool.Tool.Name, args)
		assert.Equal(t, "Error: "+common.ErrNoBaseURL.Error(), text, tool.Tool.Name)
		assert.Contains(t, text, "SHARE_API_BASE_URL", tool.Tool.Name)
	}
	assert.False(t, serviceBuilt)
}

func TestHandlers_ConfigLoadError(t *testing.T) {
	env := newTestEnv(nil, nil)
	env.loadConfig = func() (*common.Config, error) {
		return nil, errors.New("invalid configuration: bad log level")
	}

	text := callTool(t, env, "get_auth_info", map[string]any{"base_url": testBaseURL})
	assert.Equal(t, "Error: invalid configuration: bad log level", text)
}

func TestHandlers_MissingRequiredParam(t *testing.T) {
	env := newTestEnv(configWithBaseURL(), nil)

	assert.Equal(t, "Error: entry_id parameter is required", callTool(t, env, "fetch_shared_entry", map[string]any{}))
	assert.Equal(t, "Error: name parameter is required", callTool(t, env, "create_field_option", map[string]any{"field_name": "project"}))
}

func TestFetchSharedEntry_UsesConfiguredDownloadDir(t *testing.T) {
	svc := new(MockShareService)
	cfg := configWithBaseURL()
	cfg.Share.DownloadDir = "/tmp/share-downloads"

	result := models.EntryResult{Entry: models.Entry{ID: 42, Type: "note", Subject: "Hello"}}
	svc.On("FetchEntryWithFiles", mock.Anything, testBaseURL, 42, "/tmp/share-downloads").Return(result, nil)

	text := callTool(t, newTestEnv(cfg, svc), "fetch_shared_entry", map[string]any{"entry_id": 42})

	assert.Contains(t, text, "Entry #42: Hello")
	svc.AssertExpectations(t)
}

func TestFetchSharedEntry_ArgumentsOverrideConfig(t *testing.T) {
	svc := new(MockShareService)
	svc.On("FetchEntryWithFiles", mock.Anything, "http://other.test/", 7, "/data").
		Return(models.EntryResult{Entry: models.Entry{ID: 7}}, nil)

	callTool(t, newTestEnv(configWithBaseURL(), svc), "fetch_shared_entry", map[string]any{
		"entry_id":     7,
		"base_url":     "http://other.test/",
		"download_dir": "/data",
	})

	svc.AssertExpectations(t)
}

func TestBegin_ServiceBuiltFromOverriddenConfig(t *testing.T) {
	loaded := configWithBaseURL()
	var built *common.Config
	env := &toolEnv{
		loadConfig: func() (*common.Config, error) { return loaded, nil },
		newService: func(cfg *common.Config, _ arbor.ILogger) interfaces.ShareService {
			built = cfg
			return new(MockShareService)
		},
		logger: arbor.NewLogger(),
	}

	inv, err := env.begin("fetch_shared_entry", newRequest("fetch_shared_entry", map[string]any{
		"base_url":     "http://other.test",
		"download_dir": "/override",
	}))
	require.NoError(t, err)

	require.NotNil(t, built)
	assert.Equal(t, "http://other.test", inv.baseURL)
	assert.Equal(t, "http://other.test", built.Share.BaseURL)
	assert.Equal(t, "/override", built.Share.DownloadDir)
	assert.Equal(t, testBaseURL, loaded.Share.BaseURL)
	assert.Equal(t, "./downloads", loaded.Share.DownloadDir)
}

func TestFetchSharedEntry_ErrorReturnedAsText(t *testing.T) {
	svc := new(MockShareService)
	svc.On("FetchEntryWithFiles", mock.Anything, testBaseURL, 3, mock.Anything).
		Return(models.EntryResult{}, errors.New("connection refused"))

	text := callTool(t, newTestEnv(configWithBaseURL(), svc), "fetch_shared_entry", map[string]any{"entry_id": 3})

	assert.Equal(t, "Error: connection refused", text)
}

func TestListEntries_MergesConfiguredProjectID(t *testing.T) {
	svc := new(MockShareService)
	cfg := configWithBaseURL()
	cfg.Share.ProjectID = "7"

	svc.On("ListEntries", mock.Anything, testBaseURL, 1, 20, map[string]any{"project_id": 7, "type": "note"}).
		Return(models.EntryListResult{Page: 1, PerPage: 20}, nil)

	text := callTool(t, newTestEnv(cfg, svc), "list_entries", map[string]any{"filters": `{"type": "note"}`})

	assert.Contains(t, text, "No entries found.")
	svc.AssertExpectations(t)
}

func TestListEntries_ExplicitProjectIDWins(t *testing.T) {
	svc := new(MockShareService)
	cfg := configWithBaseURL()
	cfg.Share.ProjectID = "7"

	svc.On("ListEntries", mock.Anything, testBaseURL, 2, 5, map[string]any{"project_id": float64(2)}).
		Return(models.EntryListResult{Page: 2, PerPage: 5}, nil)

	callTool(t, newTestEnv(cfg, svc), "list_entries", map[string]any{
		"page":     2,
		"per_page": 5,
		"filters":  `{"project_id": 2}`,
	})

	svc.AssertExpectations(t)
}

func TestListEntries_NoFilters(t *testing.T) {
	svc := new(MockShareService)
	svc.On("ListEntries", mock.Anything, testBaseURL, 1, 20, map[string]any(nil)).
		Return(models.EntryListResult{}, nil)

	callTool(t, newTestEnv(configWithBaseURL(), svc), "list_entries", map[string]any{})

	svc.AssertExpectations(t)
}

func TestListEntries_InvalidFilters(t *testing.T) {
	svc := new(MockShareService)

	text := callTool(t, newTestEnv(configWithBaseURL(), svc), "list_entries", map[string]any{"filters": "{not json"})

	assert.Contains(t, text, "Error: Invalid filters JSON:")
	svc.AssertNotCalled(t, "ListEntries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateEntry_BuildsPayload(t *testing.T) {
	svc := new(MockShareService)
	expected := map[string]any{
		"subject":   "New subject",
		"body":      map[string]any{"content": "text"},
		"status_id": float64(3),
	}
	svc.On("UpdateEntry", mock.Anything, testBaseURL, 5, expected).
		Return(models.Entry{ID: 5, Subject: "New subject"}, nil)

	text := callTool(t, newTestEnv(configWithBaseURL(), svc), "update_entry", map[string]any{
		"entry_id":      5,
		"subject":       "New subject",
		"body":          `{"content": "text"}`,
		"custom_fields": `{"status_id": 3}`,
	})

	assert.Equal(t, "Updated entry #5: New subject", text)
	svc.AssertExpectations(t)
}

func TestUpdateEntry_InvalidJSON(t *testing.T) {
	env := newTestEnv(configWithBaseURL(), new(MockShareService))

	text := callTool(t, env, "update_entry", map[string]any{"entry_id": 5, "body": "{"})
	assert.Contains(t, text, "Error: Invalid body JSON:")

	text = callTool(t, env, "update_entry", map[string]any{"entry_id": 5, "custom_fields": "[1]"})
	assert.Contains(t, text, "Error: Invalid custom_fields JSON:")
}

func TestUpdateCustomField_SendsDescriptionAndSortOrder(t *testing.T) {
	svc := new(MockShareService)
	svc.On("UpdateCustomField", mock.Anything, testBaseURL, "status", map[string]any{"description": "Workflow", "sort_order": 4}).
		Return(models.CustomField{Name: "status", Description: "Workflow", SortOrder: 4}, nil)

	text := callTool(t, newTestEnv(configWithBaseURL(), svc), "update_custom_field", map[string]any{
		"name":        "status",
		"description": "Workflow",
		"sort_order":  4,
	})

	assert.Contains(t, text, "Custom field: status")
	svc.AssertExpectations(t)
}

func TestImportCustomFields_RequiresObject(t *testing.T) {
	env := newTestEnv(configWithBaseURL(), new(MockShareService))

	assert.Contains(t, callTool(t, env, "import_custom_fields", map[string]any{"fields_json": "nope"}), "Error: Invalid fields_json:")
	assert.Contains(t, callTool(t, env, "import_custom_fields", map[string]any{"fields_json": "null"}), "Error: Invalid fields_json:")
}

func TestImportCustomFields_Success(t *testing.T) {
	svc := new(MockShareService)
	payload := map[string]any{"fields": []any{map[string]any{"name": "project"}}}
	svc.On("ImportCustomFields", mock.Anything, testBaseURL, payload).
		Return(models.ImportResult{FieldsCreated: 1, OptionsCreated: 0}, nil)

	text := callTool(t, newTestEnv(configWithBaseURL(), svc), "import_custom_fields", map[string]any{
		"fields_json": `{"fields": [{"name": "project"}]}`,
	})

	assert.Equal(t, "Import complete: 1 fields created, 0 options created", text)
}

func TestDeleteEntry_ErrorReturnedAsText(t *testing.T) {
	svc := new(MockShareService)
	svc.On("DeleteEntry", mock.Anything, testBaseURL, 9).Return(models.MessageResult{}, errors.New("boom"))

	assert.Equal(t, "Error: boom", callTool(t, newTestEnv(configWithBaseURL(), svc), "delete_entry", map[string]any{"entry_id": 9}))
}

func TestFieldOptionTools(t *testing.T) {
	svc := new(MockShareService)
	svc.On("ListFieldOptions", mock.Anything, testBaseURL, "project").
		Return(models.FieldOptionListResult{FieldName: "project", Options: []models.FieldOption{{ID: 1, Name: "Alpha", EntryCount: 2}}}, nil)
	svc.On("UpdateFieldOption", mock.Anything, testBaseURL, "project", 1, "Beta").
		Return(models.FieldOption{ID: 1, FieldName: "project", Name: "Beta"}, nil)
	svc.On("DeleteFieldOption", mock.Anything, testBaseURL, "project", 1).
		Return(models.MessageResult{Message: "Option deleted"}, nil)

	env := newTestEnv(configWithBaseURL(), svc)

	assert.Contains(t, callTool(t, env, "list_field_options", map[string]any{"field_name": "project"}), "[1] Alpha (entries=2)")
	assert.Contains(t, callTool(t, env, "update_field_option", map[string]any{"field_name": "project", "option_id": 1, "name": "Beta"}), "Beta")
	assert.Equal(t, "Option deleted", callTool(t, env, "delete_field_option", map[string]any{"field_name": "project", "option_id": 1}))
	svc.AssertExpectations(t)
}

func TestCreateEntry_StringifiesExtraFields(t *testing.T) {
	svc := new(MockShareService)
	svc.On("CreateEntry", mock.Anything, testBaseURL, "https://example.com", "", map[string]string{"_status": "open", "priority": "2"}).
		Return(models.CreatedEntry{ID: "99"}, nil)

	text := callTool(t, newTestEnv(configWithBaseURL(), svc), "create_entry", map[string]any{
		"text_or_url":  "https://example.com",
		"extra_fields": `{"_status": "open", "priority": 2}`,
	})

	assert.Equal(t, "Created entry: 99", text)
	svc.AssertExpectations(t)
}

func TestCreateEntry_InvalidExtraFields(t *testing.T) {
	text := callTool(t, newTestEnv(configWithBaseURL(), new(MockShareService)), "create_entry", map[string]any{"extra_fields": "x"})
	assert.Contains(t, text, "Error: Invalid extra_fields JSON:")
}

func TestFormValue(t *testing.T) {
	assert.Equal(t, "open", formValue("open"))
	assert.Equal(t, "2.5", formValue(2.5))
	assert.Equal(t, "true", formValue(true))
	assert.Equal(t, "", formValue(nil))
	assert.Equal(t, `["a","b"]`, formValue([]any{"a", "b"}))
	assert.Equal(t, `{"k":1}`, formValue(map[string]any{"k": float64(1)}))
}
