package interfaces

import (
	"context"

	"github.com/ternarybob/share-mcp/internal/models"
)

// ShareService is the share API surface used by the MCP tool handlers.
// Every method takes the (unnormalized) base URL of the API.
type ShareService interface {
	// FetchEntryWithFiles fetches an entry, downloads its files into
	// {downloadDir}/{entryID}/ and writes content.md there. Individual
	// download failures are reported in the result, not as an error.
	FetchEntryWithFiles(ctx context.Context, baseURL string, entryID int, downloadDir string) (models.EntryResult, error)

	ListEntries(ctx context.Context, baseURL string, page, perPage int, filters map[string]any) (models.EntryListResult, error)
	UpdateEntry(ctx context.Context, baseURL string, entryID int, payload map[string]any) (models.Entry, error)
	DeleteEntry(ctx context.Context, baseURL string, entryID int) (models.MessageResult, error)
	CreateEntry(ctx context.Context, baseURL, textOrURL, filePath string, extraFields map[string]string) (models.CreatedEntry, error)

	ListCustomFields(ctx context.Context, baseURL string) (models.CustomFieldListResult, error)
	CreateCustomField(ctx context.Context, baseURL, name, description string, sortOrder int) (models.CustomField, error)
	UpdateCustomField(ctx context.Context, baseURL, name string, payload map[string]any) (models.CustomField, error)
	DeleteCustomField(ctx context.Context, baseURL, name string) (models.MessageResult, error)
	ExportCustomFields(ctx context.Context, baseURL string) (models.CustomFieldExportResult, error)
	ImportCustomFields(ctx context.Context, baseURL string, payload map[string]any) (models.ImportResult, error)

	ListFieldOptions(ctx context.Context, baseURL, fieldName string) (models.FieldOptionListResult, error)
	CreateFieldOption(ctx context.Context, baseURL, fieldName, name string) (models.FieldOption, error)
	UpdateFieldOption(ctx context.Context, baseURL, fieldName string, optionID int, name string) (models.FieldOption, error)
	DeleteFieldOption(ctx context.Context, baseURL, fieldName string, optionID int) (models.MessageResult, error)

	DeleteAttachment(ctx context.Context, baseURL string, attachmentID int) (models.MessageResult, error)

	GetAuthInfo(ctx context.Context, baseURL string) (models.AuthInfo, error)
	ListFields(ctx context.Context, baseURL string) (models.FieldListResult, error)
}
