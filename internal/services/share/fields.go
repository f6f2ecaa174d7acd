package share

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ternarybob/share-mcp/internal/models"
)

// ListCustomFields returns all custom field definitions
func (c *Client) ListCustomFields(ctx context.Context, baseURL string) (models.CustomFieldListResult, error) {
	data, err := c.doJSON(ctx, http.MethodGet, c.apiURL(baseURL, "custom-fields"), nil, nil)
	if err != nil {
		return models.CustomFieldListResult{}, fmt.Errorf("failed to list custom fields: %w", err)
	}

	raw := arrayField(data, "data")
	result := models.CustomFieldListResult{Fields: make([]models.CustomField, 0, len(raw))}
	for _, f := range raw {
		result.Fields = append(result.Fields, parseCustomField(f))
	}
	return result, nil
}

func (c *Client) CreateCustomField(ctx context.Context, baseURL, name, description string, sortOrder int) (models.CustomField, error) {
	payload := map[string]any{
		"name":        name,
		"description": description,
		"sort_order":  sortOrder,
	}

	data, err := c.doJSON(ctx, http.MethodPost, c.apiURL(baseURL, "custom-fields"), nil, payload)
	if err != nil {
		return models.CustomField{}, fmt.Errorf("failed to create custom field %q: %w", name, err)
	}

	c.logger.Info().Str("field", name).Msg("Custom field created")
	return parseCustomField(data), nil
}

func (c *Client) UpdateCustomField(ctx context.Context, baseURL, name string, payload map[string]any) (models.CustomField, error) {
	reqURL := c.apiURL(baseURL, "custom-fields", url.PathEscape(name))

	data, err := c.doJSON(ctx, http.MethodPut, reqURL, nil, payload)
	if err != nil {
		return models.CustomField{}, fmt.Errorf("failed to update custom field %q: %w", name, err)
	}
	return parseCustomField(data), nil
}

// DeleteCustomField removes a field together with its options
func (c *Client) DeleteCustomField(ctx context.Context, baseURL, name string) (models.MessageResult, error) {
	reqURL := c.apiURL(baseURL, "custom-fields", url.PathEscape(name))

	data, err := c.doJSON(ctx, http.MethodDelete, reqURL, nil, nil)
	if err != nil {
		return models.MessageResult{}, fmt.Errorf("failed to delete custom field %q: %w", name, err)
	}

	c.logger.Info().Str("field", name).Msg("Custom field deleted")
	return models.MessageResult{Message: stringFieldOr(data, "message", "Custom field deleted")}, nil
}

func (c *Client) ExportCustomFields(ctx context.Context, baseURL string) (models.CustomFieldExportResult, error) {
	data, err := c.doJSON(ctx, http.MethodGet, c.apiURL(baseURL, "custom-fields", "export"), nil, nil)
	if err != nil {
		return models.CustomFieldExportResult{}, fmt.Errorf("failed to export custom fields: %w", err)
	}

	raw := arrayField(data, "data")
	result := models.CustomFieldExportResult{Fields: make([]models.ExportedField, 0, len(raw))}
	for _, f := range raw {
		result.Fields = append(result.Fields, parseExportedField(f))
	}
	return result, nil
}

// ImportCustomFields posts a payload in the export format. Fields and options
// that already exist are skipped by the server.
func (c *Client) ImportCustomFields(ctx context.Context, baseURL string, payload map[string]any) (models.ImportResult, error) {
	data, err := c.doJSON(ctx, http.MethodPost, c.apiURL(baseURL, "custom-fields", "import"), nil, payload)
	if err != nil {
		return models.ImportResult{}, fmt.Errorf("failed to import custom fields: %w", err)
	}

	result := models.ImportResult{
		FieldsCreated:  intField(data, "fields_created"),
		OptionsCreated: intField(data, "options_created"),
	}
	c.logger.Info().
		Int("fields_created", result.FieldsCreated).
		Int("options_created", result.OptionsCreated).
		Msg("Custom fields imported")
	return result, nil
}

func (c *Client) ListFieldOptions(ctx context.Context, baseURL, fieldName string) (models.FieldOptionListResult, error) {
	reqURL := c.apiURL(baseURL, "field-options", url.PathEscape(fieldName))

	data, err := c.doJSON(ctx, http.MethodGet, reqURL, nil, nil)
	if err != nil {
		return models.FieldOptionListResult{}, fmt.Errorf("failed to list options for %q: %w", fieldName, err)
	}

	raw := arrayField(data, "data")
	result := models.FieldOptionListResult{
		FieldName: fieldName,
		Options:   make([]models.FieldOption, 0, len(raw)),
	}
	for _, o := range raw {
		result.Options = append(result.Options, parseFieldOption(o, fieldName))
	}
	return result, nil
}

func (c *Client) CreateFieldOption(ctx context.Context, baseURL, fieldName, name string) (models.FieldOption, error) {
	reqURL := c.apiURL(baseURL, "field-options", url.PathEscape(fieldName))

	data, err := c.doJSON(ctx, http.MethodPost, reqURL, nil, map[string]any{"name": name})
	if err != nil {
		return models.FieldOption{}, fmt.Errorf("failed to create option %q for %q: %w", name, fieldName, err)
	}
	return parseFieldOption(data, fieldName), nil
}

// UpdateFieldOption renames an option
func (c *Client) UpdateFieldOption(ctx context.Context, baseURL, fieldName string, optionID int, name string) (models.FieldOption, error) {
	reqURL := c.apiURL(baseURL, "field-options", url.PathEscape(fieldName), strconv.Itoa(optionID))

	data, err := c.doJSON(ctx, http.MethodPut, reqURL, nil, map[string]any{"name": name})
	if err != nil {
		return models.FieldOption{}, fmt.Errorf("failed to update option %d for %q: %w", optionID, fieldName, err)
	}
	return parseFieldOption(data, fieldName), nil
}

func (c *Client) DeleteFieldOption(ctx context.Context, baseURL, fieldName string, optionID int) (models.MessageResult, error) {
	reqURL := c.apiURL(baseURL, "field-options", url.PathEscape(fieldName), strconv.Itoa(optionID))

	data, err := c.doJSON(ctx, http.MethodDelete, reqURL, nil, nil)
	if err != nil {
		return models.MessageResult{}, fmt.Errorf("failed to delete option %d for %q: %w", optionID, fieldName, err)
	}
	return models.MessageResult{Message: stringFieldOr(data, "message", "Option deleted")}, nil
}
