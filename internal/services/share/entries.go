package share

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cast"

	"github.com/ternarybob/share-mcp/internal/models"
)

// FetchEntry retrieves a single entry by id
func (c *Client) FetchEntry(ctx context.Context, baseURL string, entryID int) (models.Entry, error) {
	reqURL := c.entryURL(baseURL, entryID)

	c.logger.Debug().Str("url", reqURL).Int("entry_id", entryID).Msg("Fetching entry")

	data, err := c.doJSON(ctx, http.MethodGet, reqURL, nil, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to fetch entry %d: %w", entryID, err)
	}

	return parseEntry(data), nil
}

// ListEntries returns one page of entry summaries. Filter values are sent as
// query parameters and override page/per_page when they share a key.
func (c *Client) ListEntries(ctx context.Context, baseURL string, page, perPage int, filters map[string]any) (models.EntryListResult, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	for key, value := range filters {
		setQueryValue(params, key, value)
	}

	reqURL := c.apiURL(baseURL, "entries")
	c.logger.Debug().Str("url", reqURL).Str("query", params.Encode()).Msg("Listing entries")

	data, err := c.doJSON(ctx, http.MethodGet, reqURL, params, nil)
	if err != nil {
		return models.EntryListResult{}, fmt.Errorf("failed to list entries: %w", err)
	}

	raw := arrayField(data, "entries")
	result := models.EntryListResult{
		Entries: make([]models.EntrySummary, 0, len(raw)),
		Total:   intField(data, "total"),
		Page:    intFieldOr(data, "page", page),
		PerPage: intFieldOr(data, "per_page", perPage),
	}
	for _, e := range raw {
		result.Entries = append(result.Entries, parseEntrySummary(e))
	}
	return result, nil
}

// UpdateEntry sends a partial update and returns the updated entry
func (c *Client) UpdateEntry(ctx context.Context, baseURL string, entryID int, payload map[string]any) (models.Entry, error) {
	reqURL := c.entryURL(baseURL, entryID)

	data, err := c.doJSON(ctx, http.MethodPut, reqURL, nil, payload)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to update entry %d: %w", entryID, err)
	}

	c.logger.Info().Int("entry_id", entryID).Msg("Entry updated")
	return parseEntry(data), nil
}

// DeleteEntry deletes an entry and its attachments
func (c *Client) DeleteEntry(ctx context.Context, baseURL string, entryID int) (models.MessageResult, error) {
	reqURL := c.entryURL(baseURL, entryID)

	data, err := c.doJSON(ctx, http.MethodDelete, reqURL, nil, nil)
	if err != nil {
		return models.MessageResult{}, fmt.Errorf("failed to delete entry %d: %w", entryID, err)
	}

	c.logger.Info().Int("entry_id", entryID).Msg("Entry deleted")
	return models.MessageResult{Message: stringFieldOr(data, "message", "Entry deleted")}, nil
}

// DeleteAttachment deletes a single attachment
func (c *Client) DeleteAttachment(ctx context.Context, baseURL string, attachmentID int) (models.MessageResult, error) {
	reqURL := c.apiURL(baseURL, "attachments", strconv.Itoa(attachmentID))

	data, err := c.doJSON(ctx, http.MethodDelete, reqURL, nil, nil)
	if err != nil {
		return models.MessageResult{}, fmt.Errorf("failed to delete attachment %d: %w", attachmentID, err)
	}

	return models.MessageResult{Message: stringFieldOr(data, "message", "Attachment deleted")}, nil
}

// GetAuthInfo returns the authentication method the API expects
func (c *Client) GetAuthInfo(ctx context.Context, baseURL string) (models.AuthInfo, error) {
	data, err := c.doJSON(ctx, http.MethodGet, c.apiURL(baseURL, "auth"), nil, nil)
	if err != nil {
		return models.AuthInfo{}, fmt.Errorf("failed to get auth info: %w", err)
	}
	return models.AuthInfo{Method: stringField(data, "method")}, nil
}

// ListFields returns the API's field schema
func (c *Client) ListFields(ctx context.Context, baseURL string) (models.FieldListResult, error) {
	data, err := c.doJSON(ctx, http.MethodGet, c.apiURL(baseURL, "fields"), nil, nil)
	if err != nil {
		return models.FieldListResult{}, fmt.Errorf("failed to list fields: %w", err)
	}

	raw := arrayField(data, "data")
	result := models.FieldListResult{Fields: make([]models.FieldDescriptor, 0, len(raw))}
	for _, f := range raw {
		result.Fields = append(result.Fields, parseFieldDescriptor(f))
	}
	return result, nil
}

// setQueryValue stringifies a decoded JSON value for the query string.
// Arrays become repeated keys; objects are sent as compact JSON.
func setQueryValue(params url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
		params.Set(key, "")
	case []any:
		params.Del(key)
		for _, item := range v {
			params.Add(key, cast.ToString(item))
		}
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		params.Set(key, string(data))
	default:
		params.Set(key, cast.ToString(v))
	}
}
