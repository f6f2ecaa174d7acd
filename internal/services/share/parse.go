package share

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/share-mcp/internal/models"
)

// The share API is loosely typed: ids may arrive as strings, bodies as empty
// arrays and any field may be missing or null. These helpers read a value
// with a type-appropriate default and never fail.

func intValue(v gjson.Result) int {
	return int(int64Value(v))
}

func int64Value(v gjson.Result) int64 {
	switch v.Type {
	case gjson.Number:
		return v.Int()
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
		return 0
	case gjson.True:
		return 1
	default:
		return 0
	}
}

// stringValue treats falsy JSON values (null, false, 0) as empty
func stringValue(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		if v.Num == 0 {
			return ""
		}
		return v.Raw
	case gjson.True:
		return "true"
	case gjson.JSON:
		return v.Raw
	default:
		return ""
	}
}

func intField(data gjson.Result, key string) int {
	return intValue(data.Get(key))
}

func intFieldOr(data gjson.Result, key string, def int) int {
	v := data.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return intValue(v)
}

func int64Field(data gjson.Result, key string) int64 {
	return int64Value(data.Get(key))
}

func stringField(data gjson.Result, key string) string {
	return stringValue(data.Get(key))
}

func stringFieldOr(data gjson.Result, key, def string) string {
	if s := stringField(data, key); s != "" {
		return s
	}
	return def
}

// bodyField reads an object in document order. Anything that is not an
// object (null, [], a bare string) yields an empty body.
func bodyField(data gjson.Result, key string) models.Body {
	v := data.Get(key)
	if !v.IsObject() {
		return models.Body{}
	}

	body := models.Body{}
	v.ForEach(func(k, val gjson.Result) bool {
		var value string
		switch val.Type {
		case gjson.String:
			value = val.Str
		case gjson.Null:
		case gjson.JSON:
			value = gjson.Get(val.Raw, "@ugly").Raw
		default:
			value = val.Raw
		}
		body = append(body, models.BodyField{Key: k.String(), Value: value})
		return true
	})
	return body
}

// arrayField returns the elements of an array field, or nil
func arrayField(data gjson.Result, key string) []gjson.Result {
	v := data.Get(key)
	if !v.IsArray() {
		return nil
	}
	return v.Array()
}

func parseAttachment(data gjson.Result) models.Attachment {
	return models.Attachment{
		ID:       intField(data, "id"),
		Type:     stringField(data, "type"),
		Body:     bodyField(data, "body"),
		Filename: stringField(data, "filename"),
		FileSize: int64Field(data, "file_size"),
		FileURL:  stringField(data, "file_url"),
	}
}

func parseEntry(data gjson.Result) models.Entry {
	raw := arrayField(data, "attachments")
	attachments := make([]models.Attachment, 0, len(raw))
	for _, a := range raw {
		attachments = append(attachments, parseAttachment(a))
	}

	return models.Entry{
		ID:          intField(data, "id"),
		Type:        stringField(data, "type"),
		Subject:     stringField(data, "subject"),
		Body:        bodyField(data, "body"),
		Filename:    stringField(data, "filename"),
		FileSize:    int64Field(data, "file_size"),
		FileURL:     stringField(data, "file_url"),
		Attachments: attachments,
	}
}

func parseEntrySummary(data gjson.Result) models.EntrySummary {
	return models.EntrySummary{
		ID:              intField(data, "id"),
		Type:            stringField(data, "type"),
		Subject:         stringField(data, "subject"),
		Body:            stringField(data, "body"),
		Filename:        stringField(data, "filename"),
		FileSize:        int64Field(data, "file_size"),
		AttachmentCount: intField(data, "attachment_count"),
		CreatedAt:       stringField(data, "created_at"),
	}
}

func parseCustomField(data gjson.Result) models.CustomField {
	return models.CustomField{
		Name:        stringField(data, "name"),
		Description: stringField(data, "description"),
		SortOrder:   intField(data, "sort_order"),
		OptionCount: intField(data, "option_count"),
		CreatedAt:   stringField(data, "created_at"),
	}
}

// parseFieldOption falls back to fieldName when the payload omits field_name
func parseFieldOption(data gjson.Result, fieldName string) models.FieldOption {
	return models.FieldOption{
		ID:         intField(data, "id"),
		FieldName:  stringFieldOr(data, "field_name", fieldName),
		Name:       stringField(data, "name"),
		CreatedAt:  stringField(data, "created_at"),
		EntryCount: intField(data, "entry_count"),
	}
}

func parseExportedField(data gjson.Result) models.ExportedField {
	raw := arrayField(data, "options")
	options := make([]string, 0, len(raw))
	for _, o := range raw {
		if o.IsObject() && o.Get("name").Exists() {
			options = append(options, o.Get("name").String())
			continue
		}
		options = append(options, o.String())
	}

	return models.ExportedField{
		Name:        stringField(data, "name"),
		Description: stringField(data, "description"),
		SortOrder:   intField(data, "sort_order"),
		Options:     options,
	}
}

func parseFieldDescriptor(data gjson.Result) models.FieldDescriptor {
	return models.FieldDescriptor{
		Name:         stringField(data, "name"),
		Type:         stringField(data, "type"),
		Description:  stringField(data, "description"),
		ResourcePath: stringField(data, "resource_path"),
	}
}
