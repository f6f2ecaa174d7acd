package models

import (
	"fmt"
	"strings"
)

// FormatOutput formats the entry and its downloads for display
func (r EntryResult) FormatOutput() string {
	var lines []string
	e := r.Entry

	lines = append(lines, fmt.Sprintf("Entry #%d: %s", e.ID, e.Subject))
	lines = append(lines, fmt.Sprintf("Type: %s", e.Type))

	if len(e.Body) > 0 {
		lines = append(lines, "", "Body:")
		for _, f := range e.Body {
			lines = append(lines, fmt.Sprintf("  %s: %s", f.Key, f.Value))
		}
	}

	if e.Filename != "" {
		lines = append(lines, fmt.Sprintf("File: %s (%d bytes)", e.Filename, e.FileSize))
	}

	if len(e.Attachments) > 0 {
		lines = append(lines, "", fmt.Sprintf("Attachments (%d):", len(e.Attachments)))
		for _, att := range e.Attachments {
			if att.Filename != "" {
				lines = append(lines, fmt.Sprintf("  [%d] %s: %s (%d bytes)", att.ID, att.Type, att.Filename, att.FileSize))
			} else {
				lines = append(lines, fmt.Sprintf("  [%d] %s", att.ID, att.Type))
			}
			for _, f := range att.Body {
				lines = append(lines, fmt.Sprintf("    %s: %s", f.Key, f.Value))
			}
		}
	}

	if len(r.DownloadedFiles) > 0 {
		lines = append(lines, "", "Downloaded files:")
		for _, df := range r.DownloadedFiles {
			lines = append(lines, fmt.Sprintf("  %s -> %s (%d bytes)", df.Filename, df.FilePath, df.FileSize))
		}
	}

	if len(r.FailedDownloads) > 0 {
		lines = append(lines, "", "Failed downloads:")
		for _, fd := range r.FailedDownloads {
			lines = append(lines, fmt.Sprintf("  [%d] %s: %s", fd.AttachmentID, fd.Filename, fd.Error))
		}
	}

	if r.ContentMDPath != "" {
		lines = append(lines, "", fmt.Sprintf("Content markdown: %s", r.ContentMDPath))
	}
	if r.ContentHTMLPath != "" {
		lines = append(lines, fmt.Sprintf("Content HTML: %s", r.ContentHTMLPath))
	}

	return strings.Join(lines, "\n")
}

// FormatOutput formats a page of entries
func (r EntryListResult) FormatOutput() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries (page %d, %d total):\n", r.Page, r.Total))

	if len(r.Entries) == 0 {
		sb.WriteString("No entries found.")
		return sb.String()
	}

	for i, e := range r.Entries {
		sb.WriteString(fmt.Sprintf("  [%d] %s (%s)", e.ID, e.Subject, e.Type))
		if e.Filename != "" {
			sb.WriteString(fmt.Sprintf(" file=%s", e.Filename))
		}
		if e.AttachmentCount > 0 {
			sb.WriteString(fmt.Sprintf(" attachments=%d", e.AttachmentCount))
		}
		if e.CreatedAt != "" {
			sb.WriteString(fmt.Sprintf(" created=%s", e.CreatedAt))
		}
		if i < len(r.Entries)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatOutput formats a single custom field
func (f CustomField) FormatOutput() string {
	lines := []string{fmt.Sprintf("Custom field: %s", f.Name)}
	if f.Description != "" {
		lines = append(lines, fmt.Sprintf("Description: %s", f.Description))
	}
	lines = append(lines,
		fmt.Sprintf("Sort order: %d", f.SortOrder),
		fmt.Sprintf("Options: %d", f.OptionCount),
	)
	if f.CreatedAt != "" {
		lines = append(lines, fmt.Sprintf("Created: %s", f.CreatedAt))
	}
	return strings.Join(lines, "\n")
}

func (r CustomFieldListResult) FormatOutput() string {
	if len(r.Fields) == 0 {
		return "No custom fields defined."
	}
	lines := []string{fmt.Sprintf("Custom fields (%d):", len(r.Fields))}
	for _, f := range r.Fields {
		line := fmt.Sprintf("  %s (sort=%d, options=%d)", f.Name, f.SortOrder, f.OptionCount)
		if f.Description != "" {
			line += " - " + f.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (o FieldOption) FormatOutput() string {
	return fmt.Sprintf("Option [%d] %s: %s (entries=%d)", o.ID, o.FieldName, o.Name, o.EntryCount)
}

func (r FieldOptionListResult) FormatOutput() string {
	if len(r.Options) == 0 {
		return fmt.Sprintf("No options for '%s'.", r.FieldName)
	}
	lines := []string{fmt.Sprintf("Options for '%s' (%d):", r.FieldName, len(r.Options))}
	for _, o := range r.Options {
		lines = append(lines, fmt.Sprintf("  [%d] %s (entries=%d)", o.ID, o.Name, o.EntryCount))
	}
	return strings.Join(lines, "\n")
}

func (r CustomFieldExportResult) FormatOutput() string {
	lines := []string{fmt.Sprintf("Exported fields (%d):", len(r.Fields))}
	for _, f := range r.Fields {
		line := fmt.Sprintf("  %s (sort=%d)", f.Name, f.SortOrder)
		if f.Description != "" {
			line += " - " + f.Description
		}
		lines = append(lines, line)
		for _, opt := range f.Options {
			lines = append(lines, "    - "+opt)
		}
	}
	return strings.Join(lines, "\n")
}

func (r ImportResult) FormatOutput() string {
	return fmt.Sprintf("Import complete: %d fields created, %d options created", r.FieldsCreated, r.OptionsCreated)
}

func (m MessageResult) FormatOutput() string {
	return m.Message
}

func (a AuthInfo) FormatOutput() string {
	return "Auth method: " + a.Method
}

func (r FieldListResult) FormatOutput() string {
	lines := []string{fmt.Sprintf("Fields (%d):", len(r.Fields))}
	for _, f := range r.Fields {
		line := fmt.Sprintf("  %s (%s)", f.Name, f.Type)
		if f.Description != "" {
			line += " - " + f.Description
		}
		if f.ResourcePath != "" {
			line += " [" + f.ResourcePath + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (c CreatedEntry) FormatOutput() string {
	return "Created entry: " + c.ID
}
