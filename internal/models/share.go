package models

import (
	"path/filepath"
	"strings"
)

// Attachment types returned by the share API
const (
	AttachmentTypeText = "text"
	AttachmentTypeFile = "file"
)

// FileNotAvailableError is recorded for file attachments the server has no file for
const FileNotAvailableError = "File not available on server"

// BodyField is one key/value pair of an entry or attachment body.
// Value holds the string itself for JSON strings and the compact JSON text
// for any other kind; JSON null becomes "".
type BodyField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Body is an opaque body mapping in server key order
type Body []BodyField

// IsEmptyValue reports whether a body value carries no content: an empty
// string or an empty JSON object or array. Whitespace is content.
func IsEmptyValue(value string) bool {
	return value == "" || value == "{}" || value == "[]"
}

// Attachment is a sub-item of an entry: inline text or a downloadable file
type Attachment struct {
	ID       int    `json:"id"`
	Type     string `json:"type"` // text, file
	Body     Body   `json:"body"`
	Filename string `json:"filename"`
	FileSize int64  `json:"file_size"`
	FileURL  string `json:"file_url"` // Empty when the server holds no file
}

// Downloadable reports whether the server exposes a file for this attachment
func (a Attachment) Downloadable() bool {
	return a.FileURL != ""
}

// IsFile reports whether the attachment is a named file attachment
func (a Attachment) IsFile() bool {
	return a.Type == AttachmentTypeFile && a.Filename != ""
}

// Entry is a shared record (note, link or file) returned by the API
type Entry struct {
	ID          int          `json:"id"`
	Type        string       `json:"type"`
	Subject     string       `json:"subject"`
	Body        Body         `json:"body"`
	Filename    string       `json:"filename"` // Entry-level file, if any
	FileSize    int64        `json:"file_size"`
	FileURL     string       `json:"file_url"`
	Attachments []Attachment `json:"attachments"` // Server response order
}

// HasEntryFile reports whether the entry itself carries a downloadable file
func (e Entry) HasEntryFile() bool {
	return e.FileURL != "" && e.Filename != ""
}

// DownloadedFile is a file fully written to local disk
type DownloadedFile struct {
	AttachmentID int    `json:"attachment_id"` // Entry ID for entry-level files
	Filename     string `json:"filename"`
	FilePath     string `json:"file_path"`
	FileSize     int64  `json:"file_size"`
}

// FailedDownload is a file that was skipped or whose transfer failed
type FailedDownload struct {
	AttachmentID int    `json:"attachment_id"`
	Filename     string `json:"filename"`
	Error        string `json:"error"`
}

// EntryResult is the combined outcome of fetching an entry and downloading its files
type EntryResult struct {
	Entry           Entry            `json:"entry"`
	DownloadedFiles []DownloadedFile `json:"downloaded_files"`
	FailedDownloads []FailedDownload `json:"failed_downloads"`
	ContentMDPath   string           `json:"content_md_path"`
	ContentHTMLPath string           `json:"content_html_path,omitempty"`
}

// WithContentPaths returns a copy of the result with the generated file paths set
func (r EntryResult) WithContentPaths(mdPath, htmlPath string) EntryResult {
	r.ContentMDPath = mdPath
	r.ContentHTMLPath = htmlPath
	return r
}

// EntrySummary is one row of the entry listing
type EntrySummary struct {
	ID              int    `json:"id"`
	Type            string `json:"type"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
	Filename        string `json:"filename"`
	FileSize        int64  `json:"file_size"`
	AttachmentCount int    `json:"attachment_count"`
	CreatedAt       string `json:"created_at"`
}

// EntryListResult is a page of entry summaries
type EntryListResult struct {
	Entries []EntrySummary `json:"entries"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// CustomField is a server-defined metadata field
type CustomField struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	OptionCount int    `json:"option_count"`
	CreatedAt   string `json:"created_at"`
}

type CustomFieldListResult struct {
	Fields []CustomField `json:"fields"`
}

// FieldOption is a selectable value of a custom field
type FieldOption struct {
	ID         int    `json:"id"`
	FieldName  string `json:"field_name"`
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at"`
	EntryCount int    `json:"entry_count"`
}

type FieldOptionListResult struct {
	FieldName string        `json:"field_name"`
	Options   []FieldOption `json:"options"`
}

// ExportedField is a custom field with its option names, as exported
type ExportedField struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SortOrder   int      `json:"sort_order"`
	Options     []string `json:"options"`
}

type CustomFieldExportResult struct {
	Fields []ExportedField `json:"fields"`
}

type ImportResult struct {
	FieldsCreated  int `json:"fields_created"`
	OptionsCreated int `json:"options_created"`
}

// MessageResult wraps the message returned by delete endpoints
type MessageResult struct {
	Message string `json:"message"`
}

// AuthInfo describes the authentication method the API expects
type AuthInfo struct {
	Method string `json:"method"`
}

// FieldDescriptor describes one field from the schema endpoint
type FieldDescriptor struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	ResourcePath string `json:"resource_path"`
}

type FieldListResult struct {
	Fields []FieldDescriptor `json:"fields"`
}

// CreatedEntry is the bare entry id returned by the webhook endpoint
type CreatedEntry struct {
	ID string `json:"id"`
}

// LocalFilename reduces a server-supplied filename to a single path element
// so a download cannot escape its target directory.
func LocalFilename(filename string) string {
	name := filepath.Base(filepath.FromSlash(strings.ReplaceAll(filename, "\\", "/")))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
	".tiff": true,
	".ico":  true,
}

// IsImageFile reports whether filename has a recognized image extension
func IsImageFile(filename string) bool {
	if filename == "" {
		return false
	}
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}
