package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ContentMarkdownFile is written into each entry directory
const ContentMarkdownFile = "content.md"

// ContentHTMLFile is the optional HTML rendering of ContentMarkdownFile
const ContentHTMLFile = "content.html"

// ValueConverter rewrites a body value before it is written as a paragraph
type ValueConverter func(value string) string

// GenerateContentMarkdown renders the entry as markdown: subject heading,
// body paragraphs, then attachments in order. Only image files produce
// output; other files exist only as downloaded side artifacts.
func (r EntryResult) GenerateContentMarkdown() string {
	return r.GenerateContentMarkdownWith(nil)
}

// GenerateContentMarkdownWith is GenerateContentMarkdown with a converter
// applied to every body value. A nil converter leaves values untouched.
func (r EntryResult) GenerateContentMarkdownWith(convert ValueConverter) string {
	e := r.Entry
	blocks := []string{"# " + e.Subject}

	blocks = appendBodyParagraphs(blocks, e.Body, convert)

	if IsImageFile(e.Filename) {
		blocks = append(blocks, imageRef(r.localName(e.ID, e.Filename)))
	}

	for _, att := range e.Attachments {
		switch att.Type {
		case AttachmentTypeText:
			blocks = appendBodyParagraphs(blocks, att.Body, convert)
		case AttachmentTypeFile:
			if IsImageFile(att.Filename) {
				blocks = append(blocks, imageRef(r.localName(att.ID, att.Filename)))
			}
		}
	}

	return strings.Join(blocks, "\n\n") + "\n"
}

func appendBodyParagraphs(blocks []string, body Body, convert ValueConverter) []string {
	for _, f := range body {
		value := f.Value
		if IsEmptyValue(value) {
			continue
		}
		if convert != nil {
			value = convert(value)
			if IsEmptyValue(value) {
				continue
			}
		}
		blocks = append(blocks, value)
	}
	return blocks
}

// localName is the on-disk name of a downloaded file. Files that were not
// downloaded fall back to the reduced server name.
func (r EntryResult) localName(id int, filename string) string {
	for _, df := range r.DownloadedFiles {
		if df.AttachmentID == id && df.Filename == filename && df.FilePath != "" {
			return filepath.Base(df.FilePath)
		}
	}
	return LocalFilename(filename)
}

// imageRef links the local copy, which sits next to content.md
func imageRef(name string) string {
	return fmt.Sprintf("![%s](%s)", name, name)
}
