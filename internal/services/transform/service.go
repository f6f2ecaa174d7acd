package transform

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	htmlTagRe  = regexp.MustCompile(`<[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)
	htmlLikeRe = regexp.MustCompile(`(?i)<(p|div|span|br|a|b|i|em|strong|ul|ol|li|h[1-6]|table|pre|code|img|blockquote)\b[^>]*>`)
)

// Service converts entry content between HTML and markdown
type Service struct {
	logger    arbor.ILogger
	converter *md.Converter
	markdown  goldmark.Markdown
}

// NewService creates a new transform service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger:    logger,
		converter: md.NewConverter("", true, nil),
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM, // GitHub Flavored Markdown (tables, strikethrough, etc.)
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
	}
}

// LooksLikeHTML reports whether a body value contains common HTML markup
func (s *Service) LooksLikeHTML(content string) bool {
	return htmlLikeRe.MatchString(content)
}

// ConvertValue converts a body value to markdown when it looks like HTML and
// returns it unchanged otherwise. Matches models.ValueConverter.
func (s *Service) ConvertValue(value string) string {
	if !s.LooksLikeHTML(value) {
		return value
	}
	converted, err := s.HTMLToMarkdown(value)
	if err != nil {
		return value
	}
	return converted
}

// HTMLToMarkdown converts HTML content to markdown
// Returns the tag-stripped text if conversion fails or produces nothing
func (s *Service) HTMLToMarkdown(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	s.logger.Debug().
		Int("html_length", len(htmlContent)).
		Msg("Converting HTML to markdown")

	converted, err := s.converter.ConvertString(htmlContent)
	if err != nil {
		s.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, using fallback")
		return stripHTMLTags(htmlContent), nil
	}

	if strings.TrimSpace(converted) == "" {
		s.logger.Warn().
			Int("html_length", len(htmlContent)).
			Msg("HTML to markdown conversion produced empty output, applying fallback")
		return stripHTMLTags(htmlContent), nil
	}

	return converted, nil
}

// MarkdownToHTML renders markdown as a standalone HTML document
func (s *Service) MarkdownToHTML(markdown, title string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	var doc strings.Builder
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\" />\n")
	doc.WriteString(fmt.Sprintf("<title>%s</title>\n", escapeHTML(title)))
	doc.WriteString("</head>\n<body>\n")
	doc.Write(buf.Bytes())
	doc.WriteString("</body>\n</html>\n")
	return doc.String(), nil
}

// stripHTMLTags removes basic HTML tags for fallback cases
func stripHTMLTags(htmlStr string) string {
	stripped := htmlTagRe.ReplaceAllString(htmlStr, "")
	cleaned := spaceRe.ReplaceAllString(stripped, " ")

	cleaned = strings.ReplaceAll(cleaned, "&amp;", "&")
	cleaned = strings.ReplaceAll(cleaned, "&lt;", "<")
	cleaned = strings.ReplaceAll(cleaned, "&gt;", ">")
	cleaned = strings.ReplaceAll(cleaned, "&quot;", "\"")
	cleaned = strings.ReplaceAll(cleaned, "&#39;", "'")
	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")

	return strings.TrimSpace(cleaned)
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
	return r.Replace(s)
}
