package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestLooksLikeHTML(t *testing.T) {
	s := NewService(arbor.NewLogger())

	assert.True(t, s.LooksLikeHTML("<p>Hello</p>"))
	assert.True(t, s.LooksLikeHTML("line<BR/>break"))
	assert.False(t, s.LooksLikeHTML("plain text"))
	assert.False(t, s.LooksLikeHTML("a < b and c > d"))
}

func TestConvertValue(t *testing.T) {
	s := NewService(arbor.NewLogger())

	assert.Equal(t, "plain *text*", s.ConvertValue("plain *text*"))
	assert.Contains(t, s.ConvertValue("<p>Hello <strong>world</strong></p>"), "**world**")
}

func TestHTMLToMarkdown_Empty(t *testing.T) {
	s := NewService(arbor.NewLogger())

	out, err := s.HTMLToMarkdown("")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "Fish & chips <3", stripHTMLTags("<div>Fish &amp; <b>chips</b>\n\n &lt;3</div>"))
}

func TestMarkdownToHTML(t *testing.T) {
	s := NewService(arbor.NewLogger())

	doc, err := s.MarkdownToHTML("# Hi\n\nSome text", `Tom & "Jerry"`)
	require.NoError(t, err)

	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, "<title>Tom &amp; &quot;Jerry&quot;</title>")
	assert.Contains(t, doc, "<h1>Hi</h1>")
	assert.Contains(t, doc, "<p>Some text</p>")
}
