package share

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ternarybob/share-mcp/internal/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// CreateEntry creates an entry through the {base}/share.php webhook. With a
// file the request is multipart and streamed from disk; otherwise a JSON
// body is sent. The response body is the new entry id.
func (c *Client) CreateEntry(ctx context.Context, baseURL, textOrURL, filePath string, extraFields map[string]string) (models.CreatedEntry, error) {
	reqURL := c.normalize(baseURL) + "/share.php"
	c.logger.Info().Str("url", reqURL).Bool("with_file", filePath != "").Msg("Creating entry")

	fields := make(map[string]string, len(extraFields)+1)
	if textOrURL != "" {
		fields["text_or_url"] = textOrURL
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	var (
		req *http.Request
		err error
	)
	if filePath != "" {
		req, err = c.newMultipartRequest(ctx, reqURL, filePath, fields)
	} else {
		req, err = c.newRequest(ctx, http.MethodPost, reqURL, nil, fields)
	}
	if err != nil {
		return models.CreatedEntry{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return models.CreatedEntry{}, fmt.Errorf("failed to create entry: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.CreatedEntry{}, fmt.Errorf("failed to read response from %s: %w", reqURL, err)
	}

	created := models.CreatedEntry{ID: strings.TrimSpace(string(body))}
	c.logger.Info().Str("entry_id", created.ID).Msg("Entry created")
	return created, nil
}

// newMultipartRequest streams form fields and the file part through a pipe.
// The file is opened up front so a missing file fails before any request.
func (c *Client) newMultipartRequest(ctx context.Context, reqURL, filePath string, fields map[string]string) (*http.Request, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}

	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to detect content type of %s: %w", filePath, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer f.Close()
		pw.CloseWithError(writeMultipart(mw, f, filepath.Base(filePath), mtype.String(), fields))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

func writeMultipart(mw *multipart.Writer, file io.Reader, filename, contentType string, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.CopyBuffer(part, file, make([]byte, downloadChunkSize)); err != nil {
		return err
	}
	return mw.Close()
}
