package share

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ternarybob/share-mcp/internal/models"
)

const downloadChunkSize = 32 * 1024

// downloadOutcome is the result of one download attempt. Exactly one of
// file and failure is set.
type downloadOutcome struct {
	file    *models.DownloadedFile
	failure *models.FailedDownload
}

func succeeded(file models.DownloadedFile) downloadOutcome {
	return downloadOutcome{file: &file}
}

func failed(id int, filename string, err string) downloadOutcome {
	return downloadOutcome{failure: &models.FailedDownload{AttachmentID: id, Filename: filename, Error: err}}
}

// DownloadFile streams an attachment file into dir
func (c *Client) DownloadFile(ctx context.Context, baseURL string, attachmentID int, filename, dir string) (models.DownloadedFile, error) {
	return c.downloadAttachment(ctx, baseURL, attachmentID, filename, models.LocalFilename(filename), dir)
}

func (c *Client) downloadAttachment(ctx context.Context, baseURL string, attachmentID int, filename, localName, dir string) (models.DownloadedFile, error) {
	reqURL := c.apiURL(baseURL, "files", strconv.Itoa(attachmentID))
	return c.download(ctx, reqURL, attachmentID, filename, localName, dir)
}

// DownloadEntryFile streams the entry-level file into dir. The returned
// record is keyed by the entry id.
func (c *Client) DownloadEntryFile(ctx context.Context, baseURL string, entryID int, filename, dir string) (models.DownloadedFile, error) {
	return c.downloadEntryFile(ctx, baseURL, entryID, filename, models.LocalFilename(filename), dir)
}

func (c *Client) downloadEntryFile(ctx context.Context, baseURL string, entryID int, filename, localName, dir string) (models.DownloadedFile, error) {
	reqURL := c.apiURL(baseURL, "entries", strconv.Itoa(entryID), "file")
	return c.download(ctx, reqURL, entryID, filename, localName, dir)
}

func (c *Client) download(ctx context.Context, reqURL string, id int, filename, localName, dir string) (models.DownloadedFile, error) {
	if localName == "" {
		return models.DownloadedFile{}, fmt.Errorf("invalid filename %q", filename)
	}

	c.logger.Info().Str("filename", filename).Str("url", reqURL).Msg("Downloading file")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return models.DownloadedFile{}, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, localName)

	req, err := c.newRequest(ctx, http.MethodGet, reqURL, nil, nil)
	if err != nil {
		return models.DownloadedFile{}, err
	}
	req.Header.Del("Accept")

	resp, err := c.send(req)
	if err != nil {
		return models.DownloadedFile{}, err
	}
	defer resp.Body.Close()

	size, err := writeStream(path, resp.Body)
	if err != nil {
		return models.DownloadedFile{}, err
	}

	c.logger.Info().Str("path", path).Int64("bytes", size).Msg("Downloaded file")
	return models.DownloadedFile{
		AttachmentID: id,
		Filename:     filename,
		FilePath:     path,
		FileSize:     size,
	}, nil
}

// writeStream copies r into a temp file next to path in fixed-size chunks
// and renames it into place once complete. An existing file at path is only
// replaced by a complete download.
func writeStream(path string, r io.Reader) (int64, error) {
	dir, name := filepath.Split(path)
	f, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmp := f.Name()

	n, copyErr := io.CopyBuffer(f, r, make([]byte, downloadChunkSize))
	closeErr := f.Close()

	if copyErr != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to download %s: %w", name, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to write %s: %w", path, closeErr)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return n, nil
}

// localNames hands out on-disk names within one entry directory, adding a
// numeric suffix when a name is already taken: report.pdf, report-1.pdf, ...
type localNames map[string]bool

func (used localNames) claim(filename string) string {
	name := models.LocalFilename(filename)
	if name == "" {
		return ""
	}
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; used[candidate] || isReservedName(candidate); i++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	used[candidate] = true
	return candidate
}

// isReservedName reports names generated next to the downloads
func isReservedName(name string) bool {
	return name == models.ContentMarkdownFile || name == models.ContentHTMLFile
}

// FetchEntryWithFiles fetches an entry, downloads the entry file and every
// file attachment into {downloadDir}/{entryID} and writes content.md there.
// An empty downloadDir uses the configured one. Only the entry fetch and the
// content write can fail the call; download problems are reported in the
// result.
func (c *Client) FetchEntryWithFiles(ctx context.Context, baseURL string, entryID int, downloadDir string) (models.EntryResult, error) {
	if downloadDir == "" {
		downloadDir = c.config.Share.DownloadDir
	}
	absDir, err := filepath.Abs(downloadDir)
	if err != nil {
		return models.EntryResult{}, fmt.Errorf("failed to resolve download dir %s: %w", downloadDir, err)
	}
	entryDir := filepath.Join(absDir, strconv.Itoa(entryID))

	entry, err := c.FetchEntry(ctx, baseURL, entryID)
	if err != nil {
		return models.EntryResult{}, err
	}

	var outcomes []downloadOutcome
	used := localNames{}

	if entry.HasEntryFile() {
		df, err := c.downloadEntryFile(ctx, baseURL, entry.ID, entry.Filename, used.claim(entry.Filename), entryDir)
		if err != nil {
			c.logger.Warn().Err(err).Int("entry_id", entry.ID).Str("filename", entry.Filename).Msg("Failed to download entry file")
			outcomes = append(outcomes, failed(entry.ID, entry.Filename, err.Error()))
		} else {
			outcomes = append(outcomes, succeeded(df))
		}
	}

	for _, att := range entry.Attachments {
		if !att.IsFile() {
			continue
		}
		if !att.Downloadable() {
			c.logger.Warn().Int("attachment_id", att.ID).Str("filename", att.Filename).Msg("Skipping attachment, file not available on server")
			outcomes = append(outcomes, failed(att.ID, att.Filename, models.FileNotAvailableError))
			continue
		}

		df, err := c.downloadAttachment(ctx, baseURL, att.ID, att.Filename, used.claim(att.Filename), entryDir)
		if err != nil {
			c.logger.Warn().Err(err).Int("attachment_id", att.ID).Str("filename", att.Filename).Msg("Failed to download attachment")
			outcomes = append(outcomes, failed(att.ID, att.Filename, err.Error()))
			continue
		}
		outcomes = append(outcomes, succeeded(df))
	}

	result := models.EntryResult{
		Entry:           entry,
		DownloadedFiles: []models.DownloadedFile{},
		FailedDownloads: []models.FailedDownload{},
	}
	for _, o := range outcomes {
		if o.file != nil {
			result.DownloadedFiles = append(result.DownloadedFiles, *o.file)
		} else {
			result.FailedDownloads = append(result.FailedDownloads, *o.failure)
		}
	}

	mdPath, htmlPath, err := c.writeContent(result, entryDir)
	if err != nil {
		return models.EntryResult{}, err
	}
	return result.WithContentPaths(mdPath, htmlPath), nil
}

// writeContent writes content.md, and content.html when rendering is enabled
func (c *Client) writeContent(result models.EntryResult, entryDir string) (string, string, error) {
	var convert models.ValueConverter
	if c.config.Markdown.ConvertHTML && c.transformer != nil {
		convert = c.transformer.ConvertValue
	}
	markdown := result.GenerateContentMarkdownWith(convert)

	if err := os.MkdirAll(entryDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create directory %s: %w", entryDir, err)
	}

	mdPath := filepath.Join(entryDir, models.ContentMarkdownFile)
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", mdPath, err)
	}
	c.logger.Info().Str("path", mdPath).Msg("Wrote content markdown")

	if !c.config.Markdown.RenderHTML || c.transformer == nil {
		return mdPath, "", nil
	}

	rendered, err := c.transformer.MarkdownToHTML(markdown, result.Entry.Subject)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to render content HTML")
		return mdPath, "", nil
	}

	htmlPath := filepath.Join(entryDir, models.ContentHTMLFile)
	if err := os.WriteFile(htmlPath, []byte(rendered), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	return mdPath, htmlPath, nil
}
