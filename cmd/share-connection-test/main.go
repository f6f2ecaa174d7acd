// Command share-connection-test checks that the share API is reachable with
// the current configuration by fetching a single entry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/share-mcp/internal/common"
	"github.com/ternarybob/share-mcp/internal/httpclient"
)

var requestTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()
	common.PrintBanner("share-connection-test")
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

func ok(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  [OK] %s\n", fmt.Sprintf(format, args...))
}

func fail(w io.Writer, format string, args ...any) int {
	fmt.Fprintf(w, "  [FAIL] %s\n", fmt.Sprintf(format, args...))
	return 1
}

// run performs the connection test and returns the process exit code
func run(ctx context.Context, args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("share-connection-test", flag.ContinueOnError)
	flags.SetOutput(stdout)
	entryID := flags.Int("entry-id", 1, "Entry ID to fetch as smoke test")
	baseURLFlag := flags.String("base-url", "", "Override SHARE_API_BASE_URL")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	separator := strings.Repeat("=", 40)
	fmt.Fprintln(stdout, "Share API Connection Test")
	fmt.Fprintln(stdout, separator)

	fmt.Fprintln(stdout, "\n1. Checking configuration...")
	config, err := common.LoadConfig("")
	if err != nil {
		return fail(stdout, "%v", err)
	}
	baseURL, err := config.ResolveBaseURL(*baseURLFlag)
	if err != nil {
		return fail(stdout, "SHARE_API_BASE_URL is not set and no --base-url provided")
	}
	ok(stdout, "Base URL: %s", baseURL)

	fmt.Fprintf(stdout, "\n2. Fetching entry %d...\n", *entryID)
	entryURL := common.EntryURL(common.NormalizeBaseURL(baseURL, config.Share.RewriteLocalhost), *entryID)

	var client *http.Client
	if config.HasBasicAuth() {
		client = httpclient.NewHTTPClientWithBasicAuth(config.Share.AuthUser, config.Share.AuthPassword, requestTimeout)
		ok(stdout, "Using Basic Auth")
	} else {
		client = httpclient.NewDefaultHTTPClient(requestTimeout)
		ok(stdout, "No auth configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entryURL, nil)
	if err != nil {
		return fail(stdout, "Invalid URL %s: %v", entryURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return fail(stdout, "Request timed out after %s", requestTimeout)
		}
		return fail(stdout, "Connection failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(stdout, "HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	ok(stdout, "HTTP %d", resp.StatusCode)

	fmt.Fprintln(stdout, "\n3. Parsing response...")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(stdout, "Failed to read response: %v", err)
	}
	if !gjson.ValidBytes(body) {
		return fail(stdout, "Response is not valid JSON")
	}
	data := gjson.ParseBytes(body)
	if !data.IsObject() {
		return fail(stdout, "Expected JSON object, got %s", jsonKind(data))
	}
	ok(stdout, "Valid JSON response")

	fmt.Fprintln(stdout, "\n4. Entry details:")
	subject := "(no subject)"
	if v := data.Get("subject"); v.Exists() {
		subject = v.String()
	}
	ok(stdout, "Subject: %s", subject)
	ok(stdout, "Attachments: %d", len(data.Get("attachments").Array()))

	fmt.Fprintln(stdout, "\n"+separator)
	fmt.Fprintln(stdout, "Connection test passed!")
	return 0
}

func jsonKind(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "array"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	default:
		return "null"
	}
}
