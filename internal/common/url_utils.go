package common

import (
	"strconv"
	"strings"
)

// NormalizeBaseURL strips trailing slashes from a base URL and, when
// rewriteLocalhost is set, replaces a localhost host with 127.0.0.1.
func NormalizeBaseURL(baseURL string, rewriteLocalhost bool) string {
	url := strings.TrimSpace(baseURL)
	if rewriteLocalhost {
		url = strings.Replace(url, "://localhost", "://127.0.0.1", 1)
	}
	return strings.TrimRight(url, "/")
}

// APIURL builds {base}/api.php/<segments...> by plain concatenation
func APIURL(normalizedBase string, segments ...string) string {
	return joinPath(append([]string{normalizedBase, "api.php"}, segments...)...)
}

// EntryURL is the path of a single entry
func EntryURL(normalizedBase string, entryID int) string {
	return APIURL(normalizedBase, "entries", strconv.Itoa(entryID))
}

// joinPath joins path segments with a single slash between them
func joinPath(segments ...string) string {
	result := ""
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if result == "" {
			result = seg
		} else if result[len(result)-1] == '/' {
			if seg[0] == '/' {
				result += seg[1:]
			} else {
				result += seg
			}
		} else {
			if seg[0] == '/' {
				result += seg
			} else {
				result += "/" + seg
			}
		}
	}
	return result
}
