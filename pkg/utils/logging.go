// Package utils holds small formatting helpers shared by the task
// package's progress and log output.
package utils

import (
	"fmt"
	"strings"
)

// FormatBytes formats bytes into human-readable decimal-SI form (KB, MB,
// ...), used for download progress counters.
func FormatBytes(bytes int64) string {
	const unit = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// ShortenURL trims the scheme from url and, for very long URLs, collapses
// the middle into "domain/.../filename" so log lines stay readable.
func ShortenURL(url string) string {
	if url == "" {
		return ""
	}

	if strings.HasPrefix(url, "https://") {
		url = url[len("https://"):]
	} else if strings.HasPrefix(url, "http://") {
		url = url[len("http://"):]
	}

	if len(url) > 60 {
		parts := strings.Split(url, "/")
		if len(parts) > 2 {
			return fmt.Sprintf("%s/.../%s", parts[0], parts[len(parts)-1])
		}
	}

	return url
}
