// Package videourl classifies submitted video URLs against the supported
// platform allow-list.
package videourl

import (
	"net/url"
	"strings"
)

// allowedHosts is the fixed allow-list of video platform hosts. Matching is
// case-insensitive and ignores any port.
var allowedHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// Supported reports whether raw is acceptable for acquisition: non-empty
// after trimming, scheme http or https, and host on the allow-list.
// Pure predicate, no I/O.
func Supported(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	return allowedHosts[host]
}
