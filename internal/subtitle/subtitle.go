// Package subtitle converts timed caption and recognition output into the
// canonical transcript form: newline-separated utterance text with all
// timing and markup stripped.
package subtitle

import (
	"regexp"
	"strings"
)

// vttTiming matches a WEBVTT cue timing line,
// e.g. "00:00:01.000 --> 00:00:04.000".
var vttTiming = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3}\s*-->\s*\d{2}:\d{2}:\d{2}\.\d{3}`)

// VTTToPlainText extracts plain text from WEBVTT content, one line per cue.
// The WEBVTT header token, numeric cue-index lines, timing lines, and blank
// lines are dropped; unrecognized lines pass through unchanged.
func VTTToPlainText(vtt string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(vtt), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "WEBVTT" || vttTiming.MatchString(line) || isDigits(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Segment is one timed utterance from a recognition engine.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// JoinSegments joins recognition segments into canonical transcript text.
// Segments whose text is empty after trimming are discarded; the rest are
// joined with newlines in temporal order.
func JoinSegments(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
