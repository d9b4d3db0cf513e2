package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	bracketedArray = regexp.MustCompile(`\[[^\]]*\]`)
	listMarker     = regexp.MustCompile(`^\d+\.\s*|^-\s*|^\*\s*`)
)

// parseKeyPoints turns a model response into a list of key points. It first
// looks for a bracketed JSON array of strings anywhere in the response; when
// that is absent or malformed it falls back to splitting lines and stripping
// list markers. The second return reports whether the fallback was used.
func parseKeyPoints(response string) ([]string, bool) {
	if match := bracketedArray.FindString(response); match != "" {
		var points []string
		if err := json.Unmarshal([]byte(match), &points); err == nil {
			return points, false
		}
	}
	return splitLines(response), true
}

func splitLines(response string) []string {
	var points []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			points = append(points, line)
		}
	}
	if points == nil {
		points = []string{}
	}
	return points
}
