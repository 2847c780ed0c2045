// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a model reply contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in model reply")

var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	braces    = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseReviewJSON recovers a JSON object from a model reply. It tries the
// whole reply, then ```json fenced blocks, then any fenced block, then the
// span from the first "{" to the last "}".
func parseReviewJSON(content string) (Decision, error) {
	if d, ok := decodeObject(content); ok {
		return d, nil
	}
	for _, fence := range []*regexp.Regexp{jsonFence, anyFence} {
		for _, m := range fence.FindAllStringSubmatch(content, -1) {
			if d, ok := decodeObject(m[1]); ok {
				return d, nil
			}
		}
	}
	if m := braces.FindString(content); m != "" {
		if d, ok := decodeObject(m); ok {
			return d, nil
		}
	}
	return nil, ErrNoJSON
}

func decodeObject(s string) (Decision, bool) {
	var d Decision
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &d); err != nil || d == nil {
		return nil, false
	}
	return d, true
}
