// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review decides whether a paper is worth publishing. A Gate
// produces a Decision from the paper text; Accepts applies the acceptance
// policy to it.
package review

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/arxiv-crawler/pkg/types"
)

// acceptThreshold is the minimum overall_score or rating (0-10 scale) that
// accepts a paper when no recommendation is given.
const acceptThreshold = 5

// Gate judges extracted paper text. Absent means no usable decision was
// produced; callers treat that as a rejection.
type Gate interface {
	Judge(ctx context.Context, text string) types.Result[Decision]
}

// Decision is the final review object as returned by the reviewer model.
type Decision map[string]any

// Recommendation returns the recommendation field. ok is false when the
// field is missing; a non-string value is returned as "".
func (d Decision) Recommendation() (rec string, ok bool) {
	v, ok := d["recommendation"]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// OverallScore returns overall_score. present reports whether the key
// exists; valid reports whether its value is numeric.
func (d Decision) OverallScore() (score float64, present, valid bool) {
	return d.number("overall_score")
}

// Rating returns the legacy rating field, like OverallScore.
func (d Decision) Rating() (rating float64, present, valid bool) {
	return d.number("rating")
}

func (d Decision) number(key string) (float64, bool, bool) {
	v, ok := d[key]
	if !ok {
		return 0, false, false
	}
	switch n := v.(type) {
	case float64:
		return n, true, true
	case int:
		return float64(n), true, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, true, err == nil
	}
	return 0, true, false
}

// Accepts applies the acceptance policy. The highest-priority field present
// decides alone: recommendation, then overall_score, then rating. A
// recommendation accepts only when it mentions "accept"; a score or rating
// accepts at 5 or more. Anything else, an empty decision included, rejects.
func Accepts(d Decision) bool {
	if rec, ok := d.Recommendation(); ok {
		rec = strings.ToLower(rec)
		return strings.Contains(rec, "accept")
	}
	if score, present, valid := d.OverallScore(); present {
		return valid && score >= acceptThreshold
	}
	if rating, present, valid := d.Rating(); present {
		return valid && rating >= acceptThreshold
	}
	return false
}

// Summary renders the deciding fields for status lines.
func (d Decision) Summary() string {
	rec, ok := d.Recommendation()
	if !ok {
		rec = "n/a"
	}
	score := "n/a"
	if s, present, valid := d.OverallScore(); present && valid {
		score = strconv.FormatFloat(s, 'f', -1, 64)
	} else if r, present, valid := d.Rating(); present && valid {
		score = strconv.FormatFloat(r, 'f', -1, 64)
	}
	return fmt.Sprintf("recommendation: %s, score: %s", rec, score)
}
