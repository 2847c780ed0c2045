// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

// State is the position of one paper in the pipeline. Uploaded and Failed
// are terminal.
type State int

const (
	Fetched State = iota
	Downloaded
	Reviewed
	ReviewSkipped
	Summarized
	SummarySkipped
	Uploaded
	Failed
)

var stateNames = [...]string{
	Fetched:        "fetched",
	Downloaded:     "downloaded",
	Reviewed:       "reviewed",
	ReviewSkipped:  "review_skipped",
	Summarized:     "summarized",
	SummarySkipped: "summary_skipped",
	Uploaded:       "uploaded",
	Failed:         "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == Uploaded || s == Failed }
