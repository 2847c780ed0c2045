// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import "testing"

func TestAccepts(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		want     bool
	}{
		{"accept recommendation", Decision{"recommendation": "Accept"}, true},
		{"weak accept", Decision{"recommendation": "Weak Accept"}, true},
		{"lowercase accept", Decision{"recommendation": "accept"}, true},
		{"reject recommendation", Decision{"recommendation": "Reject"}, false},
		{"unknown recommendation", Decision{"recommendation": "Maybe"}, false},
		{"non-string recommendation", Decision{"recommendation": 7.0}, false},
		{"recommendation beats low score", Decision{"recommendation": "Accept", "overall_score": 2.0}, true},
		{"recommendation beats high score", Decision{"recommendation": "Reject", "overall_score": 8.0}, false},
		{"score below threshold", Decision{"overall_score": 3.0}, false},
		{"score at threshold", Decision{"overall_score": 5.0}, true},
		{"score as string", Decision{"overall_score": "6"}, true},
		{"score not numeric", Decision{"overall_score": "high"}, false},
		{"score beats rating", Decision{"overall_score": 4.0, "rating": 9.0}, false},
		{"rating fallback accept", Decision{"rating": 7.0}, true},
		{"rating fallback reject", Decision{"rating": 4.5}, false},
		{"int rating", Decision{"rating": 5}, true},
		{"empty decision", Decision{}, false},
		{"nil decision", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accepts(tt.decision); got != tt.want {
				t.Errorf("Accepts(%v) = %v, want %v", tt.decision, got, tt.want)
			}
		})
	}
}

func TestDecisionSummary(t *testing.T) {
	tests := []struct {
		decision Decision
		want     string
	}{
		{Decision{"recommendation": "Accept", "overall_score": 7.0}, "recommendation: Accept, score: 7"},
		{Decision{"rating": 4.5}, "recommendation: n/a, score: 4.5"},
		{Decision{}, "recommendation: n/a, score: n/a"},
	}
	for _, tt := range tests {
		if got := tt.decision.Summary(); got != tt.want {
			t.Errorf("Summary() = %q, want %q", got, tt.want)
		}
	}
}

func TestDecisionNumberPresence(t *testing.T) {
	d := Decision{"overall_score": []any{1.0}}
	_, present, valid := d.OverallScore()
	if !present || valid {
		t.Errorf("OverallScore present=%v valid=%v, want true/false", present, valid)
	}
	_, present, _ = d.Rating()
	if present {
		t.Error("Rating reported present for missing key")
	}
}
