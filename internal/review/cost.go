// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import "strings"

// price is USD per million tokens.
type price struct {
	input  float64
	output float64
}

// modelPrices lists known chat models. Longer names come first so that
// prefix matching picks "gpt-4o-mini" over "gpt-4o".
var modelPrices = []struct {
	model string
	price price
}{
	{"gpt-4o-mini", price{input: 0.15, output: 0.60}},
	{"gpt-4o", price{input: 5.00, output: 15.00}},
	{"gpt-4-turbo", price{input: 10.00, output: 30.00}},
	{"gpt-3.5-turbo", price{input: 0.50, output: 1.50}},
}

// estimateCost returns the USD cost of a call. ok is false for unknown models.
func estimateCost(model string, usage Usage) (cost float64, ok bool) {
	for _, m := range modelPrices {
		if strings.HasPrefix(model, m.model) {
			cost = float64(usage.PromptTokens)/1e6*m.price.input +
				float64(usage.CompletionTokens)/1e6*m.price.output
			return cost, true
		}
	}
	return 0, false
}

func (u *Usage) add(o Usage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
}
