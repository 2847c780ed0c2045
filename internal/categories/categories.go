// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package categories maps arXiv taxonomy codes such as "cs.AI" to their
// display names.
package categories

import (
	_ "embed"
	"fmt"

	"go.yaml.in/yaml/v3"
)

//go:embed categories.yaml
var defaultTable []byte

// Mapper is a read-only code to name lookup table.
type Mapper struct {
	names map[string]string
}

// Default returns a Mapper backed by the embedded arXiv taxonomy.
func Default() *Mapper {
	m, err := Parse(defaultTable)
	if err != nil {
		// The embedded table is part of the binary; failing to parse it is a build defect.
		panic(fmt.Sprintf("categories: embedded table: %v", err))
	}
	return m
}

// Parse builds a Mapper from a YAML document of "code: name" pairs.
func Parse(data []byte) (*Mapper, error) {
	names := make(map[string]string)
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing category table: %w", err)
	}
	return &Mapper{names: names}, nil
}

// Name returns the display name for code, or code itself when unknown.
func (m *Mapper) Name(code string) string {
	if name, ok := m.names[code]; ok {
		return name
	}
	return code
}

// Names maps each code in order.
func (m *Mapper) Names(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, m.Name(c))
	}
	return out
}

// Len returns the number of known codes.
func (m *Mapper) Len() int { return len(m.names) }
