// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"text/template"
)

//go:embed prompts/*.txt
var embeddedPrompts embed.FS

// Prompts holds the reviewer prompt set.
type Prompts struct {
	system     string
	guidelines string
	examples   string
	review     *template.Template
	reflection *template.Template
	ensemble   *template.Template
}

// LoadPrompts reads the prompt set from dir, or from the embedded copy when
// dir is empty.
func LoadPrompts(dir string) (*Prompts, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embeddedPrompts, "prompts")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	read := func(name string) (string, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return "", fmt.Errorf("reading prompt %s: %w", name, err)
		}
		return string(data), nil
	}
	parse := func(name string) (*template.Template, error) {
		text, err := read(name)
		if err != nil {
			return nil, err
		}
		t, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parsing prompt %s: %w", name, err)
		}
		return t, nil
	}

	var p Prompts
	var err error
	if p.system, err = read("reviewer_system.txt"); err != nil {
		return nil, err
	}
	if p.guidelines, err = read("reviewer_guidelines.txt"); err != nil {
		return nil, err
	}
	if p.examples, err = read("few_shot_examples.txt"); err != nil {
		return nil, err
	}
	if p.review, err = parse("paper_review.txt"); err != nil {
		return nil, err
	}
	if p.reflection, err = parse("paper_reflection.txt"); err != nil {
		return nil, err
	}
	if p.ensemble, err = parse("ensemble_system.txt"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Prompts) renderReview(paper string) (string, error) {
	return render(p.review, struct{ Guidelines, Examples, Paper string }{p.guidelines, p.examples, paper})
}

func (p *Prompts) renderReflection(round, total int) (string, error) {
	return render(p.reflection, struct{ Round, Total int }{round, total})
}

func (p *Prompts) renderEnsemble(reviewers int) (string, error) {
	return render(p.ensemble, struct{ ReviewerCount int }{reviewers})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
