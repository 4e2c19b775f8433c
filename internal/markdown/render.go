// Package markdown renders rule docstrings to HTML for the html output format.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
)

// Renderer converts docstrings to HTML fragments.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a renderer with GitHub-flavored tables and autolinks.
// Raw HTML in docstrings is dropped by goldmark's default safe mode.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Linkify, extension.Strikethrough)),
	}
}

// Render converts one docstring. Empty input renders as empty output.
func (r *Renderer) Render(doc string) (string, error) {
	if strings.TrimSpace(doc) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(doc), &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "render docstring").Build()
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// RenderRuleSet fills the HTML documentation fields of every definition in rs.
// The partition slices share pointers with Definitions, so they see the result too.
func (r *Renderer) RenderRuleSet(rs *ruledoc.RuleSet) error {
	for _, rule := range rs.Definitions {
		if err := r.renderRule(rule); err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "render rule documentation").
				WithContext("source", rs.Source).
				WithContext("rule", rule.Name).
				Build()
		}
	}
	return nil
}

func (r *Renderer) renderRule(rule *ruledoc.Rule) error {
	var err error
	if rule.DocumentationHTML, err = r.Render(rule.Documentation); err != nil {
		return err
	}
	if rule.ShortDocumentationHTML, err = r.Render(rule.ShortDocumentation); err != nil {
		return err
	}
	if rule.ExampleDocumentationHTML, err = r.Render(rule.ExampleDocumentation); err != nil {
		return err
	}
	for i := range rule.Attributes {
		if rule.Attributes[i].DocumentationHTML, err = r.Render(rule.Attributes[i].Documentation); err != nil {
			return err
		}
	}
	for i := range rule.Outputs {
		if rule.Outputs[i].DocumentationHTML, err = r.Render(rule.Outputs[i].Documentation); err != nil {
			return err
		}
	}
	return nil
}
