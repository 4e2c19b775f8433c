package ruledoc

import (
	"fmt"
	"strings"
)

const paragraphSeparator = "\n\n"

// Rule is the rendered view of one rule, macro or repository rule.
type Rule struct {
	Name                 string      `json:"name"`
	Kind                 RuleKind    `json:"kind"`
	Documentation        string      `json:"documentation"`
	ExampleDocumentation string      `json:"example_documentation"`
	ShortDocumentation   string      `json:"short_documentation"`
	Signature            string      `json:"signature"`
	Attributes           []Attribute `json:"attributes"`
	Outputs              []Output    `json:"outputs"`

	DocumentationHTML        string `json:"documentation_html,omitempty"`
	ExampleDocumentationHTML string `json:"example_documentation_html,omitempty"`
	ShortDocumentationHTML   string `json:"short_documentation_html,omitempty"`
}

// NewRule builds the view of md. Attribute and output order follows md.
func NewRule(md RuleMetadata) *Rule {
	r := &Rule{
		Name:                 md.Name,
		Kind:                 md.Kind,
		Documentation:        md.Documentation,
		ExampleDocumentation: md.ExampleDocumentation,
		ShortDocumentation:   shortDocumentation(md.Documentation),
		Signature:            signature(md),
		Attributes:           make([]Attribute, 0, len(md.Attributes)),
		Outputs:              make([]Output, 0, len(md.Outputs)),
	}
	for _, attr := range md.Attributes {
		r.Attributes = append(r.Attributes, NewAttribute(attr))
	}
	for _, out := range md.Outputs {
		r.Outputs = append(r.Outputs, NewOutput(out))
	}
	return r
}

// shortDocumentation returns the first paragraph of doc.
func shortDocumentation(doc string) string {
	first, _, _ := strings.Cut(doc, paragraphSeparator)
	return first
}

// signature renders name(<a href="#name.attr">attr</a>, ...) in declaration order.
func signature(md RuleMetadata) string {
	var b strings.Builder
	b.WriteString(md.Name)
	b.WriteByte('(')
	for i, attr := range md.Attributes {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, `<a href="#%s.%s">%s</a>`, md.Name, attr.Name, attr.Name)
	}
	b.WriteByte(')')
	return b.String()
}
