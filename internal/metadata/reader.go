// Package metadata reads the decoded rule metadata documents produced by the
// extraction step. YAML and JSON documents are both accepted.
package metadata

import (
	stderrors "errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
	"git.home.luguber.info/inful/ruledoc/internal/ruledoc"
)

// Document is one metadata file: an ordered list of documentation units.
type Document struct {
	Units []Unit `yaml:"units"`
}

// Unit is the metadata extracted from one source file.
type Unit struct {
	Source string                 `yaml:"source"`
	Rules  []ruledoc.RuleMetadata `yaml:"rules"`
}

// Language returns the unit's definitions in the shape the view model expects.
func (u Unit) Language() ruledoc.LanguageMetadata {
	return ruledoc.LanguageMetadata{Rules: u.Rules}
}

// Read decodes a document from r and canonicalizes its tags.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, errors.WrapError(err, errors.CategoryInput, "decode metadata document").
			UserAction().
			Build()
	}

	for i := range doc.Units {
		unit := &doc.Units[i]
		if unit.Source == "" {
			return nil, errors.InputError("metadata unit has no source").
				WithContext("index", i).
				Build()
		}
		for j := range unit.Rules {
			canonicalize(&unit.Rules[j])
		}
	}
	return &doc, nil
}

// Load reads the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.FileSystemError("open metadata document").WithCause(err).
			WithContext("path", path).
			Build()
	}
	defer func() {
		_ = f.Close()
	}()

	doc, err := Read(f)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return nil, classified.WithContext("path", path)
		}
		return nil, err
	}
	return doc, nil
}

// canonicalize folds kind and attribute type tags onto their constants.
// Unknown tags are kept verbatim for the view model to judge.
func canonicalize(rule *ruledoc.RuleMetadata) {
	rule.Kind = ruledoc.ParseRuleKind(string(rule.Kind))
	for i := range rule.Attributes {
		attr := &rule.Attributes[i]
		attr.Type = ruledoc.ParseAttributeType(string(attr.Type))
	}
}
