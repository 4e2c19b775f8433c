package ruledoc

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/ruledoc/internal/foundation/errors"
)

// RuleSet is the rendered view of one documentation unit.
//
// Definitions lists every rule in source order; Rules, Macros and
// RepositoryRules are stable per-kind views sharing the same descriptors.
type RuleSet struct {
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Source          string  `json:"source"`
	Format          Format  `json:"format"`
	OutputFile      string  `json:"output_file"`
	OutputExtension string  `json:"output_extension"`
	Definitions     []*Rule `json:"definitions"`
	Rules           []*Rule `json:"rules"`
	Macros          []*Rule `json:"macros"`
	RepositoryRules []*Rule `json:"repository_rules"`
}

// NewRuleSet builds the documentation unit for md.
//
// It fails with a config error when md.Source does not start with
// md.StripPrefix, and with an internal error when a rule's kind is outside
// the closed kind set.
func NewRuleSet(md RuleSetMetadata) (*RuleSet, error) {
	if !strings.HasPrefix(md.Source, md.StripPrefix) {
		return nil, errors.ConfigError("source path does not start with strip prefix").
			WithContext("source", md.Source).
			WithContext("strip_prefix", md.StripPrefix).
			Build()
	}

	name := strings.TrimSuffix(path.Base(md.Source), SourceExtension)
	title := md.Title
	if title == "" {
		title = name + " Rules"
	}

	rs := &RuleSet{
		Name:            name,
		Title:           title,
		Description:     md.Description,
		Source:          md.Source,
		Format:          md.Format,
		OutputFile:      outputFile(md.Source, md.StripPrefix),
		OutputExtension: md.Format.Extension(),
		Definitions:     make([]*Rule, 0, len(md.Language.Rules)),
		Rules:           make([]*Rule, 0),
		Macros:          make([]*Rule, 0),
		RepositoryRules: make([]*Rule, 0),
	}

	for _, ruleMD := range md.Language.Rules {
		rule := NewRule(ruleMD)
		switch ruleMD.Kind {
		case KindRule:
			rs.Rules = append(rs.Rules, rule)
		case KindMacro:
			rs.Macros = append(rs.Macros, rule)
		case KindRepositoryRule:
			rs.RepositoryRules = append(rs.RepositoryRules, rule)
		default:
			return nil, errors.InternalError("unrecognized rule kind").
				WithContext("source", md.Source).
				WithContext("rule", ruleMD.Name).
				WithContext("kind", string(ruleMD.Kind)).
				Build()
		}
		rs.Definitions = append(rs.Definitions, rule)
	}
	return rs, nil
}

// outputFile strips the source extension and then the first len(prefix) bytes.
func outputFile(source, prefix string) string {
	trimmed := strings.TrimSuffix(source, SourceExtension)
	if len(prefix) >= len(trimmed) {
		return ""
	}
	return trimmed[len(prefix):]
}

// Empty reports whether the unit has nothing to document.
func (rs *RuleSet) Empty() bool {
	return len(rs.Rules) == 0 && len(rs.Macros) == 0 && len(rs.RepositoryRules) == 0
}

// OutputFilename is OutputFile with the format's extension appended.
func (rs *RuleSet) OutputFilename() string {
	return rs.OutputFile + "." + rs.OutputExtension
}
