package ruledoc

import (
	"git.home.luguber.info/inful/ruledoc/internal/foundation/normalization"
)

// SourceExtension is the extension of the source files a documentation unit is read from.
const SourceExtension = ".bzl"

// AttributeType is the declared type tag of a rule attribute.
type AttributeType string

const (
	AttributeInteger          AttributeType = "INTEGER"
	AttributeString           AttributeType = "STRING"
	AttributeLabel            AttributeType = "LABEL"
	AttributeOutput           AttributeType = "OUTPUT"
	AttributeStringList       AttributeType = "STRING_LIST"
	AttributeLabelList        AttributeType = "LABEL_LIST"
	AttributeOutputList       AttributeType = "OUTPUT_LIST"
	AttributeDistributionSet  AttributeType = "DISTRIBUTION_SET"
	AttributeLicense          AttributeType = "LICENSE"
	AttributeStringDict       AttributeType = "STRING_DICT"
	AttributeFilesetEntryList AttributeType = "FILESET_ENTRY_LIST"
	AttributeLabelListDict    AttributeType = "LABEL_LIST_DICT"
	AttributeStringListDict   AttributeType = "STRING_LIST_DICT"
	AttributeBoolean          AttributeType = "BOOLEAN"
	AttributeTristate         AttributeType = "TRISTATE"
	AttributeIntegerList      AttributeType = "INTEGER_LIST"
	AttributeLabelDictUnary   AttributeType = "LABEL_DICT_UNARY"
	AttributeSelectorList     AttributeType = "SELECTOR_LIST"

	// AttributeUnknown is the tag carried by attributes without a recognized type,
	// most notably the implicit "name" attribute.
	AttributeUnknown AttributeType = "UNKNOWN"
)

// RuleKind is the closed set of definition kinds a documentation unit may contain.
type RuleKind string

const (
	KindRule           RuleKind = "RULE"
	KindMacro          RuleKind = "MACRO"
	KindRepositoryRule RuleKind = "REPOSITORY_RULE"
)

// Format selects the documentation output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Extension returns the file extension (without dot) of documents rendered in f.
// Anything other than html renders as markdown.
func (f Format) Extension() string {
	if f == FormatHTML {
		return "html"
	}
	return "md"
}

var attributeTypes = normalization.WithFold("attribute type", map[string]AttributeType{
	string(AttributeInteger):          AttributeInteger,
	string(AttributeString):           AttributeString,
	string(AttributeLabel):            AttributeLabel,
	string(AttributeOutput):           AttributeOutput,
	string(AttributeStringList):       AttributeStringList,
	string(AttributeLabelList):        AttributeLabelList,
	string(AttributeOutputList):       AttributeOutputList,
	string(AttributeDistributionSet):  AttributeDistributionSet,
	string(AttributeLicense):          AttributeLicense,
	string(AttributeStringDict):       AttributeStringDict,
	string(AttributeFilesetEntryList): AttributeFilesetEntryList,
	string(AttributeLabelListDict):    AttributeLabelListDict,
	string(AttributeStringListDict):   AttributeStringListDict,
	string(AttributeBoolean):          AttributeBoolean,
	string(AttributeTristate):         AttributeTristate,
	string(AttributeIntegerList):      AttributeIntegerList,
	string(AttributeLabelDictUnary):   AttributeLabelDictUnary,
	string(AttributeSelectorList):     AttributeSelectorList,
}, AttributeUnknown, normalization.TagKey)

var ruleKinds = normalization.WithFold("rule kind", map[string]RuleKind{
	string(KindRule):           KindRule,
	string(KindMacro):          KindMacro,
	string(KindRepositoryRule): KindRepositoryRule,
}, "", normalization.TagKey)

var formats = normalization.NewNormalizer("format", map[string]Format{
	"html":     FormatHTML,
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
}, FormatMarkdown)

// ParseAttributeType canonicalizes a type tag ("label_list" -> LABEL_LIST).
// Unrecognized tags are returned unchanged so they still render as "Unknown".
func ParseAttributeType(raw string) AttributeType {
	if t, ok := attributeTypes.Lookup(raw); ok {
		return t
	}
	return AttributeType(raw)
}

// ParseRuleKind canonicalizes a kind tag. Unrecognized tags are returned
// unchanged; NewRuleSet rejects them.
func ParseRuleKind(raw string) RuleKind {
	if k, ok := ruleKinds.Lookup(raw); ok {
		return k
	}
	return RuleKind(raw)
}

// ParseFormat canonicalizes a format name, failing on anything but html and markdown.
func ParseFormat(raw string) (Format, error) {
	return formats.NormalizeWithError(raw)
}

// AttributeMetadata is one attribute of a rule as decoded from the metadata source.
type AttributeMetadata struct {
	Name          string        `yaml:"name" json:"name"`
	Type          AttributeType `yaml:"type" json:"type"`
	Mandatory     bool          `yaml:"mandatory" json:"mandatory"`
	Default       *string       `yaml:"default" json:"default,omitempty"`
	Documentation string        `yaml:"documentation" json:"documentation"`
}

// OutputMetadata is one implicit output of a rule.
type OutputMetadata struct {
	Template      string `yaml:"template" json:"template"`
	Documentation string `yaml:"documentation" json:"documentation"`
}

// RuleMetadata is one rule, macro or repository rule definition.
type RuleMetadata struct {
	Name                 string              `yaml:"name" json:"name"`
	Kind                 RuleKind            `yaml:"kind" json:"kind"`
	Documentation        string              `yaml:"documentation" json:"documentation"`
	ExampleDocumentation string              `yaml:"example_documentation" json:"example_documentation"`
	Attributes           []AttributeMetadata `yaml:"attributes" json:"attributes"`
	Outputs              []OutputMetadata    `yaml:"outputs" json:"outputs"`
}

// LanguageMetadata groups the definitions extracted from one source file.
type LanguageMetadata struct {
	Rules []RuleMetadata `yaml:"rules" json:"rules"`
}

// RuleSetMetadata is everything needed to build one documentation unit.
type RuleSetMetadata struct {
	Source      string
	Language    LanguageMetadata
	Title       string
	Description string
	StripPrefix string
	Format      Format
}
