package ruledoc

import "strings"

const (
	nameLink   = `<a href="https://bazel.build/docs/build-ref.html#name">Name</a>`
	labelLink  = `<a href="https://bazel.build/docs/build-ref.html#labels">Label</a>`
	labelsLink = `<a href="https://bazel.build/docs/build-ref.html#labels">labels</a>`

	defaultNameDocumentation = "A unique name for this rule."
)

var typeLabels = map[AttributeType]string{
	AttributeInteger:          "Integer",
	AttributeString:           "String",
	AttributeLabel:            labelLink,
	AttributeOutput:           "Output",
	AttributeStringList:       "List of strings",
	AttributeLabelList:        "List of " + labelsLink,
	AttributeOutputList:       "List of outputs",
	AttributeDistributionSet:  "Distribution Set",
	AttributeLicense:          "License",
	AttributeStringDict:       "Dictionary mapping strings to string",
	AttributeFilesetEntryList: "List of FilesetEntry",
	AttributeLabelListDict:    "Dictionary mapping strings to lists of " + labelsLink,
	AttributeStringListDict:   "Dictionary mapping strings to lists of strings",
	AttributeBoolean:          "Boolean",
	AttributeTristate:         "Tristate",
	AttributeIntegerList:      "List of integers",
	AttributeLabelDictUnary:   "Label Dict Unary",
	AttributeSelectorList:     "Selector List",
}

// Attribute is the rendered view of one rule attribute.
type Attribute struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Documentation string `json:"documentation"`
	// DocumentationHTML is filled in by HTML rendering; empty for markdown output.
	DocumentationHTML string `json:"documentation_html,omitempty"`
}

// NewAttribute builds the display view of md. It never fails: unrecognized
// type tags render as "Unknown".
func NewAttribute(md AttributeMetadata) Attribute {
	doc := md.Documentation
	if md.Name == "name" && doc == "" {
		doc = defaultNameDocumentation
	}
	return Attribute{
		Name:          md.Name,
		Type:          typeString(md),
		Documentation: doc,
	}
}

// typeString renders "<label>; Required|Optional[; Default is <value>]".
// The default text is embedded as given.
func typeString(md AttributeMetadata) string {
	var b strings.Builder
	b.WriteString(typeLabel(md))
	if md.Mandatory {
		b.WriteString("; Required")
	} else {
		b.WriteString("; Optional")
		if md.Default != nil {
			b.WriteString("; Default is ")
			b.WriteString(*md.Default)
		}
	}
	return b.String()
}

func typeLabel(md AttributeMetadata) string {
	if label, ok := typeLabels[md.Type]; ok {
		return label
	}
	// The implicit name attribute carries no type tag.
	if md.Name == "name" {
		return nameLink
	}
	return "Unknown"
}
