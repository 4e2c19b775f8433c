package ruledoc

// Output is the rendered view of one implicit rule output.
type Output struct {
	Template          string `json:"template"`
	Documentation     string `json:"documentation"`
	DocumentationHTML string `json:"documentation_html,omitempty"`
}

// NewOutput copies md into its view.
func NewOutput(md OutputMetadata) Output {
	return Output{Template: md.Template, Documentation: md.Documentation}
}
