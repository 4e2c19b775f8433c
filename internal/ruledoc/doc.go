// Package ruledoc turns decoded build-rule metadata into the read-only view
// model consumed by documentation templates.
//
// A RuleSet describes one documentation unit (one .bzl source file). It owns
// its Rule descriptors, which in turn own their Attribute and Output
// descriptors. Everything is built once by the New* constructors and never
// mutated afterwards, so a RuleSet can be handed to any number of renderers.
//
// Construction is pure: the same metadata always yields the same model. The
// only failures are a source path outside the configured strip prefix and a
// rule kind outside the closed RULE / MACRO / REPOSITORY_RULE set; both are
// reported as classified errors so a batch caller can skip the unit.
package ruledoc
