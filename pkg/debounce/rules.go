package debounce

import "strings"

// Recognized action tokens. Comparison is case-sensitive and exact;
// anything else in the comma-separated action field is dropped silently.
const (
	tokenRedirect = "redirect"
	tokenBase64   = "base64"
)

func parseActions(spec string) actionSet {
	var s actionSet
	for _, tok := range strings.Split(spec, ",") {
		switch tok {
		case tokenRedirect:
			s |= actionSet(ActionRedirect)
		case tokenBase64:
			s |= actionSet(ActionBase64)
		}
	}
	return s
}

// BuildRuleSet compiles a rule document into an immutable RuleSet. Action
// pipelines are derived once, here, so resolution never mutates a rule.
// Order is preserved: resolution is first-match-wins over the input order.
func BuildRuleSet(specs []RuleSpec) *RuleSet {
	rs := &RuleSet{rules: make([]rule, 0, len(specs))}

	for _, spec := range specs {
		rs.rules = append(rs.rules, rule{
			include: append([]string(nil), spec.Include...),
			exclude: append([]string(nil), spec.Exclude...),
			param:   spec.Param,
			actions: parseActions(spec.Action),
		})
	}

	rs.buildIndex()
	return rs
}
