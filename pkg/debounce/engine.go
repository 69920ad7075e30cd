package debounce

import (
	"encoding/base64"
	"net/url"
	"unicode/utf8"

	"dbnc/pkg/glob"
)

// Resolve matches rawURL against the set and, for the first rule whose
// include patterns match and whose exclude patterns do not, runs that
// rule's action pipeline over the URL's query parameters. Every failure
// mode (unparseable URL, missing parameter, bad base64, bad UTF-8,
// unparseable target) degrades to an empty Redirect; Resolve never errors.
func (rs *RuleSet) Resolve(rawURL string) Result {
	res := Result{Rule: -1}

	u, err := url.Parse(rawURL)
	if err != nil {
		return res
	}

	for _, i := range rs.candidates(u.Hostname()) {
		r := &rs.rules[i]

		// Exclude first: any hit rejects this rule but not the scan.
		if matchAny(r.exclude, rawURL) {
			continue
		}
		if !matchAny(r.include, rawURL) {
			continue
		}

		res.Matched = true
		res.Rule = i
		res.Redirect = r.apply(u)
		return res
	}

	return res
}

func matchAny(patterns []string, value string) bool {
	for _, p := range patterns {
		if glob.Match(p, value) {
			return true
		}
	}
	return false
}

// apply runs the action pipeline of a selected rule. Matching a rule is
// necessary but not sufficient: without the redirect action, or without a
// decodable payload, the result is no redirect.
func (r *rule) apply(u *url.URL) string {
	if !r.actions.has(ActionRedirect) {
		return ""
	}

	vals, ok := u.Query()[r.param]
	if !ok || len(vals) == 0 {
		return ""
	}
	payload := vals[0]

	if r.actions.has(ActionBase64) {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil || !utf8.Valid(decoded) {
			return ""
		}
		payload = string(decoded)
	}

	if payload == "" {
		return ""
	}
	target, err := url.Parse(payload)
	if err != nil {
		return ""
	}
	return target.String()
}
