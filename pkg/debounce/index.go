package debounce

import (
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/armon/go-radix"
	"github.com/bits-and-blooms/bloom/v3"
)

// Rulesets larger than this get a bloom filter in front of the host lookup.
const bloomThreshold = 10000

func normalizeHost(h string) (string, bool) {
	h = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(h), "."))
	if h == "" {
		return "", false
	}
	puny, err := idna.Lookup.ToASCII(h)
	if err != nil || puny == "" {
		return "", false
	}
	return puny, true
}

func reverseLabels(d string) string {
	parts := strings.Split(d, ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// RegistrableDomain returns the eTLD+1 for a URL host, or the normalized
// host itself when the public suffix list has no answer. Empty when the
// host does not normalize. Intended for bounded-cardinality labels.
func RegistrableDomain(host string) string {
	q, ok := normalizeHost(host)
	if !ok {
		return ""
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(q); err == nil {
		return etld1
	}
	return q
}

// anchorHost extracts the literal host a pattern pins, when it pins one. A
// pattern anchors its host only when everything up to and including the
// host is free of metacharacters: such a pattern can only match URLs whose
// parsed hostname equals that literal. Userinfo, ports and bracketed
// literals disqualify the pattern because the parsed hostname would differ
// from the raw segment.
func anchorHost(pattern string) (string, bool) {
	idx := strings.Index(pattern, "://")
	if idx <= 0 {
		return "", false
	}
	if strings.ContainsAny(pattern[:idx], "*?") {
		return "", false
	}
	rest := pattern[idx+3:]
	host := rest
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		host = rest[:slash]
	}
	if host == "" || strings.ContainsAny(host, "*?@:[") {
		return "", false
	}
	return normalizeHost(host)
}

// anchorHosts returns the deduplicated anchor hosts of a rule's include
// set, or ok=false when any include pattern fails to anchor one.
func anchorHosts(includes []string) ([]string, bool) {
	if len(includes) == 0 {
		return nil, false
	}
	seen := make(map[string]struct{}, len(includes))
	hosts := make([]string, 0, len(includes))
	for _, p := range includes {
		h, ok := anchorHost(p)
		if !ok {
			return nil, false
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hosts = append(hosts, h)
	}
	return hosts, true
}

// buildIndex splits the rules into host-anchored ones, reachable through a
// reversed-label radix lookup, and the rest, scanned for every URL. The
// index is an over-approximating pre-filter: skipping a non-candidate rule
// never changes the outcome, because an anchored rule cannot match a URL
// on a different host.
func (rs *RuleSet) buildIndex() {
	tree := radix.New()
	var hosts []string

	for i := range rs.rules {
		hs, ok := anchorHosts(rs.rules[i].include)
		if !ok {
			rs.scanAll = append(rs.scanAll, i)
			continue
		}
		for _, h := range hs {
			key := reverseLabels(h)
			if v, found := tree.Get(key); found {
				tree.Insert(key, append(v.([]int), i))
			} else {
				tree.Insert(key, []int{i})
				hosts = append(hosts, h)
			}
		}
	}
	rs.anchored = tree

	if len(rs.rules) > bloomThreshold {
		bf := bloom.NewWithEstimates(uint(len(hosts))*4+1, 1e-4)
		for _, h := range hosts {
			bf.AddString(h)
		}
		rs.bf = bf
	}
}

// candidates returns the rule indices worth scanning for a URL on host, in
// original rule order.
func (rs *RuleSet) candidates(host string) []int {
	var anchored []int
	if q, ok := normalizeHost(host); ok {
		if rs.bf == nil || rs.bf.TestString(q) {
			if v, found := rs.anchored.Get(reverseLabels(q)); found {
				anchored = v.([]int)
			}
		}
	}

	if len(anchored) == 0 {
		return rs.scanAll
	}
	if len(rs.scanAll) == 0 {
		return anchored
	}
	return mergeOrdered(rs.scanAll, anchored)
}

func mergeOrdered(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
