package debounce

import (
	"sync/atomic"

	"github.com/armon/go-radix"
	"github.com/bits-and-blooms/bloom/v3"
)

// RuleSpec is the wire form of a single debounce rule as served by the
// controller. Field names are fixed by the document format.
type RuleSpec struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
	Action  string   `json:"action"`
	Param   string   `json:"param"`
}

// Action is a recognized step of a rule's action pipeline.
type Action uint8

const (
	// ActionRedirect extracts the redirect target from the rule's query
	// parameter. Without it a matched rule produces no redirect.
	ActionRedirect Action = 1 << iota
	// ActionBase64 decodes the parameter value as standard base64 before
	// the target is parsed.
	ActionBase64
)

type actionSet uint8

func (s actionSet) has(a Action) bool { return uint8(s)&uint8(a) != 0 }

type rule struct {
	include []string
	exclude []string
	param   string
	actions actionSet
}

// RuleSet is an immutable, ordered collection of compiled debounce rules.
// Build one with BuildRuleSet and publish it through an AtomicEngine.
type RuleSet struct {
	rules []rule

	// Host fast path: rules whose include patterns pin the URL host are
	// looked up by reversed-label host key; the rest are scanned always.
	anchored *radix.Tree
	scanAll  []int
	bf       *bloom.BloomFilter
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// AtomicEngine publishes RuleSet snapshots with a single pointer swap.
// Readers always observe either the previous or the next complete set.
type AtomicEngine struct {
	ptr atomic.Pointer[RuleSet]
}

// Load returns the current snapshot, which may be nil before the first Store.
func (e *AtomicEngine) Load() *RuleSet { return e.ptr.Load() }

// Store replaces the current snapshot.
func (e *AtomicEngine) Store(rs *RuleSet) { e.ptr.Store(rs) }

// Result is the outcome of resolving one URL against a RuleSet.
type Result struct {
	// Matched reports that a rule's include/exclude sets selected the URL,
	// whether or not the action pipeline produced a target.
	Matched bool
	// Redirect is the resolved target, empty when no redirect applies.
	Redirect string
	// Rule is the index of the selected rule, -1 when none matched.
	Rule int
}
