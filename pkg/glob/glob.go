// Package glob implements the wildcard dialect used by debounce rules.
//
// Two metacharacters are recognized: '?' matches exactly one character and
// '*' matches a run of characters. Consecutive '*' accumulate instead of
// collapsing: each star past the first consumes one character outright, and
// the gap skipped before the next literal run must be at least the number
// of accumulated stars. A lone trailing '*' matches any suffix, including
// the empty one.
package glob

// Match reports whether value matches pattern. Every string is a valid
// pattern; the function is pure and never fails.
func Match(pattern, value string) bool {
	p := []rune(pattern)
	v := []rune(value)

	pi, vi := 0, 0
	wildcards := 0

	for pi < len(p) {
		switch p[pi] {
		case '*':
			if wildcards > 0 {
				// Consecutive wildcard eats one character on its own.
				if vi >= len(v) {
					return false
				}
				vi++
			}
			wildcards++
			pi++
		case '?':
			if vi >= len(v) {
				return false
			}
			pi++
			vi++
		default:
			if wildcards == 0 {
				if vi >= len(v) || v[vi] != p[pi] {
					return false
				}
				pi++
				vi++
				continue
			}
			// Pending wildcards are resolved against the literal run that
			// ends at the next '*' or at the end of the pattern. The run is
			// located leftmost-first; the skipped gap must cover every
			// accumulated star.
			run := pi
			for run < len(p) && p[run] != '*' {
				run++
			}
			found := indexRunes(v, vi, p[pi:run])
			if found < 0 || found-vi < wildcards {
				return false
			}
			vi = found + (run - pi)
			pi = run
			wildcards = 0
		}
	}

	if wildcards > 0 {
		return len(v)-vi >= wildcards-1
	}
	return vi == len(v)
}

// indexRunes returns the index of the leftmost occurrence of run in v at or
// after from, or -1.
func indexRunes(v []rune, from int, run []rune) int {
	for i := from; i+len(run) <= len(v); i++ {
		match := true
		for j := range run {
			if v[i+j] != run[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
