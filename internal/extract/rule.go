// Package extract recognizes single semantic fields (vintage, alcohol,
// volume, date, time, currency amount, payment method) in OCR text
// fragments.
//
// Every field is backed by an ordered list of named rules. Rules are pure and
// are evaluated in a fixed priority order; the package holds no mutable state
// and is safe for concurrent use.
package extract

import "regexp"

// Rule is one named recognizer. The value is captured by named groups of the
// pattern. A match in which a group named "pre" or "post" participates is
// discarded, which lets a rule reject context it cannot express as lookaround.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Match is one accepted hit of a Rule
type Match struct {
	Rule   string
	Text   string
	Start  int
	End    int
	groups map[string]string
}

// Group returns the text captured by the named group, or "" if it did not participate
func (m Match) Group(name string) string {
	return m.groups[name]
}

func newRule(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// FindAll returns the accepted matches of r in s in order of position
func (r Rule) FindAll(s string) []Match {
	names := r.Pattern.SubexpNames()
	var out []Match
	for _, loc := range r.Pattern.FindAllStringSubmatchIndex(s, -1) {
		m := Match{
			Rule:   r.Name,
			Text:   s[loc[0]:loc[1]],
			Start:  loc[0],
			End:    loc[1],
			groups: make(map[string]string),
		}
		rejected := false
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			if name == "pre" || name == "post" {
				rejected = true
				break
			}
			m.groups[name] = s[loc[2*i]:loc[2*i+1]]
		}
		if !rejected {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the first accepted match of r in s
func (r Rule) Find(s string) (Match, bool) {
	matches := r.FindAll(s)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// firstAccepted walks rules in priority order and, within a rule, matches in
// order of position, returning the first match accept agrees with.
func firstAccepted(rules []Rule, s string, accept func(Match) bool) (Match, bool) {
	for _, r := range rules {
		for _, m := range r.FindAll(s) {
			if accept(m) {
				return m, true
			}
		}
	}
	return Match{}, false
}

// earliestAccepted returns the accepted match with the smallest start offset
// across all rules. Ties go to the rule listed first.
func earliestAccepted(rules []Rule, s string, accept func(Match) bool) (Match, bool) {
	var best Match
	found := false
	for _, r := range rules {
		for _, m := range r.FindAll(s) {
			if !accept(m) {
				continue
			}
			if !found || m.Start < best.Start {
				best = m
				found = true
			}
			break
		}
	}
	return best, found
}
