// Package winelabel turns OCR text from a bottle label into a WineLabel record.
package winelabel

import (
	"sort"
	"strings"
	"unicode"

	"github.com/nukk-pain/wine-sub001/internal/classify"
	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/extract"
)

// Parse extracts label fields from text. Text with no wine cue at all yields
// an empty record.
func Parse(text string) document.WineLabel {
	if strings.TrimSpace(text) == "" || !classify.HasWineIndicator(text) {
		return document.WineLabel{}
	}
	lines := splitLines(text)

	var w document.WineLabel
	if y, ok := extract.Vintage(text); ok {
		w.Vintage = y
	}
	if pct, ok := extract.Alcohol(text); ok {
		w.Alcohol = pct
	}
	if v, ok := extract.Volume(text); ok {
		w.Volume = v
	}
	w.Appellation = findAppellation(lines)
	w.Classification = longestTerm(classifications, text)
	w.Variety = findVarieties(text)
	w.Region = findRegion(text)

	candidates := nameCandidates(lines)
	for _, c := range candidates {
		if wineryLine.MatchString(c) {
			w.Producer = c
			break
		}
	}
	for _, c := range candidates {
		if c != w.Producer {
			w.Name = c
			break
		}
	}
	switch {
	case w.Name == "":
		w.Name = w.Producer
	case w.Producer == "":
		w.Producer = w.Name
	}
	return w
}

func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func findAppellation(lines []string) string {
	for _, l := range lines {
		for _, re := range appellationRules {
			m := re.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			v := strings.TrimSpace(m[re.SubexpIndex("v")])
			if v == "" || appellationNoise.MatchString(v) {
				continue
			}
			return v
		}
	}
	return ""
}

// longestTerm returns the display name of the longest vocabulary hit in text.
// Ties go to the earlier hit.
func longestTerm(vocab []term, text string) string {
	best, bestLen, bestStart := "", 0, 0
	for _, t := range vocab {
		loc := t.Pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		n := loc[1] - loc[0]
		if n > bestLen || (n == bestLen && loc[0] < bestStart) {
			best, bestLen, bestStart = t.Name, n, loc[0]
		}
	}
	return best
}

// earliestTerm returns the display name of the vocabulary hit closest to the start of text
func earliestTerm(vocab []term, text string) string {
	best, bestStart := "", -1
	for _, t := range vocab {
		loc := t.Pattern.FindStringIndex(text)
		if loc != nil && (bestStart < 0 || loc[0] < bestStart) {
			best, bestStart = t.Name, loc[0]
		}
	}
	return best
}

func findRegion(text string) string {
	if r := earliestTerm(regions, text); r != "" {
		return r
	}
	return earliestTerm(countries, text)
}

type hit struct {
	name       string
	start, end int
}

// findVarieties collects every grape name in order of appearance. Longer
// names claim their span first so "Cabernet Sauvignon" is not also read as
// a shorter overlapping entry.
func findVarieties(text string) string {
	var hits []hit
	for _, g := range grapes {
		for _, loc := range g.Pattern.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{name: g.Name, start: loc[0], end: loc[1]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].end-hits[i].start > hits[j].end-hits[j].start
	})

	var chosen []hit
	for _, h := range hits {
		overlaps := false
		for _, c := range chosen {
			if h.start < c.end && c.start < h.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			chosen = append(chosen, h)
		}
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].start < chosen[j].start })

	var names []string
	seen := make(map[string]bool)
	for _, c := range chosen {
		if !seen[c.name] {
			seen[c.name] = true
			names = append(names, c.name)
		}
	}
	return strings.Join(names, ", ")
}

// nameCandidates returns the proper-noun lines no other field claimed,
// with any trailing vintage removed.
func nameCandidates(lines []string) []string {
	var out []string
	for _, l := range lines {
		if claimed(l) || !properNoun(l) {
			continue
		}
		if c := strings.TrimSpace(trailingYear.ReplaceAllString(l, "")); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func claimed(line string) bool {
	if yearOnly.MatchString(line) || boilerplate.MatchString(line) {
		return true
	}
	if _, ok := extract.Alcohol(line); ok {
		return true
	}
	if _, ok := extract.Volume(line); ok {
		return true
	}
	for _, re := range appellationRules {
		if re.MatchString(line) {
			return true
		}
	}
	if vintageMarkerOnly(line) {
		return true
	}
	for _, vocab := range [][]term{regions, countries, classifications, grapes} {
		if onlyTerms(vocab, line) {
			return true
		}
	}
	return genericOnly(line)
}

// vintageMarkerOnly reports whether line is a marked year ("Harvest 2019")
// with nothing but generic words around it. The year need not be valid.
func vintageMarkerOnly(line string) bool {
	for _, r := range extract.VintageMarkerRules {
		if loc := r.Pattern.FindStringIndex(line); loc != nil && genericOnly(line[:loc[0]]+" "+line[loc[1]:]) {
			return true
		}
	}
	return false
}

// onlyTerms reports whether line holds vocabulary entries and nothing else
// besides generic words and separators.
func onlyTerms(vocab []term, line string) bool {
	rest, found := line, false
	for _, t := range vocab {
		if t.Pattern.MatchString(rest) {
			found = true
			rest = t.Pattern.ReplaceAllString(rest, " ")
		}
	}
	return found && genericOnly(rest)
}

func genericOnly(line string) bool {
	words := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if !genericWords[w] {
			return false
		}
	}
	return true
}

// properNoun reports whether line looks like a name: at least two letters,
// mostly non-digits, starting with an upper-case or non-Latin letter.
func properNoun(line string) bool {
	letters, digits := 0, 0
	var first rune
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			if letters == 0 {
				first = r
			}
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters < 2 || digits*2 > letters+digits {
		return false
	}
	return unicode.IsUpper(first) || !unicode.In(first, unicode.Latin)
}
