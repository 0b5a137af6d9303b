package extract

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// AmountRules recognize a currency-marked amount: a symbol or ISO code in
// front of the number, or a currency unit after it. A unit directly followed
// by a number belongs to that number ("2020 €35").
var AmountRules = []Rule{
	newRule("symbol_prefix", `(?P<v>-?[₩$€£¥]\s*-?\d[\d,.]*)`),
	newRule("code_prefix", `(?i)(?P<v>\b(?:krw|usd|eur)\s*-?\d[\d,.]*)`),
	newRule("unit_suffix", `(?i)(?P<v>-?\d[\d,.]*\s*(?:원|€|(?:won|krw|usd|eur)\b))(?P<post>\s*\d)?`),
}

// bareAmount recognizes an unmarked number the way totals lines print them.
// Percentages and the pieces of dates and times are rejected.
var bareAmount = newRule("bare", `(?:^|[^\d.,:/-])(?P<v>-?\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|-?\d+(?:[.,]\d{1,2})?)(?:(?P<post>\s*%|[:/.-]\d|\d)|[.,]?(?:[^\d%:/.,-]|$))`)

// Amount is one monetary value located in a line
type Amount struct {
	Value float64
	Text  string
	Start int
	End   int
}

// Amounts returns every currency-marked amount in s in order of position.
// Overlapping hits (₩150,000원) are reported once.
func Amounts(s string) []Amount {
	var all []Amount
	for _, r := range AmountRules {
		for _, m := range r.FindAll(s) {
			v, ok := ParseAmount(m.Group("v"))
			if !ok {
				continue
			}
			all = append(all, Amount{Value: v, Text: m.Group("v"), Start: m.Start, End: m.End})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End > all[j].End
	})

	var out []Amount
	for _, a := range all {
		if len(out) > 0 && a.Start < out[len(out)-1].End {
			continue
		}
		out = append(out, a)
	}
	return out
}

// LastAmount returns the right-most amount in s. Currency-marked amounts are
// preferred; when allowBare is set an unmarked number is accepted as well.
func LastAmount(s string, allowBare bool) (Amount, bool) {
	if marked := Amounts(s); len(marked) > 0 {
		return marked[len(marked)-1], true
	}
	if !allowBare {
		return Amount{}, false
	}
	var last Amount
	found := false
	for _, m := range bareAmount.FindAll(s) {
		v, ok := ParseAmount(m.Group("v"))
		if !ok {
			continue
		}
		last = Amount{Value: v, Text: m.Group("v"), Start: m.Start, End: m.End}
		found = true
	}
	return last, found
}

// HasAmount reports whether s carries a currency-marked amount
func HasAmount(s string) bool {
	return len(Amounts(s)) > 0
}

// ParseAmount turns a monetary string into a number.
//
// With a euro marker a comma is the decimal separator and dots group
// thousands. With won or dollar markers commas group thousands. An unmarked
// number with a single comma followed by one or two digits reads the comma as
// decimal; otherwise commas group thousands.
func ParseAmount(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}
	lower := strings.ToLower(t)
	euro := strings.Contains(t, "€") || strings.Contains(lower, "eur")
	marked := euro || strings.ContainsAny(t, "₩$£¥원") ||
		strings.Contains(lower, "krw") || strings.Contains(lower, "usd") || strings.Contains(lower, "won")

	negative := false
	var b strings.Builder
	for _, r := range t {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			if b.Len() == 0 {
				negative = true
			}
		}
	}
	num := strings.Trim(b.String(), ".,")
	if num == "" || strings.IndexFunc(num, isDigit) < 0 {
		return 0, false
	}

	if euro {
		num = europeanNumber(num)
	} else {
		num = defaultNumber(num, marked)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

var stripSeparators = strings.NewReplacer(".", "", ",", "")

// splitDecimal treats num[i] as the decimal separator and drops the rest
func splitDecimal(num string, i int) string {
	return stripSeparators.Replace(num[:i]) + "." + num[i+1:]
}

func europeanNumber(num string) string {
	lastDot, lastComma := strings.LastIndex(num, "."), strings.LastIndex(num, ",")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return splitDecimal(num, lastComma)
		}
		return splitDecimal(num, lastDot)
	case lastComma >= 0:
		return splitDecimal(num, lastComma)
	case lastDot >= 0:
		if strings.Count(num, ".") == 1 && len(num)-lastDot-1 != 3 {
			return num
		}
		return strings.ReplaceAll(num, ".", "")
	}
	return num
}

func defaultNumber(num string, marked bool) string {
	lastDot, lastComma := strings.LastIndex(num, "."), strings.LastIndex(num, ",")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot > lastComma {
			return splitDecimal(num, lastDot)
		}
		return splitDecimal(num, lastComma)
	case lastComma >= 0:
		if !marked && strings.Count(num, ",") == 1 && len(num)-lastComma-1 <= 2 {
			return splitDecimal(num, lastComma)
		}
		return strings.ReplaceAll(num, ",", "")
	case strings.Count(num, ".") > 1:
		return strings.ReplaceAll(num, ".", "")
	}
	return num
}
