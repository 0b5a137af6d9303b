// Package receipt turns OCR text from a retail receipt into a Receipt record.
package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/extract"
)

// anchor maps a line prefix to the aggregate field it sets
type anchor struct {
	field   string
	pattern *regexp.Regexp
}

const (
	fieldSubtotal = "subtotal"
	fieldTax      = "tax"
	fieldTotal    = "total"
)

// totalsAnchors are matched at the start of a line. subtotal is listed before
// total so "Sub Total" is never read as a total. A line only anchors a total
// when the rest of it is empty or carries an amount, so a store named
// "Total Wine & More" is not a totals line.
var totalsAnchors = []anchor{
	{fieldSubtotal, regexp.MustCompile(`(?i)^\s*(?:(?:sub\s*-?\s*total|sous[\s-]*total|subtotale)\b|소\s*계|공급\s*가액)\s*[:：]?`)},
	{fieldTax, regexp.MustCompile(`(?i)^\s*(?:(?:(?:sales\s+)?tax|vat|tva|iva)\b|부가세|부가가치세|세\s*액)\s*[:：]?`)},
	{fieldTotal, regexp.MustCompile(`(?i)^\s*(?:(?:grand\s+total|total|montant\s+total)\b|총\s*액|합\s*계|총\s*금액|결제\s*금액|받을\s*금액)\s*[:：]?`)},
}

var (
	// quantityLine may end with the line total ("Qty: 2 $60.00")
	quantityLine = regexp.MustCompile(`(?i)^\s*(?:qty|quantity|수량|qt[ée]|quantit[àa])\s*[:：.]?\s*(?P<n>\d+)\s*(?:개|병|ea|pcs?|btls?|bottles?)?\s*(?:[x×@]\s*)?(?P<rest>.*)$`)

	// excluded lines carry an amount but are never purchased items
	excluded = regexp.MustCompile(`(?i)\b(?:change|tendered|received|discount|cash\s*back)\b|거스름|받은\s*(?:돈|금액)|할인|적립|포인트|승인\s*번호|카드\s*번호`)

	storeLabel = regexp.MustCompile(`(?i)^\s*(?:상호(?:명)?|매장(?:명)?|가맹점(?:명)?|store(?:\s+name)?|merchant|shop)\s*[:：]\s*(?P<v>.+)$`)
	branchLine = regexp.MustCompile(`(?i)^(?:[\pL\d\s]+점|\(.+\)|.*\b(?:branch|location)\b.*)$`)

	// dateTimeNoise is everything a pure date or time line may contain
	dateTimeNoise = regexp.MustCompile(`(?i)[\d\s./:\-년월일시분초]|오전|오후|[ap]\.?\s?m\.?|\b(?:date|time)\b|일시|날짜|거래일시|[:：]`)

	nameTrailer = regexp.MustCompile(`[\s:：\-–—x×*@.]+$`)
)

// Parse extracts store, date, time, items, totals and payment method from
// text. Empty or clearly non-receipt text yields a receipt with only an empty
// item list.
func Parse(text string) document.Receipt {
	lines := splitLines(text)
	if !looksLikeReceipt(lines) {
		return document.NewReceipt()
	}

	p := &parser{lines: lines, receipt: document.NewReceipt(), current: -1}
	p.receipt.Store, p.storeLine = findStore(lines)
	p.receipt.Date, p.receipt.Time = findDateTime(lines)
	p.scan()
	return p.receipt
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

// looksLikeReceipt requires at least one currency-marked amount or one totals line with a number
func looksLikeReceipt(lines []string) bool {
	for _, l := range lines {
		if extract.HasAmount(l) {
			return true
		}
		if a, end := matchAnchor(l); a != "" {
			if _, ok := extract.LastAmount(l[end:], true); ok {
				return true
			}
		}
	}
	return false
}

func matchAnchor(line string) (string, int) {
	for _, a := range totalsAnchors {
		loc := a.pattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := line[loc[1]:]
		if strings.TrimSpace(rest) == "" {
			return a.field, loc[1]
		}
		if _, ok := extract.LastAmount(rest, true); ok {
			return a.field, loc[1]
		}
	}
	return "", 0
}

type parser struct {
	lines     []string
	receipt   document.Receipt
	current   int // index of the item a quantity line attaches to
	storeLine int // index of the line read as the store name, or -1
	inTotals  bool
}

func (p *parser) scan() {
	for i := 0; i < len(p.lines); i++ {
		line := p.lines[i]

		if n, ok := quantity(line); ok {
			if p.current >= 0 && !p.inTotals {
				p.receipt.Items[p.current].Quantity = n
			}
			continue
		}

		if field, end := p.anchorAt(i); field != "" {
			bound, usedNext := p.setTotal(field, line[end:], i)
			if bound {
				p.inTotals = true
				p.current = -1
			}
			if usedNext {
				i++
			}
			continue
		}

		if method, ok := extract.Payment(line); ok && !p.isItem(line) {
			p.receipt.PaymentMethod = method
			continue
		}

		if p.inTotals || excluded.MatchString(line) {
			continue
		}

		if item, ok := itemHeader(line); ok {
			p.receipt.Items = append(p.receipt.Items, item)
			p.current = len(p.receipt.Items) - 1
		}
	}
}

func (p *parser) isItem(line string) bool {
	_, ok := itemHeader(line)
	return ok
}

// anchorAt matches the totals anchors on line i. The store line never anchors.
func (p *parser) anchorAt(i int) (string, int) {
	if i == p.storeLine {
		return "", 0
	}
	return matchAnchor(p.lines[i])
}

// setTotal records the first value seen for field. The amount is taken from
// the rest of the anchor line, or from the next line when that line holds
// nothing but an amount. It reports whether an amount was found and whether
// it came from the next line.
func (p *parser) setTotal(field, rest string, i int) (bound, usedNext bool) {
	a, ok := extract.LastAmount(rest, true)
	if !ok && i+1 < len(p.lines) {
		next := p.lines[i+1]
		if a, ok = extract.LastAmount(next, true); ok && countLetters(next) == 0 {
			usedNext = true
		} else {
			ok = false
		}
	}
	if !ok {
		return false, false
	}
	if target := p.totalField(field); *target == nil {
		v := a.Value
		*target = &v
	}
	return true, usedNext
}

func (p *parser) totalField(field string) **float64 {
	switch field {
	case fieldSubtotal:
		return &p.receipt.Subtotal
	case fieldTax:
		return &p.receipt.Tax
	default:
		return &p.receipt.Total
	}
}

func quantity(line string) (int, bool) {
	m := quantityLine.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	if !amountsOnly(m[quantityLine.SubexpIndex("rest")]) {
		return 0, false
	}
	n, err := strconv.Atoi(m[quantityLine.SubexpIndex("n")])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// amountsOnly reports whether s is empty or holds amounts and nothing else
func amountsOnly(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	amounts := extract.Amounts(s)
	if len(amounts) == 0 {
		_, ok := extract.LastAmount(s, true)
		return ok && countLetters(s) == 0
	}
	for i := len(amounts) - 1; i >= 0; i-- {
		s = s[:amounts[i].Start] + " " + s[amounts[i].End:]
	}
	return countLetters(s) == 0
}

// itemHeader reads a line made of a name and a trailing currency-marked
// amount. The vintage is read from the name; the name itself is kept as printed.
func itemHeader(line string) (document.Item, bool) {
	amounts := extract.Amounts(line)
	if len(amounts) == 0 {
		return document.Item{}, false
	}
	last := amounts[len(amounts)-1]
	if strings.TrimSpace(line[last.End:]) != "" && countLetters(line[last.End:]) > 0 {
		return document.Item{}, false
	}
	name := line[:last.Start]
	if len(amounts) > 1 {
		// unit price followed by line total: the name ends before the first amount
		name = line[:amounts[0].Start]
	}
	name = strings.TrimSpace(nameTrailer.ReplaceAllString(strings.TrimSpace(name), ""))
	if countLetters(name) < 2 {
		return document.Item{}, false
	}
	if _, ok := extract.Payment(name); ok {
		return document.Item{}, false
	}

	item := document.Item{Name: name, Price: last.Value, Quantity: 1}
	if y, ok := extract.Vintage(name); ok {
		item.Vintage = y
	}
	return item, true
}

// findStore returns the store name and the index of the line it was read
// from, or -1 when the name came from a labeled line or was not found.
func findStore(lines []string) (string, int) {
	for _, l := range lines {
		if m := storeLabel.FindStringSubmatch(l); m != nil {
			return strings.TrimSpace(m[storeLabel.SubexpIndex("v")]), -1
		}
	}

	i := 0
	for i < len(lines) && dateTimeOnly(lines[i]) {
		i++
	}
	if i >= len(lines) {
		return "", -1
	}
	store := lines[i]
	if field, _ := matchAnchor(store); field != "" || extract.HasAmount(store) || countLetters(store) < 2 {
		return "", -1
	}
	if i+1 < len(lines) {
		next := lines[i+1]
		if branchLine.MatchString(next) && !dateTimeOnly(next) && !extract.HasAmount(next) {
			store += " " + next
		}
	}
	return store, i
}

// dateTimeOnly reports whether line is a date or time and nothing else
func dateTimeOnly(line string) bool {
	_, hasDate := extract.Date(line)
	_, hasTime := extract.Time(line)
	if !hasDate && !hasTime {
		return false
	}
	return strings.TrimSpace(dateTimeNoise.ReplaceAllString(line, "")) == ""
}

// findDateTime takes the first date and a time from the same line, the line
// after or the line before, falling back to the first time anywhere.
func findDateTime(lines []string) (string, string) {
	date, dateLine := "", -1
	for i, l := range lines {
		if d, ok := extract.Date(l); ok {
			date, dateLine = d, i
			break
		}
	}

	if dateLine >= 0 {
		for _, j := range []int{dateLine, dateLine + 1, dateLine - 1} {
			if j < 0 || j >= len(lines) {
				continue
			}
			if t, ok := extract.Time(lines[j]); ok {
				return date, t
			}
		}
	}
	for _, l := range lines {
		if t, ok := extract.Time(l); ok {
			return date, t
		}
	}
	return date, ""
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
