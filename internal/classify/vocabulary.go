package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/extract"
)

// Indicator weights
const (
	Strong = 1.0
	Weak   = 0.5
)

// Indicator is one cue for a document type. Match receives the lower-cased text.
type Indicator struct {
	Token  string
	Weight float64
	Match  func(text string) bool
}

// Boost is a single strong signal added on top of the density score
type Boost struct {
	Token  string
	Weight float64
	Match  func(text string) bool
}

// Vocabulary is the scoring table for one document type
type Vocabulary struct {
	Type       document.Type
	Indicators []Indicator
	Boosts     []Boost
}

func pattern(expr string) func(string) bool {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

func cue(token string, weight float64, expr string) Indicator {
	return Indicator{Token: token, Weight: weight, Match: pattern(expr)}
}

func boost(token string, weight float64, expr string) Boost {
	return Boost{Token: token, Weight: weight, Match: pattern(expr)}
}

// WineVocabulary holds the wine-label cues
var WineVocabulary = Vocabulary{
	Type: document.TypeWineLabel,
	Indicators: []Indicator{
		cue("château", Strong, `ch[âa]teau`),
		cue("샤또", Strong, `샤또|샤토`),
		cue("domaine", Strong, `\bdomaine\b|도멘`),
		cue("appellation", Strong, `\bappellation\b`),
		cue("aoc", Strong, `\ba\.?o\.?[cp]\b`),
		cue("docg", Strong, `\bdocg?\b|\bdoca\b|\bigt\b`),
		cue("grand cru", Strong, `grand\s+cru`),
		cue("premier cru", Strong, `(?:premier|1er)\s+cru`),
		cue("cuvée", Strong, `cuv[ée]e`),
		cue("mis en bouteille", Strong, `mis\s+en\s+bouteille`),
		cue("년산", Strong, `\d{4}\s*년\s*산`),
		cue("vintage", Strong, `\b(?:vintage|millésime|millesime|récolte|recolte|annata|vendemmia)\b|빈티지`),
		cue("vol", Strong, `\d\s*%\s*(?:vol|alc)|alc\.?\s*\d|\d\s*vol\b`),
		cue("도", Strong, `\d\s*도(?:\s|$)|도수`),
		cue("ml", Weak, `\d\s*(?:ml|cl)\b`),
		cue("wine", Weak, `\b(?:wine|vin|vino|wein)\b|와인`),
		cue("cabernet", Weak, `cabernet|까베르네|카베르네`),
		cue("sauvignon", Weak, `sauvignon|소비뇽|쇼비뇽`),
		cue("merlot", Weak, `merlot|메를로|멀롯`),
		cue("pinot", Weak, `\bpinot\b|피노`),
		cue("chardonnay", Weak, `chardonnay|샤르도네|샤도네이`),
		cue("syrah", Weak, `\bsyrah\b|\bshiraz\b|시라즈`),
		cue("riesling", Weak, `riesling|리슬링`),
		cue("malbec", Weak, `malbec|말벡`),
		cue("sangiovese", Weak, `sangiovese|산지오베제`),
		cue("nebbiolo", Weak, `nebbiolo|네비올로`),
		cue("tempranillo", Weak, `tempranillo|템프라니요`),
		cue("grenache", Weak, `grenache|garnacha|그르나슈`),
		cue("bordeaux", Weak, `\bbordeaux\b|보르도`),
		cue("bourgogne", Weak, `\bbourgogne\b|\bburgundy\b|부르고뉴`),
		cue("champagne", Weak, `\bchampagne\b|샴페인|샹파뉴`),
		cue("rhône", Weak, `\brh[ôo]ne\b|론 밸리`),
		cue("toscana", Weak, `\btoscana\b|\btuscany\b|토스카나`),
		cue("napa", Weak, `\bnapa\b|나파`),
		cue("rioja", Weak, `\brioja\b|리오하`),
		cue("barolo", Weak, `\bbarolo\b|바롤로`),
	},
	Boosts: []Boost{
		boost("appellation contrôlée", 0.25, `appellation\s+.{0,40}contr[ôo]l[ée]e`),
		boost("denominazione di origine", 0.25, `denominazione\s+di\s+origine`),
	},
}

// ReceiptVocabulary holds the receipt cues
var ReceiptVocabulary = Vocabulary{
	Type: document.TypeReceipt,
	Indicators: []Indicator{
		cue("total", Strong, `\btotal\b`),
		cue("subtotal", Strong, `\bsub\s*-?\s*total\b`),
		cue("총액", Strong, `총액|총\s*금액`),
		cue("합계", Strong, `합\s*계`),
		cue("소계", Strong, `소\s*계`),
		cue("tax", Strong, `\b(?:tax|vat)\b`),
		cue("부가세", Strong, `부가세|부가가치세`),
		cue("결제", Strong, `결제`),
		cue("qty", Strong, `\bqty\b|\bquantity\b`),
		cue("수량", Strong, `수량`),
		cue("receipt", Strong, `\breceipt\b|영수증`),
		cue("승인", Strong, `승인`),
		cue("사업자", Strong, `사업자`),
		{Token: "date+time", Weight: Strong, Match: dateAndTime},
		cue("₩", Weak, `₩\s*\d`),
		cue("원", Weak, `\d\s*원`),
		cue("$", Weak, `\$\s*\d`),
		cue("€", Weak, `€\s*\d|\d\s*€`),
		cue("cash", Weak, `\bcash\b|현금`),
		cue("card", Weak, `\bcredit\s*card\b|\bvisa\b|신용\s*카드|체크\s*카드`),
		cue("change", Weak, `\bchange\b|거스름`),
		cue("cashier", Weak, `\bcashier\b|계산원|캐셔`),
		cue("thank you", Weak, `thank\s+you|감사합니다`),
	},
	Boosts: []Boost{
		boost("total:", 0.25, `(?m)^\s*(?:grand\s+)?total\s*[:：]|(?m)^\s*(?:총액|합계|총\s*금액)`),
		{Token: "priced item", Weight: 0.1, Match: pricedItemLine},
	},
}

func dateAndTime(text string) bool {
	_, hasDate := extract.Date(text)
	_, hasTime := extract.Time(text)
	return hasDate && hasTime
}

// totalsLine starts with a totals word; such lines are not priced items
var totalsLine = regexp.MustCompile(`^\s*(?:(?:grand\s+|sub\s*-?\s*)?total|tax|vat|총\s*액|총\s*금액|합\s*계|소\s*계|부가세|결제\s*금액)`)

// pricedItemLine reports whether some line other than a totals line carries
// a name followed by a currency-marked amount
func pricedItemLine(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if totalsLine.MatchString(line) {
			continue
		}
		amounts := extract.Amounts(line)
		if len(amounts) == 0 {
			continue
		}
		letters := 0
		for _, r := range line[:amounts[len(amounts)-1].Start] {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= 2 {
			return true
		}
	}
	return false
}

// HasWineIndicator reports whether any wine-label cue occurs in text
func HasWineIndicator(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range WineVocabulary.Indicators {
		if ind.Match(lower) {
			return true
		}
	}
	return false
}
