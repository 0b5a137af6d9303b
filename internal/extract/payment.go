package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// PaymentRules map payment-method vocabulary to a display label. The rule
// name is the label. More specific terms come first. The cash-receipt notice
// (현금영수증) printed on card receipts is not a payment method.
var PaymentRules = []Rule{
	newRule("신용카드", `신용\s*카드|크레디트\s*카드`),
	newRule("체크카드", `체크\s*카드|직불\s*카드`),
	newRule("계좌이체", `계좌\s*이체|무통장`),
	newRule("카카오페이", `카카오\s*페이|(?i:kakao\s*pay)`),
	newRule("네이버페이", `네이버\s*페이|(?i:naver\s*pay)`),
	newRule("Samsung Pay", `삼성\s*페이|(?i:samsung\s*pay)`),
	newRule("Apple Pay", `애플\s*페이|(?i:apple\s*pay)`),
	newRule("현금", `현금(?P<post>\s*영수증)?`),
	newRule("카드", `카드\s*(?:결제|승인)|[가-힣]{2,4}카드`),
	newRule("Debit Card", `(?i)\bdebit(?:\s*card)?\b|carte\s+de\s+d[ée]bit`),
	newRule("Credit Card", `(?i)\bcredit\s*card\b|\bvisa\b|master\s*card|\bamex\b|american\s+express|carte\s+(?:bancaire|de\s+cr[ée]dit)|carta\s+di\s+credito`),
	newRule("Cash", `(?i)\bcash\b|esp[èe]ces|contanti|efectivo`),
}

var (
	paymentLabel   = regexp.MustCompile(`(?i)^\s*(?:결제\s*(?:수단|방법|방식)?|지불\s*(?:수단|방법)?|payment(?:\s*(?:method|type))?|paid\s+(?:by|with|via)|tender(?:ed)?\s+(?:by|with)|mode\s+de\s+paiement|pagamento)\s*[:：]?\s*(?P<v>.+)$`)
	paymentTrailer = regexp.MustCompile(`(?i)\s*(?:결제|승인|완료|payment|paid)\s*$`)
	digits         = regexp.MustCompile(`\d`)
)

// maxPaymentLabel bounds a free-text payment value kept verbatim
const maxPaymentLabel = 20

// Payment returns the payment method named in line.
//
// A labeled value ("결제: 신용카드", "Paid by Credit Card") is mapped through
// PaymentRules and kept trimmed when it is not in the vocabulary. An
// unlabeled line is accepted only when it contains vocabulary.
func Payment(line string) (string, bool) {
	if m := paymentLabel.FindStringSubmatch(line); m != nil {
		v := strings.TrimSpace(m[paymentLabel.SubexpIndex("v")])
		v = strings.TrimSpace(paymentTrailer.ReplaceAllString(v, ""))
		if label, ok := paymentTerm(v); ok {
			return label, true
		}
		if v != "" && !digits.MatchString(v) && utf8.RuneCountInString(v) <= maxPaymentLabel {
			return v, true
		}
	}
	return paymentTerm(line)
}

func paymentTerm(s string) (string, bool) {
	for _, r := range PaymentRules {
		if _, ok := r.Find(s); ok {
			return r.Name, true
		}
	}
	return "", false
}
