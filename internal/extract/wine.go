package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinVintage is the oldest year accepted as a vintage
const MinVintage = 1800

// maxAlcohol bounds what is read as an alcohol percentage
const maxAlcohol = 80.0

// MaxVintage is the newest year accepted as a vintage: next year, so that
// labels printed ahead of a release still parse.
func MaxVintage() int {
	return time.Now().Year() + 1
}

// ValidVintage reports whether y lies in [MinVintage, MaxVintage]
func ValidVintage(y int) bool {
	return y >= MinVintage && y <= MaxVintage()
}

// VintageMarkerRules need a vintage word next to the year
var VintageMarkerRules = []Rule{
	newRule("marker_prefix", `(?i)(?:vintage|millésime|millesime|récolte|recolte|harvest|annata|vendemmia|cosecha|jahrgang|빈티지)\s*[:.]?\s*(?P<v>(?:18|19|20)\d{2})`),
	newRule("marker_suffix", `(?i)(?P<v>(?:18|19|20)\d{2})\s*(?:vintage|harvest)\b`),
}

// VintageRules recognize a four digit year, most explicit form first
var VintageRules = []Rule{
	newRule("korean_suffix", `(?P<v>(?:18|19|20)\d{2})\s*년\s*산?`),
	VintageMarkerRules[0],
	VintageMarkerRules[1],
	newRule("standalone", `(?m)^[ \t]*(?P<v>(?:18|19|20)\d{2})[ \t]*$`),
	newRule("bare", `(?i)(?:^|[^0-9.,₩$€£])(?P<pre>(?:since|depuis|dal|desde|seit|founded|established|est\.|en)\s+)?(?P<v>(?:18|19|20)\d{2})(?P<post>\s*(?:ml|cl|원|%))?(?:[^0-9]|$)`),
}

// Vintage returns the first valid vintage year found in s
func Vintage(s string) (int, bool) {
	var year int
	_, ok := firstAccepted(VintageRules, s, func(m Match) bool {
		y, err := strconv.Atoi(m.Group("v"))
		if err != nil || !ValidVintage(y) {
			return false
		}
		year = y
		return true
	})
	return year, ok
}

// blendWords start a grape share such as "85% Cabernet Sauvignon"
const blendWords = `cabernet|sauvignon|merlot|malbec|pinot|syrah|shiraz|grenache|garnacha|tempranillo|sangiovese|nebbiolo|barbera|chardonnay|riesling|s[ée]millon|viognier|carm[ée]n[èe]re|mourv[èe]dre|petit\s+verdot|zinfandel|primitivo|gamay|[까카]베르네|메를로|소비뇽|피노|시라즈|쉬라즈|말벡|샤르도네`

// AlcoholRules recognize an alcohol percentage
var AlcoholRules = []Rule{
	newRule("labeled", `(?i)(?:alc\.?|alcohol|alcool|alcol|abv|알코올|알콜|도수)\s*(?:/\s*vol\.?)?\s*[:.]?\s*(?P<v>\d{1,2}(?:[.,]\d{1,2})?)(?P<post>\d|\s*(?:ml|cl))?`),
	newRule("percent", `(?i)(?:^|[^0-9.,])(?P<v>\d{1,2}(?:[.,]\d{1,2})?)\s*%(?P<post>\s*(?:`+blendWords+`))?`),
	newRule("degree", `(?i)(?:^|[^0-9.,])(?P<v>\d{1,2}(?:[.,]\d{1,2})?)\s*(?:vol\.?|°)`),
	newRule("korean_degree", `(?:^|[^0-9.,])(?P<v>\d{1,2}(?:\.\d{1,2})?)\s*도`),
	newRule("vol_prefix", `(?i)\bvol\.?\s*(?P<v>\d{1,2}(?:[.,]\d{1,2})?)(?P<post>\d|\s*(?:ml|cl|l\b))?`),
}

// Alcohol returns the first alcohol percentage found in s
func Alcohol(s string) (float64, bool) {
	var pct float64
	_, ok := firstAccepted(AlcoholRules, s, func(m Match) bool {
		v, err := strconv.ParseFloat(strings.Replace(m.Group("v"), ",", ".", 1), 64)
		if err != nil || v <= 0 || v > maxAlcohol {
			return false
		}
		pct = v
		return true
	})
	return pct, ok
}

// VolumeRules recognize a bottle size in ml, cl or litres
var VolumeRules = []Rule{
	newRule("metric", `(?i)(?:^|[^0-9.,])(?P<v>\d{1,4}(?:[.,]\d{1,3})?\s*(?:ml|cl))(?:$|[^\pL\d])`),
	newRule("litre", `(?:^|[^0-9.,])(?P<v>\d{1,2}(?:[.,]\d{1,3})?\s*(?:L|l|ℓ|(?i:litres?|liters?|ltr)))(?:$|[^\pL\d])`),
}

var whitespace = regexp.MustCompile(`\s+`)

// Volume returns the first bottle size in s with internal whitespace removed ("75 cl" -> "75cl")
func Volume(s string) (string, bool) {
	m, ok := firstAccepted(VolumeRules, s, func(m Match) bool { return true })
	if !ok {
		return "", false
	}
	return whitespace.ReplaceAllString(m.Group("v"), ""), true
}
