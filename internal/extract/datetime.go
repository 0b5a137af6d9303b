package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateRules recognize a calendar date. Numeric forms are tried with a year
// first, then day-first dotted dates, then US month-first dates.
var DateRules = []Rule{
	newRule("ymd", `(?:^|[^0-9])(?P<y>(?:19|20)\d{2})\s*[./-]\s*(?P<m>\d{1,2})\s*[./-]\s*(?P<d>\d{1,2})(?:[^0-9]|$)`),
	newRule("korean", `(?P<y>(?:19|20)\d{2})\s*년\s*(?P<m>\d{1,2})\s*월\s*(?P<d>\d{1,2})\s*일`),
	newRule("dmy_dotted", `(?:^|[^0-9])(?P<d>\d{1,2})\.(?P<m>\d{1,2})\.(?P<y>(?:19|20)\d{2})(?:[^0-9]|$)`),
	newRule("mdy", `(?:^|[^0-9])(?P<m>\d{1,2})[/-](?P<d>\d{1,2})[/-](?P<y>(?:19|20)\d{2})(?:[^0-9]|$)`),
	newRule("dmy", `(?:^|[^0-9])(?P<d>\d{1,2})[/-](?P<m>\d{1,2})[/-](?P<y>(?:19|20)\d{2})(?:[^0-9]|$)`),
	newRule("mdy_short", `(?:^|[^0-9./])(?P<m>\d{1,2})/(?P<d>\d{1,2})/(?P<y>\d{2})(?:[^0-9/]|$)`),
}

// FindDate returns the earliest valid date in s normalized to YYYY-MM-DD,
// together with the match it came from.
func FindDate(s string) (string, Match, bool) {
	m, ok := earliestAccepted(DateRules, s, func(m Match) bool {
		_, valid := dateOf(m)
		return valid
	})
	if !ok {
		return "", Match{}, false
	}
	out, _ := dateOf(m)
	return out, m, true
}

// Date returns the earliest valid date in s normalized to YYYY-MM-DD
func Date(s string) (string, bool) {
	d, _, ok := FindDate(s)
	return d, ok
}

// NormalizeDate rewrites a date in any recognized form to YYYY-MM-DD.
// A value that is already canonical is returned unchanged.
func NormalizeDate(s string) (string, bool) {
	return Date(strings.TrimSpace(s))
}

func dateOf(m Match) (string, bool) {
	y, err := strconv.Atoi(m.Group("y"))
	if err != nil {
		return "", false
	}
	if len(m.Group("y")) == 2 {
		y += 2000
	}
	mo, err := strconv.Atoi(m.Group("m"))
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(m.Group("d"))
	if err != nil {
		return "", false
	}
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mo) || t.Day() != d {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// TimeRules recognize a time of day, explicit 12-hour forms first
var TimeRules = []Rule{
	newRule("12h", `(?i)(?:^|[^0-9])(?P<h>\d{1,2}):(?P<m>\d{2})(?::(?P<s>\d{2}))?\s*(?P<ap>a\.?\s?m\.?|p\.?\s?m\.?)`),
	newRule("korean_ampm", `(?P<ap>오전|오후)\s*(?P<h>\d{1,2})\s*[:시]\s*(?P<m>\d{1,2})(?:\s*[:분]\s*(?P<s>\d{1,2}))?`),
	newRule("24h", `(?:^|[^0-9:])(?P<h>\d{1,2}):(?P<m>\d{2})(?::(?P<s>\d{2}))?(?:[^0-9:]|$)`),
	newRule("korean", `(?P<h>\d{1,2})\s*시\s*(?P<m>\d{1,2})\s*분(?:\s*(?P<s>\d{1,2})\s*초)?`),
}

// Time returns the first valid time of day in s as HH:MM, or HH:MM:SS when
// seconds are present. 12-hour forms are converted to 24-hour.
func Time(s string) (string, bool) {
	var out string
	_, ok := firstAccepted(TimeRules, s, func(m Match) bool {
		t, valid := timeOf(m)
		if valid {
			out = t
		}
		return valid
	})
	return out, ok
}

func timeOf(m Match) (string, bool) {
	h, err := strconv.Atoi(m.Group("h"))
	if err != nil {
		return "", false
	}
	mi, err := strconv.Atoi(m.Group("m"))
	if err != nil || mi > 59 {
		return "", false
	}
	sec := -1
	if s := m.Group("s"); s != "" {
		if sec, err = strconv.Atoi(s); err != nil || sec > 59 {
			return "", false
		}
	}

	ap := strings.NewReplacer(".", "", " ", "").Replace(strings.ToLower(m.Group("ap")))
	switch ap {
	case "am", "오전":
		if h < 1 || h > 12 {
			return "", false
		}
		if h == 12 {
			h = 0
		}
	case "pm", "오후":
		if h < 1 || h > 12 {
			return "", false
		}
		if h != 12 {
			h += 12
		}
	}
	if h > 23 {
		return "", false
	}

	if sec < 0 {
		return fmt.Sprintf("%02d:%02d", h, mi), true
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, mi, sec), true
}
