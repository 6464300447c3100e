// Package salary extracts a conservative minimum monthly EUR estimate from
// free-form salary text.
package salary

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Standard French monthly hour count used to project hourly wages.
const monthlyHours = 151.67

// Bare amounts between these bounds read as already-monthly; above the upper
// bound they read as annual. Smaller amounts are ignored as ambiguous
// (likely hourly or daily with the unit missing). These thresholds are a
// known heuristic and deliberately left as-is.
const (
	bareMonthlyFloor = 800.0
	bareAnnualFloor  = 20000.0
)

var (
	reKiloAnnual = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*k\s*€`)
	reAnnual     = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*€[^\n]{0,30}?(?:/\s*an|par an|annuel)`)
	reMonthly    = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*€[^\n]{0,30}?(?:/\s*mois|par mois)`)
	reHourly     = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*€[^\n]{0,30}?(?:/\s*h|/\s*heure|par heure)`)
	reBare       = regexp.MustCompile(`(\d{3,6}(?:[.,]\d{3})?|\d{2,3}(?:[.,]\d{2})?)\s*€`)
)

// toFloat normalizes locale formatting: thousands separators (dot, space,
// narrow/no-break space) are stripped, a comma becomes the decimal point.
func toFloat(num string) (float64, bool) {
	s := strings.NewReplacer("\u00a0", "", "\u202f", "", " ", "", ".", "").Replace(num)
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func collect(re *regexp.Regexp, text string, scale func(float64) float64, vals *[]float64) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v, ok := toFloat(m[1]); ok {
			*vals = append(*vals, scale(v))
		}
	}
}

// ParseMinMonthly scans text for five salary idioms (k€ annual, €/an, €/mois,
// €/h, bare € amounts) and returns the minimum across every recognized
// amount, rounded to 2 decimals. The bool is false when nothing parsed.
// Malformed input never fails; it just yields no value.
func ParseMinMonthly(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	t := strings.ToLower(text)
	var vals []float64

	collect(reKiloAnnual, t, func(v float64) float64 { return v * 1000.0 / 12.0 }, &vals)
	collect(reAnnual, t, func(v float64) float64 { return v / 12.0 }, &vals)
	collect(reMonthly, t, func(v float64) float64 { return v }, &vals)
	collect(reHourly, t, func(v float64) float64 { return v * monthlyHours }, &vals)

	for _, m := range reBare.FindAllStringSubmatch(t, -1) {
		v, ok := toFloat(m[1])
		if !ok {
			continue
		}
		switch {
		case v > bareAnnualFloor:
			vals = append(vals, v/12.0)
		case v >= bareMonthlyFloor:
			vals = append(vals, v)
		}
	}

	if len(vals) == 0 {
		return 0, false
	}
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return math.Round(min*100) / 100, true
}
