// Package rank computes the weighted relevance score of a normalized offer.
// Scoring is a pure function of the offer text, contract type, coordinates
// and salary text; the same input always produces the same score.
package rank

import (
	"math"
	"regexp"
	"strings"

	"ftalerts/internal/offer"
	"ftalerts/internal/salary"
)

// Weights scales each score component independently. They are always passed
// explicitly — there is no ambient/global weight state.
type Weights struct {
	Keyword  float64 `yaml:"keyword"`
	Contract float64 `yaml:"contract"`
	Distance float64 `yaml:"distance"`
	Salary   float64 `yaml:"salary"`
}

func DefaultWeights() Weights {
	return Weights{Keyword: 1, Contract: 1, Distance: 1, Salary: 1}
}

type keywordWeight struct {
	re *regexp.Regexp
	w  float64
}

var keywordTable = []keywordWeight{
	{regexp.MustCompile(`(?i)\bros ?2\b|\bros2\b`), 3.0},
	{regexp.MustCompile(`(?i)\bc\+\+|\bcpp\b`), 2.5},
	{regexp.MustCompile(`(?i)\bvision\b|\bperception\b|\bopencv\b`), 1.5},
	{regexp.MustCompile(`(?i)\brobot(?:ique|ics)?\b|\bmoveit\b|\bgazebo\b|\bisaac\b`), 2.0},
	{regexp.MustCompile(`(?i)\bslam\b|\bnavigation\b|\bpath planning\b`), 1.7},
}

// Contract preference: CDI ≥ CDD ≥ alternance ≥ stage, first match against
// the uppercased contract string.
var contractBonus = []struct {
	needle string
	bonus  float64
}{
	{"CDI", 1.5},
	{"CDD", 0.8},
	{"ALTERN", 0.4},
	{"STAGE", 0.3},
}

// Distance and salary brackets; each bracket floor maps to its bonus.
var distanceBonus = []struct {
	maxKm float64
	bonus float64
}{
	{20, 1.5},
	{50, 0.8},
	{100, 0.3},
}

var salaryBonus = []struct {
	minMonthly float64
	bonus      float64
}{
	{3500, 1.0},
	{3000, 0.6},
	{2500, 0.3},
}

// ScoreOffer sums the keyword, contract, distance and salary components,
// each scaled by its weight, rounded to 3 decimals. Components only ever add
// — no input can lower the score below zero.
func ScoreOffer(o offer.Offer, baseLat, baseLon *float64, w Weights) float64 {
	text := o.Title + " " + o.Description

	var s float64
	for _, kw := range keywordTable {
		if kw.re.MatchString(text) {
			s += kw.w * w.Keyword
		}
	}

	contract := strings.ToUpper(o.ContractType)
	for _, cb := range contractBonus {
		if strings.Contains(contract, cb.needle) {
			s += cb.bonus * w.Contract
			break
		}
	}

	if baseLat != nil && baseLon != nil && o.HasCoordinates() {
		d := HaversineKm(*baseLat, *baseLon, *o.Latitude, *o.Longitude)
		for _, db := range distanceBonus {
			if d <= db.maxKm {
				s += db.bonus * w.Distance
				break
			}
		}
	}

	if w.Salary > 0 {
		if min, ok := parseSalaryText(o); ok {
			for _, sb := range salaryBonus {
				if min >= sb.minMonthly {
					s += sb.bonus * w.Salary
					break
				}
			}
		}
	}

	return math.Round(s*1000) / 1000
}

// parseSalaryText prefers the dedicated salary field and falls back to the
// description when the field is empty.
func parseSalaryText(o offer.Offer) (float64, bool) {
	if v, ok := salary.ParseMinMonthly(o.Salary); ok {
		return v, true
	}
	return salary.ParseMinMonthly(o.Description)
}
