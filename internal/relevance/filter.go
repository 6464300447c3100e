// Package relevance is the boolean gate that keeps robotics/ROS/vision
// postings and drops the obvious noise (sales, drivers, logistics).
package relevance

import "regexp"

// An offer is relevant when at least one inclusion pattern matches and no
// exclusion pattern matches. Inclusion is checked first and short-circuits.
var includeAny = compile([]string{
	`\bros ?2\b`,
	`\bros2\b`,
	`\bros\b`,
	`\brobot(?:ique|ics)?\b`,
	`\bvision\b`,
	`\bc\+\+`,
	`\bperception\b`,
	`\bnavigation\b`,
	`\bslam\b`,
	`\bopencv\b`,
	`\bmoveit\b`,
})

var excludeAny = compile([]string{
	`\bcommercial\b`,
	`\btechnico-commercial\b`,
	`\bvendeur\b`,
	`\bchauffeur\b`,
	`\bserveur\b`,
	`\blogistique\b`,
})

func compile(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

func matchAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsRelevant reports whether title+description pass the inclusion set and
// avoid the exclusion set. Stateless and side-effect free.
func IsRelevant(title, description string) bool {
	text := title + "\n" + description
	if !matchAny(includeAny, text) {
		return false
	}
	return !matchAny(excludeAny, text)
}
