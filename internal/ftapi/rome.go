package ftapi

import (
	"sort"
	"strings"
)

// Hand-curated keyword → ROME code hints for robotics-ish searches. The
// proper ROMEO API would replace this, but the static mapping covers the
// profile this tool targets.
var romeByKeyword = map[string][]string{
	"ros":    {"I1401"},
	"ros2":   {"I1401"},
	"robot":  {"H1203", "I1401"},
	"vision": {"I1308"},
	"c++":    {"M1805"},
}

// MapKeywordsToROME derives a sorted, deduplicated ROME code list from
// search keywords.
func MapKeywordsToROME(keywords []string) []string {
	seen := map[string]bool{}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		for needle, codes := range romeByKeyword {
			if strings.Contains(k, needle) {
				for _, c := range codes {
					seen[c] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
