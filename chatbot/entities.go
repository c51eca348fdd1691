package chatbot

import (
	"regexp"
	"strings"
)

// comparisonSeparators are tried in order; the first one present in the query
// splits it into the two comparison subjects.
var comparisonSeparators = []string{" dan ", " vs ", " dengan ", ", "}

// rangePattern catches "dari X ke Y" phrasings that carry no separator.
var rangePattern = regexp.MustCompile(`dari (.+) ke (.+)`)

// ExtractComparisonEntities pulls the subjects out of a comparative query.
// Returns distinct, non-empty entities in surface order; fewer than two means
// the comparison cannot proceed and the caller should ask for clarification.
func ExtractComparisonEntities(query string) []string {
	queryLower := strings.ToLower(query)

	var entities []string
	for _, sep := range comparisonSeparators {
		if !strings.Contains(queryLower, sep) {
			continue
		}
		parts := strings.SplitN(queryLower, sep, 2)
		if len(parts) < 2 {
			continue
		}
		first := strings.TrimSpace(strings.ReplaceAll(parts[0], "bandingkan", ""))
		second := strings.TrimSpace(parts[1])
		entities = []string{first, second}
		break
	}

	if len(entities) == 0 {
		if m := rangePattern.FindStringSubmatch(queryLower); m != nil {
			entities = []string{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])}
		}
	}

	seen := make(map[string]bool, len(entities))
	distinct := make([]string, 0, len(entities))
	for _, entity := range entities {
		if entity == "" || seen[entity] {
			continue
		}
		seen[entity] = true
		distinct = append(distinct, entity)
	}
	return distinct
}
