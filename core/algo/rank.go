package algo

import (
	"sort"

	"github.com/huangsam/legacylens/schema"
)

// RankSuggestions sorts suggestions by severity weight and then impact, both
// descending, and returns the top 'limit' entries. A limit <= 0 keeps all.
// Ties keep their generation order.
func RankSuggestions(suggestions []schema.Suggestion, limit int) []schema.Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		wi, wj := suggestions[i].Severity.Weight(), suggestions[j].Severity.Weight()
		if wi != wj {
			return wi > wj
		}
		return suggestions[i].Impact > suggestions[j].Impact
	})
	if limit > 0 && len(suggestions) > limit {
		return suggestions[:limit]
	}
	return suggestions
}

// RankAnalyses sorts analyses by risk score in descending order
// and returns the top 'limit' records. A limit <= 0 keeps all.
func RankAnalyses(records []schema.AnalysisRecord, limit int) []schema.AnalysisRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RiskScore > records[j].RiskScore
	})
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
