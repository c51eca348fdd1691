// Package chatbot implements the query-routing and retrieval-fusion pipeline
// behind the document Q&A assistant: intent classification, multi-strategy
// retrieval, prompt assembly, follow-up suggestions, and source formatting.
package chatbot

import "strings"

// QueryClass is the routing class of a user query.
type QueryClass string

const (
	ClassConversational QueryClass = "conversational"
	ClassComparison     QueryClass = "comparison"
	ClassEnumeration    QueryClass = "enumeration"
	ClassStandard       QueryClass = "standard"
)

// keywordRule pairs a query class with its trigger keywords. Rules are
// evaluated in order, so earlier classes take precedence when a query matches
// more than one set.
type keywordRule struct {
	class    QueryClass
	keywords []string
}

// classifierRules: Conversational > Comparison > Enumeration; anything else
// falls through to Standard.
var classifierRules = []keywordRule{
	{
		class: ClassConversational,
		keywords: []string{
			"hai", "halo", "apa kabar", "selamat pagi", "selamat siang",
			"selamat sore", "selamat malam", "terima kasih", "makasih",
			"thanks", "siapa kamu", "kamu siapa", "apa ini", "bantuan",
			"help", "apa yang bisa kamu lakukan", "sampai jumpa", "dadah",
		},
	},
	{
		class: ClassComparison,
		keywords: []string{
			"bandingkan", "perbedaan", "persamaan", "vs", "dibanding",
			"perubahan dari", "evolusi", "bedanya",
		},
	},
	{
		class: ClassEnumeration,
		keywords: []string{
			"siapa saja", "apa saja", "daftar", "semua", "seluruh",
			"kumpulan", "berikut", "sebutkan",
		},
	},
}

// Classify maps query text to its routing class. Matching is deterministic,
// case-insensitive substring matching; an empty query is Standard.
func Classify(query string) QueryClass {
	queryLower := strings.ToLower(query)
	for _, rule := range classifierRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(queryLower, keyword) {
				return rule.class
			}
		}
	}
	return ClassStandard
}
