package adapter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fieldText returns the cleaned text of the first match of selector inside s.
// An empty selector yields "".
func fieldText(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return cleanText(s.Find(selector).First().Text())
}
