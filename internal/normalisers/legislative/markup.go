package legislative

import (
	"html"
	"regexp"
	"strings"
)

// Bill text scraped from legislature sites often arrives as HTML.
var (
	hiddenElements = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)[^>]*>.*?</(script|style|noscript|head|svg)>`)
	markupComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	markupTags     = regexp.MustCompile(`<[^>]+>`)
	markupHint     = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*[\s/>]|&[a-z]+;|&#[0-9]+;`)
)

// hasMarkup reports whether text looks like it carries HTML tags or entities.
func hasMarkup(text string) bool {
	return strings.ContainsAny(text, "<&") && markupHint.MatchString(text)
}

// stripMarkup drops non-content elements, replaces remaining tags with
// spaces and decodes entities.
func stripMarkup(text string) string {
	text = hiddenElements.ReplaceAllString(text, " ")
	text = markupComments.ReplaceAllString(text, " ")
	text = markupTags.ReplaceAllString(text, " ")
	return html.UnescapeString(text)
}
