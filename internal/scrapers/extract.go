package scrapers

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cascade tries CSS selectors in priority order and returns the first
// plausible text match. Platforms rework their markup regularly; keeping the
// old selectors at the tail means a redesign degrades instead of breaking.
type cascade struct {
	selectors []string
	minLen    int
	maxLen    int
}

func (c cascade) extract(sel *goquery.Selection) string {
	maxLen := c.maxLen
	if maxLen == 0 {
		maxLen = 1 << 20
	}

	for _, selector := range c.selectors {
		var found string
		sel.Find(selector).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			text := cleanText(node.Text())
			if len(text) >= c.minLen && len(text) <= maxLen {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)
var blankLines = regexp.MustCompile(`\n{3,}`)

func cleanText(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

var requirementAnchors = []string{
	"anforderungen", "qualifikation", "ihr profil", "wir erwarten",
	"requirements", "your profile", "qualifications", "we expect",
}

// largestTextBlock is the last-resort description extractor: the biggest
// coherent text node on the page that is not navigation chrome.
func largestTextBlock(doc *goquery.Document) string {
	var best string
	doc.Find("article, section, main, div, p").Each(func(_ int, node *goquery.Selection) {
		if node.Children().Filter("div, section, article").Length() > 3 {
			return
		}
		text := cleanText(node.Text())
		if len(text) > len(best) && !looksLikeChrome(text) {
			best = text
		}
	})
	if len(best) < 100 {
		return ""
	}
	return best
}

// requirementLines pulls the lines around a requirements heading when no
// selector produced a requirements section.
func requirementLines(text string) string {
	lowered := strings.ToLower(text)
	for _, anchor := range requirementAnchors {
		idx := strings.Index(lowered, anchor)
		if idx < 0 {
			continue
		}
		tail := text[idx:]
		if len(tail) > 1500 {
			tail = tail[:1500]
		}
		return cleanText(tail)
	}
	return ""
}

var chromeMarkers = []string{
	"cookie", "datenschutz", "impressum", "newsletter",
	"seite neu laden", "navigation",
}

func looksLikeChrome(text string) bool {
	lowered := strings.ToLower(text)
	hits := 0
	for _, marker := range chromeMarkers {
		if strings.Contains(lowered, marker) {
			hits++
		}
	}
	return hits >= 2
}
