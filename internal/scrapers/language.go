package scrapers

import (
	"regexp"
	"strings"
)

const (
	LanguageGerman  = "de"
	LanguageEnglish = "en"
)

// Phrases that only appear in one language's job postings. Each hit weighs
// three times as much as a single function word below.
var germanIndicators = []string{
	"wir suchen", "für unser", "mitarbeiter", "unternehmen", "bereich",
	"erfahrung", "kenntnisse", "aufgaben", "anforderungen", "qualifikation",
	"bewerbung", "arbeitsplatz", "stelle", "gmbh", "(m/w/d)", "(w/m/d)",
	"deutsch", "deutschland", "entwickler", "ingenieur", "berater",
}

var englishIndicators = []string{
	"we are looking", "for our", "team", "experience", "skills",
	"responsibilities", "requirements", "opportunity", "position",
	"developer", "engineer", "consultant", "company", "ltd", "inc",
	"you will", "you should", "you must", "we offer", "we provide",
}

var germanFunctionWords = regexp.MustCompile(`\b(der|die|das|und|mit|für|von|zu|bei|nach|über)\b`)
var englishFunctionWords = regexp.MustCompile(`\b(the|and|with|for|from|to|at|after|over)\b`)

// DetectLanguage classifies job text as German or English with weighted
// lexical scoring. Short or ambiguous text defaults to English, since
// international postings are the ones worth keeping when unsure.
func DetectLanguage(text string) string {

	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return LanguageEnglish
	}

	var germanScore, englishScore float64
	for _, indicator := range germanIndicators {
		if strings.Contains(lowered, indicator) {
			germanScore += 3
		}
	}
	for _, indicator := range englishIndicators {
		if strings.Contains(lowered, indicator) {
			englishScore += 3
		}
	}

	germanScore += 0.5 * float64(len(germanFunctionWords.FindAllString(lowered, -1)))
	englishScore += 0.5 * float64(len(englishFunctionWords.FindAllString(lowered, -1)))

	if germanScore > englishScore && germanScore >= 2 {
		return LanguageGerman
	}
	if englishScore > germanScore && englishScore >= 2 {
		return LanguageEnglish
	}

	// scores too close or too low, fall back to explicit mentions
	for _, phrase := range []string{"german", "deutsch", "deutschland"} {
		if strings.Contains(lowered, phrase) {
			return LanguageGerman
		}
	}
	return LanguageEnglish
}
