package classification

import (
	"fmt"
	"strings"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

const maxPromptText = 12000

// BuildPrompt renders the destination extraction prompt for one document.
func BuildPrompt(text, documentName string) string {
	snippet := truncateRunes(text, maxPromptText)

	continents := make([]string, 0, len(domain.Continents))
	for _, c := range domain.Continents {
		continents = append(continents, string(c))
	}

	return fmt.Sprintf(`Analyze the travel document '%s' and extract all key destinations (cities and countries).

RULES:
1. Identify all travel destinations mentioned in the text.
2. Always list EVERY destination, even if the trip spans multiple countries or cities.
3. Ignore universities (e.g., "University of Missouri").
4. For each destination, specify: city, country, and continent.
5. Allowed continents are: %s.
6. Output ONLY a valid JSON list. Example:
   [
     {"city": "London", "country": "United Kingdom", "continent": "EUROPE"}
   ]
7. If nothing is found, return [].

TEXT:
---
%s
---
`, documentName, strings.Join(continents, ", "), snippet)
}

// truncateRunes cuts s to at most n runes so multi-byte text stays valid.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
