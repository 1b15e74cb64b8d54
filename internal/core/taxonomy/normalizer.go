// Package taxonomy canonicalizes free-form destination names returned by the
// classifier into the fixed continent/country/city vocabulary.
package taxonomy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

type Normalizer struct {
	countries *CountryAliasTable
}

func NewNormalizer(countries *CountryAliasTable) *Normalizer {
	if countries == nil {
		countries = DefaultCountryAliasTable()
	}
	return &Normalizer{countries: countries}
}

func (n *Normalizer) Normalize(raw domain.RawDestinationRecord) domain.NormalizedDestination {
	return domain.NormalizedDestination{
		City:      n.NormalizeCity(raw.City),
		Country:   n.NormalizeCountry(raw.Country),
		Continent: n.NormalizeContinent(raw.Continent),
	}
}

// NormalizeCountry looks the name up first as-is (trimmed, lowercased) and
// then with punctuation removed, falling back to title case.
func (n *Normalizer) NormalizeCountry(country string) string {
	trimmed := strings.TrimSpace(country)
	if trimmed == "" {
		return ""
	}

	key := strings.ToLower(trimmed)
	if canonical, ok := n.countries.Lookup(key); ok {
		return canonical
	}
	if stripped := stripPunctuation(key); stripped != "" {
		if canonical, ok := n.countries.Lookup(stripped); ok {
			return canonical
		}
	}
	return titleCase(trimmed)
}

func (n *Normalizer) NormalizeCity(city string) string {
	words := strings.Fields(city)
	if len(words) == 0 {
		return ""
	}
	for i, word := range words {
		words[i] = capitalizeFirst(word)
	}
	return strings.Join(words, " ")
}

func (n *Normalizer) NormalizeContinent(continent string) domain.Continent {
	return domain.Continent(strings.ToUpper(strings.TrimSpace(continent)))
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// capitalizeFirst upper-cases the first rune and leaves the rest untouched so
// names like "McAllen" survive.
func capitalizeFirst(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

// titleCase upper-cases every letter that follows a non-letter and lower-cases
// the others: "côte d'ivoire" -> "Côte D'Ivoire".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
