package taxonomy

import (
	"testing"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

func TestNormalizeCountryPunctuationVariants(t *testing.T) {
	n := NewNormalizer(DefaultCountryAliasTable())

	for _, input := range []string{"U.S.A.", "usa", "  USA ", "u.s.", "United States of America", "Estados Unidos"} {
		if got := n.NormalizeCountry(input); got != "United States" {
			t.Fatalf("NormalizeCountry(%q) = %q, want United States", input, got)
		}
	}
}

func TestNormalizeCountryFallsBackToTitleCase(t *testing.T) {
	n := NewNormalizer(DefaultCountryAliasTable())

	cases := map[string]string{
		"  new zealand ": "New Zealand",
		"FRANCE":         "France",
		"côte d'ivoire":  "Côte D'Ivoire",
		"":               "",
		"   ":            "",
	}
	for input, want := range cases {
		if got := n.NormalizeCountry(input); got != want {
			t.Fatalf("NormalizeCountry(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeCountryIsIdempotentOverVocabulary(t *testing.T) {
	table := DefaultCountryAliasTable()
	n := NewNormalizer(table)

	for _, alias := range table.Aliases() {
		once := n.NormalizeCountry(alias)
		twice := n.NormalizeCountry(once)
		if once != twice {
			t.Fatalf("alias %q: first pass %q, second pass %q", alias, once, twice)
		}
	}
}

func TestNormalizeCity(t *testing.T) {
	n := NewNormalizer(nil)

	cases := map[string]string{
		"  são   paulo ": "São Paulo",
		"paris":          "Paris",
		"mcAllen":        "McAllen",
		"rio de janeiro": "Rio De Janeiro",
		"":               "",
		" \t ":           "",
	}
	for input, want := range cases {
		if got := n.NormalizeCity(input); got != want {
			t.Fatalf("NormalizeCity(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeContinentPassesUnknownThrough(t *testing.T) {
	n := NewNormalizer(nil)

	if got := n.NormalizeContinent(" europe "); got != domain.ContinentEurope {
		t.Fatalf("expected EUROPE, got %q", got)
	}
	got := n.NormalizeContinent("antarctica")
	if got != "ANTARCTICA" {
		t.Fatalf("expected ANTARCTICA, got %q", got)
	}
	if got.Known() {
		t.Fatalf("ANTARCTICA must not be a known continent")
	}
}

func TestNormalizeRecord(t *testing.T) {
	n := NewNormalizer(nil)

	got := n.Normalize(domain.RawDestinationRecord{City: "tokyo", Country: "japan", Continent: "asia"})
	want := domain.NormalizedDestination{City: "Tokyo", Country: "Japan", Continent: domain.ContinentAsia}
	if got != want {
		t.Fatalf("Normalize() = %+v, want %+v", got, want)
	}
	if !got.Complete() {
		t.Fatalf("expected complete destination")
	}

	partial := n.Normalize(domain.RawDestinationRecord{City: "Lima", Continent: "latam"})
	if partial.Complete() {
		t.Fatalf("destination without country must be incomplete: %+v", partial)
	}
}
