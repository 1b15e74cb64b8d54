package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CountryAliasTable maps lowercase aliases to canonical country names.
// It is read-only once built.
type CountryAliasTable struct {
	entries map[string]string
}

type CountryEntry struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

type aliasFile struct {
	Countries []CountryEntry `yaml:"countries"`
}

var defaultCountries = []CountryEntry{
	{Canonical: "United States", Aliases: []string{"usa", "us", "u.s.", "u.s.a", "u.s.a.", "estados unidos", "america", "united states of america"}},
	{Canonical: "United Kingdom", Aliases: []string{"uk", "u.k.", "england", "britain", "great britain"}},
	{Canonical: "Brazil", Aliases: []string{"brasil", "brazil"}},
	{Canonical: "Argentina", Aliases: []string{"argentina"}},
	{Canonical: "Chile", Aliases: []string{"chile"}},
	{Canonical: "Spain", Aliases: []string{"spain", "espanha", "españa"}},
	{Canonical: "China", Aliases: []string{"china", "hong kong"}},
	{Canonical: "South Korea", Aliases: []string{"korea", "south korea"}},
	{Canonical: "Japan", Aliases: []string{"japan"}},
	{Canonical: "Thailand", Aliases: []string{"thailand"}},
	{Canonical: "India", Aliases: []string{"india"}},
	{Canonical: "Switzerland", Aliases: []string{"switzerland", "suisse", "schweiz"}},
	{Canonical: "Netherlands", Aliases: []string{"nederland", "holland", "netherlands"}},
	{Canonical: "United Arab Emirates", Aliases: []string{"uae", "emirates", "dubai"}},
}

// NewCountryAliasTable builds a table from entries. Every canonical name is
// also registered as its own alias so normalization is idempotent.
func NewCountryAliasTable(entries []CountryEntry) *CountryAliasTable {
	table := &CountryAliasTable{entries: make(map[string]string)}
	table.merge(entries)
	return table
}

func DefaultCountryAliasTable() *CountryAliasTable {
	return NewCountryAliasTable(defaultCountries)
}

// LoadCountryAliasTable reads a YAML alias file and layers it over the
// default vocabulary. An empty path returns the defaults.
func LoadCountryAliasTable(path string) (*CountryAliasTable, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCountryAliasTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read country aliases: %w", err)
	}
	return ParseCountryAliases(raw)
}

func ParseCountryAliases(raw []byte) (*CountryAliasTable, error) {
	var file aliasFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse country aliases: %w", err)
	}
	for i, entry := range file.Countries {
		if strings.TrimSpace(entry.Canonical) == "" {
			return nil, fmt.Errorf("parse country aliases: entry %d has no canonical name", i)
		}
	}

	table := NewCountryAliasTable(defaultCountries)
	table.merge(file.Countries)
	return table, nil
}

func (t *CountryAliasTable) merge(entries []CountryEntry) {
	for _, entry := range entries {
		canonical := strings.TrimSpace(entry.Canonical)
		if canonical == "" {
			continue
		}
		t.entries[strings.ToLower(canonical)] = canonical
		for _, alias := range entry.Aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			t.entries[key] = canonical
		}
	}
}

func (t *CountryAliasTable) Lookup(alias string) (string, bool) {
	if t == nil {
		return "", false
	}
	canonical, ok := t.entries[alias]
	return canonical, ok
}

func (t *CountryAliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Aliases returns every alias key; order is unspecified.
func (t *CountryAliasTable) Aliases() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.entries))
	for alias := range t.entries {
		out = append(out, alias)
	}
	return out
}
