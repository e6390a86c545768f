package dateinfer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"reclaim/internal/textutil"
)

// Builtin month-name tables, indexed by locale. Names are stored lowercase
// with accents folded; scanned text goes through the same folding, so
// "Février" and "fevrier" both hit.
var builtinMonths = map[string][]string{
	"fr": {"janvier", "fevrier", "mars", "avril", "mai", "juin",
		"juillet", "aout", "septembre", "octobre", "novembre", "decembre"},
	"en": {"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"},
}

// Common short forms, mapped to month numbers directly since they are not
// simple prefixes of every full name.
var builtinAbbreviations = map[string]map[string]int{
	"fr": {"janv": 1, "fevr": 2, "avr": 4, "juil": 7, "sept": 9, "oct": 10, "nov": 11, "dec": 12},
	"en": {"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
		"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12},
}

// monthMatcher resolves localized month names to month numbers.
type monthMatcher struct {
	names   map[string]int
	pattern string
}

// newMonthMatcher builds the matcher for the requested locales. Overrides
// add or replace whole locales; each override must list twelve names,
// January first.
func newMonthMatcher(locales []string, overrides map[string][]string) (*monthMatcher, error) {
	names := make(map[string]int)

	add := func(name string, month int) {
		folded := textutil.FoldAccents(strings.ToLower(strings.TrimSpace(name)))
		if folded != "" {
			names[folded] = month
		}
	}

	for _, locale := range locales {
		table := builtinMonths[locale]
		if override, ok := overrides[locale]; ok {
			table = override
		}
		if table == nil {
			return nil, fmt.Errorf("no month table for locale %q", locale)
		}
		if len(table) != 12 {
			return nil, fmt.Errorf("month table for locale %q has %d names, want 12", locale, len(table))
		}
		for i, name := range table {
			add(name, i+1)
		}
		for abbr, month := range builtinAbbreviations[locale] {
			add(abbr, month)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no locales configured")
	}

	// longest alternatives first so "juillet" wins over "juil"
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, regexp.QuoteMeta(name))
	}
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	return &monthMatcher{
		names:   names,
		pattern: "(?:" + strings.Join(sorted, "|") + ")",
	}, nil
}

func (m *monthMatcher) month(name string) (int, bool) {
	n, ok := m.names[strings.ToLower(name)]
	return n, ok
}
