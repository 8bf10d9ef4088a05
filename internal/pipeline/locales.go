package pipeline

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nao1215/linkboard/internal/model"
)

// LocaleColumn names a sortable column of the locale table.
type LocaleColumn string

// Locale table columns.
const (
	LocaleByName        LocaleColumn = "name"
	LocaleByBroken      LocaleColumn = "broken"
	LocaleByTotal       LocaleColumn = "total"
	LocaleBySuccessRate LocaleColumn = "successRate"
)

// LocaleColumns lists the locale table columns in table order.
func LocaleColumns() []LocaleColumn {
	return []LocaleColumn{LocaleByName, LocaleByBroken, LocaleByTotal, LocaleBySuccessRate}
}

// ParseLocaleColumn converts a column name, matched case-insensitively.
// The empty string selects LocaleByBroken.
func ParseLocaleColumn(s string) (LocaleColumn, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LocaleByBroken, nil
	}
	for _, c := range LocaleColumns() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return LocaleByBroken, fmt.Errorf("%w: %q", ErrUnknownSortColumn, s)
}

// DefaultLocaleDirection returns the initial direction of a column:
// counts start with the largest value, names start with A.
func DefaultLocaleDirection(column LocaleColumn) Direction {
	if column == LocaleByName {
		return Ascending
	}
	return Descending
}

// SortLocales returns a sorted copy of locales. Ties keep name order.
func SortLocales(locales []model.LocaleAggregate, column LocaleColumn, direction Direction) []model.LocaleAggregate {
	fold := cases.Fold()
	byName := func(a, b model.LocaleAggregate) int {
		return cmp.Compare(fold.String(a.Name), fold.String(b.Name))
	}

	var compare func(a, b model.LocaleAggregate) int
	switch column {
	case LocaleByName:
		compare = byName
	case LocaleByTotal:
		compare = func(a, b model.LocaleAggregate) int { return cmp.Compare(a.Total, b.Total) }
	case LocaleBySuccessRate:
		compare = func(a, b model.LocaleAggregate) int { return cmp.Compare(a.SuccessRate, b.SuccessRate) }
	default:
		compare = func(a, b model.LocaleAggregate) int { return cmp.Compare(a.Broken, b.Broken) }
	}

	out := slices.Clone(locales)
	slices.SortStableFunc(out, func(a, b model.LocaleAggregate) int {
		c := compare(a, b)
		if direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return byName(a, b)
	})
	return out
}
