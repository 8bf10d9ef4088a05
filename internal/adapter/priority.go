package adapter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/linkboard/internal/model"
)

// ComparePriority orders two links for the default table view: by
// BrokenLink.Priority, then by case-sensitive URL.
func ComparePriority(a, b model.BrokenLink) int {
	if c := cmp.Compare(a.Priority(), b.Priority()); c != 0 {
		return c
	}
	return strings.Compare(a.URL, b.URL)
}

// SortByPriority returns a copy of links in default priority order.
// The input slice is not modified.
func SortByPriority(links []model.BrokenLink) []model.BrokenLink {
	sorted := slices.Clone(links)
	slices.SortStableFunc(sorted, ComparePriority)
	return sorted
}
