package analytics

import (
	"slices"
	"time"

	"github.com/nao1215/linkboard/internal/adapter"
	"github.com/nao1215/linkboard/internal/model"
)

// Comparison directions.
const (
	DirectionImproved  = "improved"
	DirectionWorsened  = "worsened"
	DirectionUnchanged = "unchanged"
)

// RunMetadata identifies one side of a comparison.
type RunMetadata struct {
	// ID is the run history ID, or 0 for a document read directly.
	ID          int64     `json:"id,omitempty"`
	Source      string    `json:"source"`
	LastUpdated string    `json:"lastUpdated"`
	RecordedAt  time.Time `json:"recordedAt,omitzero"`
	TotalURLs   int       `json:"totalUrls"`
	BrokenLinks int       `json:"brokenLinks"`
	SuccessRate float64   `json:"successRate"`
}

// MetadataOf describes a dataset for a comparison.
func MetadataOf(ds *model.Dataset) RunMetadata {
	return RunMetadata{
		Source:      ds.Source,
		LastUpdated: ds.Summary.LastUpdated,
		TotalURLs:   ds.Summary.TotalURLs,
		BrokenLinks: ds.Summary.BrokenLinks,
		SuccessRate: ds.Summary.SuccessRate,
	}
}

// Change is the difference between two runs.
type Change struct {
	// Direction is improved, worsened or unchanged, by broken-link count.
	Direction        string  `json:"direction"`
	BrokenDelta      int     `json:"brokenDelta"`
	TotalURLsDelta   int     `json:"totalUrlsDelta"`
	SuccessRateDelta float64 `json:"successRateDelta"`
}

// Comparison is the result of comparing two runs.
type Comparison struct {
	Previous RunMetadata `json:"previous"`
	Current  RunMetadata `json:"current"`

	// NewBroken are links broken in the current run but not the previous.
	NewBroken []model.BrokenLink `json:"newBroken"`

	// Resolved are links broken in the previous run but not the current.
	Resolved []model.BrokenLink `json:"resolved"`

	// UnchangedCount is the number of links broken in both runs.
	UnchangedCount int `json:"unchangedCount"`

	Change Change `json:"change"`
}

// Compare compares two runs. Links are matched by URL and locale; new and
// resolved links are returned in priority order.
func Compare(previous, current *model.Dataset) *Comparison {
	result := &Comparison{
		Previous:  MetadataOf(previous),
		Current:   MetadataOf(current),
		NewBroken: []model.BrokenLink{},
		Resolved:  []model.BrokenLink{},
	}

	prev := linkSet(previous.Links)
	curr := linkSet(current.Links)

	for _, l := range current.Links {
		if _, ok := prev[linkKey(l)]; !ok {
			result.NewBroken = append(result.NewBroken, l)
		}
	}
	seen := make(map[string]struct{}, len(previous.Links))
	for _, l := range previous.Links {
		key := linkKey(l)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := curr[key]; ok {
			result.UnchangedCount++
		} else {
			result.Resolved = append(result.Resolved, l)
		}
	}

	result.NewBroken = adapter.SortByPriority(result.NewBroken)
	result.Resolved = adapter.SortByPriority(result.Resolved)
	result.Change = changeBetween(result.Previous, result.Current)
	return result
}

func changeBetween(previous, current RunMetadata) Change {
	c := Change{
		BrokenDelta:      current.BrokenLinks - previous.BrokenLinks,
		TotalURLsDelta:   current.TotalURLs - previous.TotalURLs,
		SuccessRateDelta: adapter.Round1(current.SuccessRate - previous.SuccessRate),
	}
	switch {
	case c.BrokenDelta < 0:
		c.Direction = DirectionImproved
	case c.BrokenDelta > 0:
		c.Direction = DirectionWorsened
	default:
		c.Direction = DirectionUnchanged
	}
	return c
}

func linkKey(l model.BrokenLink) string {
	return l.URL + "|" + l.Locale
}

func linkSet(links []model.BrokenLink) map[string]struct{} {
	set := make(map[string]struct{}, len(links))
	for _, l := range links {
		set[linkKey(l)] = struct{}{}
	}
	return set
}

// NewBrokenURLs returns the distinct URLs of the new broken links, sorted.
func (c *Comparison) NewBrokenURLs() []string {
	return distinctURLs(c.NewBroken)
}

// ResolvedURLs returns the distinct URLs of the resolved links, sorted.
func (c *Comparison) ResolvedURLs() []string {
	return distinctURLs(c.Resolved)
}

func distinctURLs(links []model.BrokenLink) []string {
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.URL)
	}
	slices.Sort(urls)
	return slices.Compact(urls)
}
