package adapter

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/nao1215/linkboard/internal/model"
)

// trendDateLayout is the date format of generated trend points.
const trendDateLayout = "2006-01-02"

// SelectTrends picks the real trend series for a dataset, in order of
// preference: the document's own trends, the run history, and finally a
// single point describing the current run.
func SelectTrends(doc *model.Document, ds *model.Dataset, history []model.TrendPoint, now time.Time) model.TrendSeries {
	if len(doc.Trends) > 0 {
		return model.TrendSeries{
			Source: model.TrendSourceDocument,
			Points: slices.Clone(doc.Trends),
		}
	}

	if len(history) > 0 {
		return model.TrendSeries{
			Source: model.TrendSourceHistory,
			Points: slices.Clone(history),
		}
	}

	date := now
	if !ds.Summary.LastRun.IsZero() {
		date = ds.Summary.LastRun
	}

	point := model.TrendPoint{
		Date:        date.UTC().Format(trendDateLayout),
		BrokenLinks: ds.Summary.BrokenLinks,
		TotalURLs:   ds.Summary.TotalURLs,
		SuccessRate: ds.Summary.SuccessRate,
	}
	if len(ds.Links) > 0 {
		point.ErrorDistribution = make(map[string]int, len(ds.ErrorDistribution))
		for _, e := range ds.ErrorDistribution {
			point.ErrorDistribution[e.Label] = e.Count
		}
	}

	return model.TrendSeries{
		Source: model.TrendSourceCurrent,
		Points: []model.TrendPoint{point},
	}
}

// SyntheticTrend builds a simulated daily series ending at end, each point
// being base perturbed by a factor in [0.8, 1.2). It is presentation filler,
// not a measurement, and is always flagged Synthetic.
func SyntheticTrend(base, days int, end time.Time, seed uint64) model.TrendSeries {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // not security sensitive

	points := make([]model.TrendPoint, days)
	for i := range days {
		day := end.AddDate(0, 0, i-(days-1))
		factor := 0.8 + rng.Float64()*0.4
		points[i] = model.TrendPoint{
			Date:        day.UTC().Format(trendDateLayout),
			BrokenLinks: int(math.Round(float64(base) * factor)),
		}
	}

	return model.TrendSeries{
		Source:    model.TrendSourceSynthetic,
		Synthetic: true,
		Points:    points,
	}
}
