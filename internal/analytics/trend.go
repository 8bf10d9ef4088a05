package analytics

import (
	"math"

	"github.com/nao1215/linkboard/internal/model"
)

// DefaultAnomalyThreshold is the deviation from the mean, in percent, above
// which a trend point is reported as an anomaly.
const DefaultAnomalyThreshold = 10.0

// DefaultTrendDays is the number of trailing points a trend summary covers.
const DefaultTrendDays = 30

// Anomaly types.
const (
	AnomalySpike       = "spike"
	AnomalyImprovement = "improvement"
)

// Trend directions.
const (
	TrendImproving = "improving"
	TrendWorsening = "worsening"
	TrendStable    = "stable"
)

// Anomaly is a trend point that deviates from the series mean.
type Anomaly struct {
	Date              string         `json:"date"`
	BrokenLinks       int            `json:"brokenLinks"`
	Average           float64        `json:"average"`
	Type              string         `json:"type"`
	DeviationPercent  float64        `json:"deviationPercent"`
	ErrorDistribution map[string]int `json:"errorDistribution,omitempty"`
}

// DetectAnomalies reports every point whose broken-link count differs from
// the series mean by more than thresholdPercent of the mean. A point above
// its predecessor is a spike, otherwise an improvement; the first point is
// compared with the mean instead. Series shorter than two points, or with a
// zero mean, have no anomalies.
func DetectAnomalies(points []model.TrendPoint, thresholdPercent float64) []Anomaly {
	anomalies := []Anomaly{}
	if len(points) < 2 {
		return anomalies
	}

	var sum int
	for _, p := range points {
		sum += p.BrokenLinks
	}
	avg := float64(sum) / float64(len(points))
	if avg == 0 {
		return anomalies
	}
	threshold := thresholdPercent / 100 * avg

	for i, p := range points {
		deviation := math.Abs(float64(p.BrokenLinks) - avg)
		if deviation <= threshold {
			continue
		}

		kind := AnomalyImprovement
		if i > 0 {
			if p.BrokenLinks > points[i-1].BrokenLinks {
				kind = AnomalySpike
			}
		} else if float64(p.BrokenLinks) > avg {
			kind = AnomalySpike
		}

		anomalies = append(anomalies, Anomaly{
			Date:              p.Date,
			BrokenLinks:       p.BrokenLinks,
			Average:           round2(avg),
			Type:              kind,
			DeviationPercent:  round2(deviation / avg * 100),
			ErrorDistribution: p.ErrorDistribution,
		})
	}
	return anomalies
}

// TrendSummary describes the last points of a trend series.
type TrendSummary struct {
	Points        int     `json:"points"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	Start         int     `json:"start"`
	End           int     `json:"end"`
	Change        int     `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Direction     string  `json:"direction"`
	Average       float64 `json:"average"`
	Highest       int     `json:"highest"`
	Lowest        int     `json:"lowest"`
}

// SummarizeTrend summarizes the last n points of a series (all points when
// n <= 0). It returns false for an empty series.
func SummarizeTrend(points []model.TrendPoint, n int) (TrendSummary, bool) {
	if len(points) == 0 {
		return TrendSummary{}, false
	}
	if n > 0 && len(points) > n {
		points = points[len(points)-n:]
	}

	first, last := points[0], points[len(points)-1]
	s := TrendSummary{
		Points:    len(points),
		StartDate: first.Date,
		EndDate:   last.Date,
		Start:     first.BrokenLinks,
		End:       last.BrokenLinks,
		Change:    last.BrokenLinks - first.BrokenLinks,
		Highest:   first.BrokenLinks,
		Lowest:    first.BrokenLinks,
	}

	if s.Start > 0 {
		s.ChangePercent = round2(float64(s.Change) / float64(s.Start) * 100)
	}

	switch {
	case s.Change < 0:
		s.Direction = TrendImproving
	case s.Change > 0:
		s.Direction = TrendWorsening
	default:
		s.Direction = TrendStable
	}

	var sum int
	for _, p := range points {
		sum += p.BrokenLinks
		s.Highest = max(s.Highest, p.BrokenLinks)
		s.Lowest = min(s.Lowest, p.BrokenLinks)
	}
	s.Average = round2(float64(sum) / float64(len(points)))

	return s, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
