package analytics

import (
	"math"

	"github.com/nao1215/linkboard/internal/model"
)

// Health is the overall health indicator of a run.
type Health struct {
	Score float64 `json:"score"`
	Grade string  `json:"grade"`
}

// HealthOf returns the health score and grade for a run summary.
func HealthOf(s model.RunSummary) Health {
	return Health{
		Score: HealthScore(s.SuccessRate, s.BrokenLinks, s.TotalURLs),
		Grade: Grade(s.SuccessRate),
	}
}

// HealthScore weighs the success rate at 70% and subtracts up to 30 points
// for the broken-link ratio. The result is clamped to [0, 100] and rounded
// to one decimal.
func HealthScore(successRate float64, broken, total int) float64 {
	var ratio float64
	if total > 0 {
		ratio = float64(broken) / float64(total)
	}
	score := successRate*0.7 - ratio*30
	score = math.Max(0, math.Min(100, score))
	return math.Round(score*10) / 10
}

// Grade converts a success rate into a letter grade.
func Grade(successRate float64) string {
	switch {
	case successRate >= 99:
		return "A+"
	case successRate >= 97:
		return "A"
	case successRate >= 95:
		return "A-"
	case successRate >= 90:
		return "B"
	case successRate >= 85:
		return "C"
	case successRate >= 80:
		return "D"
	default:
		return "F"
	}
}
