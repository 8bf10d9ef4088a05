package analytics

import (
	"fmt"

	"github.com/nao1215/linkboard/internal/model"
)

func link(url, locale string, status model.StatusCode, errorType, source string) model.BrokenLink {
	return model.BrokenLink{
		URL:        url,
		Locale:     locale,
		StatusCode: status,
		ErrorType:  errorType,
		Source:     source,
	}
}

func points(counts ...int) []model.TrendPoint {
	result := make([]model.TrendPoint, len(counts))
	for i, c := range counts {
		result[i] = model.TrendPoint{Date: fmt.Sprintf("2025-01-%02d", i+1), BrokenLinks: c}
	}
	return result
}
