package analytics

import "testing"

func TestDetectAnomalies(t *testing.T) {
	t.Parallel()

	t.Run("flags points beyond the threshold", func(t *testing.T) {
		t.Parallel()

		anomalies := DetectAnomalies(points(100, 102, 98, 150), 10)
		if len(anomalies) != 3 {
			t.Fatalf("expected 3 anomalies, got %d: %+v", len(anomalies), anomalies)
		}

		want := []struct {
			broken    int
			kind      string
			deviation float64
		}{
			{100, AnomalyImprovement, 11.11},
			{98, AnomalyImprovement, 12.89},
			{150, AnomalySpike, 33.33},
		}
		for i, w := range want {
			a := anomalies[i]
			if a.BrokenLinks != w.broken || a.Type != w.kind || a.DeviationPercent != w.deviation {
				t.Errorf("anomaly %d: expected %+v, got %+v", i, w, a)
			}
			if a.Average != 112.5 {
				t.Errorf("expected average 112.5, got %v", a.Average)
			}
		}
	})

	t.Run("first point above the mean is a spike", func(t *testing.T) {
		t.Parallel()

		anomalies := DetectAnomalies(points(50, 10, 10), 10)
		if len(anomalies) == 0 || anomalies[0].Type != AnomalySpike {
			t.Errorf("expected leading spike, got %+v", anomalies)
		}
	})

	t.Run("short or flat series", func(t *testing.T) {
		t.Parallel()

		if got := DetectAnomalies(points(10), 10); len(got) != 0 {
			t.Errorf("expected none for one point, got %+v", got)
		}
		if got := DetectAnomalies(points(0, 0, 0), 10); len(got) != 0 {
			t.Errorf("expected none for zero mean, got %+v", got)
		}
		if got := DetectAnomalies(points(10, 10, 10), 10); len(got) != 0 {
			t.Errorf("expected none for flat series, got %+v", got)
		}
	})
}

func TestSummarizeTrend(t *testing.T) {
	t.Parallel()

	t.Run("whole series", func(t *testing.T) {
		t.Parallel()

		s, ok := SummarizeTrend(points(10, 15, 5, 8), 0)
		if !ok {
			t.Fatal("expected a summary")
		}
		if s.Start != 10 || s.End != 8 || s.Change != -2 || s.ChangePercent != -20 {
			t.Errorf("unexpected change %+v", s)
		}
		if s.Direction != TrendImproving || s.Average != 9.5 || s.Highest != 15 || s.Lowest != 5 {
			t.Errorf("unexpected summary %+v", s)
		}
		if s.Points != 4 {
			t.Errorf("expected 4 points, got %d", s.Points)
		}
	})

	t.Run("last n points", func(t *testing.T) {
		t.Parallel()

		s, _ := SummarizeTrend(points(10, 15, 5, 8), 2)
		if s.Start != 5 || s.End != 8 || s.ChangePercent != 60 || s.Direction != TrendWorsening {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("stable and zero start", func(t *testing.T) {
		t.Parallel()

		s, _ := SummarizeTrend(points(0, 0), 0)
		if s.Direction != TrendStable || s.ChangePercent != 0 {
			t.Errorf("unexpected summary %+v", s)
		}
	})

	t.Run("empty series", func(t *testing.T) {
		t.Parallel()

		if _, ok := SummarizeTrend(nil, 10); ok {
			t.Error("expected no summary")
		}
	})
}
