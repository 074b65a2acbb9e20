package weather

import (
	"reflect"
	"testing"
	"time"
)

// threeHourly builds n samples every three hours from start. Temperature is
// the sample index and the code is 800 unless overridden.
func threeHourly(start time.Time, n int) []ForecastSample {
	out := make([]ForecastSample, n)
	for i := range out {
		out[i] = ForecastSample{
			Time:        start.Add(time.Duration(i) * 3 * time.Hour),
			Code:        800,
			Temperature: float64(i),
		}
	}
	return out
}

func TestAggregateDaysFullBuffer(t *testing.T) {
	start := time.Date(2022, 8, 23, 0, 0, 0, 0, time.UTC)
	samples := threeHourly(start, ForecastSamples)
	// Thunderstorm at noon on the first full day, rain in its early morning.
	samples[8+4].Code = 211
	samples[8+1].Code = 500

	days := AggregateDays(samples, time.UTC, DaySummaries)
	if len(days) != DaySummaries {
		t.Fatalf("expected %d days, got %d", DaySummaries, len(days))
	}

	first := days[0]
	if !first.Date.Equal(time.Date(2022, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first summarized day is %s, want 2022-08-24", first.Date)
	}
	if first.Weekday != time.Wednesday {
		t.Fatalf("expected Wednesday, got %s", first.Weekday)
	}
	if first.Code != 211 || first.Hour != 12 {
		t.Fatalf("expected noon code 211, got %d at %d", first.Code, first.Hour)
	}
	if first.MinTemp != 8 || first.MaxTemp != 15 {
		t.Fatalf("expected min/max 8/15, got %v/%v", first.MinTemp, first.MaxTemp)
	}
	if first.Samples != SamplesPerDay {
		t.Fatalf("expected %d samples, got %d", SamplesPerDay, first.Samples)
	}

	for i := 1; i < len(days); i++ {
		if !days[i].Date.After(days[i-1].Date) {
			t.Fatalf("days out of order at %d: %s after %s", i, days[i].Date, days[i-1].Date)
		}
	}
}

func TestAggregateDaysSkipsPartialFirstDay(t *testing.T) {
	// Starting at 18:00 leaves two samples on the first day.
	start := time.Date(2022, 8, 23, 18, 0, 0, 0, time.UTC)
	samples := threeHourly(start, ForecastSamples)

	days := AggregateDays(samples, time.UTC, DaySummaries)
	if len(days) != DaySummaries {
		t.Fatalf("expected %d days, got %d", DaySummaries, len(days))
	}
	if days[0].Date.Day() != 24 {
		t.Fatalf("expected first day 24, got %d", days[0].Date.Day())
	}
	for _, d := range days {
		if d.Samples != SamplesPerDay {
			t.Fatalf("day %s has %d samples, want %d", d.Date.Format("2006-01-02"), d.Samples, SamplesPerDay)
		}
	}
}

func TestAggregateDaysUsesLocalDays(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	start := time.Date(2022, 8, 23, 0, 0, 0, 0, time.UTC)
	samples := threeHourly(start, ForecastSamples)

	days := AggregateDays(samples, loc, DaySummaries)
	if len(days) != DaySummaries {
		t.Fatalf("expected %d days, got %d", DaySummaries, len(days))
	}
	for _, d := range days {
		if d.Samples != SamplesPerDay {
			t.Fatalf("day %s has %d samples, want %d", d.Date.Format("2006-01-02"), d.Samples, SamplesPerDay)
		}
		if d.Hour != AnchorHour {
			t.Fatalf("expected representative hour %d, got %d", AnchorHour, d.Hour)
		}
		if d.Date.Location() != loc {
			t.Fatalf("expected date in %s, got %s", loc, d.Date.Location())
		}
	}
}

func TestAggregateDaysTieBreakPrefersLaterSample(t *testing.T) {
	day := time.Date(2022, 8, 24, 0, 0, 0, 0, time.UTC)
	samples := []ForecastSample{
		{Time: day.Add(-3 * time.Hour), Code: 800, Temperature: 20},
		{Time: day.Add(9 * time.Hour), Code: 500, Temperature: 18},
		{Time: day.Add(15 * time.Hour), Code: 804, Temperature: 24},
	}

	days := AggregateDays(samples, time.UTC, DaySummaries)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].Code != 804 || days[0].Hour != 15 {
		t.Fatalf("expected later sample 804 at 15, got %d at %d", days[0].Code, days[0].Hour)
	}
}

func TestAggregateDaysShortBuffer(t *testing.T) {
	start := time.Date(2022, 8, 23, 0, 0, 0, 0, time.UTC)
	samples := threeHourly(start, 10)

	days := AggregateDays(samples, time.UTC, DaySummaries)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].Samples != 2 {
		t.Fatalf("expected 2 samples, got %d", days[0].Samples)
	}
	if days[0].MinTemp != 8 || days[0].MaxTemp != 9 {
		t.Fatalf("expected min/max 8/9, got %v/%v", days[0].MinTemp, days[0].MaxTemp)
	}
}

func TestAggregateDaysEmpty(t *testing.T) {
	tests := []struct {
		name    string
		samples []ForecastSample
		maxDays int
	}{
		{"nil", nil, DaySummaries},
		{"zero timestamps", make([]ForecastSample, ForecastSamples), DaySummaries},
		{"single day", threeHourly(time.Date(2022, 8, 23, 0, 0, 0, 0, time.UTC), 8), DaySummaries},
		{"no days requested", threeHourly(time.Date(2022, 8, 23, 0, 0, 0, 0, time.UTC), 40), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if days := AggregateDays(tt.samples, time.UTC, tt.maxDays); len(days) != 0 {
				t.Fatalf("expected no days, got %d", len(days))
			}
		})
	}
}

func TestAggregateDaysIsIdempotent(t *testing.T) {
	start := time.Date(2022, 8, 23, 6, 0, 0, 0, time.UTC)
	samples := threeHourly(start, ForecastSamples)

	first := AggregateDays(samples, time.UTC, DaySummaries)
	second := AggregateDays(samples, time.UTC, DaySummaries)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation differs between runs:\n%+v\n%+v", first, second)
	}
}

func TestAggregateDaysRespectsMaxDays(t *testing.T) {
	start := time.Date(2022, 8, 23, 0, 0, 0, 0, time.UTC)
	samples := threeHourly(start, ForecastSamples)

	for n := 1; n <= DaySummaries; n++ {
		if got := len(AggregateDays(samples, time.UTC, n)); got != n {
			t.Fatalf("maxDays %d returned %d days", n, got)
		}
	}
}
