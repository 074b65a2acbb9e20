package weather

import (
	"sort"
	"time"
)

// AggregateDays reduces forecast samples into daily summaries in loc.
// The day of the earliest sample is treated as the current partial day and
// skipped. At most maxDays summaries are returned, oldest first.
func AggregateDays(samples []ForecastSample, loc *time.Location, maxDays int) []DaySummary {
	if loc == nil {
		loc = time.UTC
	}
	if maxDays <= 0 {
		return nil
	}

	type dayKey string

	dayReadings := make(map[dayKey][]ForecastSample)
	for _, s := range samples {
		if s.Time.IsZero() {
			continue
		}
		k := dayKey(s.Time.In(loc).Format("2006-01-02"))
		dayReadings[k] = append(dayReadings[k], s)
	}
	if len(dayReadings) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dayReadings))
	for k := range dayReadings {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	days := make([]DaySummary, 0, maxDays)
	for _, k := range keys[1:] {
		if len(days) >= maxDays {
			break
		}
		readings := dayReadings[dayKey(k)]
		if len(readings) == 0 {
			continue
		}
		days = append(days, summarizeDay(readings, loc))
	}

	return days
}

func summarizeDay(readings []ForecastSample, loc *time.Location) DaySummary {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Time.Before(readings[j].Time)
	})

	first := readings[0].Time.In(loc)
	day := DaySummary{
		Date:    time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc),
		Weekday: first.Weekday(),
		MinTemp: readings[0].Temperature,
		MaxTemp: readings[0].Temperature,
		Samples: len(readings),
	}

	bestDist := -1
	for _, r := range readings {
		if r.Temperature < day.MinTemp {
			day.MinTemp = r.Temperature
		}
		if r.Temperature > day.MaxTemp {
			day.MaxTemp = r.Temperature
		}

		// <= so that the later of two equidistant samples wins.
		hour := r.Time.In(loc).Hour()
		dist := abs(hour - AnchorHour)
		if bestDist < 0 || dist <= bestDist {
			bestDist = dist
			day.Code = r.Code
			day.Hour = hour
		}
	}

	return day
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
