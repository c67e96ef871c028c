package observation

import (
	"math"
	"sort"
	"time"
)

// weeklyThresholdDays is the inclusive span at which aggregation switches
// from daily to weekly buckets. A decade of hourly readings reduces to a few
// hundred weekly buckets, keeping responses bounded regardless of span.
const weeklyThresholdDays = 90

// FilterRange returns the readings whose timestamps fall within the range,
// preserving order.
func FilterRange(readings []Reading, dateRange DateRange) []Reading {
	if dateRange.From == nil && dateRange.To == nil {
		return readings
	}

	filtered := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if dateRange.Contains(r.Timestamp) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// RangeDays returns the inclusive day span between two instants, counted on
// UTC calendar dates.
func RangeDays(from, to time.Time) int {
	fromDay := from.UTC().Truncate(24 * time.Hour)
	toDay := to.UTC().Truncate(24 * time.Hour)
	return int(toDay.Sub(fromDay).Hours()/24) + 1
}

// ChooseGranularity selects the bucket size for a day span.
func ChooseGranularity(rangeDays int) Granularity {
	if rangeDays >= weeklyThresholdDays {
		return GranularityWeek
	}
	return GranularityDay
}

// Aggregate buckets readings at the given granularity.
func Aggregate(readings []Reading, granularity Granularity) []Bucket {
	if granularity == GranularityWeek {
		return AggregateWeekly(readings)
	}
	return AggregateDaily(readings)
}

// AggregateDaily groups readings by UTC calendar date and computes summary
// statistics per day.
func AggregateDaily(readings []Reading) []Bucket {
	return aggregateBy(readings, GranularityDay, func(t time.Time) string {
		return t.UTC().Format("2006-01-02")
	})
}

// AggregateWeekly groups readings by ISO-8601 week and computes summary
// statistics per week. Buckets are labelled with the Monday date of the
// week rather than the week number, so labels remain sortable and
// chronologically comparable.
func AggregateWeekly(readings []Reading) []Bucket {
	return aggregateBy(readings, GranularityWeek, func(t time.Time) string {
		return isoWeekMonday(t.UTC()).Format("2006-01-02")
	})
}

// aggregateBy folds readings into buckets keyed by keyFn. Empty buckets are
// never emitted; every bucket covers at least one reading.
func aggregateBy(readings []Reading, kind Granularity, keyFn func(time.Time) string) []Bucket {
	type accumulator struct {
		min, max, sum float64
		count         int
	}

	groups := make(map[string]*accumulator)
	for _, r := range readings {
		key := keyFn(r.Timestamp)
		acc, ok := groups[key]
		if !ok {
			groups[key] = &accumulator{min: r.Value, max: r.Value, sum: r.Value, count: 1}
			continue
		}
		if r.Value < acc.min {
			acc.min = r.Value
		}
		if r.Value > acc.max {
			acc.max = r.Value
		}
		acc.sum += r.Value
		acc.count++
	}

	buckets := make([]Bucket, 0, len(groups))
	for key, acc := range groups {
		buckets = append(buckets, Bucket{
			PeriodLabel: key,
			Kind:        kind,
			Min:         round1(acc.min),
			Max:         round1(acc.max),
			Avg:         round1(acc.sum / float64(acc.count)),
			Count:       acc.count,
		})
	}

	// ISO date labels sort chronologically as strings.
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].PeriodLabel < buckets[j].PeriodLabel
	})

	return buckets
}

// isoWeekMonday returns the Monday of the ISO week containing t.
func isoWeekMonday(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week started six days earlier
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
