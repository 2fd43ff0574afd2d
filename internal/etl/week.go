// Package etl implements the per-product, per-week sales aggregation
// pipeline: joining the input tables, bucketing purchases into weeks,
// aggregating sales, ratings and city breakdowns, and assembling the
// final output table.
package etl

import "time"

// UnknownWeek is the bucket that absorbs rows whose purchase timestamp is
// missing or unparseable.
const UnknownWeek = "unknown"

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// WeekBucket maps a raw purchase timestamp to its week label: the date of
// the Sunday ending the week the purchase falls in, formatted YYYY-MM-DD.
// A purchase on a Sunday labels its own date. Anything unparseable maps to
// UnknownWeek, so the function is total over arbitrary input.
func WeekBucket(raw string) string {
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		daysToSunday := (7 - int(t.Weekday())) % 7
		return t.AddDate(0, 0, daysToSunday).Format("2006-01-02")
	}
	return UnknownWeek
}
