package model

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk and command-line format for calendar dates.
const DateLayout = "2006-01-02"

// MonthLayout is the format of month bucket keys and month arguments.
const MonthLayout = "2006-01"

// Bucket selects the grouping key of a time series.
type Bucket string

const (
	// BucketDay groups by calendar day.
	BucketDay Bucket = "day"
	// BucketMonth groups by calendar month.
	BucketMonth Bucket = "month"
)

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool {
	return b == BucketDay || b == BucketMonth
}

// ParseBucket converts user input into a Bucket.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(s)
	if !b.Valid() {
		return "", fmt.Errorf("unknown bucket %q (want day or month)", s)
	}
	return b, nil
}

// Date truncates t to a calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// MonthWindow returns the first and last calendar day of the month containing d.
func MonthWindow(d time.Time) (start, end time.Time) {
	y, m, _ := d.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}
