package model

import "time"

// PriceBar represents a single daily candlestick bar keyed by calendar day.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// SentimentPoint is one daily Fear & Greed reading (0-100).
type SentimentPoint struct {
	Date            time.Time `json:"date"`
	Score           int       `json:"score"`
	TimeUntilUpdate int64     `json:"-"`
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LocalDay returns the calendar day of a unix timestamp at the given UTC offset in seconds.
func LocalDay(ts int64, gmtoffset int) time.Time {
	return Day(time.Unix(ts+int64(gmtoffset), 0))
}
