package aml

import "time"

const (
	// Cases scoring below FalsePositiveThreshold are counted as likely false positives.
	FalsePositiveThreshold = 20.0
	// Cases scoring at or above HighConfidenceThreshold are counted as high confidence.
	HighConfidenceThreshold = 75.0

	trendDays = 7
)

// Summary holds the dashboard KPIs and a seven day activity trend ending today.
type Summary struct {
	TransactionsToday int
	AlertsToday       int
	FalsePositives    int
	HighConfidence    int
	Trend             []TrendDay
}

type TrendDay struct {
	Day          time.Time
	Transactions int
	Alerts       int
	Cases        int
}

// Summarize computes the dashboard view. Days are calendar days in now's location.
func Summarize(now time.Time, transactions []Transaction, alerts []Alert, cases []CaseListItem) Summary {
	loc := now.Location()
	today := dayOf(now, loc)

	trend := make([]TrendDay, trendDays)
	index := make(map[time.Time]int, trendDays)
	for i := range trend {
		day := today.AddDate(0, 0, i-(trendDays-1))
		trend[i].Day = day
		index[day] = i
	}
	bump := func(ts time.Time, field func(*TrendDay)) bool {
		if ts.IsZero() {
			return false
		}
		day := dayOf(ts, loc)
		if i, ok := index[day]; ok {
			field(&trend[i])
		}
		return day.Equal(today)
	}

	var s Summary
	for _, t := range transactions {
		if bump(t.Date.Time, func(d *TrendDay) { d.Transactions++ }) {
			s.TransactionsToday++
		}
	}
	for _, a := range alerts {
		if bump(a.TriggeredDate.Time, func(d *TrendDay) { d.Alerts++ }) {
			s.AlertsToday++
		}
	}
	for _, c := range cases {
		bump(c.OpenedDate.Time, func(d *TrendDay) { d.Cases++ })
		switch {
		case c.ScorePercentage < FalsePositiveThreshold:
			s.FalsePositives++
		case c.ScorePercentage >= HighConfidenceThreshold:
			s.HighConfidence++
		}
	}
	s.Trend = trend
	return s
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
