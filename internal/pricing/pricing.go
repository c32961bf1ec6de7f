package pricing

import (
	"errors"
	"time"
)

// Period is the pricing basis applied to a booking. It is persisted on the
// reservation so the charged amount stays reproducible after the venue's
// price list changes.
type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodWeekly  Period = "WEEKLY"
	PeriodMonthly Period = "MONTHLY"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

func (p Period) String() string {
	return string(p)
}

// Rates holds a venue's pricing tiers
type Rates struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// Quote is the result of pricing a date range
type Quote struct {
	Amount float64 `json:"amount"`
	Days   int     `json:"days"`
	Tier   Period  `json:"tier"`
}

// ErrInvalidRange is returned when start is after end
var ErrInvalidRange = errors.New("start date must not be after end date")

// DaysInclusive counts the days in [start, end] with both endpoints included.
// Inputs are normalized to UTC midnight first, so partial-day timestamps
// cannot skew the count.
func DaysInclusive(start, end time.Time) int {
	s := Normalize(start)
	e := Normalize(end)
	return int(e.Sub(s).Hours()/24) + 1
}

// Normalize truncates a timestamp to its civil date at UTC midnight
func Normalize(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute picks the cheapest applicable tier for the inclusive range
// [start, end]. Weekly is only considered from 7 days, monthly from 30, and a
// longer tier wins only when strictly cheaper, so ties resolve to the
// shorter basis. Tiers priced at zero are treated as not offered.
func Compute(start, end time.Time, rates Rates) (Quote, error) {
	if Normalize(start).After(Normalize(end)) {
		return Quote{}, ErrInvalidRange
	}

	days := DaysInclusive(start, end)

	amount := float64(days) * rates.Daily
	tier := PeriodDaily

	if days >= 7 && rates.Weekly > 0 {
		weeks := (days + 6) / 7
		if weekly := float64(weeks) * rates.Weekly; weekly < amount {
			amount = weekly
			tier = PeriodWeekly
		}
	}

	if days >= 30 && rates.Monthly > 0 {
		months := (days + 29) / 30
		if monthly := float64(months) * rates.Monthly; monthly < amount {
			amount = monthly
			tier = PeriodMonthly
		}
	}

	return Quote{Amount: amount, Days: days, Tier: tier}, nil
}
