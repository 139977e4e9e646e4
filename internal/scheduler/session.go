// Package scheduler gates recurring batch runs to market-session hours.
package scheduler

import "time"

// SessionWindow is the weekly trading window: Monday through Friday between
// open and close in the exchange's local timezone, bounds inclusive.
type SessionWindow struct {
	Location    *time.Location
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
}

// NewYorkSession returns the default window, 09:30-16:00 America/New_York.
func NewYorkSession() SessionWindow {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return SessionWindow{
		Location:    loc,
		OpenHour:    9,
		OpenMinute:  30,
		CloseHour:   16,
		CloseMinute: 0,
	}
}

// Open reports whether t falls inside the session window.
func (w SessionWindow) Open(t time.Time) bool {
	local := t.In(w.Location)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	openMin := w.OpenHour*60 + w.OpenMinute
	closeMin := w.CloseHour*60 + w.CloseMinute

	return minutes >= openMin && minutes <= closeMin
}
