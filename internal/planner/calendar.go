package planner

import "time"

const dateLayout = "2006-01-02"

// Direction moves a window backwards or forwards by its own width.
type Direction int

const (
	Previous Direction = iota
	Next
)

// ParseDirection maps the wire values "previous" and "next".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "previous":
		return Previous, true
	case "next":
		return Next, true
	}
	return 0, false
}

// Window is a run of consecutive calendar days starting at Start.
// Weekly views use width 7, the daily view width 1. Windows are
// derived values and never persisted.
type Window struct {
	Start time.Time
	Width int
}

// CurrentWeek returns the window anchored to the Monday of now's week
// (Sunday belongs to the week that started six days earlier).
func CurrentWeek(now time.Time) Window {
	offset := (int(now.Weekday()) + 6) % 7
	return WindowFrom(now.AddDate(0, 0, -offset))
}

// WindowFrom returns the 7-day window starting at start.
func WindowFrom(start time.Time) Window {
	return Window{Start: truncateDay(start), Width: 7}
}

// Day returns the width-1 window for a single date.
func Day(date time.Time) Window {
	return Window{Start: truncateDay(date), Width: 1}
}

// Shift returns a new window moved one full width in the given
// direction. The input window is untouched; navigation is unbounded.
func Shift(w Window, dir Direction) Window {
	days := w.Width
	if dir == Previous {
		days = -days
	}
	return Window{Start: w.Start.AddDate(0, 0, days), Width: w.Width}
}

// Dates returns the window's days as YYYY-MM-DD strings in order.
func (w Window) Dates() []string {
	dates := make([]string, 0, w.Width)
	for i := 0; i < w.Width; i++ {
		dates = append(dates, w.Start.AddDate(0, 0, i).Format(dateLayout))
	}
	return dates
}

// StartDate returns the anchor as a YYYY-MM-DD string.
func (w Window) StartDate() string {
	return w.Start.Format(dateLayout)
}

// ParseDate parses a canonical YYYY-MM-DD string.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(dateLayout, date)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
