package services

import (
	"fmt"
	"strings"
	"time"
)

// Window is a daily clock range, both ends inclusive
type Window struct {
	Name  string
	Start string // HH:MM
	End   string // HH:MM
}

var (
	DefaultLoginWindow  = Window{Name: "LOGIN", Start: "10:00", End: "10:20"}
	DefaultLogoutWindow = Window{Name: "LOGOUT", Start: "19:00", End: "19:20"}
)

func (w Window) String() string {
	return w.Start + "-" + w.End
}

// ParseWindow reads "HH:MM-HH:MM"
func ParseWindow(name, s string) (Window, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Window{}, fmt.Errorf("invalid %s window %q", name, s)
	}
	w := Window{Name: name, Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if _, err := time.Parse("15:04", w.Start); err != nil {
		return Window{}, fmt.Errorf("invalid %s window start: %w", name, err)
	}
	if _, err := time.Parse("15:04", w.End); err != nil {
		return Window{}, fmt.Errorf("invalid %s window end: %w", name, err)
	}
	return w, nil
}

// IsWithinWindow reports whether the wall-clock minute of now lies in the
// window on now's date
func IsWithinWindow(w Window, now time.Time) bool {
	start, err := clockOn(now, w.Start)
	if err != nil {
		return false
	}
	end, err := clockOn(now, w.End)
	if err != nil {
		return false
	}

	t := now.Truncate(time.Minute)
	return !t.Before(start) && !t.After(end)
}

func clockOn(day time.Time, clock string) (time.Time, error) {
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location()), nil
}
