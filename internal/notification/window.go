package notification

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"FoodExpiryTracker/internal/apperr"
)

const (
	dateKeyLayout = "2006-01-02"
	windowWidth   = 24*time.Hour - time.Millisecond
)

// Window is an inclusive [Start, End] range covering one civil day.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ComputeWindow returns the window for the civil date offset days after ref,
// with both the date and its midnight resolved in loc. End is always Start plus
// 24h minus 1ms, so on days with a DST transition End is not 23:59:59.999 local.
func ComputeWindow(ref time.Time, offset int, loc *time.Location) (Window, error) {
	if offset < 0 {
		return Window{}, fmt.Errorf("%w: day offset must not be negative, got %d", apperr.ErrValidation, offset)
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ref.In(loc).Date()
	start := time.Date(y, m, d+offset, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.Add(windowWidth)}, nil
}

// Contains reports whether t lies in the window, both ends included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DateKey is the window's civil date, YYYY-MM-DD.
func (w Window) DateKey() string {
	return w.Start.Format(dateKeyLayout)
}
