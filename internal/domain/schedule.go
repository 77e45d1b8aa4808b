package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MinutesPerDay is the length of the time-of-day wheel.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time in 24-hour form.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// TimeOfDayAt returns the wall-clock time of t in t's location.
func TimeOfDayAt(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns the minutes elapsed since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Format12h renders the time as "8:05 AM".
func (t TimeOfDay) Format12h() string {
	period := "AM"
	if t.Hour >= 12 {
		period = "PM"
	}
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute, period)
}

// Color is the pill color the dispenser's sensor can tell apart.
type Color string

const (
	ColorWhite Color = "WHITE"
	ColorCream Color = "CREAM"
	ColorBrown Color = "BROWN"
	ColorRed   Color = "RED"
	ColorBlue  Color = "BLUE"
	ColorGreen Color = "GREEN"
	ColorOther Color = "OTHER"
)

var validColors = map[Color]struct{}{
	ColorWhite: {}, ColorCream: {}, ColorBrown: {}, ColorRed: {},
	ColorBlue: {}, ColorGreen: {}, ColorOther: {},
}

// ParseColor upper-cases s and reports whether it names a valid color.
func ParseColor(s string) (Color, bool) {
	c := Color(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := validColors[c]
	return c, ok
}

// Colors returns the valid colors in alphabetical order.
func Colors() []Color {
	out := make([]Color, 0, len(validColors))
	for c := range validColors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Spoken returns the color as it is read back to the user.
func (c Color) Spoken() string {
	if c == "" {
		return strings.ToLower(UnknownPill)
	}
	return strings.ToLower(string(c))
}
