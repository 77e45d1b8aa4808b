// Package timeparse turns spoken time expressions into a 24-hour time of day.
package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/en"

	"pill-dispenser/internal/domain"
)

// ErrUnrecognizedTimeFormat is returned when no rule understands the input.
var ErrUnrecognizedTimeFormat = errors.New("timeparse: unrecognized time format")

var (
	clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	hourPattern  = regexp.MustCompile(`^\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*$`)
	// The fallback rules read "12 am" as noon.
	twelveAM = regexp.MustCompile(`(?i)(?:\W|^)12\s*a\.?(?:m\.?)?(?:\W|$)`)
)

var fallbackBase = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var fallback = newFallbackParser()

// newFallbackParser only knows rules that read a spoken clock time. Date,
// weekday, casual ("in the evening") and relative ("in 2 hours") rules are
// left out: they produce a time of day the user never said.
func newFallbackParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.Hour(rules.Override), en.HourMinute(rules.Override))
	return w
}

// Parse resolves text to a time of day. The first matching rule wins:
// "noon"/"midnight", an H:MM clock anywhere in the text (already 24-hour),
// a bare hour with optional minutes and am/pm, then a clock time spoken
// inside a longer phrase ("at 7 pm please").
func Parse(text string) (domain.TimeOfDay, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return domain.TimeOfDay{}, fmt.Errorf("%w: empty input", ErrUnrecognizedTimeFormat)
	}
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(lower, "noon"):
		return domain.TimeOfDay{Hour: 12}, nil
	case strings.Contains(lower, "midnight"):
		return domain.TimeOfDay{Hour: 0}, nil
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		return clock(text, m[1], m[2], "")
	}

	norm := strings.ReplaceAll(lower, ".", "")
	if m := hourPattern.FindStringSubmatch(norm); m != nil {
		return clock(text, m[1], m[2], m[3])
	}

	return spoken(text, s)
}

func spoken(text, s string) (domain.TimeOfDay, error) {
	r, err := fallback.Parse(s, fallbackBase)
	if err != nil || r == nil {
		return domain.TimeOfDay{}, fmt.Errorf("%w: %q", ErrUnrecognizedTimeFormat, text)
	}
	y, m, d := r.Time.Date()
	if by, bm, bd := fallbackBase.Date(); y != by || m != bm || d != bd {
		return domain.TimeOfDay{}, fmt.Errorf("%w: %q names a date, not a time", ErrUnrecognizedTimeFormat, text)
	}
	t := domain.TimeOfDayAt(r.Time)
	if t.Hour == 12 && twelveAM.MatchString(r.Text) {
		t.Hour = 0
	}
	return t, nil
}

// clock builds a time from matched digits. Without a meridiem the hour is
// taken as 24-hour; 24 means midnight.
func clock(text, hourDigits, minuteDigits, meridiem string) (domain.TimeOfDay, error) {
	hour, err := strconv.Atoi(hourDigits)
	if err != nil {
		return domain.TimeOfDay{}, fmt.Errorf("%w: %q", ErrUnrecognizedTimeFormat, text)
	}
	minute := 0
	if minuteDigits != "" {
		minute, err = strconv.Atoi(minuteDigits)
		if err != nil || minute > 59 {
			return domain.TimeOfDay{}, fmt.Errorf("%w: minute out of range in %q", ErrUnrecognizedTimeFormat, text)
		}
	}
	if hour == 24 {
		hour = 0
	}
	switch meridiem {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return domain.TimeOfDay{Hour: hour % 24, Minute: minute}, nil
}
