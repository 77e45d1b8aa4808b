package timeparse

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"pill-dispenser/internal/domain"
)

func TestParse_Recognized(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"8 PM", 20, 0},
		{"8 p.m.", 20, 0},
		{"8pm", 20, 0},
		{"8 AM", 8, 0},
		{"8 a.m.", 8, 0},
		{"12 AM", 0, 0},
		{"12 PM", 12, 0},
		{"12 p.m.", 12, 0},
		{"8:05", 8, 5},
		{"08:00", 8, 0},
		{"20:00", 20, 0},
		{"T08:00", 8, 0},
		{"2025-01-01T08:30", 8, 30},
		{"24:00", 0, 0},
		{"24", 0, 0},
		{"14", 14, 0},
		{"8", 8, 0},
		{"noon", 12, 0},
		{"Midnight", 0, 0},
		{"at noon please", 12, 0},
		{"  9  ", 9, 0},
		{"13 pm", 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			require.Equal(t, domain.TimeOfDay{Hour: tc.hour, Minute: tc.minute}, got)
		})
	}
}

func TestParse_SpokenPhrases(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"at 7 am", 7, 0},
		{"at 7 pm please", 19, 0},
		{"around 6 p.m.", 18, 0},
		{"take it at 9 pm tonight", 21, 0},
		{"at 11 P.M.", 23, 0},
		{"at 12 am", 0, 0},
		{"at 12 pm", 12, 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			require.Equal(t, domain.TimeOfDay{Hour: tc.hour, Minute: tc.minute}, got)
		})
	}
}

func TestParse_PhrasesWithoutAClockTime(t *testing.T) {
	for _, in := range []string{
		"tomorrow",
		"monday",
		"next week",
		"in 2 hours",
		"at 7 in the morning",
		"seven in the evening",
		"take 7 apples",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.ErrorIs(t, err, ErrUnrecognizedTimeFormat)
		})
	}
}

func TestParse_ClockPatternIgnoresMeridiem(t *testing.T) {
	// An H:MM clock is read as 24-hour before any am/pm handling.
	got, err := Parse("2:30 PM")
	require.NoError(t, err)
	require.Equal(t, domain.TimeOfDay{Hour: 2, Minute: 30}, got)
}

func TestParse_Unrecognized(t *testing.T) {
	for _, in := range []string{"", "   ", "banana", "8:75"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.ErrorIs(t, err, ErrUnrecognizedTimeFormat)
		})
	}
}

func TestParse_AllMeridiemInputsInRange(t *testing.T) {
	for h := 1; h <= 12; h++ {
		for _, mer := range []string{"am", "pm"} {
			got, err := Parse(strconv.Itoa(h) + " " + mer)
			require.NoError(t, err)
			require.GreaterOrEqual(t, got.Hour, 0)
			require.LessOrEqual(t, got.Hour, 23)

			want := h % 12
			if mer == "pm" {
				want += 12
			}
			require.Equal(t, want, got.Hour)
		}
	}
}
