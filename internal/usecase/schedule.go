package usecase

import (
	"context"
	"time"

	"pill-dispenser/internal/domain"
)

// LatestAssignment returns the assignment with the greatest Timestamp.
// On a tie the one that comes later in items wins.
func LatestAssignment(items []domain.ScheduleAssignment) (domain.ScheduleAssignment, bool) {
	if len(items) == 0 {
		return domain.ScheduleAssignment{}, false
	}
	latest := items[0]
	for _, a := range items[1:] {
		if a.Timestamp >= latest.Timestamp {
			latest = a
		}
	}
	return latest, true
}

// NextAssignment returns the assignment with the smallest forward distance
// from nowMinutes on the 24-hour wheel. On a tie the first one in items wins.
func NextAssignment(items []domain.ScheduleAssignment, nowMinutes int) (domain.ScheduleAssignment, bool) {
	var (
		next  domain.ScheduleAssignment
		found bool
		best  int
	)
	for _, a := range items {
		d := forwardDistance(nowMinutes, a.Time.Minutes())
		if !found || d < best {
			next, best, found = a, d, true
		}
	}
	return next, found
}

func forwardDistance(from, to int) int {
	if to >= from {
		return to - from
	}
	return domain.MinutesPerDay - from + to
}

// latestDispense returns the dispense event with the greatest Timestamp.
func latestDispense(items []domain.DispenseEvent) (domain.DispenseEvent, bool) {
	if len(items) == 0 {
		return domain.DispenseEvent{}, false
	}
	latest := items[0]
	for _, e := range items[1:] {
		if e.Timestamp > latest.Timestamp {
			latest = e
		}
	}
	return latest, true
}

// ResolveColor returns the color of the most recent schedule for pillName.
func (a *Assistant) ResolveColor(ctx context.Context, userID, pillName string) (domain.Color, error) {
	items, err := a.events.ScheduleAssignments(ctx, domain.ScheduleFilter{UserID: userID, PillName: pillName})
	if err != nil {
		return "", newError(ErrorDownstreamFailure, "schedule_scan_failed", err).
			saying("There was an error requesting the dispense. Try again later.")
	}
	latest, ok := LatestAssignment(items)
	if !ok {
		return "", newError(ErrorNotFound, "pill_not_scheduled", nil).
			saying("Pill %s not found in schedules. Please schedule it first.", pillName)
	}
	return latest.Color, nil
}

// NextPill returns the user's schedule assignment that comes up next after now.
func (a *Assistant) NextPill(ctx context.Context, userID string, now time.Time) (domain.ScheduleAssignment, bool, error) {
	items, err := a.events.ScheduleAssignments(ctx, domain.ScheduleFilter{UserID: userID})
	if err != nil {
		return domain.ScheduleAssignment{}, false, err
	}
	next, ok := NextAssignment(items, domain.TimeOfDayAt(now.In(a.loc)).Minutes())
	return next, ok, nil
}
