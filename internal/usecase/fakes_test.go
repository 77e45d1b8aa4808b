package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"pill-dispenser/internal/domain"
)

var (
	testLoc = time.FixedZone("UTC-4", -4*3600)
	// 14:30 local.
	testNow = time.Date(2025, 3, 14, 14, 30, 0, 0, testLoc)
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

type mockUsers struct {
	devices map[string]domain.UserDevice
	err     error
}

func (m *mockUsers) GetUserDevice(_ context.Context, userID string) (domain.UserDevice, bool, error) {
	if m.err != nil {
		return domain.UserDevice{}, false, m.err
	}
	d, ok := m.devices[userID]
	return d, ok, nil
}

// memStore is an in-memory events table.
type memStore struct {
	schedules []domain.ScheduleAssignment
	dispenses []domain.DispenseEvent
	monitors  []domain.ScheduleMonitor
	owners    map[int64]domain.EventOwner

	putErr   error
	scanErr  error
	ownerErr error

	dispenseScans int
}

func (m *memStore) PutScheduleAssignment(_ context.Context, a domain.ScheduleAssignment) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.schedules = append(m.schedules, a)
	return nil
}

func (m *memStore) PutDispenseEvent(_ context.Context, e domain.DispenseEvent) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.dispenses = append(m.dispenses, e)
	return nil
}

func (m *memStore) PutScheduleMonitor(_ context.Context, s domain.ScheduleMonitor) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.monitors = append(m.monitors, s)
	return nil
}

func (m *memStore) ScheduleAssignments(_ context.Context, f domain.ScheduleFilter) ([]domain.ScheduleAssignment, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var out []domain.ScheduleAssignment
	for _, a := range m.schedules {
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if f.PillName != "" && a.PillName != f.PillName {
			continue
		}
		if f.ThingName != "" && a.ThingName != f.ThingName {
			continue
		}
		if f.Color != "" && a.Color != f.Color {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) DispenseEvents(_ context.Context, userID string, t domain.EventType) ([]domain.DispenseEvent, error) {
	m.dispenseScans++
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var out []domain.DispenseEvent
	for _, e := range m.dispenses {
		if e.UserID == userID && e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) FindOwnerByCommandID(_ context.Context, commandID int64) (domain.EventOwner, bool, error) {
	if m.ownerErr != nil {
		return domain.EventOwner{}, false, m.ownerErr
	}
	o, ok := m.owners[commandID]
	if !ok {
		return domain.EventOwner{PillName: domain.UnknownPill, UserID: domain.SystemUser}, false, nil
	}
	return o, true, nil
}

type mockDevice struct {
	published  []domain.DispenseCommand
	desired    []domain.DesiredSchedule
	things     []string
	publishErr error
	shadowErr  error
}

func (m *mockDevice) PublishDispense(_ context.Context, thing string, cmd domain.DispenseCommand) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.things = append(m.things, thing)
	m.published = append(m.published, cmd)
	return nil
}

func (m *mockDevice) UpdateDesiredSchedule(_ context.Context, thing string, d domain.DesiredSchedule) error {
	if m.shadowErr != nil {
		return m.shadowErr
	}
	m.things = append(m.things, thing)
	m.desired = append(m.desired, d)
	return nil
}
