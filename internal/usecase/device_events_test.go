package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pill-dispenser/internal/domain"
)

func newDeviceEvents(t *testing.T, store *memStore) *DeviceEvents {
	t.Helper()
	d, err := NewDeviceEvents(store, WithClock(fixedClock()), WithLogger(quietLogger()))
	require.NoError(t, err)
	return d
}

func mustDecode(t *testing.T, raw string) TelemetryEvent {
	t.Helper()
	e, err := DecodeTelemetryEvent([]byte(raw))
	require.NoError(t, err)
	return e
}

func TestNewDeviceEvents_Validates(t *testing.T) {
	_, err := NewDeviceEvents(nil)
	require.Error(t, err)
}

func TestCorrelate(t *testing.T) {
	store := &memStore{
		owners: map[int64]domain.EventOwner{
			1700000000123: {PillName: "Aspirin", UserID: testUser},
		},
		schedules: []domain.ScheduleAssignment{
			{Timestamp: 100, ThingName: testThing, PillName: "Old Red", Color: domain.ColorRed, UserID: testUser},
			{Timestamp: 200, ThingName: testThing, PillName: "New Red", Color: domain.ColorRed, UserID: testUser},
			{Timestamp: 300, ThingName: "other-thing", PillName: "Elsewhere", Color: domain.ColorRed, UserID: "u2"},
		},
	}
	d := newDeviceEvents(t, store)
	ctx := context.Background()

	assert.Equal(t, domain.EventOwner{PillName: "Aspirin", UserID: testUser},
		d.Correlate(ctx, 1700000000123, testThing, domain.ColorRed), "command id wins")

	assert.Equal(t, domain.EventOwner{PillName: "New Red", UserID: testUser},
		d.Correlate(ctx, 42, testThing, domain.ColorRed), "falls back to newest schedule with that color")

	assert.Equal(t, domain.EventOwner{PillName: "New Red", UserID: testUser},
		d.Correlate(ctx, 0, testThing, domain.ColorRed))

	assert.Equal(t, domain.EventOwner{PillName: domain.UnknownPill, UserID: domain.SystemUser},
		d.Correlate(ctx, 42, testThing, domain.ColorBlue))

	assert.Equal(t, domain.EventOwner{PillName: domain.UnknownPill, UserID: domain.SystemUser},
		d.Correlate(ctx, 42, testThing, ""))
}

func TestCorrelate_LookupFailureFallsThrough(t *testing.T) {
	store := &memStore{
		ownerErr: errors.New("query failed"),
		schedules: []domain.ScheduleAssignment{
			{Timestamp: 1, ThingName: testThing, PillName: "Zinc", Color: domain.ColorGreen, UserID: testUser},
		},
	}
	d := newDeviceEvents(t, store)

	got := d.Correlate(context.Background(), 7, testThing, domain.ColorGreen)
	assert.Equal(t, domain.EventOwner{PillName: "Zinc", UserID: testUser}, got)

	store.scanErr = errors.New("scan failed")
	got = d.Correlate(context.Background(), 7, testThing, domain.ColorGreen)
	assert.Equal(t, domain.EventOwner{PillName: domain.UnknownPill, UserID: domain.SystemUser}, got)
}

func TestRecordDispenseCompleted(t *testing.T) {
	store := &memStore{owners: map[int64]domain.EventOwner{
		1700000000123: {PillName: "Aspirin", UserID: testUser},
	}}
	d := newDeviceEvents(t, store)

	e := mustDecode(t, `{
		"thing_name": "esp32-kitchen",
		"event_timestamp": 1700000005000,
		"command_id": 1700000000123,
		"dispensed_color": "RED",
		"dispensed_angle": 90,
		"dispense_status": "success",
		"last_dispense": "2025-03-14T12:00:00Z",
		"dominant_color": "Red",
		"r": 200, "g": 30, "b": 25
	}`)
	require.NoError(t, d.RecordDispenseCompleted(context.Background(), e))

	require.Len(t, store.dispenses, 1)
	assert.Equal(t, domain.DispenseEvent{
		CommandID: 1700000000123,
		Timestamp: testNow.Unix(),
		ThingName: testThing,
		PillName:  "Aspirin",
		Color:     domain.ColorRed,
		UserID:    testUser,
		Type:      domain.EventDispenseCompleted,
		Report: &domain.DispenseReport{
			DispensedColor: "RED",
			DispensedAngle: 90,
			Status:         "success",
			LastDispense:   1741953600,
			DominantColor:  "Red",
			R:              200,
			G:              30,
			B:              25,
		},
	}, store.dispenses[0])
}

func TestRecordDispenseCompleted_Defaults(t *testing.T) {
	store := &memStore{}
	d := newDeviceEvents(t, store)

	require.NoError(t, d.RecordDispenseCompleted(context.Background(), mustDecode(t, `{"thing_name":"esp32-kitchen","dispense_status":"failed"}`)))

	require.Len(t, store.dispenses, 1)
	rec := store.dispenses[0]
	assert.Equal(t, testNow.UnixMilli(), rec.CommandID)
	assert.Equal(t, domain.UnknownPill, rec.PillName)
	assert.Equal(t, domain.SystemUser, rec.UserID)
	assert.Equal(t, domain.Color(domain.UnknownPill), rec.Color)
	require.NotNil(t, rec.Report)
	assert.Equal(t, "UNKNOWN", rec.Report.DispensedColor)
	assert.Equal(t, "failed", rec.Report.Status)
	assert.Equal(t, "Unknown", rec.Report.DominantColor)
	assert.Zero(t, rec.Report.LastDispense)
}

func TestRecordDispenseCompleted_WriteError(t *testing.T) {
	store := &memStore{putErr: errors.New("throttled")}
	d := newDeviceEvents(t, store)

	err := d.RecordDispenseCompleted(context.Background(), mustDecode(t, `{"dispensed_color":"RED"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.putErr)
}

func TestRecordScheduleMonitor(t *testing.T) {
	store := &memStore{}
	d := newDeviceEvents(t, store)

	e := mustDecode(t, `{"thing_name":"esp32-kitchen","pill_name":"Aspirin","pill_hour":8,"pill_minute":"15",
		"buzzer_enabled":true,"last_dispense":1741953600,"last_command_id":1700000000123}`)
	require.NoError(t, d.RecordScheduleMonitor(context.Background(), e))

	require.Len(t, store.monitors, 1)
	assert.Equal(t, domain.ScheduleMonitor{
		CommandID:         testNow.UnixMilli(),
		Timestamp:         testNow.Unix(),
		ThingName:         testThing,
		PillName:          "Aspirin",
		PillHour:          8,
		PillMinute:        15,
		BuzzerEnabled:     true,
		LastDispense:      1741953600,
		ReportedCommandID: 1700000000123,
	}, store.monitors[0])

	require.NoError(t, d.RecordScheduleMonitor(context.Background(), mustDecode(t, `{"thing_name":"esp32-kitchen"}`)))
	m := store.monitors[1]
	assert.Equal(t, domain.UnknownPill, m.PillName)
	assert.Equal(t, -1, m.PillHour)
	assert.Equal(t, -1, m.PillMinute)
	assert.False(t, m.BuzzerEnabled)
}

func TestTelemetryEvent_Accessors(t *testing.T) {
	e := mustDecode(t, `{"a":"x","n":12,"f":3.7,"s":" 42 ","nul":null,"zero":0,"t":true,"iso":"2025-03-14T12:00:00","big":1700000000123}`)

	assert.True(t, e.Has("nul"))
	assert.False(t, e.Has("missing"))
	assert.Equal(t, "x", e.StringOr("a", "d"))
	assert.Equal(t, "d", e.StringOr("nul", "d"))
	assert.Equal(t, int64(12), e.IntOr("n", -1))
	assert.Equal(t, int64(3), e.IntOr("f", -1))
	assert.Equal(t, int64(42), e.IntOr("s", -1))
	assert.Equal(t, int64(-1), e.IntOr("a", -1))
	assert.Equal(t, int64(1700000000123), e.IntOr("big", 0))
	assert.True(t, e.Bool("t"))
	assert.False(t, e.Truthy("nul"))
	assert.False(t, e.Truthy("zero"))
	assert.True(t, e.Truthy("a"))
	assert.Equal(t, int64(1741953600), e.EpochSeconds("iso"))
	assert.Equal(t, int64(12), e.EpochSeconds("n"))
	assert.Zero(t, e.EpochSeconds("a"))

	_, err := DecodeTelemetryEvent([]byte(`[1,2]`))
	require.Error(t, err)
}
