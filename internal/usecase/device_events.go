package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pill-dispenser/internal/domain"
)

type DeviceEventStore interface {
	FindOwnerByCommandID(ctx context.Context, commandID int64) (domain.EventOwner, bool, error)
	ScheduleAssignments(ctx context.Context, f domain.ScheduleFilter) ([]domain.ScheduleAssignment, error)
	PutDispenseEvent(ctx context.Context, e domain.DispenseEvent) error
	PutScheduleMonitor(ctx context.Context, m domain.ScheduleMonitor) error
}

// DeviceEvents records what dispensers report through IoT rules.
type DeviceEvents struct {
	store DeviceEventStore
	now   func() time.Time
	log   *slog.Logger
}

func NewDeviceEvents(store DeviceEventStore, opts ...Option) (*DeviceEvents, error) {
	if store == nil {
		return nil, errors.New("usecase: device event store must not be nil")
	}
	o := buildOptions(opts)
	return &DeviceEvents{store: store, now: o.now, log: o.log}, nil
}

// Correlate finds who a completion belongs to: the record stored under
// commandID, else the newest schedule on this device with the dispensed
// color, else UNKNOWN/SYSTEM. Lookup failures fall through to the next step.
func (d *DeviceEvents) Correlate(ctx context.Context, commandID int64, thingName string, color domain.Color) domain.EventOwner {
	owner := domain.EventOwner{PillName: domain.UnknownPill, UserID: domain.SystemUser}
	log := d.log.With("thing_name", thingName, "command_id", commandID)

	if commandID != 0 {
		found, ok, err := d.store.FindOwnerByCommandID(ctx, commandID)
		switch {
		case err != nil:
			log.Warn("correlate by command id failed", "err", err)
		case ok:
			owner = found
		}
	}

	if owner.PillName == domain.UnknownPill && color != "" {
		items, err := d.store.ScheduleAssignments(ctx, domain.ScheduleFilter{ThingName: thingName, Color: color})
		if err != nil {
			log.Warn("correlate by color failed", "color", color, "err", err)
		} else if latest, ok := LatestAssignment(items); ok {
			owner = domain.EventOwner{PillName: latest.PillName, UserID: latest.UserID}
		}
	}
	return owner
}

// RecordDispenseCompleted stores a device-confirmed dispense.
func (d *DeviceEvents) RecordDispenseCompleted(ctx context.Context, e TelemetryEvent) error {
	now := d.now()
	thing := e.StringOr("thing_name", "")
	commandID, hasCommand := e.Int("command_id")
	color := e.StringOr("dispensed_color", "")

	owner := d.Correlate(ctx, commandID, thing, domain.Color(color))
	if !hasCommand || commandID == 0 {
		commandID = now.UnixMilli()
	}
	if color == "" {
		color = domain.UnknownPill
	}

	rec := domain.DispenseEvent{
		CommandID: commandID,
		Timestamp: now.Unix(),
		ThingName: thing,
		PillName:  owner.PillName,
		Color:     domain.Color(color),
		UserID:    owner.UserID,
		Type:      domain.EventDispenseCompleted,
		Report: &domain.DispenseReport{
			DispensedColor: color,
			DispensedAngle: int(e.IntOr("dispensed_angle", 0)),
			Status:         e.StringOr("dispense_status", "unknown"),
			LastDispense:   e.EpochSeconds("last_dispense"),
			DominantColor:  e.StringOr("dominant_color", "Unknown"),
			R:              int(e.IntOr("r", 0)),
			G:              int(e.IntOr("g", 0)),
			B:              int(e.IntOr("b", 0)),
		},
	}
	if err := d.store.PutDispenseEvent(ctx, rec); err != nil {
		return fmt.Errorf("usecase: record dispense completed: %w", err)
	}
	d.log.Info("dispense completion recorded",
		"thing_name", thing, "command_id", rec.CommandID, "pill_name", rec.PillName, "user_id", rec.UserID)
	return nil
}

// RecordScheduleMonitor stores the schedule a device says it is running.
func (d *DeviceEvents) RecordScheduleMonitor(ctx context.Context, e TelemetryEvent) error {
	now := d.now()
	rec := domain.ScheduleMonitor{
		CommandID:         now.UnixMilli(),
		Timestamp:         now.Unix(),
		ThingName:         e.StringOr("thing_name", ""),
		PillName:          e.StringOr("pill_name", domain.UnknownPill),
		PillHour:          int(e.IntOr("pill_hour", -1)),
		PillMinute:        int(e.IntOr("pill_minute", -1)),
		BuzzerEnabled:     e.Bool("buzzer_enabled"),
		LastDispense:      e.IntOr("last_dispense", 0),
		ReportedCommandID: e.IntOr("last_command_id", 0),
	}
	if err := d.store.PutScheduleMonitor(ctx, rec); err != nil {
		return fmt.Errorf("usecase: record schedule monitor: %w", err)
	}
	d.log.Info("schedule monitor recorded", "thing_name", rec.ThingName, "pill_name", rec.PillName)
	return nil
}
