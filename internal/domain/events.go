package domain

// EventType tags every record in the events table.
type EventType string

const (
	EventScheduleUpdate    EventType = "schedule_update"
	EventDispenseRequest   EventType = "dispense_request"
	EventDispenseCompleted EventType = "dispense_completed"
	EventScheduleMonitor   EventType = "scheduled_time_monitor"
)

// Fallback owner of a completion that cannot be correlated.
const (
	UnknownPill = "UNKNOWN"
	SystemUser  = "SYSTEM"
)

// ScheduleAssignment is one user's configured pill schedule at a point in time.
// Records are never updated; the greatest Timestamp per (UserID, PillName) wins.
type ScheduleAssignment struct {
	CommandID     int64
	Timestamp     int64
	ThingName     string
	PillName      string
	Time          TimeOfDay
	Color         Color
	BuzzerEnabled bool
	UserID        string
}

// DispenseEvent is either a dispense request or a device-reported completion.
type DispenseEvent struct {
	CommandID int64
	Timestamp int64
	ThingName string
	PillName  string
	Color     Color
	UserID    string
	Type      EventType
	Report    *DispenseReport
}

// DispenseReport is what the device reported when it finished dispensing.
type DispenseReport struct {
	DispensedColor string
	DispensedAngle int
	Status         string
	LastDispense   int64
	DominantColor  string
	R, G, B        int
}

// ScheduleMonitor is the schedule a device reports it is currently running.
type ScheduleMonitor struct {
	CommandID         int64
	Timestamp         int64
	ThingName         string
	PillName          string
	PillHour          int
	PillMinute        int
	BuzzerEnabled     bool
	LastDispense      int64
	ReportedCommandID int64
}

// EventOwner is the pill and user a stored event was recorded for.
type EventOwner struct {
	PillName string
	UserID   string
}

// ScheduleFilter narrows a scan of schedule assignments. Empty fields match anything.
type ScheduleFilter struct {
	UserID    string
	PillName  string
	ThingName string
	Color     Color
}
