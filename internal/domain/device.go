package domain

// UserDevice binds a voice-assistant user to exactly one dispenser.
type UserDevice struct {
	UserID      string
	ThingName   string
	Description string
}

// DispenseCommand is published to the device for an immediate dispense.
type DispenseCommand struct {
	Action    string `json:"action"`
	PillName  string `json:"pill_name"`
	Color     Color  `json:"color"`
	CommandID int64  `json:"command_id"`
}

// DesiredSchedule is the schedule pushed into the device shadow.
type DesiredSchedule struct {
	PillName      string `json:"pill_name"`
	Color         Color  `json:"color"`
	PillHour      int    `json:"pill_hour"`
	PillMinute    int    `json:"pill_minute"`
	BuzzerEnabled bool   `json:"buzzer_enabled"`
	CommandID     int64  `json:"command_id"`
}
