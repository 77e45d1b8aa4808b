package usecase

import "pill-dispenser/internal/alexa"

// Intent wire names and slots.
const (
	intentStartSchedule    = "SetPillScheduleIntent"
	intentContinueSchedule = "SetPillTimeIntent"
	intentDispenseNow      = "DispensePillIntent"
	intentQueryNext        = "GetCurrentPillIntent"
	intentQueryLast        = "GetLastDispensedPillIntent"
	intentHelp             = "AMAZON.HelpIntent"
	intentStop             = "AMAZON.StopIntent"
	intentCancel           = "AMAZON.CancelIntent"
	intentNavigateHome     = "AMAZON.NavigateHomeIntent"
	intentFallback         = "AMAZON.FallbackIntent"

	slotPillName = "PillName"
	slotColor    = "Color"
	slotTime     = "Time"
)

// Intent is one decoded conversational turn. The set of implementations is closed.
type Intent interface {
	Name() string
	isIntent()
}

type (
	LaunchIntent       struct{}
	SessionEndedIntent struct{}
	HelpIntent         struct{}
	StopIntent         struct{}
	FallbackIntent     struct{}
	QueryNextIntent    struct{}
	QueryLastIntent    struct{}

	StartScheduleIntent struct {
		PillName string
	}
	ContinueScheduleIntent struct {
		Color string
		Time  string
	}
	DispenseNowIntent struct {
		PillName string
	}
	UnknownIntent struct {
		RequestType string
		IntentName  string
	}
)

func (LaunchIntent) Name() string           { return "Launch" }
func (SessionEndedIntent) Name() string     { return "SessionEnded" }
func (HelpIntent) Name() string             { return "Help" }
func (StopIntent) Name() string             { return "Stop" }
func (FallbackIntent) Name() string         { return "Fallback" }
func (QueryNextIntent) Name() string        { return "QueryNext" }
func (QueryLastIntent) Name() string        { return "QueryLast" }
func (StartScheduleIntent) Name() string    { return "StartSchedule" }
func (ContinueScheduleIntent) Name() string { return "ContinueSchedule" }
func (DispenseNowIntent) Name() string      { return "DispenseNow" }
func (UnknownIntent) Name() string          { return "Unknown" }

func (LaunchIntent) isIntent()           {}
func (SessionEndedIntent) isIntent()     {}
func (HelpIntent) isIntent()             {}
func (StopIntent) isIntent()             {}
func (FallbackIntent) isIntent()         {}
func (QueryNextIntent) isIntent()        {}
func (QueryLastIntent) isIntent()        {}
func (StartScheduleIntent) isIntent()    {}
func (ContinueScheduleIntent) isIntent() {}
func (DispenseNowIntent) isIntent()      {}
func (UnknownIntent) isIntent()          {}

// ParseIntent decodes the request body into an Intent, reading only the
// slots that intent needs.
func ParseIntent(body alexa.RequestBody) Intent {
	switch body.Type {
	case alexa.TypeLaunch:
		return LaunchIntent{}
	case alexa.TypeSessionEnded:
		return SessionEndedIntent{}
	case alexa.TypeIntent:
	default:
		return UnknownIntent{RequestType: body.Type}
	}

	in := body.Intent
	if in == nil {
		return UnknownIntent{RequestType: body.Type}
	}
	switch in.Name {
	case intentStartSchedule:
		return StartScheduleIntent{PillName: in.SlotValue(slotPillName)}
	case intentContinueSchedule:
		return ContinueScheduleIntent{Color: in.SlotValue(slotColor), Time: in.SlotValue(slotTime)}
	case intentDispenseNow:
		return DispenseNowIntent{PillName: in.SlotValue(slotPillName)}
	case intentQueryNext:
		return QueryNextIntent{}
	case intentQueryLast:
		return QueryLastIntent{}
	case intentHelp:
		return HelpIntent{}
	case intentStop, intentCancel, intentNavigateHome:
		return StopIntent{}
	case intentFallback:
		return FallbackIntent{}
	default:
		return UnknownIntent{RequestType: body.Type, IntentName: in.Name}
	}
}
