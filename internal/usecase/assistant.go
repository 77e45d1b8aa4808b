package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pill-dispenser/internal/alexa"
	"pill-dispenser/internal/domain"
	"pill-dispenser/internal/timeparse"
)

const defaultDeviceLabel = "pill dispenser"

type UserDirectory interface {
	GetUserDevice(ctx context.Context, userID string) (domain.UserDevice, bool, error)
}

type AssistantStore interface {
	PutScheduleAssignment(ctx context.Context, a domain.ScheduleAssignment) error
	PutDispenseEvent(ctx context.Context, e domain.DispenseEvent) error
	ScheduleAssignments(ctx context.Context, f domain.ScheduleFilter) ([]domain.ScheduleAssignment, error)
	DispenseEvents(ctx context.Context, userID string, eventType domain.EventType) ([]domain.DispenseEvent, error)
}

type DeviceChannel interface {
	PublishDispense(ctx context.Context, thingName string, cmd domain.DispenseCommand) error
	UpdateDesiredSchedule(ctx context.Context, thingName string, desired domain.DesiredSchedule) error
}

// Assistant answers voice-assistant turns. It holds no conversation state:
// everything a later turn needs travels in the returned session.
type Assistant struct {
	users  UserDirectory
	events AssistantStore
	device DeviceChannel
	loc    *time.Location
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*options)

type options struct {
	now func() time.Time
	log *slog.Logger
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o
}

// NewAssistant wires the dispatcher. loc is the zone spoken times are in.
func NewAssistant(users UserDirectory, events AssistantStore, device DeviceChannel, loc *time.Location, opts ...Option) (*Assistant, error) {
	if users == nil {
		return nil, errors.New("usecase: user directory must not be nil")
	}
	if events == nil {
		return nil, errors.New("usecase: event store must not be nil")
	}
	if device == nil {
		return nil, errors.New("usecase: device channel must not be nil")
	}
	if loc == nil {
		return nil, errors.New("usecase: location must not be nil")
	}
	o := buildOptions(opts)
	return &Assistant{users: users, events: events, device: device, loc: loc, now: o.now, log: o.log}, nil
}

// turn is what every intent handler gets to work with.
type turn struct {
	userID  string
	device  domain.UserDevice
	session alexa.Session
}

// Handle answers one turn. Failures become speech; it never returns an error.
func (a *Assistant) Handle(ctx context.Context, req alexa.Request) alexa.Response {
	userID := req.Session.User.UserID
	session := alexa.SessionFrom(req.Session.Attributes)
	intent := ParseIntent(req.Request)
	log := a.log.With("user_id", userID, "intent", intent.Name())

	device, found, err := a.users.GetUserDevice(ctx, userID)
	if err != nil {
		return a.errorResponse(log, newError(ErrorDownstreamFailure, "user_lookup_failed", err), alexa.Session{})
	}
	if !found {
		return a.errorResponse(log, newError(ErrorUnbound, "no_device_binding", nil), alexa.Session{})
	}

	log.Info("dispatching turn", "thing_name", device.ThingName)
	t := turn{userID: userID, device: device, session: session}

	resp, err := a.dispatch(ctx, t, intent)
	if err != nil {
		keep := alexa.Session{}
		if _, ok := intent.(ContinueScheduleIntent); ok {
			keep = session
		}
		return a.errorResponse(log, err, keep)
	}
	return resp
}

func (a *Assistant) dispatch(ctx context.Context, t turn, intent Intent) (alexa.Response, error) {
	switch in := intent.(type) {
	case LaunchIntent:
		label := t.device.Description
		if label == "" {
			label = defaultDeviceLabel
		}
		return say(fmt.Sprintf("Welcome to %s. You can schedule pills, dispense one now, or ask for your next or last pill.", label)), nil
	case StartScheduleIntent:
		return a.startSchedule(in)
	case ContinueScheduleIntent:
		return a.continueSchedule(ctx, t, in)
	case DispenseNowIntent:
		return a.dispenseNow(ctx, t, in)
	case QueryNextIntent:
		return a.queryNext(ctx, t)
	case QueryLastIntent:
		return a.queryLast(ctx, t)
	case HelpIntent:
		return say("You can schedule pills, dispense them, or ask about next or last pill."), nil
	case StopIntent:
		return alexa.Say("Goodbye!", alexa.Session{}, true), nil
	case FallbackIntent:
		return say("I didn't understand that. You can schedule pills, dispense, or ask about next or last pill."), nil
	case SessionEndedIntent:
		return alexa.End(), nil
	default:
		return say("I didn't understand that. What would you like to do?"), nil
	}
}

func (a *Assistant) startSchedule(in StartScheduleIntent) (alexa.Response, error) {
	if in.PillName == "" {
		return alexa.Response{}, newError(ErrorMissingSlot, "pill_name_missing", nil).
			saying("I didn't catch the pill name. Please try again.")
	}
	next := alexa.Session{}.WithPillName(in.PillName)
	return alexa.Say(
		fmt.Sprintf("You said %s. What color is the pill and what time should I schedule it?", in.PillName),
		next, false,
	), nil
}

// continueSchedule completes a schedule begun by startSchedule. The shadow
// push must succeed before anything is written to the store.
func (a *Assistant) continueSchedule(ctx context.Context, t turn, in ContinueScheduleIntent) (alexa.Response, error) {
	pill := t.session.PillName
	if pill == "" {
		return alexa.Response{}, newError(ErrorLostContext, "session_missing_pill_name", nil)
	}
	if in.Color == "" {
		return alexa.Response{}, newError(ErrorMissingSlot, "color_missing", nil).saying("What color is the pill?")
	}
	if in.Time == "" {
		return alexa.Response{}, newError(ErrorMissingSlot, "time_missing", nil).saying("At what time should I schedule it?")
	}

	color, ok := domain.ParseColor(in.Color)
	if !ok {
		names := make([]string, 0, len(domain.Colors()))
		for _, c := range domain.Colors() {
			names = append(names, string(c))
		}
		return alexa.Response{}, newError(ErrorInvalidEnumValue, "invalid_color", nil).
			saying("%s is not valid. Valid colors: %s.", color, strings.Join(names, ", "))
	}

	at, err := timeparse.Parse(in.Time)
	if err != nil {
		return alexa.Response{}, newError(ErrorUnrecognizedTime, "time_parse_failed", err)
	}

	now := a.now()
	commandID := now.UnixMilli()
	desired := domain.DesiredSchedule{
		PillName:      pill,
		Color:         color,
		PillHour:      at.Hour,
		PillMinute:    at.Minute,
		BuzzerEnabled: true,
		CommandID:     commandID,
	}
	if err := a.device.UpdateDesiredSchedule(ctx, t.device.ThingName, desired); err != nil {
		return alexa.Response{}, newError(ErrorDownstreamFailure, "shadow_update_failed", err).
			saying("Failed to persist configuration to the device. Try again later.")
	}

	err = a.events.PutScheduleAssignment(ctx, domain.ScheduleAssignment{
		CommandID:     commandID,
		Timestamp:     now.Unix(),
		ThingName:     t.device.ThingName,
		PillName:      pill,
		Time:          at,
		Color:         color,
		BuzzerEnabled: true,
		UserID:        t.userID,
	})
	if err != nil {
		return alexa.Response{}, newError(ErrorDownstreamFailure, "schedule_write_failed", err)
	}

	return say(fmt.Sprintf("Scheduled %s %s at %s. What else can I help you with?", color.Spoken(), pill, at.Format12h())), nil
}

func (a *Assistant) dispenseNow(ctx context.Context, t turn, in DispenseNowIntent) (alexa.Response, error) {
	if in.PillName == "" {
		return alexa.Response{}, newError(ErrorMissingSlot, "pill_name_missing", nil).
			saying("I didn't catch the pill name. Which pill should I dispense?")
	}
	color, err := a.ResolveColor(ctx, t.userID, in.PillName)
	if err != nil {
		return alexa.Response{}, err
	}

	now := a.now()
	commandID := now.UnixMilli()
	cmd := domain.DispenseCommand{Action: "dispense", PillName: in.PillName, Color: color, CommandID: commandID}
	// The command goes out before the request is recorded. A failed write
	// still reports failure even though the device may already be dispensing;
	// the completion it reports later is correlated by color.
	if err := a.device.PublishDispense(ctx, t.device.ThingName, cmd); err != nil {
		return alexa.Response{}, newError(ErrorDownstreamFailure, "dispense_publish_failed", err).
			saying("There was an error requesting the dispense. Try again later.")
	}

	err = a.events.PutDispenseEvent(ctx, domain.DispenseEvent{
		CommandID: commandID,
		Timestamp: now.Unix(),
		ThingName: t.device.ThingName,
		PillName:  in.PillName,
		Color:     color,
		UserID:    t.userID,
		Type:      domain.EventDispenseRequest,
	})
	if err != nil {
		return alexa.Response{}, newError(ErrorDownstreamFailure, "dispense_request_write_failed", err).
			saying("There was an error requesting the dispense. Try again later.")
	}

	return say(fmt.Sprintf("Dispensing %s %s now. What else can I help you with?", color.Spoken(), in.PillName)), nil
}

func (a *Assistant) queryNext(ctx context.Context, t turn) (alexa.Response, error) {
	next, found, err := a.NextPill(ctx, t.userID, a.now())
	if err != nil {
		return alexa.Response{}, newError(ErrorDownstreamFailure, "schedule_scan_failed", err).
			saying("There was an error fetching your next pill.")
	}
	if !found {
		return alexa.Response{}, newError(ErrorNotFound, "no_schedules", nil).
			saying("No pills scheduled. Would you like to schedule one?")
	}
	return say(fmt.Sprintf("Your next scheduled pill is %s %s at %s.", next.Color.Spoken(), next.PillName, next.Time.Format12h())), nil
}

// queryLast prefers device-confirmed completions and falls back to requests.
func (a *Assistant) queryLast(ctx context.Context, t turn) (alexa.Response, error) {
	fail := func(err error) *Error {
		return newError(ErrorDownstreamFailure, "dispense_scan_failed", err).
			saying("There was an error fetching the last dispensed pill.")
	}

	items, err := a.events.DispenseEvents(ctx, t.userID, domain.EventDispenseCompleted)
	if err != nil {
		return alexa.Response{}, fail(err)
	}
	if len(items) == 0 {
		items, err = a.events.DispenseEvents(ctx, t.userID, domain.EventDispenseRequest)
		if err != nil {
			return alexa.Response{}, fail(err)
		}
	}

	last, ok := latestDispense(items)
	if !ok {
		return alexa.Response{}, newError(ErrorNotFound, "nothing_dispensed", nil).
			saying("No pills have been dispensed yet.")
	}
	at := domain.TimeOfDayAt(time.Unix(last.Timestamp, 0).In(a.loc))
	return say(fmt.Sprintf("The last dispensed pill was %s %s at %s.", last.Color.Spoken(), last.PillName, at.Format12h())), nil
}

// errorResponse turns a failed turn into speech. keep is carried forward
// only for failures the user can fix by answering again.
func (a *Assistant) errorResponse(log *slog.Logger, err error, keep alexa.Session) alexa.Response {
	var ue *Error
	if !errors.As(err, &ue) {
		log.Error("turn failed", "err", err)
		return say(defaultSpeech[ErrorDownstreamFailure])
	}

	switch ue.Code {
	case ErrorDownstreamFailure:
		log.Error("turn failed", "code", ue.Code, "reason", ue.Reason, "err", ue.Err)
	default:
		log.Info("turn rejected", "code", ue.Code, "reason", ue.Reason)
	}

	switch ue.Code {
	case ErrorMissingSlot, ErrorInvalidEnumValue, ErrorUnrecognizedTime:
		return alexa.Say(ue.speech(), keep, false)
	case ErrorUnbound:
		return alexa.Say(ue.speech(), alexa.Session{}, true)
	default:
		return say(ue.speech())
	}
}

// say replies without session state and keeps the conversation open.
func say(text string) alexa.Response {
	return alexa.Say(text, alexa.Session{}, false)
}
