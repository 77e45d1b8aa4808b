package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Category partitions archived telemetry.
type Category string

const (
	CategoryDeviceState       Category = "device_state"
	CategoryDispenseCompleted Category = "dispense_completed"
	CategoryScheduleMonitor   Category = "schedule_monitor"
)

// ParseCategory reports whether s names an archive category.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case CategoryDeviceState, CategoryDispenseCompleted, CategoryScheduleMonitor:
		return c, true
	default:
		return "", false
	}
}

// DetectCategory classifies a raw device event for partitioning only.
func DetectCategory(e TelemetryEvent) Category {
	if e.Truthy("dispense_status") || e.Truthy("dispensed_color") {
		return CategoryDispenseCompleted
	}
	if e["pill_hour"] != nil && e["pill_minute"] != nil {
		return CategoryScheduleMonitor
	}
	return CategoryDeviceState
}

// ObjectKey is the partitioned key for an event observed at ms (UTC).
func ObjectKey(c Category, ms int64) string {
	t := time.UnixMilli(ms).UTC()
	return fmt.Sprintf("%s/year=%d/month=%d/day=%d/%d.json", c, t.Year(), int(t.Month()), t.Day(), ms)
}

type ObjectStore interface {
	PutJSON(ctx context.Context, key string, body []byte) error
}

// Archiver writes device telemetry to the analytics bucket.
type Archiver struct {
	store ObjectStore
	now   func() time.Time
	log   *slog.Logger
}

func NewArchiver(store ObjectStore, opts ...Option) (*Archiver, error) {
	if store == nil {
		return nil, errors.New("usecase: object store must not be nil")
	}
	o := buildOptions(opts)
	return &Archiver{store: store, now: o.now, log: o.log}, nil
}

// Archive shapes e for category c and stores it. It returns the object key.
func (a *Archiver) Archive(ctx context.Context, c Category, e TelemetryEvent) (string, error) {
	ms := e.IntOr("event_timestamp", a.now().UnixMilli())
	t := time.UnixMilli(ms).UTC()
	thing := e.StringOr("thing_name", "unknown")

	var body any
	switch c {
	case CategoryDeviceState:
		reported := map[string]string{}
		if m, ok := e["reported_state"].(map[string]any); ok {
			for k, v := range m {
				reported[k] = fmt.Sprint(v)
			}
		}
		body = map[string]any{
			"thing_name":      thing,
			"event_timestamp": ms,
			"reported_state":  reported,
			"year":            t.Year(),
			"month":           int(t.Month()),
			"day":             t.Day(),
		}
	case CategoryScheduleMonitor:
		userID := e.StringOr("user_id", "default_user")
		body = map[string]any{
			"command_id":  e["last_command_id"],
			"timestamp":   ms,
			"thing_name":  thing,
			"pill_name":   e.StringOr("pill_name", "Unknown"),
			"pill_hour":   e.IntOr("pill_hour", 0),
			"pill_minute": e.IntOr("pill_minute", 0),
			"user_id":     userID,
			"event_type":  "scheduled",
			"reported": map[string]any{
				"buzzer_enabled":      e.Bool("buzzer_enabled"),
				"last_dispense":       e.IntOr("last_dispense", 0),
				"reported_command_id": e.IntOr("last_command_id", 0),
			},
			"year":  t.Year(),
			"month": int(t.Month()),
			"day":   t.Day(),
		}
	case CategoryDispenseCompleted:
		body = e
	default:
		return "", fmt.Errorf("usecase: unknown archive category %q", c)
	}

	key := ObjectKey(c, ms)
	if err := a.put(ctx, key, body); err != nil {
		return "", err
	}
	return key, nil
}

// ArchiveRaw stores e unchanged under the category DetectCategory picks,
// keyed by the time it was received.
func (a *Archiver) ArchiveRaw(ctx context.Context, e TelemetryEvent) (string, error) {
	key := ObjectKey(DetectCategory(e), a.now().UnixMilli())
	if err := a.put(ctx, key, e); err != nil {
		return "", err
	}
	return key, nil
}

func (a *Archiver) put(ctx context.Context, key string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("usecase: encode archive body: %w", err)
	}
	if err := a.store.PutJSON(ctx, key, raw); err != nil {
		return fmt.Errorf("usecase: archive: %w", err)
	}
	a.log.Info("telemetry archived", "key", key)
	return nil
}

type Forwarder interface {
	Forward(ctx context.Context, payload []byte) ([]byte, error)
}

// Proxy sits between the IoT rule and the assistant function.
type Proxy struct {
	archive *Archiver
	forward Forwarder
	now     func() time.Time
	log     *slog.Logger
}

func NewProxy(archive *Archiver, forward Forwarder, opts ...Option) (*Proxy, error) {
	if archive == nil {
		return nil, errors.New("usecase: archiver must not be nil")
	}
	if forward == nil {
		return nil, errors.New("usecase: forwarder must not be nil")
	}
	o := buildOptions(opts)
	return &Proxy{archive: archive, forward: forward, now: o.now, log: o.log}, nil
}

// Relay stamps e with the receive time, archives it and hands it to the
// assistant function. The assistant's reply is returned verbatim; an empty
// reply becomes {}.
func (p *Proxy) Relay(ctx context.Context, e TelemetryEvent) (json.RawMessage, error) {
	if e == nil {
		e = TelemetryEvent{}
	}
	e["_proxy_received_bz"] = p.now().Unix()

	if _, err := p.archive.ArchiveRaw(ctx, e); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("usecase: encode forwarded event: %w", err)
	}
	out, err := p.forward.Forward(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("usecase: forward: %w", err)
	}
	if len(out) == 0 {
		return json.RawMessage("{}"), nil
	}
	p.log.Debug("forwarded event", "response_bytes", len(out))
	return json.RawMessage(out), nil
}
