package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TelemetryEvent is a flat device message as delivered by an IoT rule.
// Field types vary by firmware version, so values are read leniently.
type TelemetryEvent map[string]any

// DecodeTelemetryEvent decodes raw JSON keeping numbers exact.
func DecodeTelemetryEvent(raw []byte) (TelemetryEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var e TelemetryEvent
	if err := dec.Decode(&e); err != nil {
		return nil, fmt.Errorf("usecase: decode telemetry event: %w", err)
	}
	if e == nil {
		e = TelemetryEvent{}
	}
	return e, nil
}

// Has reports whether key is present, even with a null value.
func (e TelemetryEvent) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// String returns a non-empty string value.
func (e TelemetryEvent) String(key string) (string, bool) {
	switch v := e[key].(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// StringOr returns the string value of key or def.
func (e TelemetryEvent) StringOr(key, def string) string {
	if s, ok := e.String(key); ok {
		return s
	}
	return def
}

// Int returns an integer value given as a JSON number or a numeric string.
func (e TelemetryEvent) Int(key string) (int64, bool) {
	switch v := e[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(math.Trunc(f)), true
		}
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// IntOr returns the integer value of key or def.
func (e TelemetryEvent) IntOr(key string, def int64) int64 {
	if n, ok := e.Int(key); ok {
		return n
	}
	return def
}

// Bool returns a boolean value.
func (e TelemetryEvent) Bool(key string) bool {
	b, _ := e[key].(bool)
	return b
}

// Truthy reports whether key holds a value other than null, false, 0 or "".
func (e TelemetryEvent) Truthy(key string) bool {
	switch v := e[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

// EpochSeconds reads a time given either as epoch seconds or as an
// ISO-8601 string. Unparseable values read as 0.
func (e TelemetryEvent) EpochSeconds(key string) int64 {
	if s, ok := e[key].(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Unix()
			}
		}
		return 0
	}
	return e.IntOr(key, 0)
}
