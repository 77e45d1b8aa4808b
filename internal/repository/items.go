package repository

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"pill-dispenser/internal/domain"
)

func scheduleItem(a domain.ScheduleAssignment) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"command_id":     numberValue(a.CommandID),
		"timestamp":      numberValue(a.Timestamp),
		"thing_name":     &types.AttributeValueMemberS{Value: a.ThingName},
		"pill_name":      &types.AttributeValueMemberS{Value: a.PillName},
		"pill_hour":      numberValue(int64(a.Time.Hour)),
		"pill_minute":    numberValue(int64(a.Time.Minute)),
		"color":          &types.AttributeValueMemberS{Value: string(a.Color)},
		"buzzer_enabled": &types.AttributeValueMemberBOOL{Value: a.BuzzerEnabled},
		"user_id":        &types.AttributeValueMemberS{Value: a.UserID},
		"event_type":     &types.AttributeValueMemberS{Value: string(domain.EventScheduleUpdate)},
		"reported":       &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}},
	}
}

func dispenseItem(e domain.DispenseEvent) map[string]types.AttributeValue {
	reported := map[string]types.AttributeValue{}
	if r := e.Report; r != nil {
		reported = map[string]types.AttributeValue{
			"dispensed_color": &types.AttributeValueMemberS{Value: r.DispensedColor},
			"dispensed_angle": numberValue(int64(r.DispensedAngle)),
			"dispense_status": &types.AttributeValueMemberS{Value: r.Status},
			"last_dispense":   numberValue(r.LastDispense),
			"dominant_color":  &types.AttributeValueMemberS{Value: r.DominantColor},
			"r":               numberValue(int64(r.R)),
			"g":               numberValue(int64(r.G)),
			"b":               numberValue(int64(r.B)),
		}
	}
	return map[string]types.AttributeValue{
		"command_id": numberValue(e.CommandID),
		"timestamp":  numberValue(e.Timestamp),
		"thing_name": &types.AttributeValueMemberS{Value: e.ThingName},
		"pill_name":  &types.AttributeValueMemberS{Value: e.PillName},
		"color":      &types.AttributeValueMemberS{Value: string(e.Color)},
		"user_id":    &types.AttributeValueMemberS{Value: e.UserID},
		"event_type": &types.AttributeValueMemberS{Value: string(e.Type)},
		"reported":   &types.AttributeValueMemberM{Value: reported},
	}
}

func monitorItem(m domain.ScheduleMonitor) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"command_id":  numberValue(m.CommandID),
		"timestamp":   numberValue(m.Timestamp),
		"thing_name":  &types.AttributeValueMemberS{Value: m.ThingName},
		"pill_name":   &types.AttributeValueMemberS{Value: m.PillName},
		"pill_hour":   numberValue(int64(m.PillHour)),
		"pill_minute": numberValue(int64(m.PillMinute)),
		"user_id":     &types.AttributeValueMemberS{Value: domain.SystemUser},
		"event_type":  &types.AttributeValueMemberS{Value: string(domain.EventScheduleMonitor)},
		"reported": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"buzzer_enabled":      &types.AttributeValueMemberBOOL{Value: m.BuzzerEnabled},
			"last_dispense":       numberValue(m.LastDispense),
			"reported_command_id": numberValue(m.ReportedCommandID),
		}},
	}
}

// itemToSchedule converts a schedule_update item. Missing hour/minute read as 0
// and a missing pill name as UNKNOWN.
func itemToSchedule(item map[string]types.AttributeValue) (domain.ScheduleAssignment, error) {
	commandID, err := intAttr(item, "command_id")
	if err != nil {
		return domain.ScheduleAssignment{}, err
	}
	hour, err := optInt(item, "pill_hour", 0)
	if err != nil {
		return domain.ScheduleAssignment{}, err
	}
	minute, err := optInt(item, "pill_minute", 0)
	if err != nil {
		return domain.ScheduleAssignment{}, err
	}
	ts, err := optInt(item, "timestamp", 0)
	if err != nil {
		return domain.ScheduleAssignment{}, err
	}
	buzzer, _ := item["buzzer_enabled"].(*types.AttributeValueMemberBOOL)

	return domain.ScheduleAssignment{
		CommandID:     commandID,
		Timestamp:     ts,
		ThingName:     optStr(item, "thing_name", ""),
		PillName:      optStr(item, "pill_name", domain.UnknownPill),
		Time:          domain.TimeOfDay{Hour: int(hour), Minute: int(minute)},
		Color:         domain.Color(optStr(item, "color", domain.UnknownPill)),
		BuzzerEnabled: buzzer != nil && buzzer.Value,
		UserID:        optStr(item, "user_id", ""),
	}, nil
}

// itemToDispense converts a dispense item. The reported map is not read back.
func itemToDispense(item map[string]types.AttributeValue) (domain.DispenseEvent, error) {
	commandID, err := intAttr(item, "command_id")
	if err != nil {
		return domain.DispenseEvent{}, err
	}
	ts, err := optInt(item, "timestamp", 0)
	if err != nil {
		return domain.DispenseEvent{}, err
	}
	return domain.DispenseEvent{
		CommandID: commandID,
		Timestamp: ts,
		ThingName: optStr(item, "thing_name", ""),
		PillName:  optStr(item, "pill_name", domain.UnknownPill),
		Color:     domain.Color(optStr(item, "color", domain.UnknownPill)),
		UserID:    optStr(item, "user_id", ""),
		Type:      domain.EventType(optStr(item, "event_type", "")),
	}, nil
}

func numberValue(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func optStr(item map[string]types.AttributeValue, key, def string) string {
	s, err := strAttr(item, key)
	if err != nil {
		return def
	}
	return s
}

func intAttr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func optInt(item map[string]types.AttributeValue, key string, def int64) (int64, error) {
	if _, ok := item[key]; !ok {
		return def, nil
	}
	return intAttr(item, key)
}

// rawAttr renders an attribute for log lines without failing.
func rawAttr(item map[string]types.AttributeValue, key string) string {
	switch v := item[key].(type) {
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberS:
		return v.Value
	default:
		return ""
	}
}
