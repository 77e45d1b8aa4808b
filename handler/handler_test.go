package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/require"

	"pill-dispenser/internal/alexa"
	"pill-dispenser/internal/usecase"
)

type stubTurns struct {
	in  alexa.Request
	out alexa.Response
}

func (s *stubTurns) Handle(_ context.Context, req alexa.Request) alexa.Response {
	s.in = req
	return s.out
}

type stubDevices struct {
	completed []usecase.TelemetryEvent
	monitors  []usecase.TelemetryEvent
	err       error
}

func (s *stubDevices) RecordDispenseCompleted(_ context.Context, e usecase.TelemetryEvent) error {
	s.completed = append(s.completed, e)
	return s.err
}

func (s *stubDevices) RecordScheduleMonitor(_ context.Context, e usecase.TelemetryEvent) error {
	s.monitors = append(s.monitors, e)
	return s.err
}

func newTestHandler(t *testing.T) (*Handler, *stubTurns, *stubDevices) {
	t.Helper()
	turns := &stubTurns{out: alexa.Say("hi", alexa.Session{}, false)}
	devices := &stubDevices{}
	h, err := NewHandler(turns, devices)
	require.NoError(t, err)
	return h, turns, devices
}

func TestNewHandler_ValidatesDependencies(t *testing.T) {
	_, err := NewHandler(nil, &stubDevices{})
	require.Error(t, err)
	_, err = NewHandler(&stubTurns{}, nil)
	require.Error(t, err)
}

func TestHandle_VoiceTurn(t *testing.T) {
	h, turns, devices := newTestHandler(t)

	out, err := h.Handle(context.Background(), json.RawMessage(`{
		"version": "1.0",
		"session": {"new": false, "sessionId": "s-1", "attributes": {"pill_name": "Aspirin"}, "user": {"userId": "u-1"}},
		"request": {"type": "IntentRequest", "requestId": "r-1", "intent": {"name": "SetPillTimeIntent",
			"slots": {"Color": {"name": "Color", "value": "red"}, "Time": {"name": "Time", "value": "08:00"}}}}
	}`))
	require.NoError(t, err)
	require.Equal(t, turns.out, out)

	require.Equal(t, "u-1", turns.in.Session.User.UserID)
	require.Equal(t, "Aspirin", turns.in.Session.Attributes["pill_name"])
	require.Equal(t, "red", turns.in.Request.Intent.SlotValue("Color"))
	require.Empty(t, devices.completed)
}

func TestHandle_DeviceEvents(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		completed int
		monitors  int
		want      StatusResponse
	}{
		{
			name:      "dispense completion",
			body:      `{"thing_name":"esp32-kitchen","event_timestamp":1,"dispensed_color":"RED"}`,
			completed: 1,
			want:      StatusResponse{StatusCode: http.StatusOK, Body: "Dispense completion logged"},
		},
		{
			name:      "status only still counts as completion",
			body:      `{"thing_name":"esp32-kitchen","event_timestamp":1,"dispense_status":"failed","pill_hour":8,"pill_minute":0}`,
			completed: 1,
			want:      StatusResponse{StatusCode: http.StatusOK, Body: "Dispense completion logged"},
		},
		{
			name:     "schedule monitor",
			body:     `{"thing_name":"esp32-kitchen","event_timestamp":1,"pill_hour":8,"pill_minute":0}`,
			monitors: 1,
			want:     StatusResponse{StatusCode: http.StatusOK, Body: "Schedule monitor logged"},
		},
		{
			name: "generic",
			body: `{"thing_name":"esp32-kitchen","event_timestamp":1,"rssi":-60}`,
			want: StatusResponse{StatusCode: http.StatusOK, Body: "IoT event received but no specific handler matched"},
		},
		{
			name: "unknown",
			body: `{"thing_name":"esp32-kitchen"}`,
			want: StatusResponse{StatusCode: http.StatusBadRequest, Body: "Unknown event type"},
		},
		{
			name: "not an object",
			body: `"hello"`,
			want: StatusResponse{StatusCode: http.StatusBadRequest, Body: "Unknown event type"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _, devices := newTestHandler(t)
			out, err := h.Handle(context.Background(), json.RawMessage(tc.body))
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
			require.Len(t, devices.completed, tc.completed)
			require.Len(t, devices.monitors, tc.monitors)
		})
	}
}

func TestHandle_DeviceEventFailure(t *testing.T) {
	h, _, devices := newTestHandler(t)
	devices.err = errors.New("throttled")

	out, err := h.Handle(context.Background(), json.RawMessage(`{"thing_name":"t","event_timestamp":1,"pill_hour":8,"pill_minute":0}`))
	require.NoError(t, err)
	resp, ok := out.(StatusResponse)
	require.True(t, ok)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, resp.Body, "throttled")
}

func TestCorrelationID(t *testing.T) {
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-123"})
	require.Equal(t, "req-123", correlationID(ctx))
	require.NotEmpty(t, correlationID(context.Background()))
}
