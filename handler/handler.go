package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"pill-dispenser/internal/alexa"
	"pill-dispenser/internal/usecase"
)

type TurnHandler interface {
	Handle(ctx context.Context, req alexa.Request) alexa.Response
}

type DeviceRecorder interface {
	RecordDispenseCompleted(ctx context.Context, e usecase.TelemetryEvent) error
	RecordScheduleMonitor(ctx context.Context, e usecase.TelemetryEvent) error
}

// StatusResponse is returned for everything that is not a voice turn.
type StatusResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler is the entry point of the assistant function. It receives voice
// turns directly and device events through the telemetry proxy.
type Handler struct {
	turns   TurnHandler
	devices DeviceRecorder
}

func NewHandler(turns TurnHandler, devices DeviceRecorder) (*Handler, error) {
	if turns == nil {
		return nil, errors.New("handler: turn handler must not be nil")
	}
	if devices == nil {
		return nil, errors.New("handler: device recorder must not be nil")
	}
	return &Handler{turns: turns, devices: devices}, nil
}

func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	log := slog.With("correlation_id", correlationID(ctx))

	event, err := usecase.DecodeTelemetryEvent(raw)
	if err != nil {
		log.Warn("undecodable event", "err", err)
		return StatusResponse{StatusCode: http.StatusBadRequest, Body: "Unknown event type"}, nil
	}

	switch {
	case event.Has("session") && event.Has("request"):
		var req alexa.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Warn("invalid voice request", "err", err)
			return StatusResponse{StatusCode: http.StatusBadRequest, Body: "Unknown event type"}, nil
		}
		log.Info("voice turn", "request_type", req.Request.Type, "request_id", req.Request.RequestID)
		return h.turns.Handle(ctx, req), nil

	case event.Has("thing_name") && event.Has("event_timestamp"):
		return h.deviceEvent(ctx, log, event), nil

	default:
		log.Warn("unknown event type", "keys", keys(event))
		return StatusResponse{StatusCode: http.StatusBadRequest, Body: "Unknown event type"}, nil
	}
}

func (h *Handler) deviceEvent(ctx context.Context, log *slog.Logger, e usecase.TelemetryEvent) StatusResponse {
	thing := e.StringOr("thing_name", "")
	switch {
	case e.Has("dispensed_color") || e.Has("dispense_status"):
		if err := h.devices.RecordDispenseCompleted(ctx, e); err != nil {
			log.Error("record dispense completion", "thing_name", thing, "err", err)
			return StatusResponse{StatusCode: http.StatusInternalServerError, Body: err.Error()}
		}
		return StatusResponse{StatusCode: http.StatusOK, Body: "Dispense completion logged"}

	case e.Has("pill_hour") && e.Has("pill_minute"):
		if err := h.devices.RecordScheduleMonitor(ctx, e); err != nil {
			log.Error("record schedule monitor", "thing_name", thing, "err", err)
			return StatusResponse{StatusCode: http.StatusInternalServerError, Body: err.Error()}
		}
		return StatusResponse{StatusCode: http.StatusOK, Body: "Schedule monitor logged"}

	default:
		log.Info("device event without handler", "thing_name", thing, "keys", keys(e))
		return StatusResponse{StatusCode: http.StatusOK, Body: "IoT event received but no specific handler matched"}
	}
}

func correlationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

func keys(e usecase.TelemetryEvent) []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	return out
}
