package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"pill-dispenser/internal/usecase"
)

type Relayer interface {
	Relay(ctx context.Context, e usecase.TelemetryEvent) (json.RawMessage, error)
}

type proxyFailure struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

// ProxyHandler is the entry point of the telemetry proxy function.
type ProxyHandler struct {
	relay Relayer
}

func NewProxyHandler(relay Relayer) (*ProxyHandler, error) {
	if relay == nil {
		return nil, errors.New("handler: relayer must not be nil")
	}
	return &ProxyHandler{relay: relay}, nil
}

// Handle never fails the invocation; errors are reported in the payload.
func (h *ProxyHandler) Handle(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	log := slog.With("correlation_id", correlationID(ctx))

	event, err := usecase.DecodeTelemetryEvent(raw)
	if err == nil {
		var out json.RawMessage
		if out, err = h.relay.Relay(ctx, event); err == nil {
			return out, nil
		}
	}

	log.Error("proxy failed", "err", err)
	body, mErr := json.Marshal(proxyFailure{StatusCode: http.StatusInternalServerError, Error: err.Error()})
	if mErr != nil {
		return nil, fmt.Errorf("handler: encode proxy failure: %w", mErr)
	}
	return body, nil
}

type Archiver interface {
	Archive(ctx context.Context, c usecase.Category, e usecase.TelemetryEvent) (string, error)
}

// ArchiveHandler is the entry point of an archival function bound to one
// category. A failed write fails the invocation so the IoT rule can retry it.
type ArchiveHandler struct {
	archiver Archiver
	category usecase.Category
}

func NewArchiveHandler(archiver Archiver, category usecase.Category) (*ArchiveHandler, error) {
	if archiver == nil {
		return nil, errors.New("handler: archiver must not be nil")
	}
	if _, ok := usecase.ParseCategory(string(category)); !ok {
		return nil, fmt.Errorf("handler: unknown archive category %q", category)
	}
	return &ArchiveHandler{archiver: archiver, category: category}, nil
}

func (h *ArchiveHandler) Handle(ctx context.Context, raw json.RawMessage) (StatusResponse, error) {
	log := slog.With("correlation_id", correlationID(ctx), "category", h.category)

	event, err := usecase.DecodeTelemetryEvent(raw)
	if err != nil {
		log.Error("undecodable event", "err", err)
		return StatusResponse{}, err
	}
	key, err := h.archiver.Archive(ctx, h.category, event)
	if err != nil {
		log.Error("archive failed", "err", err)
		return StatusResponse{}, err
	}
	return StatusResponse{StatusCode: http.StatusOK, Body: key}, nil
}
