package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"

	"pill-dispenser/internal/domain"
)

// qosAtLeastOnce is MQTT QoS 1.
const qosAtLeastOnce int32 = 1

// iotAPI is the minimal IoT data-plane interface required by Client.
type iotAPI interface {
	Publish(ctx context.Context, in *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
	UpdateThingShadow(ctx context.Context, in *iotdataplane.UpdateThingShadowInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.UpdateThingShadowOutput, error)
}

// Client talks to dispensers through the IoT data plane. Both calls return
// once the broker accepts the message; the device applies it later.
type Client struct {
	api iotAPI
}

// New creates a Client.
func New(api iotAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("iot: api must not be nil")
	}
	return &Client{api: api}, nil
}

// WithEndpoint points the data-plane client at an account-specific endpoint.
func WithEndpoint(url string) func(*iotdataplane.Options) {
	return func(o *iotdataplane.Options) {
		if url = strings.TrimSpace(url); url != "" {
			o.BaseEndpoint = aws.String(url)
		}
	}
}

// CommandTopic is the MQTT topic a dispenser listens on for immediate commands.
func CommandTopic(thingName string) string {
	return "esp32/commands/" + thingName
}

type shadowDocument struct {
	State shadowState `json:"state"`
}

type shadowState struct {
	Desired domain.DesiredSchedule `json:"desired"`
}

// PublishDispense sends an immediate dispense command with at-least-once delivery.
func (c *Client) PublishDispense(ctx context.Context, thingName string, cmd domain.DispenseCommand) error {
	if strings.TrimSpace(thingName) == "" {
		return errors.New("iot: PublishDispense: thing name is required")
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("iot: PublishDispense marshal: %w", err)
	}
	_, err = c.api.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(CommandTopic(thingName)),
		Qos:     qosAtLeastOnce,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("iot: PublishDispense: %w", err)
	}
	return nil
}

// UpdateDesiredSchedule writes the schedule into the device shadow's desired state.
func (c *Client) UpdateDesiredSchedule(ctx context.Context, thingName string, desired domain.DesiredSchedule) error {
	if strings.TrimSpace(thingName) == "" {
		return errors.New("iot: UpdateDesiredSchedule: thing name is required")
	}
	payload, err := json.Marshal(shadowDocument{State: shadowState{Desired: desired}})
	if err != nil {
		return fmt.Errorf("iot: UpdateDesiredSchedule marshal: %w", err)
	}
	_, err = c.api.UpdateThingShadow(ctx, &iotdataplane.UpdateThingShadowInput{
		ThingName: aws.String(thingName),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("iot: UpdateDesiredSchedule: %w", err)
	}
	return nil
}
