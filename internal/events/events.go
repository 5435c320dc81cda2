// Package events publishes service lifecycle events to an MQTT broker so
// depot dashboards can follow work orders without polling.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Event types.
const (
	ServiceScheduled  = "service.scheduled"
	ServiceUpdated    = "service.updated"
	ServiceAssigned   = "service.assigned"
	ServiceStatus     = "service.status"
	ServiceCompleted  = "service.completed"
	PaymentRecorded   = "payment.recorded"
	ReadingRecorded   = "odometer.recorded"
	DefaultTopicRoot  = "fleet/maintenance"
	defaultMQTTWait   = 5 * time.Second
	defaultMQTTClient = "fleet-maintenance"
)

// Event is one lifecycle notification.
type Event struct {
	Type         string    `json:"type"`
	ServiceID    string    `json:"service_id,omitempty"`
	VehicleVIN   string    `json:"vehicle_vin,omitempty"`
	TechnicianID string    `json:"technician_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	Mileage      float64   `json:"mileage,omitempty"`
	At           time.Time `json:"at"`
}

// Publisher delivers events. Delivery is best effort; callers log failures
// and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MQTTPublisher publishes JSON events to <prefix>/<type>, QoS 1.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	wait   time.Duration
}

// MQTTOptions configures NewMQTTPublisher.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Prefix   string
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(opts MQTTOptions) (*MQTTPublisher, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt broker is required")
	}
	if opts.ClientID == "" {
		opts.ClientID = defaultMQTTClient
	}
	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultMQTTWait)
	client := mqtt.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(defaultMQTTWait) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return NewMQTTPublisherWithClient(client, opts.Prefix), nil
}

// NewMQTTPublisherWithClient wraps an already configured client.
func NewMQTTPublisherWithClient(client mqtt.Client, prefix string) *MQTTPublisher {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = DefaultTopicRoot
	}
	return &MQTTPublisher{client: client, prefix: prefix, wait: defaultMQTTWait}
}

// Topic returns the topic an event type is published on.
func (p *MQTTPublisher) Topic(eventType string) string {
	return p.prefix + "/" + eventType
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	wait := p.wait
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < wait {
			wait = d
		}
	}
	token := p.client.Publish(p.Topic(event.Type), 1, false, payload)
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("mqtt publish %s timed out", event.Type)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
