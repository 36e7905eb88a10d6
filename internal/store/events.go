package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	commonredis "github.com/synca-ui/builder-quantum-landing-sub001/common/redis"
)

// Route event actions.
const (
	RouteActivated   = "activated"
	RouteDeactivated = "deactivated"
)

// RouteEvent announces a change in the route table to edge listeners.
type RouteEvent struct {
	Action          string    `json:"action"`
	Kind            string    `json:"kind"` // slug | domain
	Host            string    `json:"host"`
	ConfigurationID string    `json:"configurationId,omitempty"`
	At              time.Time `json:"at"`
}

// RouteEvents receives route table changes.
type RouteEvents interface {
	PublishRoute(ctx context.Context, ev RouteEvent) error
}

// StreamRouteEvents appends route events to a Redis stream.
type StreamRouteEvents struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewStreamRouteEvents(client *redis.Client, stream string, maxLen int64) *StreamRouteEvents {
	return &StreamRouteEvents{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamRouteEvents) PublishRoute(ctx context.Context, ev RouteEvent) error {
	if _, err := commonredis.PublishJSONToStream(ctx, s.client, s.stream, s.maxLen, ev); err != nil {
		return fmt.Errorf("failed to publish route event to stream %s: %w", s.stream, err)
	}
	return nil
}

// MQTTRouteEvents broadcasts route events on an MQTT topic; Host is appended
// to the topic so listeners can subscribe per site.
type MQTTRouteEvents struct {
	client MQTTPublisher
	topic  string
	qos    byte
}

// MQTTPublisher is satisfied by common/mqtt.Client.
type MQTTPublisher interface {
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
}

func NewMQTTRouteEvents(client MQTTPublisher, topic string, qos byte) *MQTTRouteEvents {
	return &MQTTRouteEvents{client: client, topic: topic, qos: qos}
}

func (m *MQTTRouteEvents) PublishRoute(ctx context.Context, ev RouteEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return m.client.Publish(ctx, m.topic+"/"+ev.Host, m.qos, false, payload)
}

// FanoutRouteEvents delivers to every sink; failures are logged, never
// returned, because route activation already happened.
type FanoutRouteEvents struct {
	sinks  []RouteEvents
	logger *zap.Logger
}

func NewFanoutRouteEvents(logger *zap.Logger, sinks ...RouteEvents) *FanoutRouteEvents {
	return &FanoutRouteEvents{sinks: sinks, logger: logger}
}

func (f *FanoutRouteEvents) PublishRoute(ctx context.Context, ev RouteEvent) error {
	for _, s := range f.sinks {
		if err := s.PublishRoute(ctx, ev); err != nil {
			f.logger.Warn("failed to publish route event",
				zap.String("host", ev.Host),
				zap.String("action", ev.Action),
				zap.Error(err),
			)
		}
	}
	return nil
}
