// Package mqtt publishes display states as retained MQTT messages.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/aareguru-monitor/internal/config"
	"github.com/couchcryptid/aareguru-monitor/internal/domain"
)

const publishTimeout = 5 * time.Second

// ErrNotConnected is returned by Render while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher implements render.Renderer on top of a paho client. The latest
// state is retained, so new subscribers see it immediately.
type Publisher struct {
	client    mqtt.Client
	topic     string
	broker    string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// message is the JSON document published for each state.
type message struct {
	LocationID string              `json:"location_id"`
	RenderedAt time.Time           `json:"rendered_at"`
	Error      bool                `json:"error"`
	Fields     domain.DisplayState `json:"fields"`
}

// NewPublisher configures a client for cfg.MQTTBroker. It does not connect.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	p := &Publisher{
		topic:  cfg.MQTTTopic,
		broker: cfg.MQTTBroker,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect waits for the initial connection, honouring ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errors.New("publisher stopped")
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errors.New("publisher stopped")
		default:
		}
	}
}

// Render publishes state as a retained message on the configured topic.
func (p *Publisher) Render(_ context.Context, locationID string, state domain.DisplayState) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	data, err := buildPayload(locationID, state, domain.Now())
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 1, true, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish display state: %w", err)
	}

	p.logger.Debug("published display state", "topic", p.topic)
	return nil
}

// IsConnected reports whether the client currently holds a broker session.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect stops the client. Safe to call more than once.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.client.IsConnectionOpen() {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	p.logger.Info("mqtt disconnected", "broker", p.broker)
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

func buildPayload(locationID string, state domain.DisplayState, renderedAt time.Time) ([]byte, error) {
	data, err := json.Marshal(message{
		LocationID: locationID,
		RenderedAt: renderedAt,
		Error:      state.IsError(),
		Fields:     state,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal display state: %w", err)
	}
	return data, nil
}
