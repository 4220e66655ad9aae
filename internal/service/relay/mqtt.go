package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/emf-schedule/internal/config"
	"github.com/oshokin/emf-schedule/internal/domain/schedule"
	"github.com/oshokin/emf-schedule/internal/logger"
)

const (
	// qosAtLeastOnce is MQTT QoS 1.
	qosAtLeastOnce byte = 1

	mqttKeepAlive      = 5 * time.Second
	mqttPublishTimeout = 10 * time.Second
	mqttConnectTimeout = 10 * time.Second
	mqttDisconnectWait = 250 // milliseconds
)

// errPublishTimeout is returned when the broker does not acknowledge in time.
var errPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the subset of mqtt.Client the sinks use.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// OnlineTopic is the retained liveness topic under prefix.
func OnlineTopic(prefix string) string {
	return prefix + "/online"
}

// EventTopic is the topic events of the given size are published to.
func EventTopic(prefix, size string) string {
	return prefix + "/" + size
}

// mqttSink publishes one payload size to its topic.
type mqttSink struct {
	publisher Publisher
	topic     string
	size      string
}

// NewMQTTSinks returns the full and smol event sinks sharing one publisher.
func NewMQTTSinks(publisher Publisher, prefix string) []Sink {
	return []Sink{
		&mqttSink{publisher: publisher, topic: EventTopic(prefix, SizeFull), size: SizeFull},
		&mqttSink{publisher: publisher, topic: EventTopic(prefix, SizeSmol), size: SizeSmol},
	}
}

func (s *mqttSink) Labels() (string, string) {
	return "mqtt", s.size
}

func (s *mqttSink) Announce(ctx context.Context, e *schedule.Event) error {
	var (
		payload []byte
		err     error
	)

	if s.size == SizeFull {
		payload, err = json.Marshal(e)
	} else {
		payload, err = json.Marshal(e.Smol())
	}

	if err != nil {
		return fmt.Errorf("encode %s event: %w", s.size, err)
	}

	logger.DebugKV(ctx, "Sending MQTT message", "topic", s.topic, "bytes", len(payload))

	return wait(s.publisher.Publish(s.topic, qosAtLeastOnce, false, payload), mqttPublishTimeout)
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return errPublishTimeout
	}

	return token.Error()
}

// mqttOptions builds the client options: keep-alive, a retained "false"
// last will on the online topic, a retained "true" on every connect and
// optional credentials.
func mqttOptions(ctx context.Context, cfg config.MQTTConfig) *mqtt.ClientOptions {
	online := OnlineTopic(cfg.TopicPrefix)
	broker := "tcp://" + net.JoinHostPort(cfg.Broker, strconv.Itoa(cfg.Port))

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(cfg.ClientID).
		SetKeepAlive(mqttKeepAlive).
		SetConnectTimeout(mqttConnectTimeout).
		SetWill(online, "false", qosAtLeastOnce, true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(client mqtt.Client) {
			logger.InfoKV(ctx, "Connected to MQTT broker", "broker", broker)

			if err := wait(client.Publish(online, qosAtLeastOnce, true, "true"), mqttPublishTimeout); err != nil {
				logger.WarnKV(ctx, "Failed to send alive MQTT message", "error", err)
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.WarnKV(ctx, "MQTT connection lost", "error", err)
		})

	if cfg.Username != "" && cfg.Password != "" {
		logger.Info(ctx, "Using supplied MQTT credentials")
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	} else {
		logger.Info(ctx, "Not attempting to authenticate MQTT connection")
	}

	return opts
}

// connectMQTT starts connecting in the background. Messages published before
// the connection is up are queued by the client.
func connectMQTT(ctx context.Context, cfg config.MQTTConfig) mqtt.Client {
	client := mqtt.NewClient(mqttOptions(ctx, cfg))
	client.Connect()

	return client
}
