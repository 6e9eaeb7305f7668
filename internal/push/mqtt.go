package push

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MQTTConfig holds MQTT subscription settings.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	ClientID string `mapstructure:"client_id"`
}

// MQTTSource subscribes to a topic; every message body is a payload.
type MQTTSource struct {
	cfg    MQTTConfig
	client pahomqtt.Client
	logger zerolog.Logger
}

func NewMQTTSource(cfg MQTTConfig, logger zerolog.Logger) *MQTTSource {
	if cfg.ClientID == "" {
		cfg.ClientID = "bluecherry-cli"
	}
	return &MQTTSource{cfg: cfg, logger: logger.With().Str("component", "mqtt").Logger()}
}

func (s *MQTTSource) Start(ctx context.Context, h Handler) error {
	onMessage := func(_ pahomqtt.Client, m pahomqtt.Message) {
		p, err := Decode(m.Payload())
		if err != nil {
			s.logger.Warn().Err(err).Str("topic", m.Topic()).Msg("ignoring message")
			return
		}
		h(ctx, p)
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c pahomqtt.Client) {
			// (Re)subscribe on every connect; the session is not persistent.
			tok := c.Subscribe(s.cfg.Topic, 1, onMessage)
			if !tok.WaitTimeout(10 * time.Second) {
				s.logger.Error().Str("topic", s.cfg.Topic).Msg("subscribe timeout")
				return
			}
			if err := tok.Error(); err != nil {
				s.logger.Error().Err(err).Str("topic", s.cfg.Topic).Msg("subscribe failed")
				return
			}
			s.logger.Info().Str("topic", s.cfg.Topic).Msg("MQTT subscribed")
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			s.logger.Warn().Err(err).Msg("MQTT connection lost")
		})

	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	s.client = client
	return nil
}

func (s *MQTTSource) Stop() {
	if s.client == nil {
		return
	}
	s.client.Unsubscribe(s.cfg.Topic).WaitTimeout(time.Second)
	s.client.Disconnect(1000)
	s.logger.Info().Msg("MQTT source stopped")
}
