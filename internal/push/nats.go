package push

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSConfig holds NATS subscription settings.
type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// NATSSource subscribes to a subject; every message body is a payload.
type NATSSource struct {
	cfg    NATSConfig
	conn   *nats.Conn
	logger zerolog.Logger
}

func NewNATSSource(cfg NATSConfig, logger zerolog.Logger) *NATSSource {
	return &NATSSource{cfg: cfg, logger: logger.With().Str("component", "nats").Logger()}
}

func (s *NATSSource) Start(ctx context.Context, h Handler) error {
	nc, err := nats.Connect(s.cfg.URL,
		nats.Name("bluecherry-cli"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				s.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			s.logger.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}

	_, err = nc.Subscribe(s.cfg.Subject, func(m *nats.Msg) {
		p, err := Decode(m.Data)
		if err != nil {
			s.logger.Warn().Err(err).Str("subject", m.Subject).Msg("ignoring message")
			return
		}
		h(ctx, p)
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("nats subscribe %s: %w", s.cfg.Subject, err)
	}

	s.conn = nc
	s.logger.Info().Str("subject", s.cfg.Subject).Msg("NATS subscribed")
	return nil
}

func (s *NATSSource) Stop() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
	}
	s.logger.Info().Msg("NATS source stopped")
}
