package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"bluecherry-cli/internal/logger"
	"bluecherry-cli/internal/push"
	"bluecherry-cli/internal/store"
)

const (
	EnvPrefix = "BLUECHERRY"
	fileName  = ".bluecherry-cli"

	TransportMQTT = "mqtt"
	TransportNATS = "nats"
)

// ClientSettings apply to every API client.
type ClientSettings struct {
	InsecureTLS bool          `mapstructure:"insecure_tls"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PushSettings select the push transport and the token registered with
// every server.
type PushSettings struct {
	Transport   string          `mapstructure:"transport"`
	MQTT        push.MQTTConfig `mapstructure:"mqtt"`
	NATS        push.NATSConfig `mapstructure:"nats"`
	Token       string          `mapstructure:"token"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
}

// ExporterSettings configure the metrics endpoint.
type ExporterSettings struct {
	Port string `mapstructure:"port"`
}

type Config struct {
	Log      logger.Config    `mapstructure:"log"`
	Store    store.Config     `mapstructure:"store"`
	Client   ClientSettings   `mapstructure:"client"`
	Push     PushSettings     `mapstructure:"push"`
	Exporter ExporterSettings `mapstructure:"exporter"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.output", "stderr")

	v.SetDefault("store.backend", store.BackendBolt)
	v.SetDefault("store.path", filepath.Join(home, fileName, "accounts.db"))
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_prefix", "bluecherry:")

	v.SetDefault("client.insecure_tls", false)
	v.SetDefault("client.timeout", 30*time.Second)

	v.SetDefault("push.transport", TransportMQTT)
	v.SetDefault("push.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("push.mqtt.topic", "bluecherry/notifications")
	v.SetDefault("push.mqtt.username", "")
	v.SetDefault("push.mqtt.password", "")
	v.SetDefault("push.mqtt.client_id", "")
	v.SetDefault("push.nats.url", "nats://localhost:4222")
	v.SetDefault("push.nats.subject", "bluecherry.notifications")
	v.SetDefault("push.token", "")
	v.SetDefault("push.dedup_window", 10*time.Second)

	v.SetDefault("exporter.port", "9100")
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	configure(viper.GetViper(), cfgFile)

	// A missing file is fine; defaults and environment still apply.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config %s: %v\n", cfgFile, err)
		}
	}
}

func configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(fileName)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the global configuration.
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	switch cfg.Push.Transport {
	case TransportMQTT, TransportNATS:
	default:
		return cfg, fmt.Errorf("unknown push transport %q", cfg.Push.Transport)
	}
	return cfg, nil
}

// WatchLogLevel re-applies log.level and log.debug whenever the config file
// changes.
func WatchLogLevel(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := v.GetString("log.level")
		if v.GetBool("log.debug") {
			level = "debug"
		}
		if err := logger.SetLevelString(level); err != nil {
			l := logger.GetLogger()
			l.Warn().Err(err).Str("file", e.Name).Msg("ignoring invalid log level")
			return
		}
		l := logger.GetLogger()
		l.Info().Str("file", e.Name).Str("level", level).Msg("config reloaded")
	})
	v.WatchConfig()
}

// SavePushToken stores the push token in the config file.
func SavePushToken(token string) error {
	viper.Set("push.token", token)

	if err := viper.WriteConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return viper.SafeWriteConfig()
		}
		home, _ := os.UserHomeDir()
		path := filepath.Join(home, fileName+".yaml")
		return viper.WriteConfigAs(path)
	}
	return nil
}
