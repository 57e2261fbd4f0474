package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/aareguru-monitor/internal/settings"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Aare.guru API client.
	APIBaseURL string
	APIApp     string
	APIVersion string
	APITimeout time.Duration

	// Initial indicator settings; SETTINGS_FILE overrides them when set.
	City                  string
	UpdateIntervalMinutes int
	ShowWater             bool
	ShowFlow              bool
	ShowChannel           bool
	ShowWeather           bool
	Decoration            string
	SettingsFile          string

	// Kafka display sink.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaDisplayTopic string

	// MQTT display sink.
	MQTTEnabled  bool
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("AAREGURU_TIMEOUT", "10s"))
	if err != nil || apiTimeout <= 0 {
		return nil, errors.New("invalid AAREGURU_TIMEOUT")
	}

	interval, err := strconv.Atoi(sharedcfg.EnvOrDefault("AAREGURU_UPDATE_INTERVAL", "5"))
	if err != nil || interval < settings.MinIntervalMinutes || interval > settings.MaxIntervalMinutes {
		return nil, fmt.Errorf("invalid AAREGURU_UPDATE_INTERVAL: must be %d-%d minutes", settings.MinIntervalMinutes, settings.MaxIntervalMinutes)
	}

	decoration := strings.ToLower(sharedcfg.EnvOrDefault("DISPLAY_DECORATION", "plain"))
	if decoration != "plain" && decoration != "emoji" {
		return nil, errors.New("invalid DISPLAY_DECORATION: must be plain or emoji")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		APIBaseURL: sharedcfg.EnvOrDefault("AAREGURU_BASE_URL", "https://aareguru.existenz.ch/v2018"),
		APIApp:     sharedcfg.EnvOrDefault("AAREGURU_APP", "aareguru-monitor"),
		APIVersion: sharedcfg.EnvOrDefault("AAREGURU_VERSION", "1.0"),
		APITimeout: apiTimeout,

		City:                  strings.TrimSpace(sharedcfg.EnvOrDefault("AAREGURU_CITY", "bern")),
		UpdateIntervalMinutes: interval,
		ShowWater:             parseBool("SHOW_WATER", true),
		ShowFlow:              parseBool("SHOW_FLOW", true),
		ShowChannel:           parseBool("SHOW_CHANNEL", true),
		ShowWeather:           parseBool("SHOW_WEATHER", true),
		Decoration:            decoration,
		SettingsFile:          os.Getenv("SETTINGS_FILE"),

		KafkaEnabled:      parseBool("KAFKA_ENABLED", false),
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaDisplayTopic: sharedcfg.EnvOrDefault("KAFKA_DISPLAY_TOPIC", "aare-display-state"),

		MQTTEnabled:  parseBool("MQTT_ENABLED", false),
		MQTTBroker:   sharedcfg.EnvOrDefault("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "aareguru-monitor"),
		MQTTTopic:    sharedcfg.EnvOrDefault("MQTT_TOPIC", "aareguru/display"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaDisplayTopic == "" {
			return nil, errors.New("KAFKA_DISPLAY_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if cfg.MQTTEnabled && cfg.MQTTTopic == "" {
		return nil, errors.New("MQTT_TOPIC is required when MQTT_ENABLED is true")
	}

	return cfg, nil
}

// UpdateInterval returns the poll interval as a duration.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMinutes) * time.Minute
}

// parseBool reads a boolean env var; unset or unparsable values give def.
func parseBool(key string, def bool) bool {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			return v
		}
	}
	return def
}
