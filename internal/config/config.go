package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the alarm node and its CLI helpers.
type Config struct {
	// LogLevel is the minimum level written to the log.
	LogLevel string `yaml:"log_level" default:"info"`
	// Node configures the controller itself.
	Node Node `yaml:"node"`
	// GPIO selects the line driver and pins.
	GPIO GPIO `yaml:"gpio"`
	// Hue optionally routes the light line to a Philips Hue bulb.
	Hue Hue `yaml:"hue"`
	// MQTT configures the parameter sync layer.
	MQTT MQTT `yaml:"mqtt"`
	// GRPC configures the control API.
	GRPC GRPC `yaml:"grpc"`
	// Alert configures alert messages.
	Alert Alert `yaml:"alert"`
	// Update configures self update.
	Update Update `yaml:"update"`
}

// Node holds controller timing and persistence settings.
type Node struct {
	// Name is announced to the sync layer.
	Name string `yaml:"name" default:"Smart Home Node"`
	// TickInterval is the scheduler delay between ticks.
	TickInterval time.Duration `yaml:"tick_interval" default:"200ms"`
	// BlinkHalfPeriod is the length of each half of the alarm blink.
	BlinkHalfPeriod time.Duration `yaml:"blink_half_period" default:"150ms"`
	// StateFile stores the last commanded light and alarm values.
	StateFile string `yaml:"state_file" default:"alarm-node-state.json"`
	// RestoreState re-applies the stored values at boot.
	RestoreState bool `yaml:"restore_state"`
	// PIDFile records the running node; update --restart stops only that process.
	PIDFile string `yaml:"pid_file" default:"alarm-node.pid"`
}

// GPIO selects the line driver.
type GPIO struct {
	// Driver is "memory" or "periph".
	Driver string `yaml:"driver" default:"memory"`
	// LightPin is the pin name of the light output.
	LightPin string `yaml:"light_pin" default:"GPIO2"`
	// SensorPin is the pin name of the door sensor input.
	SensorPin string `yaml:"sensor_pin" default:"GPIO3"`
	// BuzzerPin is the pin name of the buzzer output.
	BuzzerPin string `yaml:"buzzer_pin" default:"GPIO4"`
}

// Hue routes the light to a Hue bulb when BridgeIP is set.
type Hue struct {
	BridgeIP string `yaml:"bridge_ip"`
	Username string `yaml:"username"`
	LightID  int    `yaml:"light_id" default:"1"`
}

// Enabled reports whether the Hue light is configured.
func (h Hue) Enabled() bool {
	return h.BridgeIP != ""
}

// MQTT configures the broker connection. An empty broker disables MQTT.
type MQTT struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string `yaml:"broker"`
	// ClientID identifies the node on the broker.
	ClientID string `yaml:"client_id" default:"alarm-node"`
	// TopicRoot prefixes every topic.
	TopicRoot string `yaml:"topic_root" default:"home/alarm-node"`
	// QoS is used for publishes and the write subscription.
	QoS byte `yaml:"qos" default:"1"`
	// CoalesceTTL suppresses identical republishes for this long; zero disables it.
	CoalesceTTL time.Duration `yaml:"coalesce_ttl" default:"5s"`
	// ConnectTimeout bounds the initial connect.
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
}

// Enabled reports whether an MQTT broker is configured.
func (m MQTT) Enabled() bool {
	return m.Broker != ""
}

// GRPC configures the control API.
type GRPC struct {
	// ListenAddress is where the node serves; clients dial it too.
	ListenAddress string `yaml:"listen_address" default:"127.0.0.1:50061"`
	// Timeout is the per call timeout of CLI clients.
	Timeout time.Duration `yaml:"timeout" default:"5s"`
}

// Alert configures alert messages.
type Alert struct {
	// Locale selects the alert message language.
	Locale string `yaml:"locale" default:"en"`
}

// Update configures the binary used by the update command.
type Update struct {
	// URL points to the new node binary.
	URL string `yaml:"url"`
	// Checksum is the base64 SHA-512 of the binary.
	Checksum string `yaml:"checksum"`
}

const (
	// DefaultConfigFilename is the default settings file name.
	DefaultConfigFilename = "alarm-node-settings.yaml"

	// DefaultFilePermissions is the permission used for files the node writes.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported GPIO driver.
	errUnknownDriver = errors.New("unknown gpio driver")
	// errBadTiming is returned for non-positive intervals.
	errBadTiming = errors.New("interval must be positive")
	// errBadQoS is returned for a QoS outside 0..2.
	errBadQoS = errors.New("mqtt qos must be 0, 1 or 2")
	// errHueUsername is returned when a bridge is set without a username.
	errHueUsername = errors.New("hue username must be provided")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}

	return cfg
}

// Load reads configuration from the provided path, applies defaults and validates it.
// A missing file at the default path yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings for consistency.
//
//nolint:cyclop // A flat list of independent checks.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Node.TickInterval <= 0 {
		return fmt.Errorf("node.tick_interval: %w", errBadTiming)
	}

	if cfg.Node.BlinkHalfPeriod <= 0 {
		return fmt.Errorf("node.blink_half_period: %w", errBadTiming)
	}

	switch cfg.GPIO.Driver {
	case "memory", "periph":
	default:
		return fmt.Errorf("%q: %w", cfg.GPIO.Driver, errUnknownDriver)
	}

	if cfg.Hue.Enabled() && cfg.Hue.Username == "" {
		return errHueUsername
	}

	if cfg.MQTT.Enabled() {
		if _, err := url.Parse(cfg.MQTT.Broker); err != nil {
			return fmt.Errorf("invalid mqtt broker: %w", err)
		}

		if cfg.MQTT.QoS > 2 { //nolint:mnd // MQTT defines QoS 0 to 2.
			return errBadQoS
		}
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.GRPC.ListenAddress); err != nil {
		return fmt.Errorf("invalid grpc listen address: %w", err)
	}

	if cfg.Update.URL != "" {
		if _, err := url.ParseRequestURI(cfg.Update.URL); err != nil {
			return fmt.Errorf("invalid update url: %w", err)
		}
	}

	return nil
}
