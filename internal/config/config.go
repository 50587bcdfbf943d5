package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/evlctl/internal/evl"
	"github.com/danmuck/evlctl/internal/logging"
	"github.com/danmuck/evlctl/internal/notify"
	"github.com/danmuck/evlctl/internal/tpi"
)

const (
	// EnvPassword overrides the configured panel password.
	EnvPassword = "EVLCTL_PASSWORD"
	// EnvStatusToken overrides status.token.
	EnvStatusToken = "EVLCTL_STATUS_TOKEN"
)

var ErrInvalidConfig = errors.New("config: invalid config")

// Config is the read-only snapshot handed to the rest of the process.
type Config struct {
	IP             string
	Port           int
	Password       string
	ConnectTimeout time.Duration

	Zones      map[string]string
	Partitions map[int]string
	Commands   map[tpi.Command]string
	Priorities map[tpi.Command]notify.Priority

	Logging   []logging.Destination
	Notifiers []notify.Destination
	Status    StatusConfig
}

// StatusConfig controls the HTTP status server. An empty Addr disables it.
type StatusConfig struct {
	Addr        string
	CorsOrigins []string
	Token       string
	EventBuffer int
	LastSeenTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		IP:             "127.0.0.1",
		Port:           4025,
		ConnectTimeout: 5 * time.Second,
		Zones:          map[string]string{},
		Partitions:     map[int]string{},
		Commands:       map[tpi.Command]string{},
		Priorities:     map[tpi.Command]notify.Priority{},
		Logging: []logging.Destination{
			{Type: logging.DestinationConsole, Name: "console", Level: "info"},
		},
		Notifiers: []notify.Destination{
			{Type: notify.TypeConsole, Name: "console", Enabled: true},
		},
		Status: StatusConfig{
			Addr:        "127.0.0.1:7020",
			EventBuffer: 50,
			LastSeenTTL: 10 * time.Minute,
		},
	}
}

type fileConfig struct {
	IP             string            `toml:"ip"`
	Port           int               `toml:"port"`
	Password       string            `toml:"password"`
	ConnectTimeout string            `toml:"connect_timeout"`
	Zones          map[string]string `toml:"zones"`
	Partitions     map[string]string `toml:"partitions"`
	Commands       map[string]string `toml:"commands"`
	Priorities     map[string]string `toml:"priorities"`
	Logging        []fileLogging     `toml:"logging"`
	Notifiers      []fileNotifier    `toml:"notifiers"`
	Status         fileStatus        `toml:"status"`
}

type fileLogging struct {
	Type     string            `toml:"type"`
	Name     string            `toml:"name"`
	Level    string            `toml:"level,omitempty"`
	Settings map[string]string `toml:"settings,omitempty"`
}

type fileNotifier struct {
	Type     string            `toml:"type"`
	Name     string            `toml:"name"`
	Enabled  *bool             `toml:"enabled,omitempty"`
	Priority string            `toml:"priority,omitempty"`
	Settings map[string]string `toml:"settings,omitempty"`
}

type fileStatus struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins,omitempty"`
	Token       string   `toml:"token,omitempty"`
	EventBuffer int      `toml:"event_buffer,omitempty"`
	LastSeenTTL string   `toml:"last_seen_ttl,omitempty"`
}

// Load reads path over DefaultConfig, applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}

	cfg, err := fromFile(raw, meta)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromFile(raw fileConfig, meta toml.MetaData) (Config, error) {
	cfg := DefaultConfig()

	if meta.IsDefined("ip") {
		cfg.IP = strings.TrimSpace(raw.IP)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("connect_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("%w: parse connect_timeout: %w", ErrInvalidConfig, err)
		}
		cfg.ConnectTimeout = d
	}

	for zone, name := range raw.Zones {
		cfg.Zones[zone] = name
	}
	for key, name := range raw.Partitions {
		partition, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || partition < 0 || partition > 9 {
			return Config{}, fmt.Errorf("%w: partition key %q must be a digit", ErrInvalidConfig, key)
		}
		cfg.Partitions[partition] = name
	}
	for cmd, name := range raw.Commands {
		cfg.Commands[tpi.Command(cmd)] = name
	}
	for cmd, rawPriority := range raw.Priorities {
		p, err := notify.ParsePriority(rawPriority)
		if err != nil {
			return Config{}, fmt.Errorf("%w: priorities[%q]: %w", ErrInvalidConfig, cmd, err)
		}
		cfg.Priorities[tpi.Command(cmd)] = p
	}

	if meta.IsDefined("logging") {
		cfg.Logging = make([]logging.Destination, 0, len(raw.Logging))
		for _, l := range raw.Logging {
			cfg.Logging = append(cfg.Logging, logging.Destination{
				Type:     logging.DestinationType(strings.TrimSpace(l.Type)),
				Name:     strings.TrimSpace(l.Name),
				Level:    l.Level,
				Settings: l.Settings,
			})
		}
	}

	if meta.IsDefined("notifiers") {
		cfg.Notifiers = make([]notify.Destination, 0, len(raw.Notifiers))
		for i, n := range raw.Notifiers {
			dest := notify.Destination{
				Type:     notify.Type(strings.TrimSpace(n.Type)),
				Name:     strings.TrimSpace(n.Name),
				Enabled:  n.Enabled == nil || *n.Enabled,
				Settings: n.Settings,
			}
			if strings.TrimSpace(n.Priority) != "" {
				p, err := notify.ParsePriority(n.Priority)
				if err != nil {
					return Config{}, fmt.Errorf("%w: notifiers[%d]: %w", ErrInvalidConfig, i, err)
				}
				dest.Priority = &p
			}
			cfg.Notifiers = append(cfg.Notifiers, dest)
		}
	}

	if meta.IsDefined("status", "addr") {
		cfg.Status.Addr = strings.TrimSpace(raw.Status.Addr)
	}
	if meta.IsDefined("status", "cors_origins") {
		cfg.Status.CorsOrigins = raw.Status.CorsOrigins
	}
	if meta.IsDefined("status", "token") {
		cfg.Status.Token = strings.TrimSpace(raw.Status.Token)
	}
	if meta.IsDefined("status", "event_buffer") {
		cfg.Status.EventBuffer = raw.Status.EventBuffer
	}
	if meta.IsDefined("status", "last_seen_ttl") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Status.LastSeenTTL))
		if err != nil {
			return Config{}, fmt.Errorf("%w: parse status.last_seen_ttl: %w", ErrInvalidConfig, err)
		}
		cfg.Status.LastSeenTTL = d
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvPassword); ok {
		c.Password = v
	}
	if v, ok := os.LookupEnv(EnvStatusToken); ok {
		c.Status.Token = strings.TrimSpace(v)
	}
}

// Validate rejects snapshots the pipeline cannot start from.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.IP) == "" {
		return fmt.Errorf("%w: ip is required", ErrInvalidConfig)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect_timeout must be positive", ErrInvalidConfig)
	}
	for i, dest := range cfg.Logging {
		switch dest.Type {
		case logging.DestinationConsole, logging.DestinationFile:
		default:
			return fmt.Errorf("%w: logging[%d]: %w: %q", ErrInvalidConfig, i, logging.ErrInvalidLogDestination, dest.Type)
		}
		if _, err := logging.ParseLevel(dest.Level); err != nil {
			return fmt.Errorf("%w: logging[%d]: %w", ErrInvalidConfig, i, err)
		}
	}
	for i, dest := range cfg.Notifiers {
		if !dest.Type.Valid() {
			return fmt.Errorf("%w: notifiers[%d]: %w: %q", ErrInvalidConfig, i, notify.ErrInvalidNotifierType, dest.Type)
		}
	}
	if cfg.Status.Addr != "" && cfg.Status.EventBuffer < 1 {
		return fmt.Errorf("%w: status.event_buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// Address is the panel's host:port.
func (c Config) Address() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

func (c Config) ConnectionConfig() evl.ConnectionConfig {
	return evl.ConnectionConfig{
		Address:        c.Address(),
		ConnectTimeout: c.ConnectTimeout,
	}.WithDefaults()
}

func (c Config) Labels() notify.Labels {
	return notify.Labels{
		Commands:   c.Commands,
		Zones:      c.Zones,
		Partitions: c.Partitions,
		Priorities: c.Priorities,
	}
}
