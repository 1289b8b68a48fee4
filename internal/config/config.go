package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// FirebaseCredentials is either a raw service account JSON blob or a
	// path to one. Empty means push delivery runs in dev (log-only) mode.
	FirebaseCredentials string        `mapstructure:"firebase_credentials" yaml:"firebase_credentials"`
	PushSendTimeout     time.Duration `mapstructure:"push_send_timeout" yaml:"push_send_timeout"`

	// NotifySender keeps the sender's own devices in the fan-out set.
	// The reference behavior is to notify everyone, sender included.
	NotifySender bool `mapstructure:"notify_sender" yaml:"notify_sender"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":5001",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "chat_app.db",
		LogLevel:          "info",
		JWTIssuer:         "pushchat",
		JWTAudience:       "pushchat-clients",
		PushSendTimeout:   10 * time.Second,
		NotifySender:      true,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.FirebaseCredentials != "" {
		c.FirebaseCredentials = other.FirebaseCredentials
	}
	if other.PushSendTimeout != 0 {
		c.PushSendTimeout = other.PushSendTimeout
	}
}
