package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	DatabaseURL string          `mapstructure:"database_url"`
	ServerPort  string          `mapstructure:"server_port"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Dispatch    DispatchConfig  `mapstructure:"dispatch"`
	Channels    ChannelsConfig  `mapstructure:"channels"`
	Directory   DirectoryConfig `mapstructure:"directory"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DispatchConfig struct {
	// Interval between automatic reminder ticks; zero disables the trigger.
	Interval        time.Duration `mapstructure:"interval"`
	Workers         int           `mapstructure:"workers"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	RatePerSec      int           `mapstructure:"rate_per_sec"`
}

type ChannelsConfig struct {
	Email EmailConfig `mapstructure:"email"`
	SMS   SMSConfig   `mapstructure:"sms"`
}

type EmailConfig struct {
	From     string `mapstructure:"from"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SMSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sender  string `mapstructure:"sender"`
}

type DirectoryConfig struct {
	Teams []TeamSeed `mapstructure:"teams"`
	Users []UserSeed `mapstructure:"users"`
}

type TeamSeed struct {
	ID   int64  `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type UserSeed struct {
	ID     int64  `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	TeamID int64  `mapstructure:"team_id"`
	Email  string `mapstructure:"email"`
	Phone  string `mapstructure:"phone"`
}

// Load reads the configuration from a YAML file and returns a Config
// instance. A missing file is fine: every key has a default, so the server
// runs out of the box on the in-memory driver with the demo directory.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file: %v", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.Storage.Driver == "" {
		config.Storage.Driver = DriverMemory
	}
	if config.Dispatch.Workers <= 0 {
		config.Dispatch.Workers = 8
	}
	if config.Dispatch.DeliveryTimeout <= 0 {
		config.Dispatch.DeliveryTimeout = 5 * time.Second
	}
	if config.Dispatch.RatePerSec <= 0 {
		config.Dispatch.RatePerSec = 50
	}
	if config.Channels.Email.SMTPPort == 0 {
		config.Channels.Email.SMTPPort = 587
	}
	if len(config.Directory.Teams) == 0 && len(config.Directory.Users) == 0 {
		config.Directory = defaultDirectory()
	}

	return &config
}

// defaultDirectory is the demo org used when no directory is configured.
func defaultDirectory() DirectoryConfig {
	return DirectoryConfig{
		Teams: []TeamSeed{
			{ID: 1, Name: "Engineering"},
			{ID: 2, Name: "Marketing"},
		},
		Users: []UserSeed{
			{ID: 1, Name: "Alice", TeamID: 1},
			{ID: 2, Name: "Bob", TeamID: 1},
			{ID: 3, Name: "Charlie", TeamID: 2},
		},
	}
}
