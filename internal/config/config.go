package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kennelworks/kennelworks/internal/types"
)

type Configuration struct {
	Deployment  DeploymentConfig  `validate:"required"`
	Server      ServerConfig      `validate:"required"`
	RecordStore RecordStoreConfig `validate:"required"`
	Scheduler   SchedulerConfig   `validate:"required"`
	Notify      NotifyConfig
	Backup      BackupConfig
	Logging     LoggingConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
	// APIKey guards mutating endpoints; empty disables auth for local use.
	APIKey string `mapstructure:"api_key"`
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// RecordStoreConfig selects and configures the remote record store
// backend. The http driver talks to a hosted record API; the sqlite
// driver keeps records in a local database file, which is also what
// integration-style runs use.
type RecordStoreConfig struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=http sqlite"`
	BaseURL  string `mapstructure:"base_url"`
	APIToken string `mapstructure:"api_token"`
	Path     string `mapstructure:"path"`
}

type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// TransitionTime is the daily anchor for the presence transition
	// run, hh:mm in local time.
	TransitionTime string `mapstructure:"transition_time" validate:"required"`
	// ReminderTime is the daily anchor for the departure reminder check.
	ReminderTime string `mapstructure:"reminder_time" validate:"required"`
	// BackupTimes are the poll-matched trigger windows for backups.
	BackupTimes []string `mapstructure:"backup_times"`
}

type NotifyConfig struct {
	// Driver is log or webhook.
	Driver     string `mapstructure:"driver"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type BackupConfig struct {
	// Directory receives local CSV snapshots.
	Directory string   `mapstructure:"directory"`
	S3        S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Load .env if present; real env vars still take precedence
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/kennelworks")

	v.SetEnvPrefix("KENNELWORKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	setDefaults(v)

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("recordstore.driver", "sqlite")
	v.SetDefault("recordstore.path", "kennelworks.db")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.transition_time", "00:00")
	v.SetDefault("scheduler.reminder_time", "17:30")
	v.SetDefault("scheduler.backup_times", []string{"11:00", "15:00", "21:00"})
	v.SetDefault("notify.driver", "log")
	v.SetDefault("backup.directory", "backups")
	v.SetDefault("logging.level", types.LogLevelInfo)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if !c.Deployment.Mode.Validate() {
		return fmt.Errorf("invalid deployment mode: %s", c.Deployment.Mode)
	}
	if !c.Logging.Level.Validate() {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.RecordStore.Driver == "http" && c.RecordStore.BaseURL == "" {
		return fmt.Errorf("recordstore.base_url is required for the http driver")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		RecordStore: RecordStoreConfig{
			Driver: "sqlite",
			Path:   "kennelworks.db",
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			TransitionTime: "00:00",
			ReminderTime:   "17:30",
			BackupTimes:    []string{"11:00", "15:00", "21:00"},
		},
		Notify:  NotifyConfig{Driver: "log"},
		Backup:  BackupConfig{Directory: "backups"},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
	}
}
