// Package config reads the environment shared by every function of the
// dispenser backend.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	UserTable   string `env:"USER_TABLE"   env-default:"UserThings"`
	EventsTable string `env:"EVENTS_TABLE" env-default:"ColorControllerEvents"`
	DDBRegion   string `env:"DDB_REGION"   env-default:"us-east-1"`

	IoTRegion        string `env:"IOT_REGION"         env-default:"us-east-2"`
	IoTEndpointParam string `env:"IOT_ENDPOINT_PARAM"`

	ArchiveBucket   string `env:"ARCHIVE_BUCKET"`
	ArchiveRegion   string `env:"ARCHIVE_REGION"   env-default:"us-east-2"`
	ArchiveCategory string `env:"ARCHIVE_CATEGORY"`

	MainFunctionName   string `env:"MAIN_FUNCTION_NAME"   env-default:"esp32ColorLambda"`
	MainFunctionRegion string `env:"MAIN_FUNCTION_REGION" env-default:"us-east-1"`

	UTCOffsetHours int    `env:"UTC_OFFSET_HOURS" env-default:"-4"`
	LogLevel       string `env:"LOG_LEVEL"        env-default:"info"`
}

// Load reads a .env file when one exists, then the environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if cfg.UTCOffsetHours < -12 || cfg.UTCOffsetHours > 14 {
		return nil, fmt.Errorf("config: UTC_OFFSET_HOURS %d out of range", cfg.UTCOffsetHours)
	}
	return &cfg, nil
}

// Location is the fixed zone spoken times are interpreted in.
func (c *Config) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.UTCOffsetHours), c.UTCOffsetHours*3600)
}

func (c *Config) ValidateAssistant() error {
	var missing []string
	if strings.TrimSpace(c.UserTable) == "" {
		missing = append(missing, "USER_TABLE")
	}
	if strings.TrimSpace(c.EventsTable) == "" {
		missing = append(missing, "EVENTS_TABLE")
	}
	return missingErr(missing)
}

func (c *Config) ValidateProxy() error {
	var missing []string
	if strings.TrimSpace(c.ArchiveBucket) == "" {
		missing = append(missing, "ARCHIVE_BUCKET")
	}
	if strings.TrimSpace(c.MainFunctionName) == "" {
		missing = append(missing, "MAIN_FUNCTION_NAME")
	}
	return missingErr(missing)
}

func (c *Config) ValidateArchiver() error {
	var missing []string
	if strings.TrimSpace(c.ArchiveBucket) == "" {
		missing = append(missing, "ARCHIVE_BUCKET")
	}
	if strings.TrimSpace(c.ArchiveCategory) == "" {
		missing = append(missing, "ARCHIVE_CATEGORY")
	}
	return missingErr(missing)
}

func missingErr(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("config: required variables not set: %s", strings.Join(missing, ", "))
}

// Logger builds the JSON logger every function writes to stdout.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
