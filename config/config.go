// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	disableEvents  = pflag.Bool("disable-events", false, "Don't start the SQS finalize-event consumer")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
)

// EventsDisabled reports whether the finalize-event consumer was turned
// off on the command line.
func EventsDisabled() bool {
	return *disableEvents
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")
	v.BindEnv("upload.credential_ttl", "upload_credential_ttl")
	v.BindEnv("upload.retention_days", "upload_retention_days")

	v.BindEnv("download.credential_ttl", "download_credential_ttl")

	v.BindEnv("notify.max_attempts", "notify_max_attempts")
	v.BindEnv("notify.from", "notify_from")
	v.BindEnv("notify.smtp_host", "notify_smtp_host")
	v.BindEnv("notify.smtp_port", "notify_smtp_port")
	v.BindEnv("notify.smtp_password", "notify_smtp_password")

	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.table", "aws_table")
	v.BindEnv("aws.events_queue_url", "aws_events_queue_url")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("upload.max_size", 5120)
	v.SetDefault("upload.allowed_types", []string{"video/mp4", "video/webm", "video/quicktime"})
	v.SetDefault("upload.credential_ttl", "15m")
	v.SetDefault("upload.retention_days", 7)

	v.SetDefault("download.credential_ttl", "24h")

	v.SetDefault("notify.max_attempts", 3)
	v.SetDefault("notify.smtp_port", 587)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if len(v.GetStringSlice("upload.allowed_types")) == 0 {
		zap.L().Warn("No upload.allowed_types specified, any content type will be accepted")
	}

	if v.GetInt("upload.retention_days") <= 0 {
		return errors.New("upload.retention_days must be bigger than 0")
	}

	if v.GetInt("notify.max_attempts") <= 0 {
		return errors.New("notify.max_attempts must be bigger than 0")
	}

	writeTTL, err := time.ParseDuration(v.GetString("upload.credential_ttl"))
	if err != nil {
		return fmt.Errorf("invalid upload.credential_ttl, %w", err)
	}

	readTTL, err := time.ParseDuration(v.GetString("download.credential_ttl"))
	if err != nil {
		return fmt.Errorf("invalid download.credential_ttl, %w", err)
	}

	retention := time.Duration(v.GetInt("upload.retention_days")) * 24 * time.Hour
	if writeTTL >= retention {
		return errors.New("upload.credential_ttl must be shorter than the retention horizon")
	}

	if v.GetString("aws.region") == "" {
		return errors.New("aws region can't be empty")
	}
	if v.GetString("aws.access_key") == "" {
		return errors.New("aws access key can't be empty")
	}
	if v.GetString("aws.secret_access_key") == "" {
		return errors.New("aws secret access key can't be empty")
	}
	if v.GetString("aws.bucket") == "" {
		return errors.New("bucket can't be empty")
	}
	if v.GetString("aws.table") == "" {
		return errors.New("table can't be empty")
	}

	if v.GetString("aws.events_queue_url") == "" && !*disableEvents {
		return errors.New("aws.events_queue_url can't be empty unless --disable-events is set")
	}

	if v.GetString("notify.from") == "" {
		return errors.New("notify.from can't be empty")
	}
	if v.GetString("notify.smtp_host") == "" {
		return errors.New("notify.smtp_host can't be empty")
	}

	// Normalize so the rest of the app never re-parses
	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	v.Set("upload.credential_ttl", writeTTL)
	v.Set("download.credential_ttl", readTTL)
	v.Set("upload.retention", retention)

	return nil
}
