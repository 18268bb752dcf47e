package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StorageDir) == "" {
		return errors.New("paths.storage_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if strings.TrimSpace(c.Feed.APIBaseURL) == "" {
		return errors.New("feed.api_base_url must be set")
	}
	if c.Feed.StartOffset < 0 {
		return errors.New("feed.start_offset must be >= 0")
	}
	if err := ensurePositiveMap(map[string]int{
		"feed.batch_limit":          c.Feed.BatchLimit,
		"feed.poll_interval":        c.Feed.PollInterval,
		"feed.long_poll_timeout":    c.Feed.LongPollTimeout,
		"feed.error_retry_interval": c.Feed.ErrorRetryInterval,
		"feed.requests_per_second":  c.Feed.RequestsPerSecond,
	}); err != nil {
		return err
	}
	if c.Feed.BatchLimit > 100 {
		return errors.New("feed.batch_limit must be <= 100 (feed API cap)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
