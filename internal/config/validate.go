package config

import (
	"errors"
	"fmt"
)

var knownResolutions = map[string]int{
	"720p":  1,
	"1080p": 2,
	"2160p": 3,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSearch() error {
	minRank, ok := knownResolutions[c.Search.MinResolution]
	if !ok {
		return fmt.Errorf("search.min_resolution: unknown value %q", c.Search.MinResolution)
	}
	maxRank, ok := knownResolutions[c.Search.MaxResolution]
	if !ok {
		return fmt.Errorf("search.max_resolution: unknown value %q", c.Search.MaxResolution)
	}
	if minRank > maxRank {
		return errors.New("search.min_resolution exceeds search.max_resolution")
	}
	if c.Search.AutoDownloadThreshold < 0 {
		return errors.New("search.auto_download_threshold must not be negative")
	}
	if c.Search.ResultLimit <= 0 {
		return errors.New("search.result_limit must be positive")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.TickInterval <= 0 {
		return errors.New("scheduler.tick_interval must be positive")
	}
	if c.Scheduler.PollInterval <= 0 {
		return errors.New("scheduler.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	for i, target := range c.Notifications.Targets {
		switch target.Type {
		case "shoutrrr", "webhook":
		default:
			return fmt.Errorf("notifications.targets[%d].type: unknown value %q", i, target.Type)
		}
		if target.URL == "" {
			return fmt.Errorf("notifications.targets[%d].url must be set", i)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "":
	default:
		return fmt.Errorf("logging.format: unknown value %q", c.Logging.Format)
	}
	return nil
}

// ResolutionRank maps a resolution label to its ordering rank. Unknown labels
// rank zero, below every known resolution.
func ResolutionRank(resolution string) int {
	return knownResolutions[resolution]
}
