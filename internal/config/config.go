// Package config provides YAML-based configuration loading for Gatedesk.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// cronParser validates the 5-field cron expressions used by the scheduler
// (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Config is the top-level Gatedesk configuration, loaded from gatedesk.yaml.
type Config struct {
	Port        int            `yaml:"port"`
	DataDir     string         `yaml:"data_dir"`
	DisplaySize int            `yaml:"display_size"`
	Hours       HoursConfig    `yaml:"hours"`
	Schedule    ScheduleConfig `yaml:"schedule"`
}

// HoursConfig defines the daily window during which the display is serving.
// Open is inclusive, Close exclusive, both local wall-clock HH:MM.
type HoursConfig struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// ScheduleConfig holds the cron expressions driving the background jobs.
type ScheduleConfig struct {
	StatusCron   string `yaml:"status_cron"`
	RolloverCron string `yaml:"rollover_cron"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Parse(nil)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in default values.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.DisplaySize == 0 {
		c.DisplaySize = 4
	}
	if c.Hours.Open == "" {
		c.Hours.Open = "08:30"
	}
	if c.Hours.Close == "" {
		c.Hours.Close = "18:00"
	}
	if c.Schedule.StatusCron == "" {
		c.Schedule.StatusCron = "* * * * *"
	}
	if c.Schedule.RolloverCron == "" {
		c.Schedule.RolloverCron = "0 0 * * *"
	}
}

// validate checks that all fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port %d is out of range", c.Port))
	}
	if c.DisplaySize < 1 {
		errs = append(errs, "display_size must be at least 1")
	}
	openMin, openErr := parseClock(c.Hours.Open)
	if openErr != nil {
		errs = append(errs, fmt.Sprintf("hours.open: %v", openErr))
	}
	closeMin, closeErr := parseClock(c.Hours.Close)
	if closeErr != nil {
		errs = append(errs, fmt.Sprintf("hours.close: %v", closeErr))
	}
	if openErr == nil && closeErr == nil && openMin >= closeMin {
		errs = append(errs, "hours.open must be before hours.close")
	}
	if _, err := cronParser.Parse(c.Schedule.StatusCron); err != nil {
		errs = append(errs, fmt.Sprintf("schedule.status_cron: %v", err))
	}
	if _, err := cronParser.Parse(c.Schedule.RolloverCron); err != nil {
		errs = append(errs, fmt.Sprintf("schedule.rollover_cron: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// OpenMinutes returns the opening time as minutes past midnight.
// Only valid on a Config produced by Load or Parse.
func (c *Config) OpenMinutes() int {
	m, _ := parseClock(c.Hours.Open)
	return m
}

// CloseMinutes returns the closing time as minutes past midnight.
// Only valid on a Config produced by Load or Parse.
func (c *Config) CloseMinutes() int {
	m, _ := parseClock(c.Hours.Close)
	return m
}

// parseClock converts an "HH:MM" string to minutes past midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not in HH:MM form", s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("%q has an invalid hour", s)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", s)
	}
	return hh*60 + mm, nil
}
