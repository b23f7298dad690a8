package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Speaker   SpeakerConfig   `yaml:"speaker"`
	Scanner   ScannerConfig   `yaml:"scanner"`
	Indicator IndicatorConfig `yaml:"indicator"`
	State     StateConfig     `yaml:"state"`
	Startup   StartupConfig   `yaml:"startup"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Log       LogConfig       `yaml:"log"`
}

type SpeakerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	DefaultRoom   string `yaml:"default_room"`
	DefaultVolume int    `yaml:"default_volume"`
	Language      string `yaml:"language"`
	Timeout       string `yaml:"timeout"`
}

type ScannerConfig struct {
	// Source is one of process, replay, http, watch.
	Source      string   `yaml:"source"`
	Command     []string `yaml:"command"`
	// Offset is the prefix width stripped from each line; 0 keeps lines whole.
	Offset      *int     `yaml:"offset"`
	RepairSJIS  *bool    `yaml:"repair_sjis"`
	ReplayFile  string   `yaml:"replay_file"`
	ReplayDelay string   `yaml:"replay_delay"`
	HTTPAddr    string   `yaml:"http_addr"`
	AuthToken   string   `yaml:"auth_token"`
	WatchDir    string   `yaml:"watch_dir"`
}

type IndicatorConfig struct {
	// Kind is one of process, log, none.
	Kind       string              `yaml:"kind"`
	Duration   string              `yaml:"duration"`
	Animations map[string][]string `yaml:"animations"`
	Clear      []string            `yaml:"clear"`
}

type StateConfig struct {
	Dir string `yaml:"dir"`
}

type StartupConfig struct {
	SpeakWelcome bool   `yaml:"speak_welcome"`
	SkipLoad     *bool  `yaml:"skip_load"`
	Welcome      string `yaml:"welcome"`
	Indexing     string `yaml:"indexing"`
	Ready        string `yaml:"ready"`
	Prompt       string `yaml:"prompt"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Speaker.Host == "" {
		c.Speaker.Host = "0.0.0.0"
	}
	if c.Speaker.Port == 0 {
		c.Speaker.Port = 5005
	}
	if c.Speaker.DefaultRoom == "" {
		c.Speaker.DefaultRoom = "Büro"
	}
	if c.Speaker.DefaultVolume == 0 {
		c.Speaker.DefaultVolume = 25
	}
	if c.Speaker.Language == "" {
		c.Speaker.Language = "de"
	}
	if c.Speaker.Timeout == "" {
		c.Speaker.Timeout = "15s"
	}
	if c.Scanner.Source == "" {
		c.Scanner.Source = "process"
	}
	if len(c.Scanner.Command) == 0 {
		c.Scanner.Command = []string{"/usr/bin/zbarcam", "--prescale=500x500", "--nodisplay"}
	}
	if c.Scanner.Offset == nil {
		offset := 8
		c.Scanner.Offset = &offset
	}
	if c.Scanner.RepairSJIS == nil {
		repair := true
		c.Scanner.RepairSJIS = &repair
	}
	if c.Scanner.ReplayDelay == "" {
		c.Scanner.ReplayDelay = "10s"
	}
	if c.Scanner.HTTPAddr == "" {
		c.Scanner.HTTPAddr = ":8080"
	}
	if c.Scanner.WatchDir == "" {
		c.Scanner.WatchDir = "./spool"
	}
	if c.Indicator.Kind == "" {
		c.Indicator.Kind = "log"
	}
	if c.Indicator.Duration == "" {
		c.Indicator.Duration = "4s"
	}
	if c.Indicator.Animations == nil {
		c.Indicator.Animations = map[string][]string{
			"pulse-green": {"python3", "blinkt_led_pulse.py", "--brightness", "1", "--color", "0,128,0"},
			"pulse-red":   {"python3", "blinkt_led_pulse.py", "--brightness", "1", "--color", "255,0,0"},
			"rainbow":     {"python3", "blinkt_led_rainbow.py"},
		}
	}
	if c.State.Dir == "" {
		c.State.Dir = "."
	}
	if c.Startup.SkipLoad == nil {
		skip := true
		c.Startup.SkipLoad = &skip
	}
	if c.Startup.Welcome == "" {
		c.Startup.Welcome = "Hallo, ich bin bereit."
	}
	if c.Startup.Indexing == "" {
		c.Startup.Indexing = "Musik Bibliothek indizieren"
	}
	if c.Startup.Ready == "" {
		c.Startup.Ready = "Jetzt bin ich bereit!"
	}
	if c.Startup.Prompt == "" {
		c.Startup.Prompt = "Zeig mir eine Karte!"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Duration parses a config duration, falling back to def when the value
// is empty or invalid.
func Duration(value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return d, nil
}
