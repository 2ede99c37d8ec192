package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TrelloConfig identifies where cards live on the Board System.
type TrelloConfig struct {
	// BoardID is the board polled for change actions.
	BoardID string `mapstructure:"board_id" yaml:"board_id"`

	// ListID is the list where newly created cards are placed.
	ListID string `mapstructure:"list_id" yaml:"list_id"`
}

// DiscordConfig identifies where threads live on the Thread System.
type DiscordConfig struct {
	// GuildID is the guild whose active threads are watched.
	GuildID string `mapstructure:"guild_id" yaml:"guild_id"`

	// WatchIntervalSec is how often the thread watcher polls for new
	// threads and messages.
	WatchIntervalSec int `mapstructure:"watch_interval_sec" yaml:"watch_interval_sec"`
}

// NotifyConfig gates which change-action categories produce thread
// notifications. Card renames and moves are always delivered.
type NotifyConfig struct {
	LabelChanges     bool `mapstructure:"label_changes" yaml:"label_changes"`
	ChecklistChanges bool `mapstructure:"checklist_changes" yaml:"checklist_changes"`
	MemberChanges    bool `mapstructure:"member_changes" yaml:"member_changes"`
	DueDateChanges   bool `mapstructure:"due_date_changes" yaml:"due_date_changes"`
	CommentChanges   bool `mapstructure:"comment_changes" yaml:"comment_changes"`
}

// PollConfig tunes the change poller and its backoff behavior.
type PollConfig struct {
	// IntervalSec is the baseline tick interval.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`

	// BackoffThreshold is how many consecutive failed ticks are
	// tolerated before the interval doubles.
	BackoffThreshold int `mapstructure:"backoff_threshold" yaml:"backoff_threshold"`

	// LookbackMin bounds the startup checkpoint: the first tick asks
	// for actions no older than this many minutes.
	LookbackMin int `mapstructure:"lookback_min" yaml:"lookback_min"`

	// DeliveryDelayMs is the courtesy delay between two notification
	// deliveries within one tick.
	DeliveryDelayMs int `mapstructure:"delivery_delay_ms" yaml:"delivery_delay_ms"`
}

// Config is the top-level daemon configuration.
type Config struct {
	Trello  TrelloConfig  `mapstructure:"trello" yaml:"trello"`
	Discord DiscordConfig `mapstructure:"discord" yaml:"discord"`
	Notify  NotifyConfig  `mapstructure:"notify" yaml:"notify"`
	Poll    PollConfig    `mapstructure:"poll" yaml:"poll"`

	// DBPath is the SQLite file holding mappings and processed actions.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// PollInterval returns the configured tick interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSec) * time.Second
}

// WatchInterval returns the thread watcher interval as a duration.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Discord.WatchIntervalSec) * time.Second
}

// DeliveryDelay returns the per-notification courtesy delay.
func (c *Config) DeliveryDelay() time.Duration {
	return time.Duration(c.Poll.DeliveryDelayMs) * time.Millisecond
}

// Lookback returns the startup checkpoint lookback window.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Poll.LookbackMin) * time.Minute
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case c.Trello.BoardID == "":
		return fmt.Errorf("trello.board_id is required")
	case c.Trello.ListID == "":
		return fmt.Errorf("trello.list_id is required")
	case c.Discord.GuildID == "":
		return fmt.Errorf("discord.guild_id is required")
	}
	return nil
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/trello-bridge/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "trello-bridge", "config.yaml")
}

// DefaultDBPath returns the default SQLite database location.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "bridge.db")
	}
	return filepath.Join(home, ".config", "trello-bridge", "bridge.db")
}

// defaultConfig returns a sensible default configuration.
func defaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{WatchIntervalSec: 30},
		Notify: NotifyConfig{
			LabelChanges:     true,
			ChecklistChanges: true,
			MemberChanges:    true,
			DueDateChanges:   true,
			CommentChanges:   true,
		},
		Poll: PollConfig{
			IntervalSec:      60,
			BackoffThreshold: 5,
			LookbackMin:      45,
			DeliveryDelayMs:  1000,
		},
		DBPath: DefaultDBPath(),
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper, layering TRELLO_BRIDGE_* environment variables on top. If the
// file does not exist, defaults plus environment are returned.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TRELLO_BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("discord.watch_interval_sec", 30)
	v.SetDefault("notify.label_changes", true)
	v.SetDefault("notify.checklist_changes", true)
	v.SetDefault("notify.member_changes", true)
	v.SetDefault("notify.due_date_changes", true)
	v.SetDefault("notify.comment_changes", true)
	v.SetDefault("poll.interval_sec", 60)
	v.SetDefault("poll.backoff_threshold", 5)
	v.SetDefault("poll.lookback_min", 45)
	v.SetDefault("poll.delivery_delay_ms", 1000)
	v.SetDefault("db_path", DefaultDBPath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
