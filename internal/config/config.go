package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration
type Config struct {
	LftpBinary    string         `yaml:"lftp_binary"`
	WorkDir       string         `yaml:"work_dir"`
	DBPath        string         `yaml:"db_path"`
	Notifications bool           `yaml:"notifications"`
	Cron          CronConfig     `yaml:"cron"`
	Schedule      ScheduleConfig `yaml:"schedule"`
	Cloud         CloudConfig    `yaml:"cloud"`
}

// CronConfig is the built-in parameter tuple used by the scheduled mode.
// The password is stored base64-encoded, like in the batch config files.
type CronConfig struct {
	Site     string `yaml:"site"`
	Port     string `yaml:"port"`
	Remote   string `yaml:"remote"`
	Local    string `yaml:"local"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Options  string `yaml:"options"`
}

// ScheduleConfig holds the in-process scheduler settings for daemon mode
type ScheduleConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Expression string `yaml:"expression"`
}

// CloudConfig holds the nextCloud re-index settings
type CloudConfig struct {
	DataRoot     string `yaml:"data_root"`
	ServiceUser  string `yaml:"service_user"`
	FallbackUser string `yaml:"fallback_user"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LftpBinary:    "lftp",
		WorkDir:       ".",
		DBPath:        "lftpmirror.db",
		Notifications: true,
		Cron: CronConfig{
			Site:     "localhost",
			Remote:   "directory",
			Local:    "mirror",
			User:     "user",
			Password: "cGFzc3dvcmQ=",
		},
		Schedule: ScheduleConfig{
			Enabled:    false,
			Expression: "0 2 * * *",
		},
		Cloud: CloudConfig{
			DataRoot:     "/media/storage/nextcloud-data",
			ServiceUser:  "www-data",
			FallbackUser: "admin",
		},
	}
}

// Load reads a config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	searchPaths := []string{
		"lftpmirror.yaml",
		"/etc/lftpmirror/lftpmirror.yaml",
	}

	// Add user config path
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "lftpmirror", "lftpmirror.yaml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", searchPaths)
}
