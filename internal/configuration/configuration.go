package configuration

import (
	"encoding/json"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/pkg/errors"

	"github.com/malonaz/qachat/internal/file"
)

// defaultConfig returns a fresh copy of the defaults so merges never alias them.
func defaultConfig() *Config {
	return &Config{
		APIHost:        "http://localhost:8000/api",
		RequestTimeout: 120,
		Database:       "~/.config/qachat/session.db",
		DebugLog:       "/tmp/qachat-debug.log",
		HistoryFile:    "~/.config/qachat/history",

		Chat: &ChatConfig{
			TopK: 8,
		},
	}
}

// Config holds configuration for the qachat tool.
type Config struct {
	// Base URL of the chat service, including the /api prefix.
	APIHost string `json:"api_host"`
	// Request timeout in seconds, negative for none. Streams are bounded until their headers arrive.
	RequestTimeout int `json:"request_timeout"`
	// SQLite file mirroring the session across restarts.
	Database string `json:"database"`
	// Debug log file.
	DebugLog string `json:"debug_log"`
	// Input history file used by the tui.
	HistoryFile string `json:"history_file"`

	Chat *ChatConfig `json:"chat"`
}

// ChatConfig holds configuration for asking questions.
type ChatConfig struct {
	// Skip the reasoning phase of the backend.
	DisableThinking bool `json:"disable_thinking"`
	// Number of knowledge base chunks retrieved per question.
	TopK int `json:"top_k"`
}

// Timeout returns the request timeout as a duration. A negative request_timeout
// disables it, since zero is replaced by the default.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout < 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if err := mergo.Merge(config, defaultConfig()); err != nil {
		return nil, errors.Wrap(err, "merging default config")
	}

	for _, p := range []*string{&config.Database, &config.DebugLog, &config.HistoryFile} {
		expanded, err := file.ExpandPath(*p)
		if err != nil {
			return nil, errors.Wrapf(err, "expanding path %s", *p)
		}
		*p = expanded
	}
	return config, nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	exists, err := file.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := file.CreateParentDirectory(path); err != nil {
		return err
	}
	if err := defaultConfig().save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
