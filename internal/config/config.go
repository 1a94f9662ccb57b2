package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabasePath     string
	NotifyConfigPath string
	PollInterval     time.Duration
	BusyTimeout      time.Duration
}

func Load() Config {
	cfg := Config{
		DatabasePath:     getEnv("MAINTLOG_DB_PATH", filepath.Join("data", "mymaintlog.db")),
		NotifyConfigPath: getEnv("MAINTLOG_NOTIFY_CONFIG", "email_config.yaml"),
		PollInterval:     getDuration("MAINTLOG_POLL_INTERVAL", time.Minute),
		BusyTimeout:      getDuration("MAINTLOG_BUSY_TIMEOUT", 5*time.Second),
	}
	// Deployments created before the rename keep their data: fall back to
	// the legacy database file when the new one does not exist yet.
	if _, err := os.Stat(cfg.DatabasePath); errors.Is(err, fs.ErrNotExist) {
		legacy := filepath.Join(filepath.Dir(cfg.DatabasePath), "servicemgr.db")
		if _, err := os.Stat(legacy); err == nil {
			cfg.DatabasePath = legacy
		}
	}
	return cfg
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Notify is the consumed notification configuration: a capability-enabled
// flag, transport settings handed to the external sender, and the message
// template. Loaded from YAML, same file layout the legacy app used.
type Notify struct {
	SMTP     SMTP     `yaml:"smtp"`
	Template Template `yaml:"template"`
}

type SMTP struct {
	Enabled   bool   `yaml:"enabled"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
	Server    string `yaml:"server"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	UseTLS    bool   `yaml:"use_tls"`
}

type Template struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

func (n Notify) Enabled() bool { return n.SMTP.Enabled }

const (
	DefaultSubject = "Service Reminder: {service_name} for {object_name}"
	DefaultBody    = "Hello {user_name},\n\n" +
		"This is a reminder that {service_name} is due for your {object_type} {object_name} on {reminder_date}.\n\n" +
		"Notes: {notes}\n"
)

// LoadNotify reads the notifier configuration. A missing file is not an
// error: it yields a disabled configuration, matching the legacy behavior
// of running without email_config.yaml.
func LoadNotify(path string) (Notify, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Notify{}, nil
	}
	if err != nil {
		return Notify{}, fmt.Errorf("read notify config: %w", err)
	}
	var n Notify
	if err := yaml.Unmarshal(data, &n); err != nil {
		return Notify{}, fmt.Errorf("parse notify config: %w", err)
	}
	if n.Template.Subject == "" {
		n.Template.Subject = DefaultSubject
	}
	if n.Template.Body == "" {
		n.Template.Body = DefaultBody
	}
	return n, nil
}
