package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAINTLOG_DB_PATH", "")
	t.Setenv("MAINTLOG_NOTIFY_CONFIG", "")
	t.Setenv("MAINTLOG_POLL_INTERVAL", "")
	t.Setenv("MAINTLOG_BUSY_TIMEOUT", "")

	cfg := Load()
	if cfg.DatabasePath != filepath.Join("data", "mymaintlog.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.NotifyConfigPath != "email_config.yaml" {
		t.Errorf("NotifyConfigPath = %q", cfg.NotifyConfigPath)
	}
	if cfg.PollInterval != time.Minute {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.BusyTimeout != 5*time.Second {
		t.Errorf("BusyTimeout = %v", cfg.BusyTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "custom.db")
	if err := os.WriteFile(dbPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAINTLOG_DB_PATH", dbPath)
	t.Setenv("MAINTLOG_NOTIFY_CONFIG", "/etc/maintlog/notify.yaml")
	t.Setenv("MAINTLOG_POLL_INTERVAL", "30s")
	t.Setenv("MAINTLOG_BUSY_TIMEOUT", "not-a-duration")

	cfg := Load()
	if cfg.DatabasePath != dbPath {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.NotifyConfigPath != "/etc/maintlog/notify.yaml" {
		t.Errorf("NotifyConfigPath = %q", cfg.NotifyConfigPath)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	// Unparseable duration falls back to the default.
	if cfg.BusyTimeout != 5*time.Second {
		t.Errorf("BusyTimeout = %v", cfg.BusyTimeout)
	}
}

func TestLoadFallsBackToLegacyDatabase(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "servicemgr.db")
	if err := os.WriteFile(legacy, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAINTLOG_DB_PATH", filepath.Join(dir, "mymaintlog.db"))

	cfg := Load()
	if cfg.DatabasePath != legacy {
		t.Errorf("DatabasePath = %q, want legacy fallback %q", cfg.DatabasePath, legacy)
	}
}

func TestLoadNotifyMissingFileDisables(t *testing.T) {
	n, err := LoadNotify(filepath.Join(t.TempDir(), "no-such.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if n.Enabled() {
		t.Fatal("missing config should be disabled")
	}
}

func TestLoadNotifyFillsTemplateDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email_config.yaml")
	body := `smtp:
  enabled: true
  from_name: MyMaintLog
  from_email: maint@example.com
  server: smtp.example.com
  port: 587
  use_tls: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := LoadNotify(path)
	if err != nil {
		t.Fatal(err)
	}
	if !n.Enabled() || n.SMTP.Server != "smtp.example.com" || n.SMTP.Port != 587 {
		t.Fatalf("smtp: %+v", n.SMTP)
	}
	if n.Template.Subject != DefaultSubject || n.Template.Body != DefaultBody {
		t.Fatalf("template defaults not applied: %+v", n.Template)
	}
}

func TestLoadNotifyKeepsExplicitTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email_config.yaml")
	body := `smtp:
  enabled: true
template:
  subject: "due: {service_name}"
  body: "see you"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := LoadNotify(path)
	if err != nil {
		t.Fatal(err)
	}
	if n.Template.Subject != "due: {service_name}" || n.Template.Body != "see you" {
		t.Fatalf("template: %+v", n.Template)
	}
}

func TestLoadNotifyRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email_config.yaml")
	if err := os.WriteFile(path, []byte("smtp: [not: a: mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadNotify(path); err == nil {
		t.Fatal("malformed yaml accepted")
	}
}
