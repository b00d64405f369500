package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir switches into dir so no stray config.yaml or .env is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("DISPETCHER_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Business.DefaultWorkerRate != 400 {
		t.Errorf("expected default worker rate 400, got %v", cfg.Business.DefaultWorkerRate)
	}
	if cfg.Business.DefaultClientRate != 520 {
		t.Errorf("expected default client rate 520, got %v", cfg.Business.DefaultClientRate)
	}
	if cfg.Business.ConflictWindow != 4*time.Hour {
		t.Errorf("expected conflict window 4h, got %v", cfg.Business.ConflictWindow)
	}
	if cfg.Business.PlannedStart != "08:00" || cfg.Business.PlannedEnd != "17:00" {
		t.Errorf("unexpected planned hours %s-%s", cfg.Business.PlannedStart, cfg.Business.PlannedEnd)
	}
	if cfg.Business.LogLimit != 500 {
		t.Errorf("expected log limit 500, got %d", cfg.Business.LogLimit)
	}
	if cfg.Notify.Driver != "log" {
		t.Errorf("expected notify driver log, got %s", cfg.Notify.Driver)
	}
}

func TestLoad_ConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
auth:
  jwt_secret: file-secret-0123456789
business:
  default_worker_rate: 450
  conflict_window: 3h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Business.DefaultWorkerRate != 450 {
		t.Errorf("expected worker rate 450, got %v", cfg.Business.DefaultWorkerRate)
	}
	if cfg.Business.ConflictWindow != 3*time.Hour {
		t.Errorf("expected window 3h, got %v", cfg.Business.ConflictWindow)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Auth:   AuthConfig{JWTSecret: "0123456789abcdef"},
			Business: BusinessConfig{
				DefaultWorkerRate: 400,
				DefaultClientRate: 520,
				ConflictWindow:    4 * time.Hour,
				PlannedStart:      "08:00",
				PlannedEnd:        "17:00",
				Timezone:          "UTC",
			},
			Notify: NotifyConfig{Driver: "log"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(c *Config){
		"empty secret":   func(c *Config) { c.Auth.JWTSecret = "" },
		"short secret":   func(c *Config) { c.Auth.JWTSecret = "short" },
		"bad port":       func(c *Config) { c.Server.Port = 70000 },
		"zero rate":      func(c *Config) { c.Business.DefaultWorkerRate = 0 },
		"zero window":    func(c *Config) { c.Business.ConflictWindow = 0 },
		"bad start":      func(c *Config) { c.Business.PlannedStart = "8am" },
		"bad timezone":   func(c *Config) { c.Business.Timezone = "Mars/Olympus" },
		"unknown driver": func(c *Config) { c.Notify.Driver = "sms" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected validation error for %s", name)
			}
		})
	}
}
