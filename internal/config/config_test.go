package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
employers:
  - slug: mercy-health
    name: Mercy Health
    career_page_url: https://careers.mercy.example.com/jobs
    enabled: true
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DBPath != "nursewire.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ScrapeInterval != 6*time.Hour {
		t.Errorf("ScrapeInterval = %v", cfg.ScrapeInterval)
	}
	if cfg.RequestDelay != 2500*time.Millisecond {
		t.Errorf("RequestDelay = %v", cfg.RequestDelay)
	}
	if cfg.ExpiryWindow != 60*24*time.Hour {
		t.Errorf("ExpiryWindow = %v", cfg.ExpiryWindow)
	}
	if cfg.MaxPages != 50 {
		t.Errorf("MaxPages = %d", cfg.MaxPages)
	}
	if cfg.Ping.Enabled() {
		t.Error("ping should be disabled without an endpoint")
	}
	if cfg.Ping.BatchSize != 50 {
		t.Errorf("Ping.BatchSize = %d", cfg.Ping.BatchSize)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
db_path: /var/lib/nursewire/board.db
scrape_interval: 4h
sweep_interval: 12h
request_delay: 3s
request_timeout: 20s
max_pages: 10
empty_page_limit: 3
expiry_window: 720h
min_description_len: 200
ping:
  endpoint: https://ping.example.com/submit
  key: abc123
  batch_size: 25
  batch_delay: 5s
  tracking_window: 48h
employers:
  - slug: mercy-health
    name: Mercy Health
    career_page_url: https://careers.mercy.example.com/jobs
    enabled: true
  - slug: st-lukes
    name: St. Luke's
    career_page_url: https://jobs.stlukes.example.com
    enabled: false
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ScrapeInterval != 4*time.Hour {
		t.Errorf("ScrapeInterval = %v", cfg.ScrapeInterval)
	}
	if cfg.ExpiryWindow != 720*time.Hour {
		t.Errorf("ExpiryWindow = %v", cfg.ExpiryWindow)
	}
	if !cfg.Ping.Enabled() || cfg.Ping.BatchSize != 25 || cfg.Ping.TrackingWindow != 48*time.Hour {
		t.Errorf("ping config mismatch: %+v", cfg.Ping)
	}
	if len(cfg.Employers) != 2 {
		t.Fatalf("employers = %d, want 2", len(cfg.Employers))
	}

	emp, ok := cfg.EmployerBySlug("st-lukes")
	if !ok {
		t.Fatal("EmployerBySlug() miss")
	}
	if emp.Enabled {
		t.Error("st-lukes should be disabled")
	}
	if _, ok := cfg.EmployerBySlug("nope"); ok {
		t.Error("unexpected hit for unknown slug")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("NW_TEST_PING_KEY", "secret-from-env")

	cfg, err := Load(writeConfig(t, minimalConfig+`
ping:
  endpoint: https://ping.example.com/submit
  key: ${NW_TEST_PING_KEY}
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Ping.Key != "secret-from-env" {
		t.Errorf("Ping.Key = %q", cfg.Ping.Key)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "no enabled employers",
			content: `
employers:
  - slug: mercy-health
    name: Mercy Health
    career_page_url: https://careers.mercy.example.com/jobs
    enabled: false
`,
			wantErr: "at least one employer",
		},
		{
			name: "missing slug",
			content: `
employers:
  - name: Mercy Health
    career_page_url: https://careers.mercy.example.com/jobs
    enabled: true
`,
			wantErr: "slug is required",
		},
		{
			name: "missing career page url",
			content: `
employers:
  - slug: mercy-health
    name: Mercy Health
    enabled: true
`,
			wantErr: "career_page_url is required",
		},
		{
			name:    "request delay too aggressive",
			content: minimalConfig + "request_delay: 100ms\n",
			wantErr: "request_delay",
		},
		{
			name: "ping batch over endpoint cap",
			content: minimalConfig + `
ping:
  endpoint: https://ping.example.com/submit
  batch_size: 100
`,
			wantErr: "batch_size",
		},
		{
			name:    "bad duration",
			content: minimalConfig + "scrape_interval: every-so-often\n",
			wantErr: "scrape_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
