//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fair-model-service/internal/domain"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != DefaultPort {
		t.Errorf("want port %d, got %d", DefaultPort, cfg.HTTP.Port)
	}
	if cfg.Model.Module != DefaultModule || cfg.Model.Type != DefaultType {
		t.Errorf("unexpected model selection: %+v", cfg.Model)
	}
	if cfg.Model.Parameters != DefaultParameters {
		t.Errorf("want %s, got %s", DefaultParameters, cfg.Model.Parameters)
	}
	if cfg.Redis.TTL != time.Hour || cfg.Log.Format != "json" || !cfg.Runtime.Dev {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeYAML(t, `
http:
  port: 9000
  rate: "10-S"
model:
  module: threshold
  type: ThresholdModel
  timeout: 2s
log:
  level: debug
  format: console
`)
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvModule, "model_execution_default")
	t.Setenv(EnvType, "logistic_regression")
	t.Setenv(EnvParameters, "/app/params.json")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != 9100 {
		t.Errorf("env should override port, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.Rate != "10-S" || cfg.Log.Format != "console" || cfg.Log.Level != "debug" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Model.Module != "model_execution_default" || cfg.Model.Type != "logistic_regression" {
		t.Errorf("env should override model: %+v", cfg.Model)
	}
	if cfg.Model.Parameters != "/app/params.json" || cfg.Model.Timeout != 2*time.Second {
		t.Errorf("unexpected model config: %+v", cfg.Model)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), false); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("bad port env", func(t *testing.T) {
		t.Setenv(EnvPort, "http")
		if _, err := LoadConfig("", false); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("want ErrConfiguration, got %v", err)
		}
	})
	t.Run("module without type", func(t *testing.T) {
		t.Setenv(EnvModule, "threshold")
		if _, err := LoadConfig("", false); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("want ErrConfiguration, got %v", err)
		}
	})
	t.Run("negative timeout", func(t *testing.T) {
		path := writeYAML(t, "model:\n  timeout: -1s\n")
		if _, err := LoadConfig(path, false); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("want ErrConfiguration, got %v", err)
		}
	})
	t.Run("unknown log format", func(t *testing.T) {
		path := writeYAML(t, "log:\n  format: xml\n")
		if _, err := LoadConfig(path, false); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("want ErrConfiguration, got %v", err)
		}
	})
}
