//go:build !integration

package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fair-model-service/internal/domain"

	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestDerive(t *testing.T) {
	t.Run("declarative artifact", func(t *testing.T) {
		p := writeFile(t, "params.json", `{"model_type":"logistic_regression","x1":1,"intercept":0}`)
		m, err := Derive(p, "Ignored", "demo:latest")
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		if m.Module != "model_execution_default" || m.Class != "model_execution_logistic_regression" {
			t.Fatalf("unexpected triple: %+v", m)
		}
		if m.Env["MODULE_NAME"] != m.Module || m.Env["CLASS_NAME"] != m.Class || m.Env["MODEL_PARAMETERS"] != ParametersTarget {
			t.Fatalf("unexpected env: %v", m.Env)
		}
	})

	t.Run("custom model defaults class to stem", func(t *testing.T) {
		m, err := Derive("models/threshold.go", "", "")
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		if m.Module != "threshold" || m.Class != "threshold" || m.Target != "/app/threshold.go" {
			t.Fatalf("unexpected manifest: %+v", m)
		}
		if _, ok := m.Env["MODEL_PARAMETERS"]; ok {
			t.Fatal("custom model should not carry MODEL_PARAMETERS")
		}
	})

	t.Run("custom model with class", func(t *testing.T) {
		m, err := Derive("threshold.go", "ThresholdModel", "")
		if err != nil || m.Class != "ThresholdModel" {
			t.Fatalf("unexpected: %+v %v", m, err)
		}
	})

	t.Run("errors", func(t *testing.T) {
		bad := writeFile(t, "bad.json", `{"x1": 1}`)
		for _, path := range []string{"", bad, filepath.Join(t.TempDir(), "missing.json")} {
			if _, err := Derive(path, "", ""); !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("%q: want ErrConfiguration, got %v", path, err)
			}
		}
	})
}

func TestWrite(t *testing.T) {
	m, err := Derive("threshold.go", "ThresholdModel", "img:1")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	var back Manifest
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("yaml: %v\n%s", err, buf.String())
	}
	if back.Image != "img:1" || back.Env["CLASS_NAME"] != "ThresholdModel" {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}

func TestWriteDockerfile(t *testing.T) {
	p := writeFile(t, "params.json", `{"model_type":"logistic_regression","x1":1,"intercept":0}`)
	m, err := Derive(p, "", "")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteDockerfile(&buf, m, ""); err != nil {
		t.Fatalf("dockerfile: %v", err)
	}
	want := strings.Join([]string{
		"FROM " + DefaultBaseImage,
		"WORKDIR /app",
		"COPY " + filepath.ToSlash(p) + " /app/model_parameters.json",
		"ENV CLASS_NAME=model_execution_logistic_regression",
		"ENV MODEL_PARAMETERS=/app/model_parameters.json",
		"ENV MODULE_NAME=model_execution_default",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("want\n%s\ngot\n%s", want, buf.String())
	}

	buf.Reset()
	custom, _ := Derive("threshold.go", "ThresholdModel", "")
	if err := WriteDockerfile(&buf, custom, "base:1"); err != nil {
		t.Fatalf("dockerfile: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "FROM base:1\n") || !strings.Contains(buf.String(), "COPY threshold.go /app/threshold.go\n") ||
		strings.Contains(buf.String(), "MODEL_PARAMETERS") {
		t.Fatalf("unexpected dockerfile:\n%s", buf.String())
	}

	if err := WriteDockerfile(&buf, Manifest{}, ""); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
}
