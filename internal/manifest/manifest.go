// Package manifest derives what a packaged model image carries: the registry
// key of the model and the environment the server reads it from.
package manifest

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"fair-model-service/internal/config"
	"fair-model-service/internal/domain"
	"fair-model-service/internal/model/logreg"
	"fair-model-service/internal/model/registry"

	"gopkg.in/yaml.v3"
)

// ParametersTarget is where a declarative artifact lands inside the image.
const ParametersTarget = "/app/model_parameters.json"

// DefaultBaseImage carries the inference server the packaged model runs in.
const DefaultBaseImage = "ghcr.io/maastrichtu-biss/fairmodels-model-package/base-image:latest"

type Manifest struct {
	Image    string            `yaml:"image,omitempty"`
	Module   string            `yaml:"module"`
	Class    string            `yaml:"class"`
	Artifact string            `yaml:"artifact"`
	Target   string            `yaml:"target"`
	Env      map[string]string `yaml:"env"`
}

// Derive builds the manifest for a prediction artifact. A .json artifact is a
// declarative parameters file and class is ignored; anything else names a custom
// model whose class defaults to the file stem.
func Derive(artifact, class, image string) (Manifest, error) {
	if strings.TrimSpace(artifact) == "" {
		return Manifest{}, fmt.Errorf("%w: prediction artifact is required", domain.ErrConfiguration)
	}
	m := Manifest{Image: image, Artifact: artifact}
	base := filepath.Base(artifact)
	ext := filepath.Ext(base)

	if strings.EqualFold(ext, ".json") {
		p, err := logreg.LoadParameters(artifact)
		if err != nil {
			return Manifest{}, err
		}
		m.Module = registry.DeclarativeModule
		m.Class = registry.DeclarativeTypePrefix + p.ModelType
		m.Target = ParametersTarget
		m.Env = map[string]string{
			config.EnvModule:     m.Module,
			config.EnvType:       m.Class,
			config.EnvParameters: m.Target,
		}
		return m, nil
	}

	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return Manifest{}, fmt.Errorf("%w: cannot derive a module name from %q", domain.ErrConfiguration, artifact)
	}
	m.Module = stem
	m.Class = strings.TrimSpace(class)
	if m.Class == "" {
		m.Class = stem
	}
	m.Target = "/app/" + base
	m.Env = map[string]string{
		config.EnvModule: m.Module,
		config.EnvType:   m.Class,
	}
	return m, nil
}

// Write encodes m as YAML.
func Write(w io.Writer, m Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// WriteDockerfile renders the Dockerfile that packages m on top of base.
// An empty base selects DefaultBaseImage.
func WriteDockerfile(w io.Writer, m Manifest, base string) error {
	if base == "" {
		base = DefaultBaseImage
	}
	if m.Artifact == "" || m.Target == "" {
		return fmt.Errorf("%w: manifest has no artifact", domain.ErrConfiguration)
	}
	keys := make([]string, 0, len(m.Env))
	for k := range m.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n", base)
	b.WriteString("WORKDIR /app\n")
	fmt.Fprintf(&b, "COPY %s %s\n", filepath.ToSlash(m.Artifact), m.Target)
	for _, k := range keys {
		fmt.Fprintf(&b, "ENV %s=%s\n", k, m.Env[k])
	}
	_, err := io.WriteString(w, b.String())
	return err
}
