package logreg

import (
	"fmt"
	"os"
	"path/filepath"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"

	"github.com/tidwall/gjson"
)

// Reserved artifact keys. Every other key is a feature weight.
const (
	KeyModelType = "model_type"
	KeyIntercept = "intercept"
	KeyModelURI  = "model_uri"
	KeyModelName = "model_name"
)

// LoadParameters reads a parameters artifact from disk.
func LoadParameters(path string) (model.ModelParameters, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return model.ModelParameters{}, fmt.Errorf("%w: read parameters: %v", domain.ErrConfiguration, err)
	}
	p, err := ParseParameters(data)
	if err != nil {
		return model.ModelParameters{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseParameters decodes an artifact of the form
//
//	{"model_type": "logistic_regression", "x1": 1.0, "x2": -1.0, "intercept": 0.5}
//
// Feature order follows the document order of the keys.
func ParseParameters(data []byte) (model.ModelParameters, error) {
	var p model.ModelParameters
	if !gjson.ValidBytes(data) {
		return p, fmt.Errorf("%w: parameters are not valid JSON", domain.ErrConfiguration)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return p, fmt.Errorf("%w: parameters must be a JSON object", domain.ErrConfiguration)
	}

	var (
		perr         error
		hasType      bool
		hasIntercept bool
		seen         = make(map[string]struct{})
	)
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if _, dup := seen[name]; dup {
			perr = fmt.Errorf("%w: duplicate key %q", domain.ErrConfiguration, name)
			return false
		}
		seen[name] = struct{}{}

		switch name {
		case KeyModelType:
			if value.Type != gjson.String {
				perr = fmt.Errorf("%w: %s must be a string", domain.ErrConfiguration, KeyModelType)
				return false
			}
			p.ModelType = value.String()
			hasType = true
		case KeyIntercept:
			if value.Type != gjson.Number {
				perr = fmt.Errorf("%w: %s must be a number", domain.ErrConfiguration, KeyIntercept)
				return false
			}
			p.Intercept = value.Float()
			hasIntercept = true
		case KeyModelURI:
			p.ModelURI = value.String()
		case KeyModelName:
			p.ModelName = value.String()
		default:
			if name == "" {
				perr = fmt.Errorf("%w: empty feature name", domain.ErrConfiguration)
				return false
			}
			if value.Type != gjson.Number {
				perr = fmt.Errorf("%w: weight of %q must be a number", domain.ErrConfiguration, name)
				return false
			}
			p.Coefficients = append(p.Coefficients, model.Coefficient{Feature: name, Weight: value.Float()})
		}
		return true
	})
	if perr != nil {
		return model.ModelParameters{}, perr
	}
	if !hasType {
		return model.ModelParameters{}, fmt.Errorf("%w: missing %s", domain.ErrConfiguration, KeyModelType)
	}
	if !hasIntercept {
		return model.ModelParameters{}, fmt.Errorf("%w: missing %s", domain.ErrConfiguration, KeyIntercept)
	}
	return p, nil
}
