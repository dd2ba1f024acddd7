// Package registry resolves a (module, type) pair read from configuration to a
// model implementation. It replaces import-by-name with an explicit table that
// declarative loaders and custom Go models register into.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	"fair-model-service/internal/domain/ports/adapter"
	"fair-model-service/internal/model/logreg"
)

// DeclarativeModule is the generic loader that builds models from a parameters artifact.
const DeclarativeModule = "model_execution_default"

// DeclarativeTypePrefix prefixes the family name in declarative type identifiers.
const DeclarativeTypePrefix = "model_execution_"

// Options is handed to every factory.
type Options struct {
	// ParametersPath is the declarative parameters artifact.
	ParametersPath string
}

// Factory constructs a model handle. It runs once per process.
type Factory func(opts Options) (adapter.ModelHandle, error)

type key struct{ module, typ string }

type Registry struct {
	mu        sync.RWMutex
	factories map[key]Factory
}

// New returns a registry with the declarative loader already registered.
func New() *Registry {
	r := &Registry{factories: make(map[key]Factory)}
	r.registerDeclarative(model.ModelTypeLogisticRegression, func(p model.ModelParameters) (adapter.ModelHandle, error) {
		return logreg.New(p)
	})
	return r
}

// Register adds a factory. Registering the same pair twice panics, like http.Handle.
func (r *Registry) Register(module, typ string, f Factory) {
	if module == "" || typ == "" {
		panic("registry: empty module or type")
	}
	if f == nil {
		panic("registry: nil factory for " + module + "." + typ)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{module, typ}
	if _, dup := r.factories[k]; dup {
		panic("registry: duplicate registration for " + module + "." + typ)
	}
	r.factories[k] = f
}

// Resolve looks up and instantiates the model. Every failure wraps domain.ErrConfiguration.
func (r *Registry) Resolve(module, typ string, opts Options) (h adapter.ModelHandle, err error) {
	module, typ = strings.TrimSpace(module), strings.TrimSpace(typ)
	if module == "" || typ == "" {
		return nil, fmt.Errorf("%w: model module and type are required", domain.ErrConfiguration)
	}

	r.mu.RLock()
	f, ok := r.factories[key{module, typ}]
	knownModule := ok || r.hasModule(module)
	r.mu.RUnlock()
	if !ok {
		if !knownModule {
			return nil, fmt.Errorf("%w: unknown model module %q", domain.ErrConfiguration, module)
		}
		return nil, fmt.Errorf("%w: module %q has no model type %q", domain.ErrConfiguration, module, typ)
	}

	defer func() {
		if rec := recover(); rec != nil {
			h, err = nil, fmt.Errorf("%w: instantiate %s.%s: panic: %v", domain.ErrConfiguration, module, typ, rec)
		}
	}()
	h, err = f(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: instantiate %s.%s: %v", domain.ErrConfiguration, module, typ, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: instantiate %s.%s: factory returned no model", domain.ErrConfiguration, module, typ)
	}
	return h, nil
}

// Keys lists registered pairs as "module.type", sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k.module+"."+k.typ)
	}
	sort.Strings(out)
	return out
}

// caller holds r.mu
func (r *Registry) hasModule(module string) bool {
	for k := range r.factories {
		if k.module == module {
			return true
		}
	}
	return false
}

// registerDeclarative makes a family resolvable as both "model_execution_<family>" and "<family>".
func (r *Registry) registerDeclarative(family string, build func(model.ModelParameters) (adapter.ModelHandle, error)) {
	f := func(opts Options) (adapter.ModelHandle, error) {
		if opts.ParametersPath == "" {
			return nil, fmt.Errorf("no parameters artifact configured")
		}
		p, err := logreg.LoadParameters(opts.ParametersPath)
		if err != nil {
			return nil, err
		}
		if p.ModelType != family {
			return nil, fmt.Errorf("artifact model_type %q does not match requested %q", p.ModelType, family)
		}
		return build(p)
	}
	r.Register(DeclarativeModule, DeclarativeTypePrefix+family, f)
	r.Register(DeclarativeModule, family, f)
}

// Default is the process-wide registry custom models register into from init.
var Default = New()

// Register adds a factory to Default.
func Register(module, typ string, f Factory) { Default.Register(module, typ, f) }

// Resolve resolves against Default.
func Resolve(module, typ string, opts Options) (adapter.ModelHandle, error) {
	return Default.Resolve(module, typ, opts)
}
