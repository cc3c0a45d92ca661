package gridframe

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/hugr-lab/gridframe/adders"
	"github.com/hugr-lab/gridframe/internal/serialize"
)

// RegistryBuilder collects adder categories.
// Not thread-safe - use only during initialization.
type RegistryBuilder struct {
	config   Config
	elements []adders.ElementAdder
	models   []adders.ModelAdder
	built    bool
}

// NewRegistryBuilder creates a builder with no categories.
//
// Example:
//
//	reg, err := gridframe.NewRegistryBuilder(cfg).
//	    Elements(adders.Buses, adders.Generators).
//	    DynamicModels(adders.GeneratorModels).
//	    Build()
func NewRegistryBuilder(config Config) *RegistryBuilder {
	return &RegistryBuilder{config: config}
}

// Elements registers element and extension categories.
func (rb *RegistryBuilder) Elements(a ...adders.ElementAdder) *RegistryBuilder {
	rb.elements = append(rb.elements, a...)
	return rb
}

// DynamicModels registers dynamic model categories.
func (rb *RegistryBuilder) DynamicModels(a ...adders.ModelAdder) *RegistryBuilder {
	rb.models = append(rb.models, a...)
	return rb
}

// Build validates every category and returns an immutable Registry.
// Can only be called once. Category names must be non-empty and unique
// across element and model categories.
func (rb *RegistryBuilder) Build() (*Registry, error) {
	if rb.built {
		return nil, fmt.Errorf("%w: registry already built", ErrInvalidConfig)
	}

	config, err := rb.config.resolve()
	if err != nil {
		return nil, err
	}

	r := &Registry{
		config:   config,
		elements: make(map[string]adders.ElementAdder, len(rb.elements)),
		models:   make(map[string]adders.ModelAdder, len(rb.models)),
	}

	seen := make(map[string]bool)
	claim := func(name string, validate func() error) error {
		if name == "" {
			return fmt.Errorf("%w: category name cannot be empty", ErrInvalidConfig)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate category %s", ErrInvalidConfig, name)
		}
		seen[name] = true
		if err := validate(); err != nil {
			return fmt.Errorf("%w: category %s: %w", ErrInvalidConfig, name, err)
		}
		return nil
	}
	for _, a := range rb.elements {
		if err := claim(a.Name(), a.Validate); err != nil {
			return nil, err
		}
		r.elements[a.Name()] = a
	}
	for _, a := range rb.models {
		if err := claim(a.Name(), a.Validate); err != nil {
			return nil, err
		}
		r.models[a.Name()] = a
	}

	if config.Compression {
		if r.codec, err = serialize.NewCodec(zstd.SpeedDefault); err != nil {
			return nil, err
		}
	}

	rb.built = true
	config.Logger.Debug("Registry built",
		"elements", len(r.elements),
		"dynamic_models", len(r.models),
		"default_provider", config.DefaultProvider,
		"compression", config.Compression)
	return r, nil
}

// NewRegistry builds a registry holding every category declared by the
// adders package.
func NewRegistry(config Config) (*Registry, error) {
	return NewRegistryBuilder(config).
		Elements(adders.Elements()...).
		DynamicModels(adders.DynamicModels()...).
		Build()
}
