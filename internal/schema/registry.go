package schema

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned by a Loader for unknown schema names.
	ErrNotFound = errors.New("schema not found")
	// ErrInvalidSchema reports a schema that cannot be used as loaded.
	ErrInvalidSchema = errors.New("invalid schema")
)

// Loader resolves a schema name to its TypeSchema.
type Loader interface {
	Load(name string) (*TypeSchema, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name string) (*TypeSchema, error)

// Load calls f(name).
func (f LoaderFunc) Load(name string) (*TypeSchema, error) {
	return f(name)
}

// MapLoader is a Loader over an in-memory set of schemas keyed by name.
type MapLoader map[string]*TypeSchema

// NewMapLoader indexes schemas by name.
func NewMapLoader(schemas ...*TypeSchema) MapLoader {
	m := make(MapLoader, len(schemas))
	for _, s := range schemas {
		m[s.Name] = s
	}

	return m
}

// Load returns the schema registered under name.
func (m MapLoader) Load(name string) (*TypeSchema, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Registry caches resolved schemas by name. It is safe for concurrent use:
// concurrent misses for one name share a single load, and the first
// published schema is the one every caller sees until Reset.
type Registry struct {
	loader Loader
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*TypeSchema
	group singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty Registry backed by loader.
func NewRegistry(loader Loader, opts ...Option) *Registry {
	r := &Registry{
		loader: loader,
		logger: zap.NewNop(),
		cache:  make(map[string]*TypeSchema),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Logger returns the registry logger.
func (r *Registry) Logger() *zap.Logger {
	return r.logger
}

// Resolve returns the schema for name, loading and validating it on first
// use. Failures are returned to the caller and are not cached.
func (r *Registry) Resolve(name string) (*TypeSchema, error) {
	r.mu.RLock()
	s, ok := r.cache[name]
	r.mu.RUnlock()

	if ok {
		return s, nil
	}

	v, err, shared := r.group.Do(name, func() (any, error) {
		loaded, err := r.loader.Load(name)
		if err != nil {
			return nil, err
		}

		if loaded == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}

		prepared, err := prepare(loaded)
		if err != nil {
			return nil, err
		}

		return r.publish(name, prepared), nil
	})
	if err != nil {
		r.logger.Debug("schema resolution failed", zap.String("schema", name), zap.Error(err))
		return nil, err
	}

	r.logger.Debug("schema resolved", zap.String("schema", name), zap.Bool("shared", shared))

	return v.(*TypeSchema), nil
}

// publish stores s under name and its canonical name unless another schema
// was published first, in which case that one is returned.
func (r *Registry) publish(name string, s *TypeSchema) *TypeSchema {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.cache[name]; ok {
		return existing
	}

	if existing, ok := r.cache[s.Name]; ok {
		s = existing
	}

	r.cache[name] = s
	r.cache[s.Name] = s

	return s
}

// Len returns the number of cached names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.cache)
}

// Reset drops every cached schema. It must not run while a traversal that
// relies on a stable cache is in flight.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]*TypeSchema)
	r.mu.Unlock()

	r.logger.Debug("schema registry reset")
}

// prepare validates s and returns a copy with defaults normalized to their
// declared types.
func prepare(s *TypeSchema) (*TypeSchema, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("%w: schema without a name", ErrInvalidSchema)
	}

	out := *s
	out.Attributes = make([]AttributeSpec, len(s.Attributes))
	seen := make(map[string]struct{}, len(s.Attributes))

	for i, attr := range s.Attributes {
		if attr.Name == "" {
			return nil, fmt.Errorf("%w: %s: attribute %d has no name", ErrInvalidSchema, s.Name, i)
		}

		if _, dup := seen[attr.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate attribute %q", ErrInvalidSchema, s.Name, attr.Name)
		}

		seen[attr.Name] = struct{}{}

		if !attr.Type.IsValid() {
			return nil, fmt.Errorf("%w: %s.%s: invalid type", ErrInvalidSchema, s.Name, attr.Name)
		}

		if attr.Type.Kind == KindTag && attr.Type.Ref == "" {
			return nil, fmt.Errorf("%w: %s.%s: nested tag type without schema", ErrInvalidSchema, s.Name, attr.Name)
		}

		if attr.Default != nil {
			def, err := Normalize(attr.Default, attr.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: default: %w", ErrInvalidSchema, s.Name, attr.Name, err)
			}

			attr.Default = def
		}

		out.Attributes[i] = attr
	}

	for i, meta := range s.Meta {
		if meta.Schema == "" {
			return nil, fmt.Errorf("%w: %s: meta-tag %d has no schema", ErrInvalidSchema, s.Name, i)
		}
	}

	return &out, nil
}
