package traverse

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tagmerge/internal/alias"
	"tagmerge/internal/repeat"
	"tagmerge/internal/schema"
)

// aggregate is one hierarchy level with its declared tags, containers
// already expanded.
type aggregate struct {
	index   int
	element string
	decls   []repeat.Declared
}

type walker struct {
	source     Source
	registry   *schema.Registry
	containers *repeat.Containers
	logger     *zap.Logger
	aggregates []aggregate
}

func (w *walker) add(element string, decls []repeat.Declared) error {
	expanded, err := w.containers.ExpandAll(w.registry, decls)
	if err != nil {
		return fmt.Errorf("element %s: %w", element, err)
	}

	w.aggregates = append(w.aggregates, aggregate{
		index:   len(w.aggregates),
		element: element,
		decls:   expanded,
	})

	return nil
}

func (w *walker) declarations(element string) ([]repeat.Declared, error) {
	decls, err := w.source.Declarations(element)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", element, err)
	}

	return decls, nil
}

func (w *walker) direct(element string) error {
	decls, err := w.declarations(element)
	if err != nil {
		return err
	}

	return w.add(element, decls)
}

// inherited adds the element, then walks superclasses adding only inheritable
// tags whose schema no closer class declared.
func (w *walker) inherited(element string) error {
	decls, err := w.declarations(element)
	if err != nil {
		return err
	}

	if err := w.add(element, decls); err != nil {
		return err
	}

	if w.source.Kind(element) != KindClass {
		return nil
	}

	seen := make(map[string]bool)
	w.markSeen(seen, decls)

	visited := map[string]bool{element: true}

	for cur, ok := w.source.Superclass(element); ok && !visited[cur]; cur, ok = w.source.Superclass(cur) {
		visited[cur] = true

		decls, err := w.declarations(cur)
		if err != nil {
			return err
		}

		var kept []repeat.Declared

		for _, d := range decls {
			s, err := w.registry.Resolve(d.Schema)
			if errors.Is(err, schema.ErrNotFound) {
				w.logger.Debug("unknown tag skipped", zap.String("element", cur), zap.String("schema", d.Schema))
				continue
			}

			if err != nil {
				return err
			}

			if s.Inherited && !seen[s.Name] {
				kept = append(kept, d)
			}
		}

		w.markSeen(seen, decls)

		if err := w.add(cur, kept); err != nil {
			return err
		}
	}

	return nil
}

func (w *walker) markSeen(seen map[string]bool, decls []repeat.Declared) {
	for _, d := range decls {
		if s, err := w.registry.Resolve(d.Schema); err == nil {
			seen[s.Name] = true
		}
	}
}

func (w *walker) superclasses(element string) error {
	visited := make(map[string]bool)

	for cur, ok := element, true; ok && !visited[cur]; cur, ok = w.source.Superclass(cur) {
		visited[cur] = true

		if err := w.direct(cur); err != nil {
			return err
		}
	}

	return nil
}

// exhaustive adds the element with its bridged method, then its interfaces
// and finally its superclass, each hierarchy visited once.
func (w *walker) exhaustive(element string, visited map[string]bool) error {
	if visited[element] {
		return nil
	}

	visited[element] = true

	decls, err := w.declarations(element)
	if err != nil {
		return err
	}

	if bridged, ok := w.source.Bridged(element); ok && bridged != element {
		visited[bridged] = true

		more, err := w.declarations(bridged)
		if err != nil {
			return err
		}

		decls = append(append([]repeat.Declared(nil), decls...), more...)
	}

	if err := w.add(element, decls); err != nil {
		return err
	}

	for _, iface := range w.source.Interfaces(element) {
		if err := w.exhaustive(iface, visited); err != nil {
			return err
		}
	}

	if super, ok := w.source.Superclass(element); ok {
		return w.exhaustive(super, visited)
	}

	return nil
}

func (w *walker) walk(element string, strategy Strategy) error {
	switch strategy {
	case Direct:
		return w.direct(element)
	case Inherited:
		return w.inherited(element)
	case SuperClass:
		return w.superclasses(element)
	case Exhaustive:
		return w.exhaustive(element, make(map[string]bool))
	default:
		return fmt.Errorf("unknown search strategy %d", strategy)
	}
}

type options struct {
	containers *repeat.Containers
	logger     *zap.Logger
}

// Option configures From.
type Option func(*options)

// WithContainers sets the containers expanded among declared tags. The
// builder's containers are used by default.
func WithContainers(c *repeat.Containers) Option {
	return func(o *options) {
		if c != nil {
			o.containers = c
		}
	}
}

// WithLogger sets the logger used for skipped declarations.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// From collects the tags of element under strategy. Source failures and
// invalid repeatable containers are returned here; alias graph errors are
// returned by the queries that reach them.
func From(b *alias.Builder, source Source, element string, strategy Strategy, opts ...Option) (*Collection, error) {
	o := options{containers: b.Containers(), logger: b.Logger()}
	for _, opt := range opts {
		opt(&o)
	}

	w := &walker{
		source:     source,
		registry:   b.Registry(),
		containers: o.containers,
		logger:     o.logger,
	}

	if err := w.walk(element, strategy); err != nil {
		return nil, err
	}

	o.logger.Debug("element collected",
		zap.String("element", element),
		zap.Stringer("strategy", strategy),
		zap.Int("aggregates", len(w.aggregates)))

	return &Collection{
		builder:    b,
		logger:     o.logger,
		element:    element,
		strategy:   strategy,
		aggregates: w.aggregates,
	}, nil
}
