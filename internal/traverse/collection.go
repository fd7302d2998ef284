package traverse

import (
	"errors"
	"iter"
	"sort"

	"go.uber.org/zap"

	"tagmerge/internal/alias"
	"tagmerge/internal/merge"
	"tagmerge/internal/schema"
)

// Collection holds the tags collected for one element. It is immutable and
// every query walks it afresh.
type Collection struct {
	builder    *alias.Builder
	logger     *zap.Logger
	element    string
	strategy   Strategy
	aggregates []aggregate
}

// Element returns the queried element.
func (c *Collection) Element() string {
	return c.element
}

// Strategy returns the strategy the collection was built with.
func (c *Collection) Strategy() Strategy {
	return c.strategy
}

// Aggregates returns the number of hierarchy levels collected.
func (c *Collection) Aggregates() int {
	return len(c.aggregates)
}

// views returns every view reachable from one aggregate ordered by depth,
// then declaration order, then traversal order.
func (c *Collection) views(agg aggregate) ([]*merge.View, error) {
	var out []*merge.View

	origin := merge.Origin{Source: agg.element, Aggregate: agg.index}

	for _, d := range agg.decls {
		views, err := merge.Expand(c.builder, d.Schema, d.Attributes, origin)
		if errors.Is(err, schema.ErrNotFound) {
			c.logger.Debug("unknown tag skipped", zap.String("element", agg.element), zap.String("schema", d.Schema))
			continue
		}

		if err != nil {
			return nil, err
		}

		out = append(out, views...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth() < out[j].Depth()
	})

	return out, nil
}

// canonical resolves a requested schema name to the registered name. ok is
// false when no such schema exists.
func (c *Collection) canonical(name string) (string, bool, error) {
	s, err := c.builder.Registry().Resolve(name)
	if errors.Is(err, schema.ErrNotFound) {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return s.Name, true, nil
}

// All iterates every view ordered by aggregate index, then depth, then
// declaration order. Iteration stops after yielding an error. Each range
// starts over from the first aggregate.
func (c *Collection) All() iter.Seq2[*merge.View, error] {
	return func(yield func(*merge.View, error) bool) {
		for _, agg := range c.aggregates {
			views, err := c.views(agg)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, v := range views {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// Stream iterates the views of the named schema in the order of All. The
// sequence is restartable: each range walks the collected aggregates again
// and rebuilds their views.
func (c *Collection) Stream(name string) iter.Seq2[*merge.View, error] {
	return func(yield func(*merge.View, error) bool) {
		want, ok, err := c.canonical(name)
		if err != nil {
			yield(nil, err)
			return
		}

		if !ok {
			return
		}

		for v, err := range c.All() {
			if err != nil {
				yield(nil, err)
				return
			}

			if v.SchemaName() == want && !yield(v, nil) {
				return
			}
		}
	}
}

// Get returns the most local view of the named schema: views of the first
// aggregate that has any win over later aggregates, then the smallest depth
// within that aggregate, then the first encountered. A composed tag declared
// on the element thus beats an inherited plain tag. It returns
// merge.Missing() when the schema is not present.
func (c *Collection) Get(name string) (*merge.View, error) {
	best := merge.Missing()

	for v, err := range c.Stream(name) {
		if err != nil {
			return nil, err
		}

		if best.IsPresent() && v.AggregateIndex() != best.AggregateIndex() {
			break
		}

		if !best.IsPresent() || v.Depth() < best.Depth() {
			best = v
		}
	}

	return best, nil
}

// IsPresent reports whether the named schema is declared or meta-present.
func (c *Collection) IsPresent(name string) (bool, error) {
	v, err := c.Get(name)
	if err != nil {
		return false, err
	}

	return v.IsPresent(), nil
}

// IsDirectlyPresent reports whether the named schema is declared on a
// collected element.
func (c *Collection) IsDirectlyPresent(name string) (bool, error) {
	v, err := c.Get(name)
	if err != nil {
		return false, err
	}

	return v.IsDirectlyPresent(), nil
}

// Collect drains a stream into a slice, stopping at the first error.
func Collect(seq iter.Seq2[*merge.View, error]) ([]*merge.View, error) {
	var out []*merge.View

	for v, err := range seq {
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// FirstRunOf keeps the leading run of views that share the aggregate index
// of the first view, which recovers repeats declared together.
func FirstRunOf(seq iter.Seq2[*merge.View, error]) iter.Seq2[*merge.View, error] {
	return func(yield func(*merge.View, error) bool) {
		first := -1

		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}

			if first < 0 {
				first = v.AggregateIndex()
			}

			if v.AggregateIndex() != first || !yield(v, nil) {
				return
			}
		}
	}
}

// Unique keeps the first view for each key.
func Unique[K comparable](seq iter.Seq2[*merge.View, error], key func(*merge.View) K) iter.Seq2[*merge.View, error] {
	return func(yield func(*merge.View, error) bool) {
		seen := make(map[K]struct{})

		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}

			k := key(v)
			if _, dup := seen[k]; dup {
				continue
			}

			seen[k] = struct{}{}

			if !yield(v, nil) {
				return
			}
		}
	}
}
