package main

import (
	"tagmerge/internal/alias"
	"tagmerge/internal/declfile"
	"tagmerge/internal/schema"
	"tagmerge/internal/traverse"
)

// session is one loaded declaration file with its caches.
type session struct {
	model   *declfile.Model
	builder *alias.Builder
}

func (a *app) load() (*declfile.File, error) {
	return declfile.LoadFile(a.cfg.Model)
}

func (a *app) open(f *declfile.File) (*session, error) {
	m, err := declfile.NewModel(f)
	if err != nil {
		return nil, err
	}

	registry := schema.NewRegistry(m, schema.WithLogger(a.logger))

	return &session{
		model:   m,
		builder: alias.NewBuilder(registry),
	}, nil
}

// query identifies the schema to look up on an element.
type query struct {
	element string
	schema  string
}

// collect loads the declaration file and collects the tags of q.element with
// the configured strategy.
func (a *app) collect(q query) (*traverse.Collection, error) {
	strategy, err := traverse.ParseStrategy(a.cfg.Strategy)
	if err != nil {
		return nil, err
	}

	f, err := a.load()
	if err != nil {
		return nil, err
	}

	s, err := a.open(f)
	if err != nil {
		return nil, err
	}

	return traverse.From(s.builder, s.model, q.element, strategy)
}
