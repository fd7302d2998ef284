package repeat

import (
	"errors"
	"fmt"

	"tagmerge/internal/schema"
)

// ValueAttribute is the container attribute that holds repeated elements.
const ValueAttribute = "value"

// ErrInvalidContainer reports a container schema that cannot hold its elements.
var ErrInvalidContainer = errors.New("invalid repeatable container")

// Declared is one tag application: a schema name and its literal values.
type Declared struct {
	Schema     string
	Attributes *schema.Attributes
}

// Containers decides which schemas are repeatable containers. The zero value
// and None() recognise no containers.
type Containers struct {
	// explicit maps container schema name to element schema name.
	explicit map[string]string
	standard bool
	parent   *Containers
}

// Standard infers containers from each element schema's Repeatable field.
func Standard() *Containers {
	return &Containers{standard: true}
}

// None recognises no containers, so container tags stay visible as themselves.
func None() *Containers {
	return &Containers{}
}

// Explicit registers container as the container of element.
func Explicit(container, element string) *Containers {
	return &Containers{explicit: map[string]string{container: element}}
}

// And chains an explicit container mapping after c.
func (c *Containers) And(container, element string) *Containers {
	next := Explicit(container, element)
	next.parent = c

	return next
}

// ContainerFor returns the container schema of a repeatable element schema.
// Explicit mappings win over the element's own declared container.
func (c *Containers) ContainerFor(reg *schema.Registry, element string) (string, bool, error) {
	elem, err := reg.Resolve(element)
	if err != nil {
		return "", false, err
	}

	for cur := c; cur != nil; cur = cur.parent {
		for container, el := range cur.explicit {
			elemSchema, err := reg.Resolve(el)
			if err != nil {
				return "", false, err
			}

			if elemSchema != elem {
				continue
			}

			cs, err := checkContainer(reg, container, elem)
			if err != nil {
				return "", false, err
			}

			return cs.Name, true, nil
		}

		if cur.standard && elem.Repeatable != "" {
			cs, err := checkContainer(reg, elem.Repeatable, elem)
			if err != nil {
				return "", false, err
			}

			return cs.Name, true, nil
		}
	}

	return "", false, nil
}

// elementOf returns the element schema held by container, if container is
// recognised as one.
func (c *Containers) elementOf(reg *schema.Registry, container *schema.TypeSchema) (*schema.TypeSchema, bool, error) {
	for cur := c; cur != nil; cur = cur.parent {
		for name, el := range cur.explicit {
			cs, err := reg.Resolve(name)
			if err != nil {
				return nil, false, err
			}

			if cs != container {
				continue
			}

			elem, err := reg.Resolve(el)
			if err != nil {
				return nil, false, err
			}

			if _, err := checkContainer(reg, name, elem); err != nil {
				return nil, false, err
			}

			return elem, true, nil
		}

		if !cur.standard {
			continue
		}

		attr, ok := container.Attribute(ValueAttribute)
		if !ok || attr.Type.Kind != schema.KindTag || !attr.Type.Array {
			continue
		}

		elem, err := reg.Resolve(attr.Type.Ref)
		if errors.Is(err, schema.ErrNotFound) {
			continue
		}

		if err != nil {
			return nil, false, err
		}

		if elem.Repeatable == "" {
			continue
		}

		declared, err := reg.Resolve(elem.Repeatable)
		if err == nil && declared == container {
			return elem, true, nil
		}
	}

	return nil, false, nil
}

// checkContainer verifies that container declares a value attribute holding
// an array of element tags.
func checkContainer(reg *schema.Registry, container string, element *schema.TypeSchema) (*schema.TypeSchema, error) {
	cs, err := reg.Resolve(container)
	if err != nil {
		return nil, fmt.Errorf("%w: container %q of %q: %w", ErrInvalidContainer, container, element.Name, err)
	}

	attr, ok := cs.Attribute(ValueAttribute)
	if !ok || attr.Type.Kind != schema.KindTag || !attr.Type.Array {
		return nil, fmt.Errorf("%w: container %q must declare a %q attribute of type []tag(%s)",
			ErrInvalidContainer, cs.Name, ValueAttribute, element.Name)
	}

	held, err := reg.Resolve(attr.Type.Ref)
	if err != nil || held != element {
		return nil, fmt.Errorf("%w: container %q holds %q, not %q",
			ErrInvalidContainer, cs.Name, attr.Type.Ref, element.Name)
	}

	return cs, nil
}

// Expand returns the elements held by one application of schemaName when it
// is a recognised container. ok is false for anything else.
func (c *Containers) Expand(reg *schema.Registry, schemaName string, attrs *schema.Attributes) ([]Declared, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	cs, err := reg.Resolve(schemaName)
	if errors.Is(err, schema.ErrNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	elem, ok, err := c.elementOf(reg, cs)
	if err != nil || !ok {
		return nil, false, err
	}

	attr, _ := cs.Attribute(ValueAttribute)

	raw, present := attrs.Get(ValueAttribute)
	if !present {
		raw = attr.Default
	}

	if raw == nil {
		return []Declared{}, true, nil
	}

	normalized, err := schema.Normalize(raw, attr.Type)
	if err != nil {
		return nil, false, fmt.Errorf("container %q: %w", cs.Name, err)
	}

	items := normalized.([]any)
	out := make([]Declared, 0, len(items))

	for _, item := range items {
		out = append(out, Declared{Schema: elem.Name, Attributes: item.(*schema.Attributes)})
	}

	return out, true, nil
}

// ExpandAll replaces every container application in decls by its elements,
// in place, so bare repeats and container-held repeats keep their
// left-to-right source order.
func (c *Containers) ExpandAll(reg *schema.Registry, decls []Declared) ([]Declared, error) {
	out := make([]Declared, 0, len(decls))

	for _, d := range decls {
		elems, ok, err := c.Expand(reg, d.Schema, d.Attributes)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, elems...)
			continue
		}

		out = append(out, d)
	}

	return out, nil
}
