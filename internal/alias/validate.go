package alias

import (
	"errors"

	"go.uber.org/zap"

	"tagmerge/internal/schema"
)

// validate checks every alias declared by s. Each schema is checked once per
// build.
func (st *buildState) validate(s *schema.TypeSchema) error {
	if st.validated[s] {
		return nil
	}

	st.validated[s] = true

	for ai := range s.Attributes {
		attr := &s.Attributes[ai]

		for _, d := range attr.Aliases {
			if err := st.b.checkAlias(s, attr, d); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *Builder) checkAlias(s *schema.TypeSchema, attr *schema.AttributeSpec, d schema.AliasDecl) error {
	targetSchemaName := d.TargetSchema(s.Name)

	name, ok := d.TargetName(attr.Name)
	if !ok {
		return configError(ReasonAmbiguous, s, attr.Name, targetSchemaName, d.Attribute).
			withDetail("attribute %q and value %q", d.Attribute, d.Value)
	}

	target := s
	if targetSchemaName != s.Name {
		resolved, err := b.registry.Resolve(targetSchemaName)
		if errors.Is(err, schema.ErrNotFound) {
			return configError(ReasonMissingTarget, s, attr.Name, targetSchemaName, name).
				withDetail("schema %q not found", targetSchemaName)
		}

		if err != nil {
			return err
		}

		target = resolved
	}

	targetAttr, ok := target.Attribute(name)
	if !ok {
		return configError(ReasonMissingTarget, s, attr.Name, target.Name, name)
	}

	if target == s {
		return checkMirror(s, attr, targetAttr)
	}

	present, err := b.metaPresent(s, target)
	if err != nil {
		return err
	}

	if !present {
		return configError(ReasonNotMetaPresent, s, attr.Name, target.Name, name)
	}

	if targetAttr.Type != attr.Type && targetAttr.Type != schema.ArrayOf(attr.Type) {
		return configError(ReasonMismatchedKind, s, attr.Name, target.Name, name).
			withDetail("%s vs %s", attr.Type, targetAttr.Type)
	}

	if aliasesBack(targetAttr, target, s, attr.Name) && !sameDefault(attr, targetAttr) {
		return configError(ReasonMismatchedDefault, s, attr.Name, target.Name, name).
			withDetail("%s vs %s", formatDefault(attr), formatDefault(targetAttr))
	}

	return nil
}

func checkMirror(s *schema.TypeSchema, attr, target *schema.AttributeSpec) error {
	if attr.Name == target.Name {
		return configError(ReasonSelfReference, s, attr.Name, s.Name, target.Name)
	}

	if attr.Type != target.Type {
		return configError(ReasonMismatchedKind, s, attr.Name, s.Name, target.Name).
			withDetail("%s vs %s", attr.Type, target.Type)
	}

	if !sameDefault(attr, target) {
		return configError(ReasonMismatchedDefault, s, attr.Name, s.Name, target.Name).
			withDetail("%s vs %s", formatDefault(attr), formatDefault(target))
	}

	return nil
}

// aliasesBack reports whether attr of schema s declares an alias for the
// named attribute of schema back.
func aliasesBack(attr *schema.AttributeSpec, s, back *schema.TypeSchema, name string) bool {
	for _, d := range attr.Aliases {
		got, ok := d.TargetName(attr.Name)
		if ok && got == name && d.TargetSchema(s.Name) == back.Name {
			return true
		}
	}

	return false
}

// metaPresent reports whether target is reachable from s through meta-tags.
func (b *Builder) metaPresent(s, target *schema.TypeSchema) (bool, error) {
	reach, err := b.reachable(s)
	if err != nil {
		return false, err
	}

	_, ok := reach[target.Name]

	return ok, nil
}

func (b *Builder) reachable(s *schema.TypeSchema) (map[string]struct{}, error) {
	b.mu.RLock()
	reach, ok := b.reach[s.Name]
	b.mu.RUnlock()

	if ok {
		return reach, nil
	}

	reach = make(map[string]struct{})
	visited := map[*schema.TypeSchema]bool{s: true}
	queue := []*schema.TypeSchema{s}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		metas, err := b.metaTags(cur)
		if err != nil {
			return nil, err
		}

		for _, meta := range metas {
			reach[meta.schema.Name] = struct{}{}

			if !visited[meta.schema] {
				visited[meta.schema] = true
				queue = append(queue, meta.schema)
			}
		}
	}

	b.logger.Debug("meta-tag reachability computed", zap.String("schema", s.Name), zap.Int("reachable", len(reach)))

	b.mu.Lock()
	b.reach[s.Name] = reach
	b.mu.Unlock()

	return reach, nil
}
