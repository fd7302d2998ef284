package declfile

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"tagmerge/internal/diagnostic"
	"tagmerge/internal/match"
	"tagmerge/internal/schema"
)

// Validate checks a declaration file for structural problems. Alias graph
// consistency is checked later, when each schema's alias graph is built.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("file_is_nil", "declaration file is nil", "", "")
		return res
	}

	validateStruct(res, f)

	schemas := newNameIndex[*SchemaDecl]()

	for i := range f.Schemas {
		s := &f.Schemas[i]
		if s.Name == "" {
			continue
		}

		if !schemas.add(s.Name, s) {
			res.AddError("duplicate_schema", fmt.Sprintf("duplicate schema %q", s.Name), s.Name, "")
		}
	}

	v := &fileValidator{res: res, schemas: schemas}

	for i := range f.Schemas {
		v.validateSchema(&f.Schemas[i])
	}

	elements := newNameIndex[*ElementDecl]()

	for i := range f.Elements {
		e := &f.Elements[i]
		if e.Name == "" {
			continue
		}

		if !elements.add(e.Name, e) {
			res.AddError("duplicate_element", fmt.Sprintf("duplicate element %q", e.Name), e.Name, "")
		}
	}

	v.elements = elements

	for i := range f.Elements {
		v.validateElement(&f.Elements[i])
	}

	return res
}

// validateStruct applies the validate struct tags.
func validateStruct(res *diagnostic.Diagnostics, f *File) {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(f)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		res.AddError("invalid_file", err.Error(), "", "")
		return
	}

	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("%s failed the %q check", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s must be one of [%s]", fe.Namespace(), fe.Param())
		}

		res.AddError("invalid_field", msg, "", fe.Field())
	}
}

type fileValidator struct {
	res      *diagnostic.Diagnostics
	schemas  *nameIndex[*SchemaDecl]
	elements *nameIndex[*ElementDecl]
}

func (v *fileValidator) validateSchema(s *SchemaDecl) {
	seen := make(map[string]struct{}, len(s.Attributes))

	for _, a := range s.Attributes {
		if _, dup := seen[a.Name]; dup && a.Name != "" {
			v.res.AddError("duplicate_attribute", fmt.Sprintf("duplicate attribute %q", a.Name), s.Name, a.Name)
		}

		seen[a.Name] = struct{}{}
	}

	for i := range s.Attributes {
		v.validateAttribute(s, &s.Attributes[i])
	}

	if s.Repeatable != "" {
		if _, ok := v.schemas.find(s.Repeatable); !ok {
			v.res.AddError("unknown_container",
				fmt.Sprintf("repeatable container %q is not declared", s.Repeatable),
				s.Name, "", v.suggestSchema(s.Repeatable)...)
		}
	}

	for _, meta := range s.Meta {
		v.validateTag(s.Name, meta, "meta-tag")
	}
}

func (v *fileValidator) validateAttribute(s *SchemaDecl, a *AttributeDecl) {
	t, err := schema.ParseValueType(a.Type)
	if err != nil {
		v.res.AddError("invalid_type", err.Error(), s.Name, a.Name)
		return
	}

	if t.Kind == schema.KindTag {
		if _, ok := v.schemas.find(t.Ref); !ok {
			v.res.AddError("unknown_schema",
				fmt.Sprintf("nested tag schema %q is not declared", t.Ref),
				s.Name, a.Name, v.suggestSchema(t.Ref)...)
		}
	}

	if a.Default != nil && a.Default.Value != nil {
		if _, err := schema.Normalize(a.Default.Value, t); err != nil {
			v.res.AddError("invalid_default", fmt.Sprintf("default does not fit %s: %v", t, err), s.Name, a.Name)
		}
	}

	for _, alias := range a.Aliases {
		v.validateAlias(s, a, alias)
	}
}

func (v *fileValidator) validateAlias(s *SchemaDecl, a *AttributeDecl, alias AliasDecl) {
	if alias.Attribute != "" && alias.Value != "" && alias.Attribute != alias.Value {
		v.res.AddError("ambiguous_alias",
			fmt.Sprintf("alias names both %q and %q", alias.Attribute, alias.Value), s.Name, a.Name)

		return
	}

	target := s
	if alias.Schema != "" {
		found, ok := v.schemas.find(alias.Schema)
		if !ok {
			v.res.AddError("missing_alias_target",
				fmt.Sprintf("alias schema %q is not declared", alias.Schema),
				s.Name, a.Name, v.suggestSchema(alias.Schema)...)

			return
		}

		target = found
	}

	name := alias.Attribute
	if name == "" {
		name = alias.Value
	}

	if name == "" {
		name = a.Name
	}

	if !hasAttribute(target, name) {
		v.res.AddError("missing_alias_target",
			fmt.Sprintf("alias target %q is not an attribute of %s", name, target.Name),
			s.Name, a.Name, match.Suggest(name, attributeNames(target), 3)...)
	}
}

// validateTag checks one tag application. Unknown schemas are warnings:
// they are skipped when resolving.
func (v *fileValidator) validateTag(subject string, tag TagDecl, what string) {
	if tag.Schema == "" {
		return
	}

	s, ok := v.schemas.find(tag.Schema)
	if !ok {
		v.res.AddWarning("unknown_schema",
			fmt.Sprintf("%s schema %q is not declared and will be ignored", what, tag.Schema),
			subject, "", v.suggestSchema(tag.Schema)...)

		return
	}

	for _, name := range tag.Values.Attributes.Names() {
		if !hasAttribute(s, name) {
			v.res.AddError("unknown_attribute",
				fmt.Sprintf("%s %s has no attribute %q", what, s.Name, name),
				subject, name, match.Suggest(name, attributeNames(s), 3)...)
		}
	}
}

func (v *fileValidator) validateElement(e *ElementDecl) {
	refs := append([]string{e.Superclass, e.Bridged}, e.Interfaces...)

	for _, ref := range refs {
		if ref == "" {
			continue
		}

		if _, ok := v.elements.find(ref); !ok {
			v.res.AddWarning("unknown_element",
				fmt.Sprintf("element %q is not declared and will be ignored", ref),
				e.Name, "", match.Suggest(ref, v.elements.names, 3)...)
		}
	}

	for _, tag := range e.Tags {
		v.validateTag(e.Name, tag, "tag")
	}
}

func (v *fileValidator) suggestSchema(name string) []string {
	return match.Suggest(name, v.schemas.names, 3)
}

func hasAttribute(s *SchemaDecl, name string) bool {
	for _, a := range s.Attributes {
		if a.Name == name {
			return true
		}
	}

	return false
}

func attributeNames(s *SchemaDecl) []string {
	names := make([]string, len(s.Attributes))
	for i, a := range s.Attributes {
		names[i] = a.Name
	}

	return names
}
