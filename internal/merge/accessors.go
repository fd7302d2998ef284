package merge

import (
	"tagmerge/internal/schema"
)

func get[T any](v *View, name string, want schema.ValueType) (T, error) {
	value, err := v.Get(name, want)
	if err != nil {
		var zero T
		return zero, err
	}

	return value.(T), nil
}

// GetString resolves a string attribute; type references and enum values
// convert to their names.
func (v *View) GetString(name string) (string, error) {
	return get[string](v, name, schema.String)
}

// GetBool resolves a bool attribute.
func (v *View) GetBool(name string) (bool, error) {
	return get[bool](v, name, schema.Bool)
}

// GetInt resolves an int attribute.
func (v *View) GetInt(name string) (int64, error) {
	return get[int64](v, name, schema.Int)
}

// GetFloat resolves a float attribute.
func (v *View) GetFloat(name string) (float64, error) {
	return get[float64](v, name, schema.Float)
}

// GetType resolves a type reference attribute; strings convert to
// references.
func (v *View) GetType(name string) (schema.TypeRef, error) {
	return get[schema.TypeRef](v, name, schema.Type)
}

// GetEnum resolves an enum attribute of enumType. An empty enumType accepts
// any enum.
func (v *View) GetEnum(name, enumType string) (schema.EnumValue, error) {
	return get[schema.EnumValue](v, name, schema.Enum(enumType))
}

// GetTag resolves a nested tag attribute of the named schema.
func (v *View) GetTag(name, schemaName string) (*View, error) {
	return get[*View](v, name, schema.Tag(schemaName))
}

// GetStringArray resolves an attribute as a string array.
func (v *View) GetStringArray(name string) ([]string, error) {
	return get[[]string](v, name, schema.StringArray)
}

// GetBoolArray resolves an attribute as a bool array.
func (v *View) GetBoolArray(name string) ([]bool, error) {
	return get[[]bool](v, name, schema.BoolArray)
}

// GetIntArray resolves an attribute as an int array.
func (v *View) GetIntArray(name string) ([]int64, error) {
	return get[[]int64](v, name, schema.IntArray)
}

// GetFloatArray resolves an attribute as a float array.
func (v *View) GetFloatArray(name string) ([]float64, error) {
	return get[[]float64](v, name, schema.FloatArray)
}

// GetTypeArray resolves an attribute as a type reference array.
func (v *View) GetTypeArray(name string) ([]schema.TypeRef, error) {
	return get[[]schema.TypeRef](v, name, schema.TypeArray)
}

// GetEnumArray resolves an attribute as an array of enumType values.
func (v *View) GetEnumArray(name, enumType string) ([]schema.EnumValue, error) {
	return get[[]schema.EnumValue](v, name, schema.ArrayOf(schema.Enum(enumType)))
}

// GetTagArray resolves an attribute as an array of nested tags.
func (v *View) GetTagArray(name, schemaName string) ([]*View, error) {
	return get[[]*View](v, name, schema.ArrayOf(schema.Tag(schemaName)))
}
