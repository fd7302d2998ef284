// Package schema models tag schemas and the literal attribute values of a
// single tag application.
//
// Key types:
//   - TypeSchema: a tag type with ordered attributes and declared meta-tags
//   - AttributeSpec: attribute name, value type, default and alias declarations
//   - Attributes: immutable, ordered name to literal value map
//   - Registry: lazily populated, resettable cache of resolved schemas
//
// Schemas are supplied by a Loader, which is typically backed by a host
// metadata facility or a declaration file.
package schema
