// Package merge resolves attribute values of one tag application through
// its alias graph.
//
// A View is one schema occurrence in the meta-tag tree of a root tag
// application. Reading an attribute looks up its mirror set, prefers values
// set on the root application over values declared on meta-tags, falls back
// to defaults and finally coerces the stored value to the requested type.
//
// Views are cheap, immutable and safe for concurrent use. Synthesize turns a
// view into a Tag: a value object whose equality, hash and display form are
// defined by the schema name and every resolved attribute value.
package merge
