// Package alias builds, per root tag schema, the tree of its meta-tags and
// resolves attribute alias and mirror declarations across that tree.
//
// The tree is an arena (Mappings) of Node values addressed by index; each
// node records the schema, its parent index, its depth and the literal
// values it was declared with. Descent never revisits a schema already on
// the current path, so cyclic meta-tag declarations terminate silently.
//
// Every node owns a Table: a union-find over the attributes of all schemas
// on the path from the root to that node. Connected attributes form one
// mirror set; its canonical member is the first root-level attribute in
// declaration order, or else the first attribute created in traversal order.
// Attributes of one path that alias a common attribute further down the tree
// mirror each other on that path too.
//
// All structural problems are detected while building. A failed build is
// cached as a single *ConfigError and returned for every later build of the
// same root schema.
package alias
