// Package repeat resolves repeatable tag schemas and their containers.
//
// A repeatable schema may be applied several times to one element; the
// applications are packaged in a container tag whose "value" attribute holds
// the ordered array of elements. Containers are either supplied explicitly or
// inferred from the element schema's declared Repeatable container.
package repeat
