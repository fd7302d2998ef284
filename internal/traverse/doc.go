// Package traverse collects the tags of a program element and its hierarchy
// under a search strategy and ranks them by locality.
//
// Elements and their hierarchy come from a Source. Each hierarchy level is
// an aggregate; its declared tags are expanded through repeatable containers
// and then through their meta-tag trees into merge views. Queries are lazy:
// alias graphs are built the first time a query reaches an aggregate.
package traverse
