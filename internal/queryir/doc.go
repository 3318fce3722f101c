// Package queryir provides the query representation used to look up nodes
// in the backing store.
//
// Queries are built from a Select over the node table plus a tree of
// predicates. Backends compile the tree (see package querysql); callers
// never write SQL.
//
// Predicates:
//   - Equals: a node column equals a literal (node_type, label, uuid, ...)
//   - AttrEquals: an attribute in the node's attribute bag equals a literal
//   - MemberOf: the node belongs to the given group
//   - And: all predicates must hold (empty = always true)
//
// Query and Predicate are sealed interfaces using the marker method
// pattern, so backends can switch exhaustively over them.
package queryir
