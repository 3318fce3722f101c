package queryir

import "github.com/roach88/sssp/internal/attr"

// Query represents an abstract node query.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate represents a filter condition on nodes.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Select selects nodes matching Filter, ordered by node id.
//
// Example:
//
//	Select{
//	  Filter: And{Predicates: []Predicate{
//	    MemberOf{GroupID: 7},
//	    AttrEquals{Key: "element", Value: attr.String("He")},
//	  }},
//	}
//
// Limit bounds the number of rows returned; zero means no limit.
type Select struct {
	Filter Predicate
	Limit  int
}

func (Select) queryNode() {}

// Column names that may appear in Equals.
const (
	ColumnID       = "id"
	ColumnUUID     = "uuid"
	ColumnNodeType = "node_type"
	ColumnLabel    = "label"
	ColumnIsGroup  = "is_group"
)

// Columns lists the node columns Equals may reference.
var Columns = []string{ColumnID, ColumnUUID, ColumnNodeType, ColumnLabel, ColumnIsGroup}

// Equals is a node-column-equals-literal predicate.
//
//	Equals{Column: ColumnNodeType, Value: attr.String("pseudo.upf")}
type Equals struct {
	Column string
	Value  attr.Value
}

func (Equals) predicateNode() {}

// AttrEquals matches nodes whose attribute Key equals Value.
// Only scalar values (string, int, float, bool) can be compared.
type AttrEquals struct {
	Key   string
	Value attr.Value
}

func (AttrEquals) predicateNode() {}

// MemberOf matches nodes that are members of the group with GroupID.
type MemberOf struct {
	GroupID int64
}

func (MemberOf) predicateNode() {}

// And is a conjunction of predicates. Empty Predicates means always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// All is shorthand for And{Predicates: preds}.
func All(preds ...Predicate) And {
	return And{Predicates: preds}
}
