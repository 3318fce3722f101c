package store

import (
	"errors"

	"github.com/roach88/sssp/internal/attr"
)

// Sentinel errors for store operations.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrNotExist indicates no node matched a lookup.
	ErrNotExist = errors.New("store: node does not exist")

	// ErrMultipleMatches indicates an exactly-one lookup matched more than one node.
	ErrMultipleMatches = errors.New("store: multiple nodes matched")

	// ErrModificationNotAllowed indicates an attempt to modify a stored data node.
	ErrModificationNotAllowed = errors.New("store: modification not allowed")

	// ErrAlreadyStored indicates Create was called on a node that has an id.
	ErrAlreadyStored = errors.New("store: node already stored")

	// ErrNotGroup indicates a membership operation on a non-group node.
	ErrNotGroup = errors.New("store: node is not a group")
)

// Node is a persisted entity. A zero ID means the node has not been stored.
type Node struct {
	ID          int64
	UUID        string
	Type        string
	Label       string
	Description string
	IsGroup     bool
	Attributes  attr.Object
	Content     []byte
}

// Stored reports whether the node has been persisted.
func (n Node) Stored() bool {
	return n.ID != 0
}

// Attribute returns the attribute value for key.
func (n Node) Attribute(key string) (attr.Value, bool) {
	v, ok := n.Attributes[key]
	return v, ok
}
