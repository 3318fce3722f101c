package family

import (
	"context"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/queryir"
	"github.com/roach88/sssp/internal/store"
)

// Backend is the persistence port families and parameters are stored
// through. *store.Store implements it.
//
// One must return store.ErrNotExist on zero matches and
// store.ErrMultipleMatches on more than one. SetAttribute, SetLabel and
// SetDescription must return store.ErrModificationNotAllowed for stored
// data nodes.
type Backend interface {
	Create(ctx context.Context, n *store.Node) error
	Find(ctx context.Context, q queryir.Select) ([]store.Node, error)
	One(ctx context.Context, q queryir.Select) (store.Node, error)
	Count(ctx context.Context, q queryir.Select) (int, error)
	Get(ctx context.Context, id int64) (store.Node, error)
	SetAttribute(ctx context.Context, id int64, key string, value attr.Value) error
	SetLabel(ctx context.Context, id int64, label string) error
	SetDescription(ctx context.Context, id int64, description string) error
	AddMembers(ctx context.Context, groupID int64, nodeIDs ...int64) error
	Members(ctx context.Context, groupID int64) ([]store.Node, error)
	CountMembers(ctx context.Context, groupID int64) (int, error)
}
