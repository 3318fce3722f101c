package store

import (
	"context"
	"fmt"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/queryir"
)

// Find returns all nodes matching the query, ordered by id.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Find(ctx context.Context, q queryir.Select) ([]Node, error) {
	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer rows.Close()

	nodes := []Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// One returns the single node matching the query.
// Returns ErrNotExist on zero matches and ErrMultipleMatches on more than one.
func (s *Store) One(ctx context.Context, q queryir.Select) (Node, error) {
	q.Limit = 2
	nodes, err := s.Find(ctx, q)
	if err != nil {
		return Node{}, err
	}

	switch len(nodes) {
	case 0:
		return Node{}, ErrNotExist
	case 1:
		return nodes[0], nil
	default:
		return Node{}, ErrMultipleMatches
	}
}

// Count returns the number of nodes matching the query.
func (s *Store) Count(ctx context.Context, q queryir.Select) (int, error) {
	query, params, err := s.compiler.CompileCount(q)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

// Get returns the node with the given id.
func (s *Store) Get(ctx context.Context, id int64) (Node, error) {
	n, err := s.One(ctx, queryir.Select{
		Filter: queryir.Equals{Column: queryir.ColumnID, Value: attr.Int(id)},
	})
	if err != nil {
		return Node{}, fmt.Errorf("get node %d: %w", id, err)
	}
	return n, nil
}

// Attribute returns one attribute of a stored node.
// Returns ErrNotExist if the node or the key does not exist.
func (s *Store) Attribute(ctx context.Context, id int64, key string) (attr.Value, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v, ok := n.Attribute(key)
	if !ok {
		return nil, fmt.Errorf("attribute %q of node %d: %w", key, id, ErrNotExist)
	}
	return v, nil
}

// Members returns the nodes of a group, ordered by id.
func (s *Store) Members(ctx context.Context, groupID int64) ([]Node, error) {
	return s.Find(ctx, queryir.Select{Filter: queryir.MemberOf{GroupID: groupID}})
}

// CountMembers returns the number of nodes in a group.
func (s *Store) CountMembers(ctx context.Context, groupID int64) (int, error) {
	return s.Count(ctx, queryir.Select{Filter: queryir.MemberOf{GroupID: groupID}})
}
