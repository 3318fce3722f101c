package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/sssp/internal/attr"
)

// Create persists a new node and fills in its ID and UUID.
// Returns ErrAlreadyStored if the node already has an ID.
func (s *Store) Create(ctx context.Context, n *Node) error {
	if n.Stored() {
		return fmt.Errorf("create node %d: %w", n.ID, ErrAlreadyStored)
	}
	if n.Type == "" {
		return fmt.Errorf("create node: empty node type")
	}

	attrsJSON, err := marshalAttributes(n.Attributes)
	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}

	id := n.UUID
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO nodes
		(uuid, node_type, label, description, is_group, attributes, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		n.Type,
		n.Label,
		n.Description,
		boolToInt(n.IsGroup),
		attrsJSON,
		n.Content,
	)
	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create node: last insert id: %w", err)
	}

	n.ID = rowID
	n.UUID = id
	return nil
}

// SetAttribute sets one attribute on a stored group node.
// Data nodes are immutable once stored: ErrModificationNotAllowed.
func (s *Store) SetAttribute(ctx context.Context, id int64, key string, value attr.Value) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set attribute: begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		isGroup int64
		attrs   string
	)
	err = tx.QueryRowContext(ctx, `SELECT is_group, attributes FROM nodes WHERE id = ?`, id).Scan(&isGroup, &attrs)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("set attribute on node %d: %w", id, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("set attribute: %w", err)
	}
	if isGroup == 0 {
		return fmt.Errorf("set attribute %q on node %d: %w", key, id, ErrModificationNotAllowed)
	}

	obj, err := unmarshalAttributes(attrs)
	if err != nil {
		return fmt.Errorf("set attribute: %w", err)
	}
	obj[key] = value

	attrsJSON, err := marshalAttributes(obj)
	if err != nil {
		return fmt.Errorf("set attribute: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE nodes SET attributes = ? WHERE id = ?`, attrsJSON, id); err != nil {
		return fmt.Errorf("set attribute: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set attribute: commit: %w", err)
	}
	return nil
}

// SetLabel relabels a stored group node.
func (s *Store) SetLabel(ctx context.Context, id int64, label string) error {
	return s.updateGroupColumn(ctx, id, "label", label)
}

// SetDescription changes the description of a stored group node.
func (s *Store) SetDescription(ctx context.Context, id int64, description string) error {
	return s.updateGroupColumn(ctx, id, "description", description)
}

// updateGroupColumn updates a text column, only for group nodes.
// column is never user input.
func (s *Store) updateGroupColumn(ctx context.Context, id int64, column, value string) error {
	isGroup, err := s.isGroup(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if !isGroup {
		return fmt.Errorf("set %s on node %d: %w", column, id, ErrModificationNotAllowed)
	}

	query := fmt.Sprintf("UPDATE nodes SET %s = ? WHERE id = ?", column)
	if _, err := s.db.ExecContext(ctx, query, value, id); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return nil
}

// AddMembers attaches stored nodes to a group in one transaction.
// Adding a node that is already a member is a no-op.
func (s *Store) AddMembers(ctx context.Context, groupID int64, nodeIDs ...int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add members: begin tx: %w", err)
	}
	defer tx.Rollback()

	isGroup, err := s.isGroup(ctx, tx, groupID)
	if err != nil {
		return fmt.Errorf("add members: %w", err)
	}
	if !isGroup {
		return fmt.Errorf("add members to node %d: %w", groupID, ErrNotGroup)
	}

	for _, nodeID := range nodeIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (group_id, node_id)
			VALUES (?, ?)
			ON CONFLICT(group_id, node_id) DO NOTHING
		`, groupID, nodeID)
		if err != nil {
			return fmt.Errorf("add member %d to group %d: %w", nodeID, groupID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add members: commit: %w", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) isGroup(ctx context.Context, q querier, id int64) (bool, error) {
	var isGroup int64
	err := q.QueryRowContext(ctx, `SELECT is_group FROM nodes WHERE id = ?`, id).Scan(&isGroup)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("node %d: %w", id, ErrNotExist)
	}
	if err != nil {
		return false, err
	}
	return isGroup != 0, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
