package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sssp/internal/attr"
)

// marshalAttributes converts an attribute bag to canonical JSON TEXT.
func marshalAttributes(obj attr.Object) (string, error) {
	if obj == nil {
		obj = attr.Object{}
	}
	data, err := attr.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

// unmarshalAttributes parses canonical JSON TEXT into an attribute bag.
func unmarshalAttributes(data string) (attr.Object, error) {
	obj, err := attr.UnmarshalObject([]byte(data))
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNode reads one row in querysql.NodeColumns order.
func scanNode(row rowScanner) (Node, error) {
	var (
		n       Node
		isGroup int64
		attrs   string
		content []byte
	)
	if err := row.Scan(&n.ID, &n.UUID, &n.Type, &n.Label, &n.Description, &isGroup, &attrs, &content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Node{}, ErrNotExist
		}
		return Node{}, fmt.Errorf("scan node: %w", err)
	}

	obj, err := unmarshalAttributes(attrs)
	if err != nil {
		return Node{}, fmt.Errorf("node %d: %w", n.ID, err)
	}
	n.IsGroup = isGroup != 0
	n.Attributes = obj
	n.Content = content
	return n, nil
}
