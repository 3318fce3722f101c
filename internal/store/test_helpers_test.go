package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/sssp/internal/attr"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestGroup stores a group node with the given type and label.
func createTestGroup(t *testing.T, s *Store, nodeType, label string) Node {
	t.Helper()
	n := Node{Type: nodeType, Label: label, IsGroup: true}
	if err := s.Create(context.Background(), &n); err != nil {
		t.Fatalf("Create(group) failed: %v", err)
	}
	return n
}

// createTestPseudo stores a data node carrying an element attribute.
func createTestPseudo(t *testing.T, s *Store, element string) Node {
	t.Helper()
	n := Node{
		Type:       "pseudo.upf",
		Label:      element + ".upf",
		Attributes: attr.Object{"element": attr.String(element)},
		Content:    []byte("<UPF>" + element + "</UPF>"),
	}
	if err := s.Create(context.Background(), &n); err != nil {
		t.Fatalf("Create(pseudo) failed: %v", err)
	}
	return n
}
