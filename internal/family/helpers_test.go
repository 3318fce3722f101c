package family

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/pseudo"
	"github.com/roach88/sssp/internal/queryir"
	"github.com/roach88/sssp/internal/store"
	"github.com/roach88/sssp/internal/testutil"
)

var _ Backend = (*store.Store)(nil)

const testLabel = "SSSP/1.1/PBE/efficiency"

// createTestBackend opens a SQLite store in a temporary directory.
func createTestBackend(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// parseUPF returns an unstored record for element.
func parseUPF(t *testing.T, element string) *pseudo.UPF {
	t.Helper()
	upf, err := pseudo.Parse(testutil.Filename(element), testutil.UPFv2(element))
	require.NoError(t, err)
	return upf
}

// countNodes returns the number of stored nodes of nodeType.
func countNodes(t *testing.T, b Backend, nodeType string) int {
	t.Helper()
	count, err := b.Count(context.Background(), queryir.Select{
		Filter: queryir.Equals{Column: queryir.ColumnNodeType, Value: attr.String(nodeType)},
	})
	require.NoError(t, err)
	return count
}

// validValues returns well-formed parameters for elements.
func validValues(elements ...string) map[string]map[string]any {
	values := make(map[string]map[string]any, len(elements))
	for _, e := range elements {
		values[e] = map[string]any{
			FieldFilename:  testutil.Filename(e),
			FieldMD5:       testutil.MD5(testutil.UPFv2(e)),
			FieldCutoffWfc: 30.0,
			FieldCutoffRho: 240.0,
		}
	}
	return values
}
