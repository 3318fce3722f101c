package querysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/queryir"
)

func TestCompile_EmptySelect(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, uuid, node_type, label, description, is_group, attributes, content FROM nodes ORDER BY id ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_ColumnEquals(t *testing.T) {
	query := queryir.Select{
		Filter: queryir.All(
			queryir.Equals{Column: queryir.ColumnNodeType, Value: attr.String("group.sssp")},
			queryir.Equals{Column: queryir.ColumnLabel, Value: attr.String("SSSP/1.1/PBE/efficiency")},
		),
	}

	sql, params, err := NewSQLCompiler().Compile(query)
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE node_type = ? AND label = ?")
	assert.Contains(t, sql, "ORDER BY id ASC")
	assert.NotContains(t, sql, "SSSP/1.1")
	assert.Equal(t, []any{"group.sssp", "SSSP/1.1/PBE/efficiency"}, params)
}

func TestCompile_AttrEqualsAndMembership(t *testing.T) {
	query := &queryir.Select{
		Filter: &queryir.And{Predicates: []queryir.Predicate{
			&queryir.MemberOf{GroupID: 4},
			&queryir.AttrEquals{Key: "element", Value: attr.String("He")},
		}},
		Limit: 2,
	}

	sql, params, err := NewSQLCompiler().Compile(query)
	require.NoError(t, err)

	assert.Contains(t, sql, "id IN (SELECT node_id FROM group_members WHERE group_id = ?)")
	assert.Contains(t, sql, "json_extract(attributes, ?) = ?")
	assert.True(t, strings.HasSuffix(sql, " LIMIT ?"))
	assert.Equal(t, []any{int64(4), `$."element"`, "He", 2}, params)
}

func TestCompile_BoolParams(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		Filter: queryir.Equals{Column: queryir.ColumnIsGroup, Value: attr.Bool(true)},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "is_group = ?")
	assert.Equal(t, []any{int64(1)}, params)
}

func TestCompile_Invalid(t *testing.T) {
	_, _, err := NewSQLCompiler().Compile(queryir.Select{
		Filter: queryir.Equals{Column: "attributes; DROP TABLE nodes", Value: attr.String("x")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")

	_, _, err = NewSQLCompiler().Compile(nil)
	assert.Error(t, err)
}

func TestCompile_RejectsUnsafeAttributeKeys(t *testing.T) {
	for _, key := range []string{`a"b`, `a\b`} {
		q := queryir.Select{Filter: queryir.AttrEquals{Key: key, Value: attr.String("x")}}

		_, _, err := NewSQLCompiler().Compile(q)
		require.Error(t, err, "key %q", key)
		assert.Contains(t, err.Error(), "quote or backslash")

		_, _, err = NewSQLCompiler().CompileCount(q)
		assert.Error(t, err, "key %q", key)
	}
}

func TestCompileCount(t *testing.T) {
	sql, params, err := NewSQLCompiler().CompileCount(queryir.Select{
		Filter: queryir.MemberOf{GroupID: 9},
		Limit:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM nodes WHERE id IN (SELECT node_id FROM group_members WHERE group_id = ?)", sql)
	assert.Equal(t, []any{int64(9)}, params)
}

func TestCompile_CustomColumns(t *testing.T) {
	c := &SQLCompiler{Table: "nodes", Columns: []string{"id"}}
	sql, _, err := c.Compile(queryir.Select{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM nodes ORDER BY id ASC", sql)
}
