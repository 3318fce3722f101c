package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/queryir"
)

// NodeColumns is the default projection of a compiled Select.
var NodeColumns = []string{"id", "uuid", "node_type", "label", "description", "is_group", "attributes", "content"}

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// All queries end in ORDER BY id so results are deterministic, and all
// values are parameterized, never interpolated.
type SQLCompiler struct {
	// Table is the node table name.
	Table string

	// Columns is the SELECT list. Defaults to NodeColumns.
	Columns []string
}

// NewSQLCompiler creates a compiler for the nodes table.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{
		Table:   "nodes",
		Columns: NodeColumns,
	}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query, strings.Join(c.Columns, ", "))
	case *queryir.Select:
		return c.compileSelect(*query, strings.Join(c.Columns, ", "))
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// CompileCount converts a query to a parameterized SELECT COUNT(*).
func (c *SQLCompiler) CompileCount(q queryir.Select) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}
	q.Limit = 0
	sql, params, err := c.compileSelect(q, "COUNT(*)")
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSuffix(sql, " ORDER BY id ASC"), params, nil
}

func (c *SQLCompiler) compileSelect(q queryir.Select, projection string) (string, []any, error) {
	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id ASC", projection, c.Table, whereClause)

	if q.Limit > 0 {
		sql += " LIMIT ?"
		params = append(params, q.Limit)
	}

	return sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.AttrEquals:
		return c.compileAttrEquals(pred)
	case *queryir.AttrEquals:
		return c.compileAttrEquals(*pred)
	case queryir.MemberOf:
		return c.compileMemberOf(pred)
	case *queryir.MemberOf:
		return c.compileMemberOf(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return fmt.Sprintf("%s = ?", eq.Column), []any{param}, nil
}

// compileAttrEquals compares a key of the JSON attribute bag. SQLite's
// json_extract returns booleans as 1/0, which valueToParam mirrors.
func (c *SQLCompiler) compileAttrEquals(eq queryir.AttrEquals) (string, []any, error) {
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	path := `$."` + eq.Key + `"`
	return "json_extract(attributes, ?) = ?", []any{path, param}, nil
}

func (c *SQLCompiler) compileMemberOf(m queryir.MemberOf) (string, []any, error) {
	return "id IN (SELECT node_id FROM group_members WHERE group_id = ?)", []any{m.GroupID}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// valueToParam converts a scalar attribute value to a SQL parameter.
func valueToParam(v attr.Value) (any, error) {
	switch val := v.(type) {
	case attr.String:
		return string(val), nil
	case attr.Int:
		return int64(val), nil
	case attr.Float:
		return float64(val), nil
	case attr.Bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
