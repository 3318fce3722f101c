package queryir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sssp/internal/attr"
)

// Validate checks that a query only references known columns, names
// non-empty attribute keys and compares against scalar values.
//
// Validate is a pure function with no side effects.
func Validate(q Query) error {
	if q == nil {
		return fmt.Errorf("nil query")
	}

	switch query := q.(type) {
	case Select:
		return validateSelect(query)
	case *Select:
		return validateSelect(*query)
	default:
		return fmt.Errorf("unsupported query type: %T", q)
	}
}

func validateSelect(sel Select) error {
	if sel.Limit < 0 {
		return fmt.Errorf("negative limit %d", sel.Limit)
	}
	if sel.Filter == nil {
		return nil
	}
	return validatePredicate(sel.Filter)
}

func validatePredicate(p Predicate) error {
	switch pred := p.(type) {
	case Equals:
		return validateEquals(pred)
	case *Equals:
		return validateEquals(*pred)
	case AttrEquals:
		return validateAttrEquals(pred)
	case *AttrEquals:
		return validateAttrEquals(*pred)
	case MemberOf:
		return validateMemberOf(pred)
	case *MemberOf:
		return validateMemberOf(*pred)
	case And:
		return validateAnd(pred)
	case *And:
		return validateAnd(*pred)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func validateEquals(eq Equals) error {
	if !slices.Contains(Columns, eq.Column) {
		return fmt.Errorf("unknown column %q", eq.Column)
	}
	return validateScalar(eq.Value)
}

func validateAttrEquals(eq AttrEquals) error {
	if eq.Key == "" {
		return fmt.Errorf("empty attribute key")
	}
	if strings.ContainsAny(eq.Key, "\"\\") {
		return fmt.Errorf("attribute key %q contains a quote or backslash", eq.Key)
	}
	return validateScalar(eq.Value)
}

func validateMemberOf(m MemberOf) error {
	if m.GroupID <= 0 {
		return fmt.Errorf("invalid group id %d", m.GroupID)
	}
	return nil
}

func validateAnd(and And) error {
	for i, pred := range and.Predicates {
		if err := validatePredicate(pred); err != nil {
			return fmt.Errorf("and[%d]: %w", i, err)
		}
	}
	return nil
}

func validateScalar(v attr.Value) error {
	switch v.(type) {
	case attr.String, attr.Int, attr.Float, attr.Bool:
		return nil
	default:
		return fmt.Errorf("value of type %T cannot be compared", v)
	}
}
