package family

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/queryir"
	"github.com/roach88/sssp/internal/store"
)

// ParametersNodeType is the store node type of family parameters.
const ParametersNodeType = "sssp.parameters"

// Reserved attributes of a parameters node. No element may use them.
const (
	// KeyFamilyLabel holds the label of the family.
	KeyFamilyLabel = "family_label"

	// KeyFamilyKind holds the kind of the family. It is only set on
	// parameters created for a Family.
	KeyFamilyKind = "family_kind"
)

// Per-element field names.
const (
	FieldFilename  = "filename"
	FieldMD5       = "md5"
	FieldCutoffWfc = "cutoff_wfc"
	FieldCutoffRho = "cutoff_rho"
)

// ElementParameters is the metadata of one element.
type ElementParameters struct {
	Filename  string  `json:"filename"`
	MD5       string  `json:"md5"`
	CutoffWfc float64 `json:"cutoff_wfc"`
	CutoffRho float64 `json:"cutoff_rho"`
}

func (p ElementParameters) object() attr.Object {
	return attr.Object{
		FieldFilename:  attr.String(p.Filename),
		FieldMD5:       attr.String(p.MD5),
		FieldCutoffWfc: attr.Float(p.CutoffWfc),
		FieldCutoffRho: attr.Float(p.CutoffRho),
	}
}

// Parameters holds per-element metadata for the family with a given label.
//
// The label is copied when the parameters are created; relabeling the
// family later does not update it. Parameters do not check that their
// elements exist in the family.
type Parameters struct {
	familyLabel string
	familyKind  Kind
	elements    map[string]ElementParameters
	node        store.Node
}

// NewFamilyParameters creates and stores parameters for family. The
// parameters record the kind of the family besides its label.
func NewFamilyParameters(ctx context.Context, b Backend, family *Family, values map[string]map[string]any) (*Parameters, error) {
	if family == nil {
		return nil, &Error{Code: CodeTypeMismatch, Message: "family must not be nil"}
	}
	return newParameters(ctx, b, values, family.Label(), family.Kind())
}

// NewParameters creates and stores parameters for the family labeled
// label.
//
// values maps element to fields. Each element needs filename and md5
// strings and cutoff_wfc and cutoff_rho floats. Elements are checked in
// sorted order and nothing is stored unless all of them pass. Fields
// other than these four are not kept.
func NewParameters(ctx context.Context, b Backend, values map[string]map[string]any, label string) (*Parameters, error) {
	return newParameters(ctx, b, values, label, "")
}

func newParameters(ctx context.Context, b Backend, values map[string]map[string]any, label string, kind Kind) (*Parameters, error) {
	if values == nil {
		return nil, &Error{Code: CodeTypeMismatch, Message: "parameters must be a mapping, got nil", Label: label}
	}

	elements := make(map[string]ElementParameters, len(values))
	for _, element := range slices.Sorted(maps.Keys(values)) {
		p, err := validateElement(element, values[element])
		if err != nil {
			err.Label = label
			return nil, err
		}
		elements[element] = p
	}

	params := &Parameters{familyLabel: label, familyKind: kind, elements: elements}
	if err := params.store(ctx, b); err != nil {
		return nil, err
	}
	return params, nil
}

func validateElement(element string, values map[string]any) (ElementParameters, *Error) {
	if isReserved(element) {
		return ElementParameters{}, &Error{
			Code:    CodeValidationError,
			Message: fmt.Sprintf("element name `%s` is reserved", element),
			Element: element,
		}
	}

	var p ElementParameters
	fields := []struct {
		key      string
		expected string
		assign   func(any) bool
	}{
		{FieldFilename, "string", stringInto(&p.Filename)},
		{FieldMD5, "string", stringInto(&p.MD5)},
		{FieldCutoffWfc, "float64", floatInto(&p.CutoffWfc)},
		{FieldCutoffRho, "float64", floatInto(&p.CutoffRho)},
	}

	for _, field := range fields {
		v, ok := values[field.key]
		if !ok {
			return ElementParameters{}, &Error{
				Code:    CodeMissingField,
				Message: fmt.Sprintf("entry for element `%s` is missing the `%s` key", element, field.key),
				Element: element,
				Field:   field.key,
			}
		}
		if !field.assign(v) {
			return ElementParameters{}, &Error{
				Code:    CodeTypeMismatch,
				Message: fmt.Sprintf("`%s` for element `%s` is not of type %s, got %T", field.key, element, field.expected, v),
				Element: element,
				Field:   field.key,
			}
		}
	}
	return p, nil
}

func isReserved(element string) bool {
	return element == KeyFamilyLabel || element == KeyFamilyKind
}

func stringInto(dst *string) func(any) bool {
	return func(v any) bool {
		switch s := v.(type) {
		case string:
			*dst = s
		case attr.String:
			*dst = string(s)
		default:
			return false
		}
		return true
	}
}

// floatInto accepts floats only. Integers are rejected.
func floatInto(dst *float64) func(any) bool {
	return func(v any) bool {
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		case attr.Float:
			f = float64(x)
		default:
			return false
		}
		if _, err := attr.FromGo(f); err != nil {
			return false
		}
		*dst = f
		return true
	}
}

func (p *Parameters) store(ctx context.Context, b Backend) error {
	attrs := make(attr.Object, len(p.elements)+2)
	for element, ep := range p.elements {
		attrs[element] = ep.object()
	}
	attrs[KeyFamilyLabel] = attr.String(p.familyLabel)
	if p.familyKind != "" {
		attrs[KeyFamilyKind] = attr.String(string(p.familyKind))
	}

	n := store.Node{
		Type:       ParametersNodeType,
		Label:      p.familyLabel,
		Attributes: attrs,
	}
	if err := b.Create(ctx, &n); err != nil {
		return fmt.Errorf("store parameters for `%s`: %w", p.familyLabel, err)
	}
	p.node = n
	return nil
}

// LoadParameters returns the most recently stored parameters for the
// family labeled label, whatever the kind of that family.
func LoadParameters(ctx context.Context, b Backend, label string) (*Parameters, error) {
	nodes, err := findParameters(ctx, b, label)
	if err != nil {
		return nil, err
	}
	return parametersFromNode(nodes[len(nodes)-1])
}

// LoadFamilyParameters returns the most recently stored parameters of
// family. Parameters recorded for another kind with the same label are
// skipped. Parameters without a kind are used only if none carry the
// kind of family.
func LoadFamilyParameters(ctx context.Context, b Backend, family *Family) (*Parameters, error) {
	if family == nil {
		return nil, &Error{Code: CodeTypeMismatch, Message: "family must not be nil"}
	}
	nodes, err := findParameters(ctx, b, family.Label())
	if err != nil {
		return nil, err
	}

	untagged := -1
	for i := len(nodes) - 1; i >= 0; i-- {
		kind, ok := nodes[i].Attributes[KeyFamilyKind].(attr.String)
		switch {
		case ok && Kind(kind) == family.Kind():
			return parametersFromNode(nodes[i])
		case !ok && untagged < 0:
			untagged = i
		}
	}
	if untagged < 0 {
		return nil, &Error{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("no parameters for %s", family),
			Label:   family.Label(),
		}
	}
	return parametersFromNode(nodes[untagged])
}

// findParameters returns the parameters nodes labeled label, oldest
// first. An empty result is a NOT_FOUND error.
func findParameters(ctx context.Context, b Backend, label string) ([]store.Node, error) {
	nodes, err := b.Find(ctx, queryir.Select{Filter: queryir.All(
		queryir.Equals{Column: queryir.ColumnNodeType, Value: attr.String(ParametersNodeType)},
		queryir.AttrEquals{Key: KeyFamilyLabel, Value: attr.String(label)},
	)})
	if err != nil {
		return nil, fmt.Errorf("load parameters for `%s`: %w", label, err)
	}
	if len(nodes) == 0 {
		return nil, &Error{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("no parameters for family `%s`", label),
			Label:   label,
		}
	}
	return nodes, nil
}

func parametersFromNode(n store.Node) (*Parameters, error) {
	label, ok := n.Attributes[KeyFamilyLabel].(attr.String)
	if !ok {
		return nil, fmt.Errorf("parameters node %d: missing %s", n.ID, KeyFamilyLabel)
	}

	var kind Kind
	if k, ok := n.Attributes[KeyFamilyKind].(attr.String); ok {
		kind = Kind(k)
	}

	elements := make(map[string]ElementParameters, len(n.Attributes))
	for element, v := range n.Attributes {
		if isReserved(element) {
			continue
		}
		obj, ok := v.(attr.Object)
		if !ok {
			return nil, fmt.Errorf("parameters node %d: element %s is %T, not an object", n.ID, element, v)
		}
		p, verr := validateElement(element, map[string]any{
			FieldFilename:  obj[FieldFilename],
			FieldMD5:       obj[FieldMD5],
			FieldCutoffWfc: obj[FieldCutoffWfc],
			FieldCutoffRho: obj[FieldCutoffRho],
		})
		if verr != nil {
			return nil, fmt.Errorf("parameters node %d: %w", n.ID, verr)
		}
		elements[element] = p
	}

	return &Parameters{familyLabel: string(label), familyKind: kind, elements: elements, node: n}, nil
}

// ID returns the store id of the parameters.
func (p *Parameters) ID() int64 { return p.node.ID }

// UUID returns the store uuid of the parameters.
func (p *Parameters) UUID() string { return p.node.UUID }

func (p *Parameters) String() string {
	return fmt.Sprintf("SsspParameters<%s>", p.node.UUID)
}

// FamilyLabel returns the label of the family the parameters belong to.
func (p *Parameters) FamilyLabel() string { return p.familyLabel }

// FamilyKind returns the kind of the family, or "" for parameters created
// from a label alone.
func (p *Parameters) FamilyKind() Kind { return p.familyKind }

// Elements returns the sorted elements that have metadata.
func (p *Parameters) Elements() []string {
	return slices.Sorted(maps.Keys(p.elements))
}

// Metadata returns the metadata of every element. Reserved attributes are
// not included.
func (p *Parameters) Metadata() map[string]ElementParameters {
	return maps.Clone(p.elements)
}

// ElementMetadata returns the metadata of one element.
func (p *Parameters) ElementMetadata(element string) (ElementParameters, error) {
	ep, ok := p.elements[element]
	if !ok {
		return ElementParameters{}, &Error{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("element `%s` is not defined for %s", element, p),
			Label:   p.familyLabel,
			Element: element,
		}
	}
	return ep, nil
}

