package family

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/pseudo"
	"github.com/roach88/sssp/internal/queryir"
	"github.com/roach88/sssp/internal/store"
)

// Kind is the store node type of a family.
type Kind string

const (
	// KindSSSP is a family whose label must be a valid configuration label.
	KindSSSP Kind = "group.sssp"

	// KindUPF is a generic family with a freely chosen label.
	KindUPF Kind = "group.upf"
)

// Name returns the display name of the kind.
func (k Kind) Name() string {
	switch k {
	case KindSSSP:
		return "SsspFamily"
	case KindUPF:
		return "UpfFamily"
	default:
		return string(k)
	}
}

// ValidateLabel checks label against the rules of the kind.
func (k Kind) ValidateLabel(label string) error {
	switch k {
	case KindSSSP:
		cfg, err := ParseLabel(label)
		if err != nil {
			return err
		}
		if !cfg.Valid() {
			return &Error{
				Code:    CodeValidationError,
				Message: "the label `" + label + "` is not a valid SSSP configuration label",
				Label:   label,
			}
		}
		return nil
	case KindUPF:
		if label == "" {
			return &Error{Code: CodeValidationError, Message: "family label must not be empty"}
		}
		return nil
	default:
		return newError(CodeValidationError, "unknown family kind %q", string(k))
	}
}

// Family is a labeled collection holding at most one pseudopotential
// record per element.
type Family struct {
	backend Backend
	kind    Kind
	node    store.Node
	index   recordIndex
}

// recordIndex caches element to record for one Family instance.
// It is built from the full membership on first use and then patched
// by the family's own methods only.
type recordIndex struct {
	built   bool
	records map[string]*pseudo.UPF
}

func (ix *recordIndex) get(element string) (*pseudo.UPF, bool) {
	upf, ok := ix.records[element]
	return upf, ok
}

func (ix *recordIndex) put(upf *pseudo.UPF) {
	if ix.records == nil {
		ix.records = make(map[string]*pseudo.UPF)
	}
	ix.records[upf.Element()] = upf
}

// New creates and stores an empty family.
func New(ctx context.Context, b Backend, kind Kind, label, description string) (*Family, error) {
	if err := kind.ValidateLabel(label); err != nil {
		return nil, err
	}
	if err := checkLabelFree(ctx, b, kind, label); err != nil {
		return nil, err
	}
	return create(ctx, b, kind, label, description)
}

func create(ctx context.Context, b Backend, kind Kind, label, description string) (*Family, error) {
	n := store.Node{
		Type:        string(kind),
		Label:       label,
		Description: description,
		IsGroup:     true,
	}
	if err := b.Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("create %s<%s>: %w", kind.Name(), label, err)
	}
	return &Family{backend: b, kind: kind, node: n}, nil
}

func checkLabelFree(ctx context.Context, b Backend, kind Kind, label string) error {
	exists, err := Exists(ctx, b, kind, label)
	if err != nil {
		return err
	}
	if exists {
		return &Error{
			Code:    CodeDuplicateLabel,
			Message: fmt.Sprintf("the %s `%s` already exists", kind.Name(), label),
			Label:   label,
		}
	}
	return nil
}

func labelQuery(kind Kind, label string) queryir.Select {
	return queryir.Select{Filter: queryir.All(
		queryir.Equals{Column: queryir.ColumnNodeType, Value: attr.String(string(kind))},
		queryir.Equals{Column: queryir.ColumnLabel, Value: attr.String(label)},
	)}
}

// Exists reports whether a family of the kind has the label.
func Exists(ctx context.Context, b Backend, kind Kind, label string) (bool, error) {
	count, err := b.Count(ctx, labelQuery(kind, label))
	if err != nil {
		return false, fmt.Errorf("look up %s<%s>: %w", kind.Name(), label, err)
	}
	return count > 0, nil
}

// Load returns the stored family of the kind with the label.
func Load(ctx context.Context, b Backend, kind Kind, label string) (*Family, error) {
	n, err := b.One(ctx, labelQuery(kind, label))
	switch {
	case errors.Is(err, store.ErrNotExist):
		return nil, &Error{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("%s `%s` does not exist", kind.Name(), label),
			Label:   label,
		}
	case errors.Is(err, store.ErrMultipleMatches):
		return nil, &Error{
			Code:    CodeMultipleMatches,
			Message: fmt.Sprintf("multiple %s instances labeled `%s`", kind.Name(), label),
			Label:   label,
		}
	case err != nil:
		return nil, fmt.Errorf("load %s<%s>: %w", kind.Name(), label, err)
	}
	return &Family{backend: b, kind: kind, node: n}, nil
}

// List returns all stored families of the kind, oldest first.
func List(ctx context.Context, b Backend, kind Kind) ([]*Family, error) {
	nodes, err := b.Find(ctx, queryir.Select{
		Filter: queryir.Equals{Column: queryir.ColumnNodeType, Value: attr.String(string(kind))},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Name(), err)
	}

	families := make([]*Family, len(nodes))
	for i, n := range nodes {
		families[i] = &Family{backend: b, kind: kind, node: n}
	}
	return families, nil
}

// CreateFromFolder creates a family from a directory of pseudopotential
// files.
//
// Every entry of dirpath must be a regular file that parses as a record,
// and no two records may share an element. Nothing is stored unless all
// of that holds. The empty family is stored first, then the records,
// which are attached last.
func CreateFromFolder(ctx context.Context, b Backend, kind Kind, dirpath, label, description string) (*Family, error) {
	if err := kind.ValidateLabel(label); err != nil {
		return nil, err
	}
	if err := checkLabelFree(ctx, b, kind, label); err != nil {
		return nil, err
	}

	records, err := parseFolder(dirpath)
	if err != nil {
		return nil, err
	}

	f, err := create(ctx, b, kind, label, description)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(records))
	for i, upf := range records {
		if err := upf.Store(ctx, b); err != nil {
			return nil, err
		}
		ids[i] = upf.ID()
	}
	if err := b.AddMembers(ctx, f.node.ID, ids...); err != nil {
		return nil, fmt.Errorf("attach pseudos to %s: %w", f, err)
	}

	f.index.built = true
	for _, upf := range records {
		f.index.put(upf)
	}
	return f, nil
}

// parseFolder parses every file of dirpath in name order and checks that
// elements are distinct.
func parseFolder(dirpath string) ([]*pseudo.UPF, error) {
	info, err := os.Stat(dirpath)
	if err != nil || !info.IsDir() {
		return nil, &Error{
			Code:    CodeInvalidDirectoryContents,
			Message: fmt.Sprintf("`%s` is not a directory", dirpath),
			Err:     err,
		}
	}

	entries, err := os.ReadDir(dirpath)
	if err != nil {
		return nil, &Error{
			Code:    CodeInvalidDirectoryContents,
			Message: fmt.Sprintf("cannot read directory `%s`", dirpath),
			Err:     err,
		}
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dirpath, entry.Name())
		// Stat follows symlinks, so a link to a regular file is accepted.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			return nil, &Error{
				Code:    CodeInvalidDirectoryContents,
				Message: fmt.Sprintf("dirpath `%s` contains at least one entry that is not a file: `%s`", dirpath, entry.Name()),
			}
		}
		paths = append(paths, path)
	}

	records := make([]*pseudo.UPF, 0, len(paths))
	for _, path := range paths {
		upf, err := pseudo.ParseFile(path)
		if err != nil {
			return nil, &Error{
				Code:    CodeParseError,
				Message: fmt.Sprintf("failed to parse `%s`", path),
				Err:     err,
			}
		}
		records = append(records, upf)
	}

	seen := make(map[string]string, len(records))
	for _, upf := range records {
		if other, ok := seen[upf.Element()]; ok {
			return nil, &Error{
				Code: CodeDuplicateElement,
				Message: fmt.Sprintf("directory `%s` contains pseudopotentials with duplicate element `%s`: `%s` and `%s`",
					dirpath, upf.Element(), other, upf.Filename()),
				Element: upf.Element(),
			}
		}
		seen[upf.Element()] = upf.Filename()
	}

	return records, nil
}

// Kind returns the kind of the family.
func (f *Family) Kind() Kind { return f.kind }

// ID returns the store id of the family.
func (f *Family) ID() int64 { return f.node.ID }

// UUID returns the store uuid of the family.
func (f *Family) UUID() string { return f.node.UUID }

// Label returns the family label.
func (f *Family) Label() string { return f.node.Label }

// Description returns the family description.
func (f *Family) Description() string { return f.node.Description }

// String returns "Kind<label>", e.g. "SsspFamily<SSSP/1.1/PBE/efficiency>".
func (f *Family) String() string {
	return fmt.Sprintf("%s<%s>", f.kind.Name(), f.node.Label)
}

// SetDescription changes the family description.
func (f *Family) SetDescription(ctx context.Context, description string) error {
	if err := f.backend.SetDescription(ctx, f.node.ID, description); err != nil {
		return fmt.Errorf("set description of %s: %w", f, err)
	}
	f.node.Description = description
	return nil
}

// SetLabel relabels the family. The new label is validated for the kind
// and must not be in use. Parameters created earlier keep the old label.
func (f *Family) SetLabel(ctx context.Context, label string) error {
	if label == f.node.Label {
		return nil
	}
	if err := f.kind.ValidateLabel(label); err != nil {
		return err
	}
	if err := checkLabelFree(ctx, f.backend, f.kind, label); err != nil {
		return err
	}
	if err := f.backend.SetLabel(ctx, f.node.ID, label); err != nil {
		return fmt.Errorf("set label of %s: %w", f, err)
	}
	f.node.Label = label
	return nil
}

// SetAttribute stores an extra attribute on the family.
func (f *Family) SetAttribute(ctx context.Context, key string, value attr.Value) error {
	if err := f.backend.SetAttribute(ctx, f.node.ID, key, value); err != nil {
		return fmt.Errorf("set attribute %q of %s: %w", key, f, err)
	}
	if f.node.Attributes == nil {
		f.node.Attributes = attr.Object{}
	}
	f.node.Attributes[key] = value
	return nil
}

// Attribute returns an extra attribute of the family.
func (f *Family) Attribute(key string) (attr.Value, bool) {
	return f.node.Attribute(key)
}

// Count returns the number of records in the family.
func (f *Family) Count(ctx context.Context) (int, error) {
	count, err := f.backend.CountMembers(ctx, f.node.ID)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", f, err)
	}
	return count, nil
}

// AddRecords adds records to the family.
//
// Every record must be a *pseudo.UPF, and no record may share an element
// with the family or with another record of the batch. All checks run
// before anything changes. Unstored records are stored before attaching.
func (f *Family) AddRecords(ctx context.Context, records ...pseudo.Record) error {
	upfs := make([]*pseudo.UPF, len(records))
	for i, r := range records {
		upf, ok := r.(*pseudo.UPF)
		if !ok || upf == nil {
			return &Error{
				Code:    CodeTypeMismatch,
				Message: fmt.Sprintf("only %T records can be added, got %T", upf, r),
				Label:   f.node.Label,
			}
		}
		upfs[i] = upf
	}

	if err := f.buildIndex(ctx); err != nil {
		return err
	}

	batch := make(map[string]struct{}, len(upfs))
	for _, upf := range upfs {
		element := upf.Element()
		_, inFamily := f.index.get(element)
		_, inBatch := batch[element]
		if inFamily || inBatch {
			return &Error{
				Code:    CodeDuplicateElement,
				Message: fmt.Sprintf("element `%s` already present in %s", element, f),
				Label:   f.node.Label,
				Element: element,
			}
		}
		batch[element] = struct{}{}
	}

	ids := make([]int64, len(upfs))
	for i, upf := range upfs {
		if err := upf.Store(ctx, f.backend); err != nil {
			return err
		}
		ids[i] = upf.ID()
	}
	if err := f.backend.AddMembers(ctx, f.node.ID, ids...); err != nil {
		return fmt.Errorf("add pseudos to %s: %w", f, err)
	}

	for _, upf := range upfs {
		f.index.put(upf)
	}
	return nil
}

// Record returns the record for element.
//
// The index is consulted first. On a miss the store is queried, and a hit
// is added to the index.
func (f *Family) Record(ctx context.Context, element string) (*pseudo.UPF, error) {
	if upf, ok := f.index.get(element); ok {
		return upf, nil
	}

	n, err := f.backend.One(ctx, queryir.Select{Filter: queryir.All(
		queryir.MemberOf{GroupID: f.node.ID},
		queryir.Equals{Column: queryir.ColumnNodeType, Value: attr.String(pseudo.NodeType)},
		queryir.AttrEquals{Key: pseudo.KeyElement, Value: attr.String(element)},
	)})
	switch {
	case errors.Is(err, store.ErrNotExist):
		return nil, &Error{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("family `%s` does not contain pseudo for element `%s`", f.node.Label, element),
			Label:   f.node.Label,
			Element: element,
		}
	case errors.Is(err, store.ErrMultipleMatches):
		return nil, &Error{
			Code:    CodeMultipleMatches,
			Message: fmt.Sprintf("family `%s` contains multiple pseudos for `%s`", f.node.Label, element),
			Label:   f.node.Label,
			Element: element,
		}
	case err != nil:
		return nil, fmt.Errorf("get pseudo %s of %s: %w", element, f, err)
	}

	upf, err := pseudo.FromNode(n)
	if err != nil {
		return nil, fmt.Errorf("get pseudo %s of %s: %w", element, f, err)
	}
	f.index.put(upf)
	return upf, nil
}

// Elements returns the sorted element symbols of the family.
func (f *Family) Elements(ctx context.Context) ([]string, error) {
	if err := f.buildIndex(ctx); err != nil {
		return nil, err
	}
	elements := make([]string, 0, len(f.index.records))
	for e := range f.index.records {
		elements = append(elements, e)
	}
	sort.Strings(elements)
	return elements, nil
}

// Records returns the records of the family ordered by element.
func (f *Family) Records(ctx context.Context) ([]*pseudo.UPF, error) {
	elements, err := f.Elements(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]*pseudo.UPF, len(elements))
	for i, e := range elements {
		records[i] = f.index.records[e]
	}
	return records, nil
}

// buildIndex scans the full membership once.
func (f *Family) buildIndex(ctx context.Context) error {
	if f.index.built {
		return nil
	}

	nodes, err := f.backend.Members(ctx, f.node.ID)
	if err != nil {
		return fmt.Errorf("load members of %s: %w", f, err)
	}

	records := make(map[string]*pseudo.UPF, len(nodes))
	for _, n := range nodes {
		upf, err := pseudo.FromNode(n)
		if err != nil {
			return fmt.Errorf("load members of %s: %w", f, err)
		}
		if _, dup := records[upf.Element()]; dup {
			return &Error{
				Code:    CodeMultipleMatches,
				Message: fmt.Sprintf("family `%s` contains multiple pseudos for `%s`", f.node.Label, upf.Element()),
				Label:   f.node.Label,
				Element: upf.Element(),
			}
		}
		records[upf.Element()] = upf
	}

	f.index = recordIndex{built: true, records: records}
	return nil
}
