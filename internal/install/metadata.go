package install

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/sssp/internal/family"
)

//go:embed schema.cue
var metadataSchema string

// MetadataEntry is the metadata of one element as published with the SSSP.
type MetadataEntry struct {
	Filename        string  `json:"filename"`
	MD5             string  `json:"md5"`
	Pseudopotential string  `json:"pseudopotential"`
	Cutoff          float64 `json:"cutoff"`
	Dual            float64 `json:"dual"`
}

// Metadata maps element to its metadata entry.
type Metadata map[string]MetadataEntry

// ParseMetadata validates data against the metadata schema and decodes it.
func ParseMetadata(data []byte) (Metadata, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(metadataSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile metadata schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename("metadata.json"))
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("parse metadata: %v: %w", err, ErrMetadata)
	}

	value := schema.LookupPath(cue.ParsePath("#Metadata")).Unify(doc)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate metadata: %v: %w", err, ErrMetadata)
	}

	var m Metadata
	if err := value.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode metadata: %v: %w", err, ErrMetadata)
	}
	if m == nil {
		m = Metadata{}
	}
	return m, nil
}

// Elements returns the sorted elements of the document.
func (m Metadata) Elements() []string {
	return slices.Sorted(maps.Keys(m))
}

// Parameters converts the document to family parameters values:
// cutoff_wfc is the cutoff and cutoff_rho is the cutoff times the dual.
func (m Metadata) Parameters() map[string]map[string]any {
	values := make(map[string]map[string]any, len(m))
	for element, e := range m {
		values[element] = map[string]any{
			family.FieldFilename:  e.Filename,
			family.FieldMD5:       e.MD5,
			family.FieldCutoffWfc: e.Cutoff,
			family.FieldCutoffRho: e.Cutoff * e.Dual,
		}
	}
	return values
}
