package install

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sssp/internal/family"
	"github.com/roach88/sssp/internal/testutil"
)

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata(testutil.Metadata(t, "He", "Ne"))
	require.NoError(t, err)

	assert.Equal(t, []string{"He", "Ne"}, m.Elements())
	assert.Equal(t, MetadataEntry{
		Filename:        "He.upf",
		MD5:             testutil.MD5(testutil.UPFv2("He")),
		Pseudopotential: "SG15",
		Cutoff:          30,
		Dual:            8,
	}, m["He"])
}

func TestParseMetadata_ExtraFieldsAllowed(t *testing.T) {
	doc := `{"O": {"filename": "O.pbe-n-kjpaw_psl.0.1.UPF", "md5": "91b6ac1a5f5dfdc1e0e3a1a2d9e55c7f",
		"pseudopotential": "SSSP", "cutoff": 50, "dual": 8, "rho_cutoff": 400}}`

	m, err := ParseMetadata([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 50.0, m["O"].Cutoff)
}

func TestParseMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `this is not json`},
		{"array", `[1, 2]`},
		{"lowercase element", `{"he": {"filename": "He.upf", "md5": "0123456789abcdef0123456789abcdef", "pseudopotential": "x", "cutoff": 30, "dual": 8}}`},
		{"reserved key", `{"family_label": {"filename": "He.upf", "md5": "0123456789abcdef0123456789abcdef", "pseudopotential": "x", "cutoff": 30, "dual": 8}}`},
		{"missing dual", `{"He": {"filename": "He.upf", "md5": "0123456789abcdef0123456789abcdef", "pseudopotential": "x", "cutoff": 30}}`},
		{"bad md5", `{"He": {"filename": "He.upf", "md5": "xyz", "pseudopotential": "x", "cutoff": 30, "dual": 8}}`},
		{"negative cutoff", `{"He": {"filename": "He.upf", "md5": "0123456789abcdef0123456789abcdef", "pseudopotential": "x", "cutoff": -1, "dual": 8}}`},
		{"cutoff as string", `{"He": {"filename": "He.upf", "md5": "0123456789abcdef0123456789abcdef", "pseudopotential": "x", "cutoff": "30", "dual": 8}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrMetadata)
		})
	}
}

func TestMetadataParameters(t *testing.T) {
	m := Metadata{"He": {Filename: "He.upf", MD5: "abc", Cutoff: 30, Dual: 8}}

	want := map[string]map[string]any{
		"He": {
			family.FieldFilename:  "He.upf",
			family.FieldMD5:       "abc",
			family.FieldCutoffWfc: 30.0,
			family.FieldCutoffRho: 240.0,
		},
	}
	if diff := cmp.Diff(want, m.Parameters()); diff != "" {
		t.Errorf("Parameters() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMetadata_Empty(t *testing.T) {
	m, err := ParseMetadata([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, m)
}
