package testutil

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUPFFixturesAreDeterministic(t *testing.T) {
	assert.Equal(t, UPFv2("He"), UPFv2("He"))
	assert.NotEqual(t, MD5(UPFv2("He")), MD5(UPFv2("Ne")))
	assert.Contains(t, string(UPFv1("Ar")), "Ar                   Element")
}

func TestWriteUPFDir(t *testing.T) {
	dir := WriteUPFDir(t, "He", "Ne")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	data, err := os.ReadFile(filepath.Join(dir, "He.upf"))
	require.NoError(t, err)
	assert.Equal(t, UPFv2("He"), data)
}

func TestPseudoArchive(t *testing.T) {
	data := PseudoArchive(t, "He", "Ar")

	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	assert.Equal(t, []string{"He.upf", "Ar.upf"}, names)
}

func TestMetadata(t *testing.T) {
	var doc map[string]MetadataEntry
	require.NoError(t, json.Unmarshal(Metadata(t, "He"), &doc))

	require.Contains(t, doc, "He")
	assert.Equal(t, "He.upf", doc["He"].Filename)
	assert.Equal(t, MD5(UPFv2("He")), doc["He"].MD5)
	assert.Equal(t, 30.0, doc["He"].Cutoff)
	assert.Equal(t, 8.0, doc["He"].Dual)
}
