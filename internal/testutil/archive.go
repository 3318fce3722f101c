package testutil

import (
	"archive/tar"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// ArchiveEntry is one member of a test archive. A nil Data with Dir set
// produces a directory entry.
type ArchiveEntry struct {
	Name string
	Data []byte
	Dir  bool
}

// TarGz builds a gzip-compressed tar archive from entries, in order.
func TarGz(t *testing.T, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: 0o644, Size: int64(len(e.Data)), Typeflag: tar.TypeReg}
		if e.Dir {
			hdr = &tar.Header{Name: e.Name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.Name, err)
		}
		if !e.Dir {
			if _, err := tw.Write(e.Data); err != nil {
				t.Fatalf("tar write %s: %v", e.Name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// PseudoArchive builds a flat archive holding one UPF v2 file per element.
func PseudoArchive(t *testing.T, elements ...string) []byte {
	t.Helper()
	entries := make([]ArchiveEntry, 0, len(elements))
	for _, e := range elements {
		entries = append(entries, ArchiveEntry{Name: Filename(e), Data: UPFv2(e)})
	}
	return TarGz(t, entries...)
}

// MD5 returns the hex md5 of data.
func MD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// MetadataEntry is the per-element record of an SSSP metadata document.
type MetadataEntry struct {
	Filename        string  `json:"filename"`
	MD5             string  `json:"md5"`
	Pseudopotential string  `json:"pseudopotential"`
	Cutoff          float64 `json:"cutoff"`
	Dual            float64 `json:"dual"`
}

// Metadata builds an SSSP metadata document for elements. Every element
// gets cutoff 30 and dual 8, and the md5 of its UPFv2 fixture.
func Metadata(t *testing.T, elements ...string) []byte {
	t.Helper()
	doc := make(map[string]MetadataEntry, len(elements))
	for _, e := range elements {
		doc[e] = MetadataEntry{
			Filename:        Filename(e),
			MD5:             MD5(UPFv2(e)),
			Pseudopotential: "SG15",
			Cutoff:          30,
			Dual:            8,
		}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return data
}
