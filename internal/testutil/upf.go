package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// UPFv2 returns a minimal UPF version 2 file for element.
func UPFv2(element string) []byte {
	return []byte(fmt.Sprintf(`<UPF version="2.0.1">
  <PP_INFO>
    Generated for tests
  </PP_INFO>
  <PP_HEADER
    generated="testutil"
    pseudo_type="NC"
    element="%s"
    relativistic="scalar"
    z_valence="2.0"
    functional="PBE"/>
  <PP_MESH/>
</UPF>
`, element))
}

// UPFv1 returns a minimal UPF version 1 file for element.
func UPFv1(element string) []byte {
	return []byte(fmt.Sprintf(`<PP_INFO>
  Generated for tests
</PP_INFO>
<PP_HEADER>
   0                   Version Number
  %s                   Element
   NC                  Norm - Conserving pseudopotential
    F                  Nonlinear Core Correction
 SLA  PW   PBX  PBC    PBE  Exchange-Correlation functional
</PP_HEADER>
`, element))
}

// Filename returns the fixture filename for element.
func Filename(element string) string {
	return element + ".upf"
}

// WriteUPFDir writes one UPF v2 file per element into a new temporary
// directory and returns its path.
func WriteUPFDir(t *testing.T, elements ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, e := range elements {
		WriteFile(t, filepath.Join(dir, Filename(e)), UPFv2(e))
	}
	return dir
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
