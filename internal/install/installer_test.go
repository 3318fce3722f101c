package install

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/family"
	"github.com/roach88/sssp/internal/store"
	"github.com/roach88/sssp/internal/testutil"
)

// archiveServer serves files by path and counts requests.
type archiveServer struct {
	*httptest.Server
	files    map[string][]byte
	requests atomic.Int32
}

func newArchiveServer(t *testing.T, files map[string][]byte) *archiveServer {
	t.Helper()
	s := &archiveServer{files: files}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		data, ok := s.files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func sssp11Files(t *testing.T, elements ...string) map[string][]byte {
	return map[string][]byte{
		"SSSP_1.1_PBE_efficiency.tar.gz": testutil.PseudoArchive(t, elements...),
		"SSSP_1.1_PBE_efficiency.json":   testutil.Metadata(t, elements...),
	}
}

func createTestInstaller(t *testing.T, baseURL string) (*Installer, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewInstaller(s, NewClient(baseURL, nil), logger, "0.1.0"), s
}

func TestInstall_Download(t *testing.T) {
	files := sssp11Files(t, "He", "Ar", "Ne")
	srv := newArchiveServer(t, files)
	in, s := createTestInstaller(t, srv.URL+"/")
	ctx := context.Background()

	res, err := in.Install(ctx, Request{Configuration: family.DefaultConfiguration})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Count)
	assert.Equal(t, family.KindSSSP, res.Family.Kind())
	assert.Equal(t, "SSSP/1.1/PBE/efficiency", res.Family.Label())
	assert.Equal(t, int32(2), srv.requests.Load())

	archiveMD5 := testutil.MD5(files["SSSP_1.1_PBE_efficiency.tar.gz"])
	metadataMD5 := testutil.MD5(files["SSSP_1.1_PBE_efficiency.json"])
	assert.Equal(t, strings.Join([]string{
		"SSSP v1.1 PBE efficiency installed with sssp v0.1.0",
		"Archive pseudos md5: " + archiveMD5,
		"Pseudo metadata md5: " + metadataMD5,
	}, "\n"), res.Family.Description())

	loaded, err := family.Load(ctx, s, family.KindSSSP, "SSSP/1.1/PBE/efficiency")
	require.NoError(t, err)
	v, ok := loaded.Attribute(KeyArchiveMD5)
	require.True(t, ok)
	assert.Equal(t, attr.String(archiveMD5), v)
	v, ok = loaded.Attribute(KeyMetadataMD5)
	require.True(t, ok)
	assert.Equal(t, attr.String(metadataMD5), v)

	elements, err := loaded.Elements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ar", "He", "Ne"}, elements)

	params, err := family.LoadParameters(ctx, s, "SSSP/1.1/PBE/efficiency")
	require.NoError(t, err)
	he, err := params.ElementMetadata("He")
	require.NoError(t, err)
	assert.Equal(t, family.ElementParameters{
		Filename:  "He.upf",
		MD5:       testutil.MD5(testutil.UPFv2("He")),
		CutoffWfc: 30,
		CutoffRho: 240,
	}, he)
}

func TestInstall_AlreadyInstalled(t *testing.T) {
	srv := newArchiveServer(t, sssp11Files(t, "He"))
	in, _ := createTestInstaller(t, srv.URL)
	ctx := context.Background()

	_, err := in.Install(ctx, Request{Configuration: family.DefaultConfiguration})
	require.NoError(t, err)
	requests := srv.requests.Load()

	_, err = in.Install(ctx, Request{Configuration: family.DefaultConfiguration})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyInstalled)
	assert.Contains(t, err.Error(), "SsspFamily<SSSP/1.1/PBE/efficiency> is already installed")
	assert.Equal(t, requests, srv.requests.Load(), "no download for an installed family")
}

func TestInstall_FetchFailureLeavesNothing(t *testing.T) {
	files := sssp11Files(t, "He")
	delete(files, "SSSP_1.1_PBE_efficiency.json")
	srv := newArchiveServer(t, files)
	in, s := createTestInstaller(t, srv.URL)
	ctx := context.Background()

	_, err := in.Install(ctx, Request{Configuration: family.DefaultConfiguration})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)

	exists, err := family.Exists(ctx, s, family.KindSSSP, "SSSP/1.1/PBE/efficiency")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInstall_InvalidMetadataLeavesNothing(t *testing.T) {
	files := sssp11Files(t, "He")
	files["SSSP_1.1_PBE_efficiency.json"] = []byte(`{"He": {"filename": "He.upf"}}`)
	srv := newArchiveServer(t, files)
	in, s := createTestInstaller(t, srv.URL)
	ctx := context.Background()

	_, err := in.Install(ctx, Request{Configuration: family.DefaultConfiguration})
	assert.ErrorIs(t, err, ErrMetadata)

	exists, err := family.Exists(ctx, s, family.KindSSSP, "SSSP/1.1/PBE/efficiency")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInstall_InvalidArchiveContents(t *testing.T) {
	files := sssp11Files(t, "He")
	files["SSSP_1.1_PBE_efficiency.tar.gz"] = testutil.TarGz(t,
		testutil.ArchiveEntry{Name: "He.upf", Data: testutil.UPFv2("He")},
		testutil.ArchiveEntry{Name: "extra/", Dir: true},
	)
	srv := newArchiveServer(t, files)
	in, s := createTestInstaller(t, srv.URL)
	ctx := context.Background()

	_, err := in.Install(ctx, Request{Configuration: family.DefaultConfiguration})
	assert.ErrorIs(t, err, family.ErrInvalidDirectoryContents)

	exists, err := family.Exists(ctx, s, family.KindSSSP, "SSSP/1.1/PBE/efficiency")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInstall_InvalidConfiguration(t *testing.T) {
	srv := newArchiveServer(t, nil)
	in, _ := createTestInstaller(t, srv.URL)

	_, err := in.Install(context.Background(), Request{
		Configuration: family.Configuration{Version: "1.2", Functional: "PBE", Protocol: "efficiency"},
	})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Zero(t, srv.requests.Load())
}

func TestInstall_LocalRequiresLabel(t *testing.T) {
	srv := newArchiveServer(t, nil)
	in, _ := createTestInstaller(t, srv.URL)

	_, err := in.Install(context.Background(), Request{
		Configuration: family.DefaultConfiguration,
		ArchivePath:   "archive.tar.gz",
	})
	assert.ErrorIs(t, err, ErrLabelRequired)
}

func TestInstall_LocalFiles(t *testing.T) {
	srv := newArchiveServer(t, nil)
	in, s := createTestInstaller(t, srv.URL)
	ctx := context.Background()

	dir := t.TempDir()
	archive := filepath.Join(dir, "pseudos.tar.gz")
	metadata := filepath.Join(dir, "pseudos.json")
	testutil.WriteFile(t, archive, testutil.PseudoArchive(t, "He", "Ne"))
	testutil.WriteFile(t, metadata, testutil.Metadata(t, "He", "Ne"))

	res, err := in.Install(ctx, Request{
		Configuration: family.DefaultConfiguration,
		Label:         "my-pseudos",
		ArchivePath:   archive,
		MetadataPath:  metadata,
	})
	require.NoError(t, err)

	assert.Zero(t, srv.requests.Load())
	assert.Equal(t, family.KindUPF, res.Family.Kind())
	assert.Equal(t, "UpfFamily<my-pseudos>", res.Family.String())
	assert.Equal(t, 2, res.Count)
	assert.Empty(t, res.Family.Description())
	assert.Equal(t, "my-pseudos", res.Parameters.FamilyLabel())

	_, err = family.Load(ctx, s, family.KindSSSP, "my-pseudos")
	assert.ErrorIs(t, err, family.ErrNotFound)
}

func TestInstall_LocalArchiveDownloadsMetadata(t *testing.T) {
	files := sssp11Files(t, "He")
	srv := newArchiveServer(t, files)
	in, _ := createTestInstaller(t, srv.URL)

	archive := filepath.Join(t.TempDir(), "pseudos.tar.gz")
	testutil.WriteFile(t, archive, testutil.PseudoArchive(t, "He"))

	res, err := in.Install(context.Background(), Request{
		Configuration: family.DefaultConfiguration,
		Label:         "mixed",
		ArchivePath:   archive,
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), srv.requests.Load())
	assert.Equal(t, "Pseudo metadata md5: "+testutil.MD5(files["SSSP_1.1_PBE_efficiency.json"]), res.Family.Description())
}

func TestInstall_DecomposedFilenameMatchesComposedMetadata(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	in := NewInstaller(s, NewClient("http://unused.invalid", nil), logger, "0.1.0")
	ctx := context.Background()

	decomposed := "He_cafe\u0301.upf"
	composed := "He_caf\u00e9.upf"
	content := testutil.UPFv2("He")

	dir := t.TempDir()
	archive := filepath.Join(dir, "pseudos.tar.gz")
	metadata := filepath.Join(dir, "pseudos.json")
	testutil.WriteFile(t, archive, testutil.TarGz(t, testutil.ArchiveEntry{Name: decomposed, Data: content}))
	doc, err := json.Marshal(map[string]testutil.MetadataEntry{
		"He": {Filename: composed, MD5: testutil.MD5(content), Pseudopotential: "SG15", Cutoff: 30, Dual: 8},
	})
	require.NoError(t, err)
	testutil.WriteFile(t, metadata, doc)

	res, err := in.Install(ctx, Request{Label: "unicode", ArchivePath: archive, MetadataPath: metadata})
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "parameters disagree")

	loaded, err := family.Load(ctx, s, family.KindUPF, "unicode")
	require.NoError(t, err)
	record, err := loaded.Record(ctx, "He")
	require.NoError(t, err)
	assert.Equal(t, decomposed, record.Filename())

	loadedParams, err := family.LoadFamilyParameters(ctx, s, loaded)
	require.NoError(t, err)
	he, err := loadedParams.ElementMetadata("He")
	require.NoError(t, err)
	assert.Equal(t, composed, he.Filename)
	assert.Equal(t, res.Family.UUID(), loaded.UUID())
}

func TestSameFilename(t *testing.T) {
	assert.True(t, sameFilename("He_cafe\u0301.upf", "He_caf\u00e9.upf"))
	assert.True(t, sameFilename("He.upf", "He.upf"))
	assert.False(t, sameFilename("He.upf", "he.upf"))
}
