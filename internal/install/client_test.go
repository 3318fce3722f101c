package install

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sssp/internal/family"
	"github.com/roach88/sssp/internal/testutil"
)

func TestClientURLs(t *testing.T) {
	c := NewClient("", nil)
	assert.Equal(t, "https://legacy-archive.materialscloud.org/file/2018.0001/v4", c.BaseURL())
	assert.Equal(t,
		"https://legacy-archive.materialscloud.org/file/2018.0001/v4/SSSP_1.1_PBE_efficiency.tar.gz",
		c.ArchiveURL(family.DefaultConfiguration))
	assert.Equal(t,
		"https://legacy-archive.materialscloud.org/file/2018.0001/v4/SSSP_1.0_PBEsol_precision.json",
		c.MetadataURL(family.Configuration{Version: "1.0", Functional: "PBEsol", Protocol: "precision"}))

	c = NewClient("http://example.test///", nil)
	assert.Equal(t, "http://example.test", c.BaseURL())
}

func TestDownload(t *testing.T) {
	payload := testutil.Metadata(t, "He")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "metadata.json")
	sum, err := NewClient(srv.URL, srv.Client()).Download(context.Background(), srv.URL+"/x.json", dest)
	require.NoError(t, err)
	assert.Equal(t, testutil.MD5(payload), sum)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestDownload_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "archive.tar.gz")
	_, err := NewClient(srv.URL, srv.Client()).Download(context.Background(), srv.URL+"/missing", dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "status 404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file written on failure")
}

type failingClient struct{}

func (failingClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestDownload_TransportError(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "archive.tar.gz")
	_, err := NewClient("http://example.test", failingClient{}).Download(context.Background(), "http://example.test/a", dest)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Contains(t, err.Error(), "connection refused")
}
