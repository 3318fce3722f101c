package install

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/renameio"

	"github.com/roach88/sssp/internal/family"
)

// DefaultURLBase is the Materials Cloud Archive entry holding the SSSP.
const DefaultURLBase = "https://legacy-archive.materialscloud.org/file/2018.0001/v4/"

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client downloads archives and metadata from the archive source.
type Client struct {
	// baseURL has no trailing slash.
	baseURL string

	httpClient HTTPClient
}

// NewClient creates a client for baseURL. An empty baseURL selects
// DefaultURLBase and a nil httpClient selects http.DefaultClient.
func NewClient(baseURL string, httpClient HTTPClient) *Client {
	if baseURL == "" {
		baseURL = DefaultURLBase
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) stem(cfg family.Configuration) string {
	return fmt.Sprintf("%s/SSSP_%s_%s_%s", c.baseURL, cfg.Version, cfg.Functional, cfg.Protocol)
}

// ArchiveURL returns the URL of the pseudopotential archive of cfg.
func (c *Client) ArchiveURL(cfg family.Configuration) string {
	return c.stem(cfg) + ".tar.gz"
}

// MetadataURL returns the URL of the metadata document of cfg.
func (c *Client) MetadataURL(cfg family.Configuration) string {
	return c.stem(cfg) + ".json"
}

// Download fetches url into dest and returns the md5 of the content.
// dest is replaced atomically, so it never holds a partial download.
func (c *Client) Download(ctx context.Context, url, dest string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %v: %w", url, err, ErrFetch)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: status %d: %w", url, resp.StatusCode, ErrFetch)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %v: %w", url, err, ErrFetch)
	}

	if err := renameio.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}

	return md5Hex(data), nil
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// md5File returns the hex md5 of the file at path.
func md5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
