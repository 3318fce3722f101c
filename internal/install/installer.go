package install

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/family"
)

// Attribute keys set on installed families.
const (
	KeyArchiveMD5  = "archive_md5"
	KeyMetadataMD5 = "metadata_md5"
)

// Request selects what to install.
//
// Without local paths the archive and metadata of Configuration are
// downloaded and an SSSP family labeled after the configuration is
// created. If either path is set, a UPF family is created under Label,
// which is then required. A missing local file is still downloaded.
type Request struct {
	Configuration family.Configuration
	Label         string
	ArchivePath   string
	MetadataPath  string
}

// Local reports whether the request uses any local file.
func (r Request) Local() bool {
	return r.ArchivePath != "" || r.MetadataPath != ""
}

// Result describes a completed installation.
type Result struct {
	Family     *family.Family
	Parameters *family.Parameters
	Count      int
}

// Installer registers families in a backend.
type Installer struct {
	backend family.Backend
	client  *Client
	logger  *slog.Logger
	version string
}

// NewInstaller creates an installer. version is recorded in the
// description of installed SSSP families. A nil logger selects
// slog.Default().
func NewInstaller(backend family.Backend, client *Client, logger *slog.Logger, version string) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{
		backend: backend,
		client:  client,
		logger:  logger,
		version: version,
	}
}

// Install downloads what the request needs, validates it and creates the
// family and its parameters. Nothing is stored if a download, the
// metadata or the archive is invalid.
func (in *Installer) Install(ctx context.Context, req Request) (*Result, error) {
	cfg := req.Configuration
	kind := family.KindSSSP
	label := family.FormatLabel(cfg)
	var description []string

	if req.Local() {
		kind = family.KindUPF
		if req.Label == "" {
			return nil, ErrLabelRequired
		}
		label = req.Label
	} else {
		description = append(description, fmt.Sprintf("SSSP v%s %s %s installed with sssp v%s",
			cfg.Version, cfg.Functional, cfg.Protocol, in.version))
	}

	needsDownload := req.ArchivePath == "" || req.MetadataPath == ""
	if needsDownload && !cfg.Valid() {
		return nil, fmt.Errorf("%s %s %s is not a valid SSSP configuration: %w",
			cfg.Version, cfg.Functional, cfg.Protocol, ErrInvalidConfiguration)
	}

	exists, err := family.Exists(ctx, in.backend, kind, label)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s<%s> is already installed: %w", kind.Name(), label, ErrAlreadyInstalled)
	}

	workDir, err := os.MkdirTemp("", "sssp-install-")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	archivePath, archiveMD5, err := in.fetch(ctx, req.ArchivePath, in.client.ArchiveURL(cfg), filepath.Join(workDir, "archive.tar.gz"), "archive")
	if err != nil {
		return nil, err
	}
	if req.ArchivePath == "" {
		description = append(description, "Archive pseudos md5: "+archiveMD5)
	}

	metadataPath, metadataMD5, err := in.fetch(ctx, req.MetadataPath, in.client.MetadataURL(cfg), filepath.Join(workDir, "metadata.json"), "metadata")
	if err != nil {
		return nil, err
	}
	if req.MetadataPath == "" {
		description = append(description, "Pseudo metadata md5: "+metadataMD5)
	}

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	metadata, err := ParseMetadata(data)
	if err != nil {
		return nil, err
	}
	in.logger.Debug("parsed metadata", "elements", metadata.Elements())

	in.logger.Info("unpacking archive", "path", archivePath)
	pseudoDir, err := Unpack(archivePath, filepath.Join(workDir, "pseudos"))
	if err != nil {
		return nil, err
	}

	in.logger.Info("creating family", "kind", kind.Name(), "label", label)
	fam, err := family.CreateFromFolder(ctx, in.backend, kind, pseudoDir, label, strings.Join(description, "\n"))
	if err != nil {
		return nil, err
	}

	params, err := family.NewFamilyParameters(ctx, in.backend, fam, metadata.Parameters())
	if err != nil {
		return nil, err
	}

	if err := fam.SetAttribute(ctx, KeyArchiveMD5, attr.String(archiveMD5)); err != nil {
		return nil, err
	}
	if err := fam.SetAttribute(ctx, KeyMetadataMD5, attr.String(metadataMD5)); err != nil {
		return nil, err
	}

	if err := in.crossCheck(ctx, fam, params); err != nil {
		return nil, err
	}

	count, err := fam.Count(ctx)
	if err != nil {
		return nil, err
	}

	in.logger.Info("installed family", "label", label, "pseudos", count)
	return &Result{Family: fam, Parameters: params, Count: count}, nil
}

// fetch returns localPath and its md5 if set, otherwise downloads url to
// dest.
func (in *Installer) fetch(ctx context.Context, localPath, url, dest, what string) (string, string, error) {
	if localPath != "" {
		sum, err := md5File(localPath)
		if err != nil {
			return "", "", fmt.Errorf("read %s %s: %w", what, localPath, err)
		}
		in.logger.Debug("using local file", "what", what, "path", localPath, "md5", sum)
		return localPath, sum, nil
	}

	in.logger.Info("downloading", "what", what, "url", url)
	sum, err := in.client.Download(ctx, url, dest)
	if err != nil {
		return "", "", err
	}
	in.logger.Debug("downloaded", "what", what, "md5", sum)
	return dest, sum, nil
}

// crossCheck logs parameters whose md5 or filename disagrees with the
// family records. A mismatch is reported, never fatal.
func (in *Installer) crossCheck(ctx context.Context, fam *family.Family, params *family.Parameters) error {
	records, err := fam.Records(ctx)
	if err != nil {
		return err
	}
	metadata := params.Metadata()

	for _, record := range records {
		element := record.Element()
		ep, ok := metadata[element]
		if !ok {
			in.logger.Warn("no parameters for element", "family", fam.Label(), "element", element)
			continue
		}
		if record.MD5() != ep.MD5 || !sameFilename(record.Filename(), ep.Filename) {
			in.logger.Warn("parameters disagree with pseudo",
				"family", fam.Label(),
				"element", element,
				"pseudo_md5", record.MD5(),
				"parameters_md5", ep.MD5,
			)
		}
	}
	return nil
}

// sameFilename compares file names under NFC. Names read from a file
// system may be decomposed while the metadata spells them composed.
func sameFilename(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}
