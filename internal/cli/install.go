package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sssp/internal/family"
	"github.com/roach88/sssp/internal/install"
)

// InstallOptions holds flags for the install command.
type InstallOptions struct {
	*RootOptions
	Version      string
	Functional   string
	Protocol     string
	Label        string
	ArchivePath  string
	MetadataPath string
	Traceback    bool
}

// InstallResult is the JSON payload of a successful install.
type InstallResult struct {
	Label      string `json:"label"`
	Kind       string `json:"kind"`
	UUID       string `json:"uuid"`
	Count      int    `json:"count"`
	Parameters string `json:"parameters"`
}

// NewInstallCommand creates the install command.
func NewInstallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InstallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install an SSSP configuration",
		Long: `Install an SSSP configuration as a pseudopotential family.

The archive and metadata of the configuration are downloaded, validated
and registered together with the recommended cutoffs of every element.
With --archive or --metadata local files are used instead and the family
is stored under the label given with --label.`,
		Example: `  # Install the default configuration
  sssp install

  # Install a specific configuration
  sssp install --version 1.0 -f PBEsol -p precision

  # Install from local files
  sssp install --archive SSSP.tar.gz --metadata SSSP.json -l my-sssp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts)
		},
	}

	def := family.DefaultConfiguration
	cmd.Flags().StringVar(&opts.Version, "version", def.Version, fmt.Sprintf("SSSP version %v", family.Versions()))
	cmd.Flags().StringVarP(&opts.Functional, "functional", "f", def.Functional, fmt.Sprintf("exchange-correlation functional %v", family.Functionals()))
	cmd.Flags().StringVarP(&opts.Protocol, "protocol", "p", def.Protocol, fmt.Sprintf("protocol %v", family.Protocols()))
	cmd.Flags().StringVarP(&opts.Label, "label", "l", "", "family label, required with local files")
	cmd.Flags().StringVar(&opts.ArchivePath, "archive", "", "local archive of pseudopotentials (.tar.gz)")
	cmd.Flags().StringVar(&opts.MetadataPath, "metadata", "", "local metadata document (.json)")
	cmd.Flags().BoolVarP(&opts.Traceback, "traceback", "t", false, "include the full error chain on failure")

	return cmd
}

func runInstall(cmd *cobra.Command, opts *InstallOptions) error {
	f := opts.formatter(cmd)

	choices := []struct {
		flag, value string
		allowed     []string
	}{
		{"version", opts.Version, family.Versions()},
		{"functional", opts.Functional, family.Functionals()},
		{"protocol", opts.Protocol, family.Protocols()},
	}
	for _, c := range choices {
		if !slices.Contains(c.allowed, c.value) {
			msg := fmt.Sprintf("invalid --%s %q: must be one of %v", c.flag, c.value, c.allowed)
			_ = f.Error("INVALID_FLAG", msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
	}

	st, err := opts.openStore()
	if err != nil {
		_ = f.Error("DATABASE_ERROR", err.Error(), nil)
		return err
	}
	defer st.Close()

	client := install.NewClient(opts.Config.URLBase, nil)
	installer := install.NewInstaller(st, client, opts.logger(), Version)

	req := install.Request{
		Configuration: family.Configuration{
			Version:    opts.Version,
			Functional: opts.Functional,
			Protocol:   opts.Protocol,
		},
		Label:        opts.Label,
		ArchivePath:  opts.ArchivePath,
		MetadataPath: opts.MetadataPath,
	}

	if req.ArchivePath == "" || req.MetadataPath == "" {
		f.VerboseLog("Downloading %s from %s", req.Configuration, client.BaseURL())
	}
	if req.Local() {
		f.VerboseLog("Installing local files as `%s`", req.Label)
	}

	res, err := installer.Install(cmd.Context(), req)
	if err != nil {
		return reportError(f, ExitFailure, err, opts.Traceback)
	}

	if f.Format == "json" {
		return f.Success(InstallResult{
			Label:      res.Family.Label(),
			Kind:       res.Family.Kind().Name(),
			UUID:       res.Family.UUID(),
			Count:      res.Count,
			Parameters: res.Parameters.UUID(),
		})
	}
	return f.Success(fmt.Sprintf("Success: installed `%s` containing %d pseudo potentials", res.Family.Label(), res.Count))
}
