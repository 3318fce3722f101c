package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sssp/internal/store"
)

// Version is the version of the sssp command, recorded in the
// description of installed families.
var Version = "0.1.0"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// Config and Logger are resolved before any subcommand runs.
	Config Config
	Logger *slog.Logger

	// LookupEnv reads the environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sssp CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LookupEnv: os.LookupEnv}

	cmd := &cobra.Command{
		Use:   "sssp",
		Short: "Install and inspect SSSP pseudopotential families",
		Long: `Install and inspect SSSP pseudopotential families.

The Standard Solid State Pseudopotentials (SSSP) are published as one
archive of UPF files and one metadata document per configuration. The
install command registers a configuration as a family with per-element
cutoffs and checksums; the list command shows what is installed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default "+DefaultConfigPath()+")")

	// Add subcommands
	cmd.AddCommand(NewInstallCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// resolve validates global flags, loads the configuration and sets up
// logging.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		// Report in text since the requested format is unknown.
		f := opts.formatter(cmd)
		f.Format = "text"
		_ = f.Error("INVALID_FLAG", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	path, required := opts.ConfigPath, opts.ConfigPath != ""
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := LoadConfig(path, required, lookup)
	if err != nil {
		_ = opts.formatter(cmd).Error("CONFIG_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		msg := fmt.Sprintf("invalid log level %q", cfg.LogLevel)
		_ = opts.formatter(cmd).Error("CONFIG_ERROR", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	opts.Logger = slog.New(handler)
	slog.SetDefault(opts.Logger)

	opts.Config = cfg
	return nil
}

// openStore opens the configured database, creating its directory.
func (opts *RootOptions) openStore() (*store.Store, error) {
	path := opts.Config.Database
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
		}
	}

	opts.logger().Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func (opts *RootOptions) logger() *slog.Logger {
	if opts.Logger == nil {
		return slog.Default()
	}
	return opts.Logger
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
