package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andreyvit/lifedb/config"
	"github.com/andreyvit/lifedb/life"
)

// RootOptions holds global flags and the state built from them.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	Backend    string
	Verbose    bool

	// NewLogger builds the logger once flags are parsed; tests replace it.
	NewLogger func(verbose bool) (*zap.Logger, error)

	logger  *zap.Logger
	catalog *life.Catalog
}

// Execute runs the command line given by args and closes whatever stores it
// opened, even if the command failed.
func Execute(opts *RootOptions, args []string, stdout, stderr io.Writer) error {
	if opts.NewLogger == nil {
		opts.NewLogger = newProductionLogger
	}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	return errors.Join(err, opts.teardown())
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lifedb",
		Short:         "lifedb - Game of Life world and pattern store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend: bolt|sqlite|memory (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newRecordCommand(opts, worldKind))
	cmd.AddCommand(newRecordCommand(opts, patternKind))
	cmd.AddCommand(newStatsCommand(opts))

	return cmd
}

func (opts *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = opts.DataDir
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = opts.Backend
	}
	if opts.Verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts.logger, err = opts.NewLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	opts.logger.Debug("config loaded",
		zap.String("data_dir", cfg.DataDir),
		zap.String("backend", cfg.Backend),
		zap.String("encoding", cfg.Encoding))

	opts.catalog, err = life.NewCatalog(cfg.CatalogOptions(opts.logger.Sugar().Debugf))
	return err
}

func (opts *RootOptions) teardown() error {
	var err error
	if opts.catalog != nil {
		err = opts.catalog.Close()
		opts.catalog = nil
	}
	if opts.logger != nil {
		_ = opts.logger.Sync()
	}
	return err
}

func newProductionLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
