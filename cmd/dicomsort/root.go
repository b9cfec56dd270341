package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrsinham/dicomsort/internal/config"
	"github.com/mrsinham/dicomsort/internal/logging"
	"github.com/mrsinham/dicomsort/internal/organizer"
	"github.com/mrsinham/dicomsort/internal/report"
)

type rootFlags struct {
	configPath string
	source     string
	target     string
	extensions []string
	logLevel   string
	logFormat  string
	quiet      bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "dicomsort",
		Short: "Reorganize per-patient DICOM folders by series",
		Long: `dicomsort copies every DICOM file found under <source>/<patient>/ into
<target>/<patient>/<series number>-<series description>/, skipping files that
are already present, and prints a per-patient summary.`,
		Example: `  dicomsort --source /data/incoming --target /data/sorted
  dicomsort --config dicomsort.yaml --log-level debug`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd, cfg, flags.quiet)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
	f.StringVarP(&flags.source, "source", "s", "", "Source root holding one folder per patient")
	f.StringVarP(&flags.target, "target", "t", "", "Target root for the reorganized tree")
	f.StringSliceVar(&flags.extensions, "ext", nil, "DICOM file extension, case-insensitive (repeatable, default .dcm)")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default info)")
	f.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json (default console)")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Only print the final report")

	return cmd
}

// resolveConfig loads the config file, lets explicitly set flags override it, then validates
func resolveConfig(cmd *cobra.Command, flags rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("source") {
		cfg.SourceRoot = flags.source
	}
	if changed("target") {
		cfg.TargetRoot = flags.target
	}
	if changed("ext") {
		cfg.Extensions = flags.extensions
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}

	if err := cfg.Normalize(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg config.Config, quiet bool) error {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	if cfg.TargetInsideSource() {
		logger.Warn("target root is inside source root and will be scanned as a patient folder",
			"source", cfg.SourceRoot, "target", cfg.TargetRoot)
	}

	out := cmd.OutOrStdout()
	summary, err := organizer.Run(organizer.Options{
		SourceRoot: cfg.SourceRoot,
		TargetRoot: cfg.TargetRoot,
		Extensions: cfg.Extensions,
		Out:        out,
		Quiet:      quiet,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	report.Print(out, summary)
	return nil
}
