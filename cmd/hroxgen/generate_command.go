package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hroxgen/internal/generate"
	"hroxgen/internal/hieroxml"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		inputPath        string
		outputPath       string
		reportPath       string
		ffprobePath      string
		backend          string
		pathBase         string
		projectDirectory string
		targetRelease    string
		targetVersion    string
		relativePaths    bool
		strict           bool
		dryRun           bool
		noCache          bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a .hrox document from a timeline description",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			opts := generate.Options{
				InputPath:        strings.TrimSpace(inputPath),
				OutputPath:       strings.TrimSpace(outputPath),
				ReportPath:       strings.TrimSpace(reportPath),
				Strict:           strict,
				DryRun:           dryRun,
				Backend:          cfg.Output.Backend,
				RelativePaths:    cfg.Output.RelativePaths,
				PathBase:         cfg.Output.PathBase,
				ProjectDirectory: projectDirectory,
				TargetRelease:    cfg.Output.TargetRelease,
				TargetVersion:    cfg.Output.TargetVersion,
				FFprobeBinary:    cfg.Probe.FFprobeBinary,
				ProbeTimeout:     time.Duration(cfg.Probe.TimeoutSeconds) * time.Second,
				Workers:          cfg.Probe.Workers,
				CacheEnabled:     cfg.Probe.CacheEnabled && !noCache,
				CachePath:        cfg.Probe.CachePath,
				Logger:           logger,
			}
			if backend != "" {
				opts.Backend = backend
			}
			if ffprobePath != "" {
				opts.FFprobeBinary = ffprobePath
			}
			if pathBase != "" {
				opts.PathBase = pathBase
			}
			if cmd.Flags().Changed("relative-paths") {
				opts.RelativePaths = relativePaths
			}
			if targetRelease != "" {
				opts.TargetRelease = targetRelease
			}
			if targetVersion != "" {
				opts.TargetVersion = targetVersion
			}

			if opts.InputPath == "" {
				return fmt.Errorf("--input is required")
			}
			if opts.OutputPath == "" {
				return fmt.Errorf("--output is required")
			}

			result, runErr := generate.Run(cmd.Context(), opts)
			if result != nil {
				printSummary(cmd.OutOrStdout(), result)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Timeline description JSON path")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output .hrox document path")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the diagnostics report JSON to this path")
	cmd.Flags().StringVar(&ffprobePath, "ffprobe-path", "", "ffprobe binary to use for media probing")
	cmd.Flags().StringVar(&backend, "backend", "", fmt.Sprintf("Serializer backend (%s)", strings.Join(hieroxml.BackendNames(), ", ")))
	cmd.Flags().BoolVar(&relativePaths, "relative-paths", false, "Emit source paths relative to the output directory")
	cmd.Flags().StringVar(&pathBase, "path-base", "", "Strip this prefix from emitted source paths")
	cmd.Flags().StringVar(&projectDirectory, "project-directory", "", "Value for the document's project_directory attribute")
	cmd.Flags().StringVar(&targetRelease, "target-release", "", "Target application release (default from config)")
	cmd.Flags().StringVar(&targetVersion, "target-version", "", "Target document version (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat missing media files as fatal")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and probe without writing the document")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the duration cache for this run")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
