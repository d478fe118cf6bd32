package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hroxgen/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if err := config.WriteSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "ffprobe binary:   %s\n", cfg.Probe.FFprobeBinary)
			fmt.Fprintf(out, "probe timeout:    %ds\n", cfg.Probe.TimeoutSeconds)
			fmt.Fprintf(out, "probe workers:    %d\n", cfg.Probe.Workers)
			fmt.Fprintf(out, "duration cache:   %v (%s)\n", cfg.Probe.CacheEnabled, cfg.Probe.CachePath)
			fmt.Fprintf(out, "backend:          %s\n", cfg.Output.Backend)
			fmt.Fprintf(out, "relative paths:   %v\n", cfg.Output.RelativePaths)
			fmt.Fprintf(out, "target release:   %s\n", cfg.Output.TargetRelease)
			fmt.Fprintf(out, "target version:   %s\n", cfg.Output.TargetVersion)
			fmt.Fprintf(out, "log format/level: %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)
			return nil
		},
	}
}
