package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sheetslug/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold the sheetslug configuration",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config.toml",
		Long: `Write a starter config.toml pointing at a placeholder sheet export.

Without a path the file goes to ~/.config/sheetslug/config.toml. An existing
file is left alone unless --force is given.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var requested string
			if len(args) == 1 {
				requested = args[0]
			}
			target, err := initTarget(requested)
			if err != nil {
				return err
			}

			if !force {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("%s already exists; pass --force to replace it", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("inspect %s: %w", target, statErr)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s\n\n", target)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Set source.url to your sheet's CSV export link, or export SHEETSLUG_SOURCE_URL.")
			fmt.Fprintf(out, "  2. Check it with: sheetslug --config %s config validate\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file")
	return cmd
}

// initTarget resolves where config init writes, expanding a leading ~.
func initTarget(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(requested)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", requested, err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if _, err := os.Stat(ctx.configPath); err != nil {
				source += " (missing, using defaults)"
			}
			fmt.Fprintf(out, "File:      %s\n", source)
			fmt.Fprintf(out, "Sheet:     %s\n", cfg.Source.URL)
			fmt.Fprintf(out, "Delimiter: %q\n", cfg.DelimiterRune())
			fmt.Fprintf(out, "Cache:     %s at %s, ttl %s\n", cfg.Cache.Backend, cfg.Cache.Path, cfg.CacheTTL())
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
