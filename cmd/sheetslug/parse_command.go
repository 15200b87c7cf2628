package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sheetslug/internal/config"
	"sheetslug/internal/delimited"
	"sheetslug/internal/records"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var (
		format    string
		delimiter string
		raw       bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Build records from a local export without touching the network",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}

			delim := ctx.configValue().DelimiterRune()
			if cmd.Flags().Changed("delimiter") {
				if delimiter == `\t` {
					delimiter = "\t"
				}
				runes := []rune(delimiter)
				if len(runes) != 1 {
					return fmt.Errorf("--delimiter must be a single character, got %q", delimiter)
				}
				delim = runes[0]
			}
			parser, err := delimited.NewParser(delimited.Options{Delimiter: delim})
			if err != nil {
				return err
			}

			input, closeInput, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeInput()

			rows, err := parser.ParseReader(input)
			if err != nil {
				return err
			}
			if raw {
				if rows == nil {
					rows = [][]string{}
				}
				if resolved == formatYAML {
					return writeYAML(cmd, rows)
				}
				return writeJSON(cmd, rows)
			}
			return writeRecords(cmd, resolved, records.Build(rows))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatAuto, "Output format: table, json, or yaml")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", "", `Field delimiter (default from config; "\t" for tab)`)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print parsed rows instead of records")
	return cmd
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	path, err := config.ExpandPath(strings.TrimSpace(args[0]))
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

func newSlugCommand() *cobra.Command {
	var independent bool

	cmd := &cobra.Command{
		Use:         "slug <text>...",
		Short:       "Print the slug each argument would receive",
		Long:        "Print the slug each argument would receive. Arguments share one registry, so repeats get numeric suffixes as rows in one sheet would.",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			registry := records.NewRegistry()
			for _, arg := range args {
				base := records.Slugify(arg)
				if base == "" {
					base = records.FallbackSlug
				}
				if independent {
					fmt.Fprintln(out, base)
					continue
				}
				fmt.Fprintln(out, registry.Assign(base))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&independent, "independent", false, "Slugify each argument on its own without collision suffixes")
	return cmd
}
