package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sheetslug/internal/records"
	"sheetslug/internal/sheet"
)

const defaultSuggestions = 5

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var (
		format  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List every record in the sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}
			res, err := loadRecords(cmd, ctx, refresh)
			if err != nil {
				return err
			}
			return writeRecords(cmd, resolved, res.Records)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatAuto, "Output format: table, json, or yaml")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the session cache and fetch the sheet")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one record by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}
			res, err := loadRecords(cmd, ctx, false)
			if err != nil {
				return err
			}

			slug := strings.TrimSpace(args[0])
			rec, ok := records.FindBySlug(res.Records, slug)
			if !ok {
				return notFoundError(res.Records, slug)
			}

			switch resolved {
			case formatJSON:
				return writeJSON(cmd, rec)
			case formatYAML:
				return writeYAML(cmd, recordYAML(rec))
			default:
				fmt.Fprintln(cmd.OutOrStdout(), renderRecord(rec))
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatAuto, "Output format: table, json, or yaml")
	return cmd
}

func newFindCommand(ctx *commandContext) *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-search records by slug, name, or title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}
			res, err := loadRecords(cmd, ctx, false)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			matches := records.Suggest(res.Records, query, limit)
			if resolved != formatTable {
				return writeRecords(cmd, resolved, matches)
			}

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No records match %q\n", query)
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for _, rec := range matches {
				rows = append(rows, []string{fmt.Sprintf("%d", rec.SourceIndex), rec.Slug, rec.Label()})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Slug", "Label"}, rows, 0))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatAuto, "Output format: table, json, or yaml")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum matches to show (0 for all)")
	return cmd
}

func loadRecords(cmd *cobra.Command, ctx *commandContext, refresh bool) (sheet.Result, error) {
	loader, err := ctx.newLoader(cmd.Context())
	if err != nil {
		return sheet.Result{}, err
	}
	if refresh {
		return loader.Refresh(cmd.Context())
	}
	return loader.LoadResult(cmd.Context())
}

func notFoundError(recs []records.Record, slug string) error {
	matches := records.Suggest(recs, slug, defaultSuggestions)
	if len(matches) == 0 {
		return fmt.Errorf("record %q not found", slug)
	}
	slugs := make([]string, 0, len(matches))
	for _, rec := range matches {
		slugs = append(slugs, rec.Slug)
	}
	return fmt.Errorf("record %q not found (did you mean: %s?)", slug, strings.Join(slugs, ", "))
}
