package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sheetslug/internal/records"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// resolveFormat validates the --format value. Auto renders a table on a
// terminal and JSON otherwise.
func resolveFormat(cmd *cobra.Command, value string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(value)); format {
	case "", formatAuto:
		if stdoutIsTerminal(cmd) {
			return formatTable, nil
		}
		return formatJSON, nil
	case formatTable, formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want table, json, or yaml)", value)
	}
}

func stdoutIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as block YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	data, err := yaml.MarshalWithOptions(v, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// recordYAML keeps the JSON key order, which a plain map would lose.
func recordYAML(rec records.Record) yaml.MapSlice {
	keys := rec.EncodedKeys()
	out := make(yaml.MapSlice, 0, len(keys))
	for _, key := range keys {
		if key == records.SourceIndexKey {
			out = append(out, yaml.MapItem{Key: key, Value: rec.SourceIndex})
			continue
		}
		out = append(out, yaml.MapItem{Key: key, Value: rec.Get(key)})
	}
	return out
}

func recordsYAML(recs []records.Record) []yaml.MapSlice {
	out := make([]yaml.MapSlice, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordYAML(rec))
	}
	return out
}

// recordColumns returns "#" and "slug" followed by the remaining keys in
// header order.
func recordColumns(recs []records.Record) []string {
	columns := []string{"#", records.SlugKey}
	if len(recs) == 0 {
		return columns
	}
	for _, key := range recs[0].Keys() {
		if key == records.SlugKey || key == records.SourceIndexKey {
			continue
		}
		columns = append(columns, key)
	}
	return columns
}

func renderRecords(recs []records.Record) string {
	columns := recordColumns(recs)
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, 0, len(columns))
		row = append(row, fmt.Sprintf("%d", rec.SourceIndex), rec.Slug)
		for _, key := range columns[2:] {
			row = append(row, rec.Get(key))
		}
		rows = append(rows, row)
	}
	return renderTable(columns, rows, 0)
}

func renderRecord(rec records.Record) string {
	keys := rec.EncodedKeys()
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		value := rec.Get(key)
		if key == records.SourceIndexKey {
			value = fmt.Sprintf("%d", rec.SourceIndex)
		}
		rows = append(rows, []string{key, value})
	}
	return renderTable([]string{"Field", "Value"}, rows)
}

func writeRecords(cmd *cobra.Command, format string, recs []records.Record) error {
	switch format {
	case formatJSON:
		if recs == nil {
			recs = []records.Record{}
		}
		return writeJSON(cmd, recs)
	case formatYAML:
		return writeYAML(cmd, recordsYAML(recs))
	default:
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No records")
			return nil
		}
		fmt.Fprintln(out, renderRecords(recs))
		return nil
	}
}
