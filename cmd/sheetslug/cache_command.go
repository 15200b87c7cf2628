package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sheetslug/internal/sessioncache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the session cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

type cacheItemView struct {
	Key       string `json:"key"`
	Bytes     int    `json:"bytes"`
	UpdatedAt string `json:"updated_at,omitempty"`
	FetchedAt string `json:"fetched_at,omitempty"`
	Fresh     bool   `json:"fresh"`
	Current   bool   `json:"current"`
}

type cacheStatsView struct {
	Backend  string          `json:"backend"`
	Location string          `json:"location"`
	TTL      string          `json:"ttl"`
	Entries  int             `json:"entries"`
	Bytes    int64           `json:"bytes"`
	Items    []cacheItemView `json:"items"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cached exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache, err := ctx.sessionCache(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}

			now := time.Now()
			currentKey := sessioncache.Key(cfg.Source.URL)
			view := cacheStatsView{
				Backend:  stats.Backend,
				Location: stats.Location,
				TTL:      cfg.CacheTTL().String(),
				Entries:  stats.Entries,
				Bytes:    stats.Bytes,
				Items:    make([]cacheItemView, 0, len(stats.Items)),
			}
			for _, item := range stats.Items {
				iv := cacheItemView{Key: item.Key, Bytes: item.Bytes, Current: item.Key == currentKey}
				if !item.UpdatedAt.IsZero() {
					iv.UpdatedAt = item.UpdatedAt.UTC().Format(time.RFC3339)
				}
				if blob, ok, err := cache.Get(cmd.Context(), item.Key); err == nil && ok {
					if entry, err := sessioncache.DecodeEntry(blob); err == nil && entry.Timestamp > 0 {
						iv.FetchedAt = entry.StoredAt().UTC().Format(time.RFC3339)
						iv.Fresh = entry.Text != "" && entry.Fresh(now, cfg.CacheTTL())
					}
				}
				view.Items = append(view.Items, iv)
			}

			if jsonOutput {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend:  %s\n", view.Backend)
			fmt.Fprintf(out, "Location: %s\n", view.Location)
			fmt.Fprintf(out, "TTL:      %s\n", view.TTL)
			fmt.Fprintf(out, "Entries:  %d (%s)\n", view.Entries, humanize.IBytes(uint64(view.Bytes)))
			if len(view.Items) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(view.Items))
			for _, iv := range view.Items {
				fetched := "unknown"
				if t, err := time.Parse(time.RFC3339, iv.FetchedAt); err == nil {
					fetched = humanize.RelTime(t, now, "ago", "from now")
				}
				rows = append(rows, []string{
					iv.Key,
					humanize.IBytes(uint64(iv.Bytes)),
					fetched,
					yesNo(iv.Fresh),
					yesNo(iv.Current),
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Key", "Size", "Fetched", "Fresh", "Current"},
				rows,
				1,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache, err := ctx.sessionCache(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if current {
				key := sessioncache.Key(cfg.Source.URL)
				if err := cache.Delete(cmd.Context(), key); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed cache entry %s\n", key)
				return nil
			}

			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				// An unreadable cache is still cleared.
				stats = sessioncache.Stats{}
			}
			if err := cache.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Cleared %d cache %s\n", stats.Entries, pluralize(stats.Entries, "entry", "entries"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&current, "current", false, "Only remove the entry for the configured source URL")
	return cmd
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
