package main

import (
	"encoding/json"
	"testing"
)

func TestCacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache stats (empty): %v", err)
	}
	requireContains(t, out, "Backend:  file")
	requireContains(t, out, "Entries:  0")

	if _, _, err := runCLI(t, []string{"records", "-f", "json"}, env.configPath, ""); err != nil {
		t.Fatalf("records: %v", err)
	}

	out, _, err = runCLI(t, []string{"cache", "stats", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache stats --json: %v", err)
	}
	var view cacheStatsView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if view.Entries != 1 || len(view.Items) != 1 {
		t.Fatalf("unexpected stats %+v", view)
	}
	if item := view.Items[0]; !item.Fresh || !item.Current || item.FetchedAt == "" {
		t.Fatalf("unexpected item %+v", item)
	}

	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache stats table: %v", err)
	}
	requireContains(t, out, "csv_cache_")
	requireContains(t, out, "yes")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 cache entry")

	if _, _, err := runCLI(t, []string{"records", "-f", "json"}, env.configPath, ""); err != nil {
		t.Fatalf("records after clear: %v", err)
	}
	if hits := env.server.Hits(); hits != 2 {
		t.Fatalf("expected refetch after clear, got %d hits", hits)
	}
}

func TestCacheClearCurrent(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"records", "-f", "json"}, env.configPath, ""); err != nil {
		t.Fatalf("records: %v", err)
	}

	out, _, err := runCLI(t, []string{"cache", "clear", "--current"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache clear --current: %v", err)
	}
	requireContains(t, out, "Removed cache entry csv_cache_")

	out, _, err = runCLI(t, []string{"cache", "stats", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	var view cacheStatsView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if view.Entries != 0 {
		t.Fatalf("expected empty cache, got %+v", view)
	}
}
