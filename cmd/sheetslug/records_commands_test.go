package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"sheetslug/internal/config"
	"sheetslug/internal/testsupport"
)

func decodeRecords(t *testing.T, out string) []map[string]any {
	t.Helper()
	var recs []map[string]any
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("decode records: %v\n%s", err, out)
	}
	return recs
}

func TestRecordsCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"records", "--format", "json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	recs := decodeRecords(t, out)
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	wantSlugs := []string{"ada-lovelace", "grace-hopper", "ada-lovelace-2", "zoe-degaard"}
	for i, rec := range recs {
		if rec["slug"] != wantSlugs[i] {
			t.Fatalf("record %d slug = %v, want %s", i, rec["slug"], wantSlugs[i])
		}
		if rec["_src_index"] != float64(i) {
			t.Fatalf("record %d _src_index = %v", i, rec["_src_index"])
		}
	}
	if got := recs[0]["notes"]; got != "first, programmer" {
		t.Fatalf("unexpected quoted field %q", got)
	}
	if got := recs[1]["notes"]; got != `said "it's easier to ask forgiveness"` {
		t.Fatalf("unexpected escaped quotes %q", got)
	}
}

func TestRecordsCommandUsesSessionCache(t *testing.T) {
	for _, backend := range []string{config.CacheBackendFile, config.CacheBackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			env := setupCLITestEnv(t, testsupport.WithCacheBackend(backend))

			for i := 0; i < 2; i++ {
				if _, _, err := runCLI(t, []string{"records", "-f", "json"}, env.configPath, ""); err != nil {
					t.Fatalf("records run %d: %v", i, err)
				}
			}
			if hits := env.server.Hits(); hits != 1 {
				t.Fatalf("expected 1 fetch across runs, got %d", hits)
			}

			env.server.SetResponse(http.StatusOK, "name\nOnly Row\n")
			out, _, err := runCLI(t, []string{"records", "-f", "json", "--refresh"}, env.configPath, "")
			if err != nil {
				t.Fatalf("records --refresh: %v", err)
			}
			recs := decodeRecords(t, out)
			if len(recs) != 1 || recs[0]["slug"] != "only-row" {
				t.Fatalf("unexpected refreshed records %v", recs)
			}
			if hits := env.server.Hits(); hits != 2 {
				t.Fatalf("expected refresh to fetch, got %d hits", hits)
			}
		})
	}
}

func TestRecordsCommandYAMLAndTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"records", "--format", "yaml"}, env.configPath, "")
	if err != nil {
		t.Fatalf("records yaml: %v", err)
	}
	requireContains(t, out, "slug: grace-hopper")
	requireContains(t, out, "_src_index: 1")
	if strings.Index(out, "name:") > strings.Index(out, "role:") {
		t.Fatalf("expected header order to be kept:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"records", "--format", "table"}, env.configPath, "")
	if err != nil {
		t.Fatalf("records table: %v", err)
	}
	requireContains(t, out, "ada-lovelace-2")
	requireContains(t, out, "Admiral")

	if _, _, err := runCLI(t, []string{"records", "--format", "xml"}, env.configPath, ""); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestRecordsCommandFetchFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.SetResponse(http.StatusInternalServerError, "oops")

	_, _, err := runCLI(t, []string{"records", "-f", "json"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected fetch failure")
	}
	requireContains(t, err.Error(), "fetch failed")
	requireContains(t, err.Error(), "500")
}

func TestShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"show", "grace-hopper", "-f", "json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec["title"] != "Grace Hopper" || rec["role"] != "Admiral" {
		t.Fatalf("unexpected record %v", rec)
	}

	out, _, err = runCLI(t, []string{"show", "ada-lovelace-2", "-f", "table"}, env.configPath, "")
	if err != nil {
		t.Fatalf("show table: %v", err)
	}
	requireContains(t, out, "Engineer")

	_, _, err = runCLI(t, []string{"show", "grace"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected not found error")
	}
	requireContains(t, err.Error(), "did you mean: grace-hopper")
}

func TestFindCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"find", "lovelace", "-f", "json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	recs := decodeRecords(t, out)
	if len(recs) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(recs))
	}
	for _, rec := range recs {
		if !strings.HasPrefix(rec["slug"].(string), "ada-lovelace") {
			t.Fatalf("unexpected match %v", rec["slug"])
		}
	}

	out, _, err = runCLI(t, []string{"find", "qqqq", "-f", "table"}, env.configPath, "")
	if err != nil {
		t.Fatalf("find no match: %v", err)
	}
	requireContains(t, out, "No records match")
}
