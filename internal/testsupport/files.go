package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleExport is a small sheet export covering quoting, blank rows, and
// slug collisions.
const SampleExport = "name,title,role,notes\r\n" +
	"Ada Lovelace,,Analyst,\"first, programmer\"\r\n" +
	",Grace Hopper,Admiral,\"said \"\"it's easier to ask forgiveness\"\"\"\r\n" +
	",,,\r\n" +
	"Ada Lovelace,,Engineer,\r\n" +
	"Zoë Ødegaard,,Designer,\r\n"

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
