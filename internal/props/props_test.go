package props

import (
	"os"
	"path/filepath"
	"testing"
)

func propsFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "local.properties")
}

func TestGetMissingFile(t *testing.T) {
	value, ok, err := Get(propsFile(t), "key.alias")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected absent key, got %q", value)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	file := propsFile(t)

	if err := Set(file, "a", "1", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := Get(file, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "1" {
		t.Fatalf("expected a=1, got ok=%v value=%q", ok, value)
	}
}

func TestSetFirstWriteWins(t *testing.T) {
	file := propsFile(t)

	if err := Set(file, "a", "1", false); err != nil {
		t.Fatal(err)
	}
	if err := Set(file, "a", "2", false); err != nil {
		t.Fatal(err)
	}

	value, _, err := Get(file, "a")
	if err != nil {
		t.Fatal(err)
	}
	if value != "1" {
		t.Fatalf("expected first write to win, got %q", value)
	}
}

func TestSetReplace(t *testing.T) {
	file := propsFile(t)

	if err := Set(file, "a", "1", false); err != nil {
		t.Fatal(err)
	}
	if err := Set(file, "a", "2", true); err != nil {
		t.Fatal(err)
	}

	value, _, err := Get(file, "a")
	if err != nil {
		t.Fatal(err)
	}
	if value != "2" {
		t.Fatalf("expected replaced value 2, got %q", value)
	}
}

func TestSetPreservesForeignLines(t *testing.T) {
	file := propsFile(t)
	original := "# not a pair\nfirst=1\nplain line without equals\nsecond=2\n"
	if err := os.WriteFile(file, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Set(file, "first", "changed", true); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	want := "# not a pair\nplain line without equals\nsecond=2\nfirst=changed\n"
	if string(data) != want {
		t.Fatalf("unexpected file content:\n got: %q\nwant: %q", data, want)
	}
}

func TestSetDeduplicatesKeyOnReplace(t *testing.T) {
	file := propsFile(t)
	if err := os.WriteFile(file, []byte("a=1\nb=2\na=3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Set(file, "a", "4", true); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	want := "b=2\na=4\n"
	if string(data) != want {
		t.Fatalf("unexpected file content:\n got: %q\nwant: %q", data, want)
	}
}

func TestGetFirstMatchWins(t *testing.T) {
	file := propsFile(t)
	if err := os.WriteFile(file, []byte("a=1\na=2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	value, _, err := Get(file, "a")
	if err != nil {
		t.Fatal(err)
	}
	if value != "1" {
		t.Fatalf("expected first match, got %q", value)
	}
}

func TestGetTrimsKeyAndValue(t *testing.T) {
	file := propsFile(t)
	if err := os.WriteFile(file, []byte("  key.store  =  /path/android.keystore  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	value, ok, err := Get(file, "key.store")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || value != "/path/android.keystore" {
		t.Fatalf("expected trimmed match, got ok=%v value=%q", ok, value)
	}
}

func TestSetCreatesParentDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "project", "local.properties")

	if err := Set(file, "sdk.dir", "/tmp/Sdk", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := Get(file, "sdk.dir")
	if err != nil || !ok || value != "/tmp/Sdk" {
		t.Fatalf("expected sdk.dir=/tmp/Sdk, got ok=%v value=%q err=%v", ok, value, err)
	}
}
