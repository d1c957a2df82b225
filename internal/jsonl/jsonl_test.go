package jsonl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadLines(t *testing.T) {
	in := `{"Title": "one", "Content": "first"}

not json
{"title": "two", "body": "second"}
`
	recs, skipped, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1]["body"] != "second" {
		t.Errorf("unexpected record %v", recs[1])
	}
	if len(skipped) != 1 || skipped[0].Line != 3 {
		t.Errorf("expected line 3 skipped, got %v", skipped)
	}
}

func TestReadArray(t *testing.T) {
	in := "  \n[{\"Title\": \"a\"}, {\"Title\": \"b\"}]"
	recs, _, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 2 || recs[0]["Title"] != "a" {
		t.Errorf("unexpected records %v", recs)
	}
}

func TestReadEmpty(t *testing.T) {
	if _, _, err := Read(strings.NewReader("\n\nbad\n")); err == nil {
		t.Error("input without records should fail")
	}
	if _, _, err := Read(strings.NewReader("[]")); err == nil {
		t.Error("empty array should fail")
	}
}

func TestLoadFileAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	if err := os.WriteFile(path, []byte(`{"Title":"x"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	recs, _, err := LoadFile(path)
	if err != nil || len(recs) != 1 {
		t.Fatalf("LoadFile: %v %v", recs, err)
	}
	if _, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("missing file should fail")
	}

	var buf bytes.Buffer
	if err := Write(&buf, []map[string]string{{"a": "<b>"}, {"a": "c"}}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"a\":\"<b>\"}\n{\"a\":\"c\"}\n" {
		t.Errorf("Write produced %q", got)
	}
}
