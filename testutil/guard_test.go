package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingT struct {
	msg string
}

func (r *recordingT) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestImportsAny(t *testing.T) {
	match := ImportsAny(StorageDrivers...)
	cases := []struct {
		in   string
		want bool
	}{
		{"modernc.org/sqlite", true},
		{"modernc.org/sqlite/lib", true},
		{"modernc.org/sqlitex", false},
		{"github.com/aws/aws-sdk-go-v2/service/s3", true},
		{"github.com/jackc/pgx/v5/stdlib", true},
		{"github.com/google/uuid", false},
	}
	for _, c := range cases {
		if got := match(c.in); got != c.want {
			t.Fatalf("ImportsAny(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestInternalImportForbidden(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"mealtrack/internal/core", true},
		{"internal/x", true},
		{"mealtrack/pkg/domain", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package tmp\nimport \"go.etcd.io/bbolt\"\nvar _ = bbolt.Open\n")
	writeFile(t, dir, "b.go", "package tmp\nimport \"fmt\"\nvar _ = fmt.Sprint\n")
	writeFile(t, dir, "a_test.go", "package tmp\nimport \"modernc.org/sqlite\"\n")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "c.go", "package sub\nimport \"github.com/jackc/pgx/v5\"\n")

	viols, err := directImportViolations(dir, ImportsAny(StorageDrivers...))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "go.etcd.io/bbolt (in a.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}

	AssertNoDirectImports(t, dir, ImportsAny("github.com/jackc/pgx/v5"), "subdirectories and tests are skipped")
}

func TestDirectImportViolationsErrors(t *testing.T) {
	if _, err := directImportViolations(filepath.Join(t.TempDir(), "missing"), InternalImportForbidden); err == nil {
		t.Fatalf("expected error for missing dir")
	}
	dir := t.TempDir()
	writeFile(t, dir, "bad.go", "package tmp\nimport (\n")
	if _, err := directImportViolations(dir, InternalImportForbidden); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTransitiveViolationsUsesGoList(t *testing.T) {
	orig := goListDeps
	t.Cleanup(func() { goListDeps = orig })

	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nmealtrack/pkg/domain\n\ngo.etcd.io/bbolt\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", ImportsAny(StorageDrivers...))
	if err != nil || len(viols) != 1 || viols[0] != "go.etcd.io/bbolt" {
		t.Fatalf("got %v %v", viols, err)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	if _, out, err := transitiveDependencyViolations(".", InternalImportForbidden); err == nil || string(out) != "boom" {
		t.Fatalf("expected go list failure to propagate")
	}
}

func TestFailIfViolations(t *testing.T) {
	rec := &recordingT{}
	failIfViolations(rec, "direct imports", "layering", nil)
	if rec.msg != "" {
		t.Fatalf("no violations must not fail")
	}
	failIfViolations(rec, "direct imports", "layering", []string{"x", "y"})
	if !strings.Contains(rec.msg, "layering") || !strings.Contains(rec.msg, "x\ny") {
		t.Fatalf("unexpected message %q", rec.msg)
	}
}

func TestUnformattedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.go", "package x\n\nfunc A() {}\n")
	writeFile(t, dir, "trailing.go", "package x\n\nfunc B() { \n}\n")
	if err := os.Mkdir(filepath.Join(dir, "_skip"), 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "_skip"), "bad.go", "package x\nfunc   C(){}\n")

	viols, err := unformattedFiles(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || !strings.HasSuffix(viols[0], "trailing.go") {
		t.Fatalf("expected only trailing.go, got %v", viols)
	}
	rec := &recordingT{}
	failIfViolations(rec, "unformatted files", "run gofmt -w", viols)
	if !strings.Contains(rec.msg, "trailing.go") {
		t.Fatalf("unexpected message %q", rec.msg)
	}
}

func TestModuleIsGofmtClean(t *testing.T) {
	AssertFormatted(t, "..")
}
