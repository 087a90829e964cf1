package migrations

import (
	"context"
	"io/fs"
	"testing"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}
	if !postgresFound || !sqliteFound {
		t.Fatalf("expected both dialects, got %+v", filesystems)
	}
}

func TestRegister_InvokesPerValidatedDialect(t *testing.T) {
	type seen struct {
		dialect string
		label   string
	}
	var calls []seen

	reg, err := Register(context.Background(), func(_ context.Context, dialect string, label string, fsys fs.FS) error {
		if fsys == nil {
			t.Fatalf("nil filesystem for %s", dialect)
		}
		calls = append(calls, seen{dialect: dialect, label: label})
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.SourceLabel != "go-acquiring" {
		t.Fatalf("unexpected source label %q", reg.SourceLabel)
	}
	if len(calls) != 2 {
		t.Fatalf("expected both dialects registered, got %+v", calls)
	}
	for _, call := range calls {
		if call.label != "go-acquiring" {
			t.Fatalf("unexpected label %q", call.label)
		}
	}
}

func TestRegister_ValidationTargetsFilterDialects(t *testing.T) {
	var dialects []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		dialects = append(dialects, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(dialects) != 1 || dialects[0] != DialectSQLite {
		t.Fatalf("expected sqlite only, got %v", dialects)
	}
}

func TestRegister_RequiresRegisterFunc(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil register function")
	}
}
