//go:build !integration

package shared

import (
	"strings"
	"testing"
)

func TestParseDatabaseURL(t *testing.T) {
	target, appErr := ParseDatabaseURL("postgresql://app:secret@db:5432/hdpay?sslmode=disable")
	if appErr != nil {
		t.Fatalf("expected postgres url to parse, got %+v", appErr)
	}
	if target.Dialect != DialectPostgres {
		t.Fatalf("expected postgres dialect, got %s", target.Dialect)
	}
	if strings.Contains(target.Redacted(), "secret") {
		t.Fatalf("expected password to be redacted, got %s", target.Redacted())
	}

	target, appErr = ParseDatabaseURL("sqlite3://data/hdpay.db")
	if appErr != nil {
		t.Fatalf("expected sqlite url to parse, got %+v", appErr)
	}
	if target.Dialect != DialectSQLite {
		t.Fatalf("expected sqlite dialect, got %s", target.Dialect)
	}
	if target.DSN != "data/hdpay.db?_busy_timeout=5000&_foreign_keys=on" {
		t.Fatalf("unexpected sqlite dsn %s", target.DSN)
	}
	if target.Redacted() != "sqlite3://data/hdpay.db" {
		t.Fatalf("unexpected redacted target %s", target.Redacted())
	}
}

func TestParseDatabaseURLKeepsExplicitSQLiteParams(t *testing.T) {
	target, appErr := ParseDatabaseURL("sqlite3:///tmp/x.db?_busy_timeout=100")
	if appErr != nil {
		t.Fatalf("expected sqlite url to parse, got %+v", appErr)
	}
	if target.DSN != "/tmp/x.db?_busy_timeout=100&_foreign_keys=on" {
		t.Fatalf("unexpected sqlite dsn %s", target.DSN)
	}
}

func TestParseDatabaseURLRejectsUnknownScheme(t *testing.T) {
	for _, raw := range []string{"", "mysql://db/app", "postgres://", "/var/lib/hdpay.db"} {
		if _, appErr := ParseDatabaseURL(raw); appErr == nil || appErr.Code != "database_url_invalid" {
			t.Fatalf("expected database_url_invalid for %q, got %+v", raw, appErr)
		}
	}
}

func TestRebind(t *testing.T) {
	query := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	if got := Rebind(DialectSQLite, query); got != query {
		t.Fatalf("expected sqlite query unchanged, got %s", got)
	}
	if got := Rebind(DialectPostgres, query); got != "UPDATE t SET a = $1, b = $2 WHERE id = $3" {
		t.Fatalf("unexpected postgres query %s", got)
	}
}
