package shared

import (
	"database/sql"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "hdpay/internal/shared_kernel/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names the SQL flavour behind a database URL. The value doubles as
// the migration source directory.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const sqliteBusyTimeoutMillis = 5000

// Target is a parsed DATABASE_URL.
type Target struct {
	URL     string
	Dialect Dialect
	DSN     string
}

func ParseDatabaseURL(databaseURL string) (Target, *apperrors.AppError) {
	raw := strings.TrimSpace(databaseURL)
	scheme, rest, found := strings.Cut(raw, "://")
	if !found || rest == "" {
		return Target{}, invalidDatabaseURL(raw)
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return Target{URL: raw, Dialect: DialectPostgres, DSN: raw}, nil
	case "sqlite3":
		return Target{URL: raw, Dialect: DialectSQLite, DSN: sqliteDSN(rest)}, nil
	default:
		return Target{}, invalidDatabaseURL(raw)
	}
}

// Redacted renders the target without credentials for logs.
func (t Target) Redacted() string {
	if t.Dialect == DialectSQLite {
		return string(t.Dialect) + "://" + strings.SplitN(t.DSN, "?", 2)[0]
	}
	parsed, err := url.Parse(t.URL)
	if err != nil {
		return string(t.Dialect)
	}
	return parsed.Redacted()
}

func OpenDatabase(target Target, logger *log.Logger) (*sql.DB, *apperrors.AppError) {
	driver := "pgx"
	if target.Dialect == DialectSQLite {
		driver = "sqlite3"
	}

	db, err := sql.Open(driver, target.DSN)
	if err != nil {
		return nil, apperrors.NewInternal(
			"db_connect_init_failed",
			"failed to initialize database connection",
			map[string]any{"database_target": target.Redacted(), "error": err.Error()},
		)
	}

	switch target.Dialect {
	case DialectSQLite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(20)
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if logger != nil {
		logger.Printf("database pool initialized dialect=%s target=%s", target.Dialect, target.Redacted())
	}

	return db, nil
}

// Rebind rewrites ? placeholders into the positional form the dialect expects.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var builder strings.Builder
	builder.Grow(len(query) + 8)
	position := 0
	for _, char := range query {
		if char == '?' {
			position++
			builder.WriteByte('$')
			builder.WriteString(strconv.Itoa(position))
			continue
		}
		builder.WriteRune(char)
	}
	return builder.String()
}

func sqliteDSN(pathAndQuery string) string {
	path, rawQuery, _ := strings.Cut(pathAndQuery, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		params = url.Values{}
	}
	if params.Get("_busy_timeout") == "" {
		params.Set("_busy_timeout", strconv.Itoa(sqliteBusyTimeoutMillis))
	}
	if params.Get("_foreign_keys") == "" {
		params.Set("_foreign_keys", "on")
	}
	return path + "?" + params.Encode()
}

func invalidDatabaseURL(raw string) *apperrors.AppError {
	scheme, _, _ := strings.Cut(raw, "://")
	return apperrors.NewValidation(
		"database_url_invalid",
		"database url must use postgres://, postgresql:// or sqlite3://",
		map[string]any{"scheme": scheme},
	)
}
