package migrations

import (
	"embed"

	"hdpay/internal/adapters/outbound/persistence/shared"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite3/*.sql
var files embed.FS

// Source returns the embedded migration set for the dialect.
func Source(dialect shared.Dialect) (source.Driver, error) {
	return iofs.New(files, string(dialect))
}
