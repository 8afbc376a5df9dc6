package bootstrap

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log"

	"hdpay/internal/adapters/outbound/persistence/ledger"
	"hdpay/internal/adapters/outbound/persistence/migrations"
	"hdpay/internal/adapters/outbound/persistence/shared"
	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
)

type Gateway struct {
	target    shared.Target
	db        *sql.DB
	allocator *ledger.AddressIndexAllocator
	logger    *log.Logger
}

var (
	_ portsout.PersistenceBootstrapGateway = (*Gateway)(nil)
	_ portsout.ReadinessChecker            = (*Gateway)(nil)
)

func NewGateway(target shared.Target, db *sql.DB, logger *log.Logger) *Gateway {
	return &Gateway{
		target:    target,
		db:        db,
		allocator: ledger.NewAddressIndexAllocator(db, target.Dialect, logger),
		logger:    logger,
	}
}

func (g *Gateway) CheckReadiness(ctx context.Context) *apperrors.AppError {
	if err := g.db.PingContext(ctx); err != nil {
		g.logf("database readiness check failed target=%s error=%v", g.target.Redacted(), err)
		return apperrors.NewUnavailable(
			"db_connect_failed",
			"failed to connect to database",
			map[string]any{"database_target": g.target.Redacted()},
		)
	}

	g.logf("database readiness check succeeded target=%s", g.target.Redacted())
	return nil
}

func (g *Gateway) RunMigrations(ctx context.Context) *apperrors.AppError {
	if err := ctx.Err(); err != nil {
		return apperrors.NewInternal(
			"db_migration_context_canceled",
			"migration context canceled",
			map[string]any{"database_target": g.target.Redacted()},
		)
	}

	sourceDriver, err := migrations.Source(g.target.Dialect)
	if err != nil {
		return apperrors.NewInternal(
			"db_migration_source_failed",
			"failed to load embedded migrations",
			map[string]any{"dialect": string(g.target.Dialect), "error": err.Error()},
		)
	}

	migrationRunner, err := migrate.NewWithSourceInstance("iofs", sourceDriver, g.target.URL)
	if err != nil {
		g.logf("migration runner setup failed target=%s error=%v", g.target.Redacted(), err)
		return apperrors.NewInternal(
			"db_migration_setup_failed",
			"failed to initialize migration runner",
			map[string]any{"database_target": g.target.Redacted()},
		)
	}

	defer func() {
		sourceErr, dbErr := migrationRunner.Close()
		if sourceErr != nil {
			g.logf("migration source close warning dialect=%s error=%v", g.target.Dialect, sourceErr)
		}
		if dbErr != nil {
			g.logf("migration db close warning target=%s error=%v", g.target.Redacted(), dbErr)
		}
	}()

	err = migrationRunner.Up()
	if err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		g.logf("database migrations failed target=%s error=%v", g.target.Redacted(), err)
		return apperrors.NewInternal(
			"db_migration_apply_failed",
			"failed to apply migrations",
			map[string]any{"database_target": g.target.Redacted()},
		)
	}

	if stderrors.Is(err, migrate.ErrNoChange) {
		g.logf("database migrations up to date target=%s", g.target.Redacted())
	} else {
		g.logf("database migrations applied target=%s", g.target.Redacted())
	}

	return nil
}

func (g *Gateway) SeedAddressIndexCounters(ctx context.Context, hdCoins []valueobjects.HDCoin) *apperrors.AppError {
	if appErr := g.allocator.SeedCounters(ctx, hdCoins); appErr != nil {
		g.logf("address index seeding failed code=%s", appErr.Code)
		return appErr
	}
	g.logf("address index counters seeded hd_coins=%d", len(hdCoins))
	return nil
}

func (g *Gateway) logf(format string, args ...any) {
	if g.logger == nil {
		return
	}
	g.logger.Printf(format, args...)
}
