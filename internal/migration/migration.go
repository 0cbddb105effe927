package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	branchdomain "github.com/pharmadesk/pharmadesk/internal/branch/domain"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/events"
	financedomain "github.com/pharmadesk/pharmadesk/internal/finance/domain"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	salesperfdomain "github.com/pharmadesk/pharmadesk/internal/salesperf/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run brings the schema up to date on startup. Postgres gets the
// embedded versioned migrations; other dialects are local development
// only and use AutoMigrate.
func Run(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if cfg.DBType == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return applyVersioned(sqlDB, log)
	}

	return conn.AutoMigrate(
		&branchdomain.Branch{},
		&inventorydomain.Medicine{},
		&approvaldomain.PaymentApproval{},
		&financedomain.FinancialActivity{},
		&salesperfdomain.SalesPerformance{},
		&events.DispenseEvent{},
	)
}

func applyVersioned(sqlDB *sql.DB, log *zap.Logger) error {
	migrator, err := newMigrator(sqlDB)
	if err != nil {
		return err
	}
	// migrator.Close would close the shared *sql.DB, so it is never called.

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("schema already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	if version, dirty, err := migrator.Version(); err == nil {
		log.Info("schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

func newMigrator(sqlDB *sql.DB) (*migrate.Migrate, error) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return migrator, nil
}
