// Package postgres registers the PostgreSQL dialector with the GORM job
// registry. Importing this package enables the "postgres" registry driver.
package postgres

import (
	"gorm.io/driver/postgres"
	gormio "gorm.io/gorm"

	gormregistry "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/gorm"
)

func init() {
	gormregistry.RegisterDialector("postgres", func(dsn string) gormio.Dialector {
		return postgres.Open(dsn)
	})
}
