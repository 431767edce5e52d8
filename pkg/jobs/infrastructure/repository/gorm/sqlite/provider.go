// Package sqlite registers the SQLite dialector with the GORM job registry.
// Importing this package enables the "sqlite" registry driver.
package sqlite

import (
	"gorm.io/driver/sqlite"
	gormio "gorm.io/gorm"

	gormregistry "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/gorm"
)

func init() {
	gormregistry.RegisterDialector("sqlite", func(dsn string) gormio.Dialector {
		return sqlite.Open(dsn)
	})
}
