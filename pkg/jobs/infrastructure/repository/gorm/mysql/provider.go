// Package mysql registers the MySQL dialector with the GORM job registry.
// Importing this package enables the "mysql" registry driver.
package mysql

import (
	"gorm.io/driver/mysql"
	gormio "gorm.io/gorm"

	gormregistry "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/gorm"
)

func init() {
	gormregistry.RegisterDialector("mysql", func(dsn string) gormio.Dialector {
		return mysql.Open(dsn)
	})
}
