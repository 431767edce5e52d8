// jobcored is the job orchestration daemon: it serves the job API and runs
// submitted bulk jobs against the platform's collaborator services.
package main

import (
	"os"

	_ "embed"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	api "github.com/attestia/jobcore/pkg/jobs/api"
	usecase "github.com/attestia/jobcore/pkg/jobs/core/application/usecase"
	config "github.com/attestia/jobcore/pkg/jobs/core/config"
	eligibility "github.com/attestia/jobcore/pkg/jobs/engine/eligibility"
	executor "github.com/attestia/jobcore/pkg/jobs/engine/executor"
	progress "github.com/attestia/jobcore/pkg/jobs/engine/progress"
	retry "github.com/attestia/jobcore/pkg/jobs/engine/retry"
	export "github.com/attestia/jobcore/pkg/jobs/export"
	infraMetrics "github.com/attestia/jobcore/pkg/jobs/infrastructure/metrics"
	infraRepository "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository"
	loggingListener "github.com/attestia/jobcore/pkg/jobs/listener/logging"
	attendance "github.com/attestia/jobcore/pkg/jobs/operation/attendance"
	certificate "github.com/attestia/jobcore/pkg/jobs/operation/certificate"
	logger "github.com/attestia/jobcore/pkg/jobs/support/util/logger"

	// Registry drivers. Importing a driver subpackage enables it for the
	// "registry.driver" configuration value.
	_ "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/gorm/mysql"
	_ "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/gorm/postgres"
	_ "github.com/attestia/jobcore/pkg/jobs/infrastructure/repository/gorm/sqlite"
)

// embeddedConfig embeds the application's YAML configuration file, used to
// load configuration at startup.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

func main() {
	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger { return logger.NewFxLoggerAdapter() }),

		fx.Supply(config.EmbeddedConfig(embeddedConfig)),
		fx.Provide(fx.Annotate(
			func() string { return envFilePath },
			fx.ResultTags(`name:"envFilePath"`),
		)),

		config.Module,
		infraMetrics.Module,
		infraRepository.Module,

		eligibility.Module,
		progress.Module,
		executor.Module,
		retry.Module,
		usecase.Module,

		loggingListener.Module,
		certificate.Module,
		attendance.Module,

		export.Module,
		api.Module,
	)

	app.Run()
}
