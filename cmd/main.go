package main

import (
	"log"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/hearth/internal/backend/claudecli"
	"github.com/davidbz/hearth/internal/backend/echo"
	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/httpd"
	"github.com/davidbz/hearth/internal/observability"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *httpd.Server, watcher *config.Watcher) {
		if watcher != nil {
			watcher.Start()
			defer watcher.Stop()
		}

		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}
	if err := container.Provide(config.NewSettings); err != nil {
		log.Fatalf("Failed to provide settings: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Backend invoker
	if err := container.Provide(func(cfg *config.BackendConfig) domain.Invoker {
		if cfg.Name == "echo" {
			return echo.NewInvoker()
		}
		return claudecli.NewInvoker(cfg)
	}); err != nil {
		log.Fatalf("Failed to provide invoker: %v", err)
	}

	// Settings watcher (optional: only when a settings file is configured)
	if err := container.Provide(func(
		cfg *config.BackendConfig,
		settings *config.Settings,
		logger *zap.Logger,
	) (*config.Watcher, error) {
		if cfg.SettingsPath == "" {
			return nil, nil
		}

		watcher, err := config.NewWatcher(cfg.SettingsPath, settings, logger)
		if err != nil {
			logger.Warn("settings watcher disabled", zap.Error(err))
			return nil, nil
		}
		return watcher, nil
	}); err != nil {
		log.Fatalf("Failed to provide settings watcher: %v", err)
	}

	// HTTP layer
	if err := container.Provide(httpd.NewHandler); err != nil {
		log.Fatalf("Failed to provide handler: %v", err)
	}
	if err := container.Provide(httpd.NewRouter); err != nil {
		log.Fatalf("Failed to provide router: %v", err)
	}
	if err := container.Provide(httpd.NewServer); err != nil {
		log.Fatalf("Failed to provide server: %v", err)
	}

	return container
}
