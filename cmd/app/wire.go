//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/bitesapp/bites/internal/bootstrap"
	"github.com/bitesapp/bites/internal/domain/directory"
	"github.com/bitesapp/bites/internal/domain/weather"
	"github.com/bitesapp/bites/internal/infra/config"
	httpiface "github.com/bitesapp/bites/internal/interface/http"
	"github.com/bitesapp/bites/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideValkeyClient,
		provideDirectoryStore,
		provideWeatherCache,
		provideWeatherConfig,
		provideWeatherProvider,
		provideLocationSource,
		directory.NewService,
		weather.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
