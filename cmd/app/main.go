package main

import (
	"traveltrust/config"
	"traveltrust/di"
	"traveltrust/helper"
	"traveltrust/shared/logger"
	"traveltrust/shared/timezone"

	_ "traveltrust/docs"

	"github.com/rs/zerolog/log"
)

// @title TravelTrust API
// @version 1.0
// @description Trust layer for a tour guide marketplace: guide staking, escrowed bookings, reputation and dispute arbitration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	logger.InitLogger()

	cfg := config.Get()

	logger.Configure(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	timezone.Load(cfg.App.Timezone)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	http, err := di.InitializeService()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble trust layer")
	}

	http.Serve()
}
