package handler

import (
	"net/http"
	"sync"
	"traveltrust/config"
	"traveltrust/di"
	"traveltrust/helper"
	"traveltrust/shared/logger"
	transport "traveltrust/transport/http"
	"traveltrust/transport/http/response"

	_ "traveltrust/docs"

	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	server  *transport.HTTP
	initErr error
)

// Handler serves the API from a serverless function. Warm instances share the
// Postgres ledger and reload it whenever another instance has committed.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		logger.InitLogger()

		cfg := config.Get()
		logger.Configure(cfg)

		cfg.Trust.SharedStorage = true

		initErr = cfg.Validate()
		if initErr == nil && cfg.DB.Postgres.AutoMigrate {
			initErr = helper.Up(cfg)
		}

		if initErr == nil {
			server, initErr = di.InitializeService()
		}

		if initErr != nil {
			log.Error().Err(initErr).Msg("Failed to assemble trust layer")
		}
	})

	if initErr != nil {
		response.WithUnhealthy(w)

		return
	}

	server.ServeHTTP(w, r)
}
