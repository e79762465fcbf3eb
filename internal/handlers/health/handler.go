package health

import (
	"context"
	"net/http"
	"time"
	"traveltrust/infras/otel"
	"traveltrust/shared/constant"
	"traveltrust/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const checkTimeout = 2 * time.Second

// Check pings one backing dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Status struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

type Handler struct {
	checks []Check
	otel   otel.Otel
}

func New(otel otel.Otel, checks ...Check) Handler {
	return Handler{
		checks: checks,
		otel:   otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Get("/health", handler.Health)
}

// Health reports whether every backing dependency answers.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Data[Status]
// @Failure 503 {object} response.Message
// @Router /health [get]
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Health")
	defer scope.End()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status := Status{Status: "ok", Dependencies: make(map[string]string, len(handler.checks))}
	healthy := true

	for _, check := range handler.checks {
		if err := check.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", check.Name).Msg("health check failed")

			status.Dependencies[check.Name] = "down"
			healthy = false

			continue
		}

		status.Dependencies[check.Name] = "up"
	}

	if !healthy {
		scope.AddEvent("Unhealthy")
		response.WithUnhealthy(w)

		return
	}

	response.WithJSON(w, http.StatusOK, status)
}
