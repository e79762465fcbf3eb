package timezone

import (
	"sync"
	"time"

	"traveltrust/config"

	"github.com/rs/zerolog/log"
)

var (
	appLocation = time.UTC
	once        sync.Once
)

// Load resolves the configured TIMEZONE once. An empty or unknown name keeps
// UTC so timestamps stay comparable across deployments.
func Load(name string) *time.Location {
	once.Do(func() {
		if name == "" {
			return
		}

		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Error().Err(err).Str("timezone", name).Msg("failed to load timezone, falling back to UTC")

			return
		}

		appLocation = loc

		log.Info().Str("timezone", loc.String()).Msg("application timezone initialized")
	})

	return appLocation
}

func location() *time.Location {
	return Load(config.Get().App.Timezone)
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(location())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(location())
}

// Format renders t in the application timezone.
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
