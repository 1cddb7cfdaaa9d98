package timezone

import (
	"sync"
	"time"

	"pms/config"
	"pms/shared/constant"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location
	loadOnce    sync.Once
)

// Load resolves an IANA zone name, falling back to UTC when it is empty or
// unknown to the host's tz database.
func Load(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("unknown timezone, falling back to UTC")

		return time.UTC
	}

	return loc
}

// Location returns the hotel's configured timezone.
func Location() *time.Location {
	loadOnce.Do(func() {
		appLocation = Load(config.Get().App.Timezone)

		log.Debug().Str("timezone", appLocation.String()).Msg("application timezone initialized")
	})

	return appLocation
}

// Now returns the current time in the hotel's timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Format formats t in the hotel's timezone.
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// Today returns the current calendar date in the hotel's timezone as UTC
// midnight, the form DATE columns are scanned into.
func Today() time.Time {
	year, month, day := Now().Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD stay date. Stay dates carry no zone.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(constant.DayFormat, value)
}
