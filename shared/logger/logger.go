package logger

import (
	"io"
	"os"
	"time"

	"pms/config"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs a human readable console logger at trace level. It is
// the bootstrap logger used until the configuration is known.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	log.Trace().Msg("Zerolog initialized.")
}

// Configure switches to structured JSON output outside development and tags
// every line with the application and component names.
func Configure(cfg *config.Config, component string) {
	SetLogLevel(cfg)

	log.Logger = New(os.Stdout, cfg, component)
}

// New builds a logger writing to out with the same format rules as Configure.
func New(out io.Writer, cfg *config.Config, component string) zerolog.Logger {
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp().Str("component", component)
	if cfg.App.Name != "" {
		ctx = ctx.Str("app", cfg.App.Name)
	}

	return ctx.Logger()
}

// ErrorWithStack logs err with the stack of the caller.
func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

// SetLogLevel applies LOG_LEVEL. An unknown level keeps everything at info.
func SetLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("loglevel", cfg.Server.LogLevel).Msg("unknown log level, using info")

		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
}
