package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger. Init replaces it.
var Logger = log.Logger

type Config struct {
	Level        string // debug, info, warn, error
	Format       string // json or pretty
	TimeFormat   string
	ReportCaller bool
}

// Init configures the global logger from cfg. Unknown levels fall back to info.
func Init(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	var output io.Writer = os.Stdout
	if cfg.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	ctxLogger := zerolog.New(output).Level(level).With().Timestamp()
	if cfg.ReportCaller {
		ctxLogger = ctxLogger.Caller()
	}

	Logger = ctxLogger.Logger()
	log.Logger = Logger
}

func Debug() *zerolog.Event { return Logger.Debug() }

func Info() *zerolog.Event { return Logger.Info() }

func Warn() *zerolog.Event { return Logger.Warn() }

func Error() *zerolog.Event { return Logger.Error() }

// WithContext stores the global logger in ctx.
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}

// Ctx returns the logger carried by ctx, or the global one when ctx has none.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &Logger
	}
	return l
}
