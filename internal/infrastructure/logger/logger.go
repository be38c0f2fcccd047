package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Akhielesh/secure-chat/internal/config"
)

// Logger is a key/value structured logger backed by zerolog.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger builds a Logger from the logger section of cfg.
// Development mode writes human readable console output.
func NewLogger(cfg *config.Config) (*Logger, error) {
	level := zerolog.InfoLevel
	development := false
	if cfg != nil {
		development = cfg.Logger.Development
		if cfg.Logger.Level != "" {
			parsed, err := zerolog.ParseLevel(cfg.Logger.Level)
			if err != nil {
				return nil, err
			}
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// New wraps an existing zerolog.Logger.
func New(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying the given key/value pairs on every entry.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{zl: l.zl.With().Fields(kv).Logger()}
}

func (l *Logger) Debug(msg string, kv ...any) { l.zl.Debug().Fields(kv).Msg(msg) }

func (l *Logger) Info(msg string, kv ...any) { l.zl.Info().Fields(kv).Msg(msg) }

func (l *Logger) Warn(msg string, kv ...any) { l.zl.Warn().Fields(kv).Msg(msg) }

func (l *Logger) Error(msg string, kv ...any) { l.zl.Error().Fields(kv).Msg(msg) }

func (l *Logger) Fatal(msg string, kv ...any) { l.zl.Fatal().Fields(kv).Msg(msg) }

func (l *Logger) Errorf(format string, args ...any) { l.zl.Error().Msgf(format, args...) }
