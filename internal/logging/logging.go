// Package logging configures the process-wide zerolog logger, generalized
// from network/infra/log.go: that version read LOGLEVEL from the
// environment at init() time, which makes the level untestable and
// impossible to override per the flags/file precedence internal/config
// establishes. Init instead takes the resolved level explicitly and is
// called once from main after configuration has been loaded.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger. Until Init is called it
// writes timestamped JSON to stderr with no level filter of its own, so
// packages that log at init time before main runs still produce output.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init reconfigures Logger at the given level name ("debug", "info",
// "warn", "error", "fatal"); an unrecognized name falls back to info,
// matching network/infra/log.go's switch-with-default behavior.
func Init(level string) {
	l := zerolog.InfoLevel
	switch level {
	case "debug":
		l = zerolog.DebugLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	case "fatal":
		l = zerolog.FatalLevel
	}
	Logger = Logger.Level(l)
}
