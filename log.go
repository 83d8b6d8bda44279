package beestore

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NewLogger returns the go-kit logger used across the reactor and the
// command binaries, filtered at minLevel ("debug", "info", "warn", or
// "error"; unrecognized values fall back to "info"). The core command path
// never logs per request; logging only appears at exceptional or
// structural events such as accept-loop errors and connection teardown.
func NewLogger(minLevel string) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	var opt level.Option
	switch minLevel {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(l, opt)
}
