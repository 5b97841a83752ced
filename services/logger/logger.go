// Package logsvc provides the core.Logger implementations.
package logsvc

import (
	"io"

	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
)

// New builds the console logger, wrapped by the error reporters that are configured.
func New(out io.Writer, conf *core.Config) (core.Logger, error) {
	var logger core.Logger = NewLogrusLogger(out, conf)
	if conf.Logging.RollbarToken != "" {
		rl := NewRollbarLogger(logger, conf)
		rl.Enable(conf.Env != "TEST")
		logger = rl
	}
	if conf.Logging.SentryDSN != "" {
		sl, err := NewSentryLogger(logger, conf)
		if err != nil {
			return nil, errors.Wrap(err, "initializing sentry")
		}
		logger = sl
	}
	return logger, nil
}

// flusher is implemented by the loggers that buffer events.
type flusher interface {
	Flush()
}

// Flush waits for the events buffered by logger (and the loggers it forwards to) to be sent.
func Flush(logger core.Logger) {
	if f, ok := logger.(flusher); ok {
		f.Flush()
	}
}
