package logsvc

import (
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

const sentryFlushTimeout = 2 * time.Second

// SentryLogger captures warnings and errors in Sentry and forwards everything to next.
type SentryLogger struct {
	hub  *sentry.Hub
	next core.Logger
}

var _ core.Logger = (*SentryLogger)(nil)

func NewSentryLogger(next core.Logger, conf *core.Config) (*SentryLogger, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              conf.Logging.SentryDSN,
		Environment:      conf.Env,
		Release:          conf.Build,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, err
	}
	return &SentryLogger{hub: sentry.NewHub(client, sentry.NewScope()), next: next}, nil
}

func (l *SentryLogger) capture(level sentry.Level, msg string, args []interface{}) {
	l.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		var cause error
		for _, arg := range args {
			switch val := arg.(type) {
			case error:
				if cause == nil {
					cause = val
				}
			case map[string]interface{}:
				scope.SetContext("details", val)
			case auth.Session:
				user := sentry.User{Username: string(val.Role)}
				if val.TeacherID != nil {
					user.ID = strconv.Itoa(*val.TeacherID)
				}
				scope.SetUser(user)
			}
		}
		if cause != nil {
			scope.SetTag("message", msg)
			l.hub.CaptureException(cause)
			return
		}
		l.hub.CaptureMessage(msg)
	})
}

func (l *SentryLogger) Debug(msg string, args ...interface{}) { l.next.Debug(msg, args...) }
func (l *SentryLogger) Info(msg string, args ...interface{})  { l.next.Info(msg, args...) }

func (l *SentryLogger) Warn(msg string, args ...interface{}) {
	l.capture(sentry.LevelWarning, msg, args)
	l.next.Warn(msg, args...)
}

func (l *SentryLogger) Error(msg string, args ...interface{}) {
	l.capture(sentry.LevelError, msg, args)
	l.next.Error(msg, args...)
}

func (l *SentryLogger) Fatal(msg string, args ...interface{}) {
	l.capture(sentry.LevelFatal, msg, args)
	l.hub.Flush(sentryFlushTimeout)
	l.next.Fatal(msg, args...)
}

// Flush waits for buffered events to be sent.
func (l *SentryLogger) Flush() {
	l.hub.Flush(sentryFlushTimeout)
	Flush(l.next)
}
