package logsvc

import (
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

// RollbarLogger reports to Rollbar and forwards everything to the console logger.
type RollbarLogger struct {
	console core.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(console core.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.Logging.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{console: console}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, auth.Session
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var sessSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		sess, ok := arg.(auth.Session)
		if !ok {
			newArgs = append(newArgs, arg)
			continue
		}
		if !sessSet { // only set one person
			id := string(sess.Role)
			if sess.TeacherID != nil {
				id = strconv.Itoa(*sess.TeacherID)
			}
			rollbar.SetPerson(id, string(sess.Role), "")
			sessSet = true
		}
	}
	if !sessSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// Flush waits for queued items to be sent.
func (l RollbarLogger) Flush() {
	rollbar.Wait()
	Flush(l.console)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.console.Debug(msg, args...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.console.Info(msg, args...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.console.Warn(msg, args...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.console.Error(msg, args...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.console.Fatal(msg, args...)
}
