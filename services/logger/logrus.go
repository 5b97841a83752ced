package logsvc

import (
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/potencialize/dashboard/core"
	"github.com/potencialize/dashboard/core/auth"
)

// LogrusLogger is the console logger; every other logger forwards to it.
type LogrusLogger struct {
	log *logrus.Logger
}

var _ core.Logger = (*LogrusLogger)(nil)

func NewLogrusLogger(out io.Writer, conf *core.Config) *LogrusLogger {
	log := logrus.New()
	log.SetOutput(out)
	if conf.Logging.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if conf.Debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return &LogrusLogger{log: log}
}

// entry turns args into fields.
// expected args: error | map[string]interface{} | auth.Session
func (l *LogrusLogger) entry(args []interface{}) *logrus.Entry {
	entry := logrus.NewEntry(l.log)
	for _, arg := range args {
		switch val := arg.(type) {
		case error:
			entry = entry.WithError(val)
		case map[string]interface{}:
			entry = entry.WithFields(val)
		case auth.Session:
			entry = entry.WithFields(sessionFields(val))
		case *auth.Session:
			if val != nil {
				entry = entry.WithFields(sessionFields(*val))
			}
		default:
			entry = entry.WithField("arg", val)
		}
	}
	return entry
}

func sessionFields(sess auth.Session) logrus.Fields {
	fields := logrus.Fields{"role": string(sess.Role)}
	if sess.TeacherID != nil {
		fields["teacher_id"] = strconv.Itoa(*sess.TeacherID)
	}
	return fields
}

func (l *LogrusLogger) Debug(msg string, args ...interface{}) { l.entry(args).Debug(msg) }
func (l *LogrusLogger) Info(msg string, args ...interface{})  { l.entry(args).Info(msg) }
func (l *LogrusLogger) Warn(msg string, args ...interface{})  { l.entry(args).Warn(msg) }
func (l *LogrusLogger) Error(msg string, args ...interface{}) { l.entry(args).Error(msg) }
func (l *LogrusLogger) Fatal(msg string, args ...interface{}) { l.entry(args).Fatal(msg) }
