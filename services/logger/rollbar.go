package logsvc

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
	"github.com/sirupsen/logrus"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/user"
)

type RollbarLogger struct {
	log     *logrus.Logger
	session string
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewLogrus builds the local logger: text output, debug level when conf.Debug is set.
func NewLogrus(conf *core.Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if conf.Debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// LogToFile appends the entries of `log` to the file at `path`. The caller closes the returned file.
func LogToFile(log *logrus.Logger, path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %s", path)
	}
	log.SetOutput(f)
	return f, nil
}

func NewRollbarLogger(log *logrus.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")
	return &RollbarLogger{log: log}
}

// WithSession returns a logger tagging every entry with the session id.
func (l RollbarLogger) WithSession(id string) core.Logger {
	l.session = id
	return &l
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// QuietConsole keeps only warnings and errors while entries go to stderr, until restore is called.
// Interactive sessions share the terminal with the log.
func (l RollbarLogger) QuietConsole() (restore func()) {
	prev := l.log.GetLevel()
	if l.log.Out != os.Stderr || prev <= logrus.WarnLevel {
		return func() {}
	}
	l.log.SetLevel(logrus.WarnLevel)
	return func() { l.log.SetLevel(prev) }
}

// Close waits for pending rollbar items.
func (l RollbarLogger) Close() {
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, logrus.Fields) {
	var usrSet bool
	fields := logrus.Fields{}
	if l.session != "" {
		fields["session"] = l.session
	}

	newArgs := make([]interface{}, 0, len(args)+2)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			// set logged in User
			if !usrSet { // only set one User
				rollbar.SetPerson(a.Username, a.Username, a.Info.Email)
				fields["user"] = a.Username
				usrSet = true
			}
		case map[string]interface{}:
			for k, v := range a {
				fields[k] = v
			}
		case error:
			fields[logrus.ErrorKey] = a
			newArgs = append(newArgs, a)
		default:
			newArgs = append(newArgs, a)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	if len(fields) > 0 {
		extras := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			if k != logrus.ErrorKey {
				extras[k] = v
			}
		}
		newArgs = append(newArgs, extras)
	}
	return newArgs, fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Debug(rArgs...)
	l.log.WithFields(fields).Debug(msg)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Info(rArgs...)
	l.log.WithFields(fields).Info(msg)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Warning(rArgs...)
	l.log.WithFields(fields).Warn(msg)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Error(rArgs...)
	l.log.WithFields(fields).Error(msg)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rArgs, fields := l.prepare(msg, args)
	rollbar.Critical(rArgs...)
	rollbar.Wait()
	l.log.WithFields(fields).Fatal(msg)
}
