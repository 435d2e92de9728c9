package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var base = newBase(os.Stdout)

func newBase(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000000000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return l
}

// SetLevel accepts debug | info | error; anything else keeps the current level.
func SetLevel(level string) {
	if lv, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		base.SetLevel(lv)
	}
}

// SetOutput redirects every logger; used by tests.
func SetOutput(w io.Writer) { base.SetOutput(w) }

type Logger struct {
	service   string
	requestID string
}

func New(service string) *Logger { return &Logger{service: service} }

func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{service: l.service, requestID: id}
}

func (l *Logger) entry(action string, fields map[string]any) *logrus.Entry {
	f := logrus.Fields{
		"service":    l.service,
		"action":     action,
		"hostname":   hostname(),
		"request_id": l.requestID,
	}
	for k, v := range fields {
		f[k] = v
	}
	return base.WithFields(f)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.entry(action, fields).Info(action) }
func (l *Logger) Debug(action string, fields map[string]any) { l.entry(action, fields).Debug(action) }

func (l *Logger) Error(action string, err error, fields map[string]any) {
	e := l.entry(action, fields)
	if err != nil {
		e = e.WithField("error", map[string]any{"msg": err.Error(), "type": fmt.Sprintf("%T", err)})
	}
	e.Error(action)
}

var host, _ = os.Hostname()

func hostname() string { return host }
