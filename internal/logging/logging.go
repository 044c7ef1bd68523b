package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a logrus logger writing to both a rotated file and stdout.
type Logger struct {
	log *logrus.Logger
}

// New builds a Logger with lumberjack rotation under dir.
func New(dir, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "autochase.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 7,
		MaxAge:     28, // days
	}

	l := logrus.New()
	l.SetOutput(io.MultiWriter(rotated, os.Stdout))
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return &Logger{log: l}, nil
}

func (l *Logger) Debugf(msg string, args ...interface{}) { l.log.Debugf(msg, args...) }
func (l *Logger) Infof(msg string, args ...interface{})  { l.log.Infof(msg, args...) }
func (l *Logger) Warnf(msg string, args ...interface{})  { l.log.Warnf(msg, args...) }
func (l *Logger) Errorf(msg string, args ...interface{}) { l.log.Errorf(msg, args...) }
func (l *Logger) Fatalf(msg string, args ...interface{}) { l.log.Fatalf(msg, args...) }

// WithRequest returns an entry carrying the request id for correlation.
func (l *Logger) WithRequest(requestID string) *logrus.Entry {
	return l.log.WithField("request_id", requestID)
}
