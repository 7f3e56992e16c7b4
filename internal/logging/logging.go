package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, format and an optional rotated log file.
type Options struct {
	Level  string
	Format string
	File   string
}

// Setup configures the standard logrus logger. The returned closer releases
// the log file, if one was opened.
func Setup(opts Options) (io.Closer, error) {
	return configure(logrus.StandardLogger(), os.Stderr, opts)
}

func configure(logger *logrus.Logger, console io.Writer, opts Options) (io.Closer, error) {
	level := logrus.InfoLevel
	if trimmed := strings.TrimSpace(opts.Level); trimmed != "" {
		parsed, err := logrus.ParseLevel(trimmed)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	logger.SetLevel(level)

	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	path := strings.TrimSpace(opts.File)
	if path == "" {
		logger.SetOutput(console)
		return nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	logger.SetOutput(io.MultiWriter(console, rotator))
	logger.WithField("file", path).Debug("logging to file")
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
