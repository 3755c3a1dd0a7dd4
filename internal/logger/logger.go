package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Setup initializes Logrus to write to stdout and a rotating file.
func Setup(file, level string) {
	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	}

	logrus.SetOutput(io.MultiWriter(os.Stdout, rotator))
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logrus.WithError(err).Warn("unknown log level, using info")
	}
	logrus.SetLevel(lvl)
}

// NewGormLogger routes GORM's SQL logging through the standard Logrus logger.
func NewGormLogger() gormlogger.Interface {
	level := gormlogger.Warn
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
