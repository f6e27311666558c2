// file: logger/logger.go

package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the application-wide logger. It is usable before Init is called,
// but Init should run first thing in main and in TestMain.
var Log = logrus.New()

// Init configures Log from the LOG_LEVEL and LOG_FORMAT environment variables.
func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter is Init with an explicit output, used by tests.
func InitWithWriter(w io.Writer) {
	Log.SetOutput(w)
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure applies a level ("debug", "info", ...) and a format ("json" or "text").
// Unknown levels fall back to info.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
