package shared

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger builds the root logger. format is one of text, json or logfmt;
// anything else falls back to text.
func SetupLogger(w io.Writer, level log.Level, format string) *log.Logger {
	formatter := log.TextFormatter
	switch format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
}

// ParseLevel resolves the effective level: debug wins, then the configured
// level name, then info.
func ParseLevel(debug bool, configured string) log.Level {
	if debug {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(configured)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
