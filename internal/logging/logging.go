// Package logging configures the logrus standard logger for livetrace.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LevelForDebug maps the -v count to a level: warnings by default, info at
// -v, debug from -vv.
func LevelForDebug(debug int) logrus.Level {
	switch {
	case debug >= 2:
		return logrus.DebugLevel
	case debug == 1:
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}

// Setup configures the standard logger. A non-empty level (LIVETRACE_LOG_LEVEL)
// takes precedence over the -v count.
func Setup(out io.Writer, debug int, level string) error {
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})

	lvl := LevelForDebug(debug)
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	logrus.SetLevel(lvl)
	return nil
}
