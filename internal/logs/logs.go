package logs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"o365sync/internal/metrics"
)

// Operator verbosity levels.
const (
	None    = 0
	Normal  = 1
	Verbose = 2
)

// LevelFor maps the operator verbosity to a logrus level.
func LevelFor(verbosity int) logrus.Level {
	switch {
	case verbosity <= None:
		return logrus.PanicLevel
	case verbosity == Normal:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// InitLogrus configures the global logger. When logFile is set, entries are
// appended to it as well as written to stdout.
func InitLogrus(verbosity int, logFile string) {
	logrus.SetLevel(LevelFor(verbosity))
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stdout)
	logrus.AddHook(&MetricsHook{})

	if logFile == "" || verbosity <= None {
		return
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logrus.Warn("There was an error opening the log file, logging to stdout only: ", err)
		return
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, f))
}

// MetricsHook counts warning and error entries.
type MetricsHook struct {
}

func (h *MetricsHook) Fire(entry *logrus.Entry) error {
	metrics.LogEntries.WithLabelValues(entry.Level.String()).Inc()
	return nil
}

// Levels define on which log levels this MetricsHook would trigger
func (h *MetricsHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.WarnLevel, logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}
