package dolly

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns a leveled logger writing to w.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "dolly",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
