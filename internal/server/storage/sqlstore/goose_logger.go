package sqlstore

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// gooseLogger направляет журнал goose в slog
type gooseLogger struct {
	logger *slog.Logger
}

func newGooseLogger(logger *slog.Logger) *gooseLogger {
	return &gooseLogger{logger: logger.With("component", "migrations")}
}

// Printf implements goose.Logger
func (l *gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger
func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
