// Package logger provides the structured slog logger for system-wide logging.
// All logs are written in JSON format to a size-rotated file:
//
//	<logDir>/system.log              application-level events
//	<logDir>/system-<time>.log.gz    rotated backups
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the system log.
const (
	maxSizeMB  = 20
	maxBackups = 5
	maxAgeDays = 28
)

// NewSystemLogger creates a JSON slog.Logger that writes to <logDir>/system.log.
// The directory is created if it does not exist. Close the returned io.Closer on
// shutdown to release the log file.
func NewSystemLogger(logDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}
	log, closer := NewFileLogger(filepath.Join(logDir, "system.log"), level)
	return log, closer, nil
}

// NewFileLogger creates a JSON slog.Logger writing to path with rotation.
// The file is opened lazily on the first write.
func NewFileLogger(path string, level slog.Level) (*slog.Logger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), w
}
