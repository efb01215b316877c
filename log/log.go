//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package log provides a lightweight thread-safe logging facility using
// structured logging (slog) with JSON output, a singleton logger
// instance configured through environment variables, and convenience
// methods for fatal error reporting.
package log

import (
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var logger *slog.Logger
var loggerMutex sync.Mutex

// Log returns a thread-safe singleton slog.Logger configured for JSON
// output at the level named by CEREMONY_LOG_LEVEL. Subsequent calls
// return the same instance.
func Log() *slog.Logger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger != nil {
		return logger
	}

	opts := &slog.HandlerOptions{Level: Level()}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	return logger
}

// Fatal logs msg and then calls os.Exit(1).
func Fatal(msg string) {
	log.Fatal(msg)
}

// FatalF logs a formatted message and then calls os.Exit(1).
func FatalF(format string, args ...any) {
	log.Fatalf(format, args...)
}

// WarnErr logs err at warn level, attributed to the calling function.
// Used for non-fatal failures that the specification requires to be
// logged and swallowed (journal/audit writes, README emission).
func WarnErr(fName string, err error) {
	Log().Warn(fName, "err", err.Error())
}

// Level returns the configured log level, read from CEREMONY_LOG_LEVEL
// (DEBUG, INFO, WARN, ERROR, case-insensitive). Defaults to WARN.
func Level() slog.Level {
	level := strings.ToUpper(os.Getenv("CEREMONY_LOG_LEVEL"))

	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
