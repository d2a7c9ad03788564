package config

import (
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger returns a logger with the given bracketed prefix. When
// logFile is set (daemon mode) output goes through a size-rotated file;
// otherwise it goes to stderr.
func NewLogger(prefix, logFile string) *log.Logger {
	if logFile == "" {
		return log.New(os.Stderr, prefix, log.LstdFlags)
	}
	return log.New(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}, prefix, log.LstdFlags)
}
