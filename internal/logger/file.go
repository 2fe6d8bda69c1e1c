package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLogger logs scan diagnostics to timestamped files in a log directory
// and maintains a latest.log symlink pointing to the most recent scan.
// It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir   string
	scanLog  *os.File
	scanFile string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir with the given log
// level. The directory is created if it doesn't exist, a timestamped
// scan-YYYYMMDD-HHMMSS.log file is opened, and the latest.log symlink is
// updated to point at it.
func NewFileLogger(logDir, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	scanFile := filepath.Join(logDir, fmt.Sprintf("scan-%s.log", timestamp))

	file, err := os.OpenFile(scanFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan log file: %w", err)
	}

	// Point latest.log at the new scan log, replacing any stale link.
	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(scanFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		scanLog:  file,
		scanFile: scanFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.write(fmt.Sprintf("=== ffind scan log ===\nStarted at: %s\n\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// Path returns the path of the current scan log file.
func (fl *FileLogger) Path() string {
	return fl.scanFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// Debugf logs a debug-level message.
func (fl *FileLogger) Debugf(format string, args ...interface{}) {
	fl.logf("debug", "DEBUG", format, args...)
}

// Infof logs an info-level message.
func (fl *FileLogger) Infof(format string, args ...interface{}) {
	fl.logf("info", "INFO", format, args...)
}

// Warnf logs a warning-level message.
func (fl *FileLogger) Warnf(format string, args ...interface{}) {
	fl.logf("warn", "WARN", format, args...)
}

// Errorf logs an error-level message.
func (fl *FileLogger) Errorf(format string, args ...interface{}) {
	fl.logf("error", "ERROR", format, args...)
}

func (fl *FileLogger) logf(level, tag, format string, args ...interface{}) {
	if !fl.shouldLog(level) {
		return
	}
	message := fmt.Sprintf(format, args...)
	fl.write(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("15:04:05"), tag, message))
}

// Close flushes and closes the scan log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.scanLog != nil {
		if err := fl.scanLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync scan log: %w", err)
		}
		if err := fl.scanLog.Close(); err != nil {
			return fmt.Errorf("failed to close scan log: %w", err)
		}
		fl.scanLog = nil
	}
	return nil
}

// write is a thread-safe helper appending to the scan log.
func (fl *FileLogger) write(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.scanLog != nil {
		fl.scanLog.WriteString(message)
		fl.scanLog.Sync()
	}
}
