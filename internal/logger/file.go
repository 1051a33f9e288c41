package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the active log file inside the log directory.
const FileName = "talentmap.log"

// FileLogger appends leveled messages to a size-rotated log file.
type FileLogger struct {
	path     string
	rotator  *lumberjack.Logger
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates the log directory if needed and opens a rotating
// log file in it. Rotation keeps three 5MB backups for 28 days.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, FileName)
	fl := &FileLogger{
		path: path,
		rotator: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.write(fmt.Sprintf("=== talentmap started at %s ===\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// Path returns the active log file path.
func (fl *FileLogger) Path() string {
	return fl.path
}

func (fl *FileLogger) LogTrace(message string) { fl.logWithLevel("TRACE", message) }
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }
func (fl *FileLogger) LogInfo(message string)  { fl.logWithLevel("INFO", message) }
func (fl *FileLogger) LogWarn(message string)  { fl.logWithLevel("WARN", message) }
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !shouldLog(fl.logLevel, strings.ToLower(level)) {
		return
	}
	fl.write(fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format(time.RFC3339), level, message))
}

func (fl *FileLogger) write(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.rotator != nil {
		fl.rotator.Write([]byte(message))
	}
}

// Close closes the underlying file. Later writes are dropped.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.rotator == nil {
		return nil
	}
	err := fl.rotator.Close()
	fl.rotator = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
