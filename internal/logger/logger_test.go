package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 9, 4, 5, 0, time.UTC)
}

func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "DEBUG")
		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.Level() != "debug" {
			t.Errorf("expected level debug, got %q", logger.Level())
		}
		if logger.colorOutput {
			t.Error("buffers are never colored")
		}
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "verbose")
		if logger.Level() != "info" {
			t.Errorf("expected info, got %q", logger.Level())
		}
	})

	t.Run("nil writer discards", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		logger.LogError("nothing happens")
	})
}

func TestConsoleLogger_Format(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")
	logger.now = fixedClock

	logger.LogInfo("restored 12 answers")

	want := "[09:04:05] [INFO] restored 12 answers\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
	}{
		{"trace", []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"warn", []string{"WARN", "ERROR"}},
		{"error", []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.level)
			logger.LogTrace("m")
			logger.LogDebug("m")
			logger.LogInfo("m")
			logger.LogWarn("m")
			logger.LogError("m")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != len(tt.visible) {
				t.Fatalf("expected %d lines, got %d: %q", len(tt.visible), len(lines), buf.String())
			}
			for i, lvl := range tt.visible {
				if !strings.Contains(lines[i], "["+lvl+"]") {
					t.Errorf("line %d: expected level %s in %q", i, lvl, lines[i])
				}
			}
		})
	}
}

func TestConsoleLogger_ConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogInfo("poll attempt")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 20 {
		t.Errorf("expected 20 lines, got %d", got)
	}
}

func TestFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := NewFileLogger(dir, "warn")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.LogInfo("filtered out")
	logger.LogWarn("encryption unavailable, saved unencrypted")
	logger.LogError("submit failed")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	logger.LogError("after close is dropped")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "=== talentmap started at") {
		t.Error("missing header")
	}
	if strings.Contains(content, "filtered out") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(content, "[WARN] encryption unavailable") {
		t.Error("missing warn message")
	}
	if !strings.Contains(content, "[ERROR] submit failed") {
		t.Error("missing error message")
	}
	if strings.Contains(content, "after close") {
		t.Error("writes after Close must be dropped")
	}
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) LogDebug(m string) { r.lines = append(r.lines, "debug:"+m) }
func (r *recordingLogger) LogInfo(m string)  { r.lines = append(r.lines, "info:"+m) }
func (r *recordingLogger) LogWarn(m string)  { r.lines = append(r.lines, "warn:"+m) }
func (r *recordingLogger) LogError(m string) { r.lines = append(r.lines, "error:"+m) }

func TestMultiAndHelpers(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := Multi(a, nil, b)

	Debugf(m, "attempt %d", 1)
	Infof(m, "job %s", "j-1")
	Warnf(m, "fallback")
	Errorf(m, "failed: %v", "boom")

	want := []string{"debug:attempt 1", "info:job j-1", "warn:fallback", "error:failed: boom"}
	for _, r := range []*recordingLogger{a, b} {
		if strings.Join(r.lines, "|") != strings.Join(want, "|") {
			t.Errorf("got %v, want %v", r.lines, want)
		}
	}

	Infof(nil, "nil logger is ignored")
	var nop Logger = NewNoOpLogger()
	nop.LogError("discarded")
}

func TestValidLevel(t *testing.T) {
	for _, l := range []string{"trace", "DEBUG", " info ", "Warn", "error"} {
		if !ValidLevel(l) {
			t.Errorf("expected %q to be valid", l)
		}
	}
	if ValidLevel("fatal") {
		t.Error("fatal is not a level")
	}
}
