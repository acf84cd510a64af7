package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"penyusutan/internal/config"
)

// logState is the process-wide logger and the file it may own.
var logState struct {
	mu     sync.Mutex
	logger *slog.Logger
	file   *os.File
}

// InitializeLogger builds the server logger from cfg and installs it as the
// slog default. Later calls return the logger built by the first one.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	logState.mu.Lock()
	defer logState.mu.Unlock()

	if logState.logger != nil {
		return logState.logger, nil
	}

	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if strings.EqualFold(cfg.Format, "text") {
		logger = NewTextLogger(w, cfg.Level)
	} else {
		logger = NewLogger(w, cfg.Level)
	}
	logState.logger = logger
	slog.SetDefault(logger)
	return logger, nil
}

// NewLogger returns a JSON logger with source locations. Records logged
// with a context that carries a trace id get a trace_id attribute.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(&traceHandler{Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(level),
	})})
}

// NewTextLogger returns a key=value logger for terminals, such as the CLI's
// stderr.
func NewTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(&traceHandler{Handler: slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	})})
}

// GetLogger returns the initialized logger, or slog.Default before
// InitializeLogger has run.
func GetLogger() *slog.Logger {
	logState.mu.Lock()
	defer logState.mu.Unlock()
	if logState.logger == nil {
		return slog.Default()
	}
	return logState.logger
}

// CloseLogFile closes the log file opened for Output "file" or "both".
func CloseLogFile() error {
	logState.mu.Lock()
	defer logState.mu.Unlock()

	if logState.file == nil {
		return nil
	}
	err := logState.file.Close()
	logState.file = nil
	return err
}

// ResetLoggerForTesting forgets the initialized logger. Tests only.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	logState.mu.Lock()
	logState.logger = nil
	logState.mu.Unlock()
}

// openOutput resolves Output to a writer. Callers hold logState.mu.
func openOutput(cfg config.LoggingConfig) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}
	logState.file = f

	if output == "both" {
		return io.MultiWriter(os.Stdout, f), nil
	}
	return f, nil
}

// traceHandler copies the context's trace id onto every record.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
