package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"

	"github.com/hylla/agenda/internal/config"
)

// loggerOptions carries the runtime facts the logger needs besides config.
type loggerOptions struct {
	AppName string
	DevMode bool
	// DataDir anchors relative logging.dev_file.dir values.
	DataDir string
	Now     func() time.Time
}

// runtimeLogger routes command-flow events to the console and, in dev mode,
// to a per-day logfmt file. Every entry carries the running command, and
// components such as the server or the REST client get tagged child loggers.
type runtimeLogger struct {
	console *charmLog.Logger
	file    *charmLog.Logger
	muted   bool
	command string

	components map[string]*charmLog.Logger
	closeFile  func() error
	devLog     string
}

// newRuntimeLogger builds the console sink and, when dev mode enables it, the file sink.
func newRuntimeLogger(stderr io.Writer, cfg config.LoggingConfig, opts loggerOptions) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	l := &runtimeLogger{
		console: charmLog.NewWithOptions(stderr, charmLog.Options{
			Level:           level,
			Prefix:          opts.AppName,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Formatter:       charmLog.TextFormatter,
		}),
		components: map[string]*charmLog.Logger{},
	}
	if !opts.DevMode || !cfg.DevFile.Enabled {
		return l, nil
	}

	path := devLogFilePath(cfg.DevFile.Dir, opts.DataDir, opts.AppName, opts.Now().UTC())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	l.file = charmLog.NewWithOptions(f, charmLog.Options{
		Level:           level,
		Prefix:          opts.AppName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	l.closeFile = f.Close
	l.devLog = path
	return l, nil
}

// DevLogPath returns the dev log file, or "" when file logging is off.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the dev log file.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled mutes or restores the console. The board owns the
// terminal, so the TUI command runs muted.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.muted = !enabled
	clear(l.components)
}

// ForCommand tags later entries and component loggers with command.
func (l *runtimeLogger) ForCommand(command string) {
	if l == nil {
		return
	}
	l.command = command
	clear(l.components)
}

// Component returns the logger handed to one component. It writes to the
// console unless muted, then to the dev file; nil means nothing would be written.
func (l *runtimeLogger) Component(name string) *charmLog.Logger {
	if l == nil {
		return nil
	}
	if cached, ok := l.components[name]; ok {
		return cached
	}
	sink := l.console
	if l.muted {
		sink = l.file
	}
	if sink == nil {
		return nil
	}
	kv := []any{"component", name}
	if l.command != "" {
		kv = append(kv, "command", l.command)
	}
	child := sink.With(kv...)
	l.components[name] = child
	return child
}

func (l *runtimeLogger) emit(level charmLog.Level, msg string, keyvals []any) {
	if l == nil {
		return
	}
	if l.command != "" {
		keyvals = append([]any{"command", l.command}, keyvals...)
	}
	if !l.muted {
		l.console.Log(level, msg, keyvals...)
	}
	if l.file != nil {
		l.file.Log(level, msg, keyvals...)
	}
}

// Debug logs at debug level.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.emit(charmLog.DebugLevel, msg, keyvals) }

// Info logs at info level.
func (l *runtimeLogger) Info(msg string, keyvals ...any) { l.emit(charmLog.InfoLevel, msg, keyvals) }

// Warn logs at warn level.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) { l.emit(charmLog.WarnLevel, msg, keyvals) }

// Error logs at error level.
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.emit(charmLog.ErrorLevel, msg, keyvals) }

// devLogFilePath places <app>-<yyyymmdd>.log in dir. Relative dirs sit under
// the app data dir so logs follow the database rather than the shell's cwd.
func devLogFilePath(dir, dataDir, appName string, day time.Time) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "log"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(dataDir, dir)
	}
	name := fmt.Sprintf("%s-%s.log", sanitizeLogFileStem(appName), day.Format("20060102"))
	return filepath.Join(filepath.Clean(dir), name)
}

// sanitizeLogFileStem turns an app name into a safe file-name stem.
func sanitizeLogFileStem(appName string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem := strings.Trim(replacer.Replace(strings.TrimSpace(appName)), "-")
	if stem == "" {
		return "agenda"
	}
	return stem
}
