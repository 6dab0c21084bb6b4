package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled logging for voxbrowse components.
// All logs are written to a session-specific file in ~/.voxbrowse/logs/
type Logger struct {
	entry     *logrus.Entry
	sessionID string
	component string
	logPath   string
	closer    io.Closer
	closeOnce sync.Once
}

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once

	// logDir is the directory where log files are stored
	logDir string

	// initOnce ensures directory initialization happens once
	initOnce sync.Once

	// initErr stores any error from directory initialization
	initErr error

	// level holds the logrus.Level applied to every logger created afterwards
	level atomic.Uint32

	// sinks caches one rotating writer per log path so components share a file
	sinksMu sync.Mutex
	sinks   = map[string]*lumberjack.Logger{}
)

// getSessionID returns or creates the session ID for this execution
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".voxbrowse", "logs")
		}

		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// SetLevel sets the minimum level for loggers created after the call.
// Accepts debug, info, warn or error.
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.Store(uint32(lvl))
	return nil
}

func init() {
	level.Store(uint32(logrus.DebugLevel))
}

// currentLevel returns the level set by SetLevel.
func currentLevel() logrus.Level {
	return logrus.Level(level.Load())
}

func newFormatter(colors bool) logrus.Formatter {
	return &formatter.Formatter{
		NoColors:        !colors,
		TimestampFormat: "2006-01-02 15:04:05.000",
		HideKeys:        true,
		FieldsOrder:     []string{"component", "session"},
	}
}

func sinkFor(path string) *lumberjack.Logger {
	sinksMu.Lock()
	defer sinksMu.Unlock()

	if s, ok := sinks[path]; ok {
		return s
	}
	s := &lumberjack.Logger{
		Filename:   path,
		LocalTime:  true,
		MaxSize:    20,
		MaxBackups: 3,
		MaxAge:     7,
	}
	sinks[path] = s
	return s
}

// NewLogger creates a new logger for a specific component.
// The logger writes to ~/.voxbrowse/logs/<session-id>-voxbrowse.log
//
// If the log directory cannot be created, it returns a fallback logger that
// writes to stderr along with the error. Callers can check the error to
// detect fallback mode and log warnings.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-voxbrowse.log", sessID))
	sink := sinkFor(logPath)

	base := logrus.New()
	base.SetOutput(sink)
	base.SetFormatter(newFormatter(false))
	base.SetLevel(currentLevel())

	return &Logger{
		entry:     base.WithFields(logrus.Fields{"component": component, "session": sessID[:8]}),
		sessionID: sessID,
		component: component,
		logPath:   logPath,
		closer:    sink,
	}, nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, err error) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(newFormatter(true))
	base.SetLevel(currentLevel())

	l := &Logger{
		entry:     base.WithField("component", component),
		sessionID: getSessionID(),
		component: component,
	}
	l.entry.Warnf("Failed to initialize file logging: %v", err)
	l.entry.Warn("Falling back to stderr logging")
	return l
}

// Discard returns a logger that drops everything. Useful in tests and as a nil default.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base), component: "discard"}
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		entry:     l.entry.WithField(key, value),
		sessionID: l.sessionID,
		component: l.component,
		logPath:   l.logPath,
	}
}

// Printf logs a formatted message
func (l *Logger) Printf(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// Writer returns an io.Writer that writes to this logger at info level.
// The caller must close it.
func (l *Logger) Writer() *io.PipeWriter {
	return l.entry.Writer()
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times; a later write
// from another component sharing the file reopens it.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.closer != nil {
			err = l.closer.Close()
		}
	})
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory where logs are stored
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
