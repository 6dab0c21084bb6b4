package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir points the package at a temporary log directory and resets global state
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID
	origLevel := level.Load()

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
		level.Store(origLevel)
	})
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	return string(content)
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, "test-component", logger.component)
	assert.NotEmpty(t, logger.SessionID())
	assert.NotEmpty(t, logger.LogPath())
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	logger.Printf("Test message %d", 123)
	logger.Debugf("Debug message")
	logger.Infof("Info message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content := readLog(t, logger)
	for _, want := range []string{"[test]", "Test message 123", "Debug message", "Info message", "Warning message", "Error message"} {
		assert.Contains(t, content, want)
	}
	assert.Contains(t, content, "[INFO]")
	assert.Contains(t, content, "[WARN]")
}

func TestSetLevel(t *testing.T) {
	setupTestDir(t)

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, logrus.WarnLevel, currentLevel())

	logger, err := NewLogger("levels")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("hidden debug")
	logger.Infof("hidden info")
	logger.Warnf("visible warning")

	content := readLog(t, logger)
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "visible warning")

	assert.Error(t, SetLevel("loud"))
}

func TestMultipleComponents(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("component1")
	require.NoError(t, err)
	defer logger1.Close()

	logger2, err := NewLogger("component2")
	require.NoError(t, err)
	defer logger2.Close()

	assert.Equal(t, logger1.SessionID(), logger2.SessionID())
	assert.Equal(t, logger1.LogPath(), logger2.LogPath())

	logger1.Printf("Message from component1")
	logger2.Printf("Message from component2")

	content := readLog(t, logger1)
	assert.Contains(t, content, "[component1]")
	assert.Contains(t, content, "[component2]")
}

func TestWithAddsField(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("http")
	require.NoError(t, err)
	defer logger.Close()

	logger.With("request", "abc123").Infof("handled")
	assert.Contains(t, readLog(t, logger), "[abc123]")
}

func TestGetSessionID(t *testing.T) {
	setupTestDir(t)

	id1 := GetSessionID()
	id2 := GetSessionID()
	assert.Equal(t, id1, id2)
	assert.NotEmpty(t, id1)
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof("touch")

	fileName := filepath.Base(logger.LogPath())
	require.True(t, strings.HasSuffix(fileName, "-voxbrowse.log"), fileName)
	assert.Contains(t, strings.TrimSuffix(fileName, "-voxbrowse.log"), "-")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Errorf("nowhere %d", 1)
	assert.Empty(t, l.LogPath())
	assert.NoError(t, l.Close())
}

func TestSetLevelConcurrentWithNewLogger(t *testing.T) {
	setupTestDir(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, SetLevel("info"))
		}()
		go func() {
			defer wg.Done()
			logger, err := NewLogger("concurrent")
			assert.NoError(t, err)
			logger.Infof("ready")
		}()
	}
	wg.Wait()
	assert.Equal(t, logrus.InfoLevel, currentLevel())
}
