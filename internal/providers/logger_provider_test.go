package providers

import (
	"dailytrack/internal/structures"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogTypeByRequestType(t *testing.T) {
	tests := map[string]TypeEnum{
		"POST":   TypePost,
		"GET":    TypeGet,
		"PUT":    TypeGet,
		"DELETE": TypeGet,
	}
	for method, want := range tests {
		assert.Equal(t, want, GetLogTypeByRequestType(method), method)
	}
}

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "storage", TypeStorage.String())
	assert.Equal(t, "scheduler", TypeScheduler.String())
	assert.Equal(t, "app", TypeEnum(99).String())
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeApp, "test message")
	logger.Debugf(TypeGet, "get message")
	logger.Warnf(TypeStorage, "storage message")

	for _, name := range []string{"app.log", "get.log", "post.log", "storage.log", "health.log", "scheduler.log"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "storage.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "storage message")
}

func TestNewLogProvider_RejectsMissingOrFileDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	for _, dir := range []string{"/nonexistent/directory/path", file} {
		_, err := NewLogProvider(&structures.Config{
			Logger: structures.LoggerConfig{Level: "info", Mode: 0644, Dir: dir},
		})
		assert.Error(t, err, dir)
	}
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "loud",
			Mode:  0644,
			Dir:   t.TempDir(),
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
