package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInitialize_Console(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	out := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "gravsim",
		Colors:      config.ColorConfig{Info: "green"},
	}, out)

	GetLogger().Info("tick complete", zap.Int("step", 3))
	Sync()

	s := out.String()
	assert.Contains(t, s, "INFO")
	assert.Contains(t, s, colorGreen)
	assert.Contains(t, s, colorReset)
	assert.Contains(t, s, "gravsim.")
	assert.Contains(t, s, "tick complete")
	assert.Contains(t, s, `"step": 3`)
}

func TestInitialize_JSON(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	out := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "svc"}, out)

	GetLogger().Warn("energy drift", zap.Float64("drift", 0.5))
	Sync()

	var entry map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(out.buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "svc", entry["logger"])
	assert.Equal(t, "energy drift", entry["msg"])
	assert.Equal(t, 0.5, entry["drift"])
}

func TestInitialize_LevelFilter(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	out := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, out)

	GetLogger().Info("hidden")
	GetLogger().Debug("hidden")
	assert.Empty(t, out.String())
}

func TestInitialize_BadLevelFallsBackToInfo(t *testing.T) {
	out := &syncBuffer{}
	logger := New(config.LoggerConfig{Level: "loud", Format: "json"}, out)

	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &syncBuffer{}
	second := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, second)

	GetLogger().Info("hello")
	assert.Contains(t, first.String(), "hello")
	assert.Empty(t, second.String())
}

func TestInitialize_LogFile(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	path := filepath.Join(t.TempDir(), "gravsim.log")
	Initialize(config.LoggerConfig{
		Level:   "info",
		Format:  "console",
		LogFile: path,
		MaxSize: 1,
	}, zapcore.AddSync(&syncBuffer{}))

	GetLogger().Info("written to file")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
}

func TestGetLogger_BeforeInitialize(t *testing.T) {
	ResetForTest()
	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Info("discarded")
}
