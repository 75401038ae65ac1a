package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kimyounil1/honey-pot-sub000/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestInitWritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "gateway.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, Gateway)
	Debug("chat.poll.tick", "chat_id", 7)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"logger initialized"`)
	assert.Contains(t, string(data), `"chat_id":7`)
	assert.Contains(t, string(data), `"component":"gateway"`)
}

func TestChatIDAttr(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	id := int64(7)
	l.Info("chat.submit", ChatID(&id))
	l.Info("chat.submit", ChatID(nil), "messages", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "chat_id=7")
	assert.NotContains(t, lines[0], "0x")
	assert.NotContains(t, lines[1], "chat_id")
	assert.Contains(t, lines[1], "messages=1")
}
