package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStdoutPathDoesNotCreateDirectory(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	Init("info", "console", "stdout")
	Info("hello")

	// "stdout" 是标准输出的别名，不能被当作目录创建
	_, statErr := os.Stat(filepath.Join(dir, "stdout"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInitFilePathAddsFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	Init("info", "json", dir)
	Info("to file")
	Sync()

	info, err := os.Stat(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
