package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 写一份临时YAML配置并返回路径
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// minimalConfig 通过校验所需的最小配置
func minimalConfig(t *testing.T, extra string) string {
	t.Helper()
	return `jwt:
  secret_key: "test-secret"
admin:
  password: "test-password"
database:
  path: "` + filepath.Join(t.TempDir(), "app.db") + `"
` + extra
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalConfig(t, ""))

	cfg, err := loadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 18090, cfg.Server.Port)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)

	// 导出配置未显式设置时使用默认值
	assert.Equal(t, 1000, cfg.Export.ChunkSize)
	assert.Equal(t, 2, cfg.Export.MaxConcurrent)
	assert.Equal(t, 30*time.Minute, cfg.Export.GetSlotTTL())
}

func TestLoadConfigExplicitExportValues(t *testing.T) {
	path := writeConfigFile(t, minimalConfig(t, `export:
  chunk_size: 500
  max_concurrent: 4
  slot_ttl_seconds: 600
`))

	cfg, err := loadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Export.ChunkSize)
	assert.Equal(t, 4, cfg.Export.MaxConcurrent)
	assert.Equal(t, 10*time.Minute, cfg.Export.GetSlotTTL())
}

// 显式配置为0不会被默认值掩盖,启动阶段直接报错
func TestLoadConfigRejectsZeroChunkSize(t *testing.T) {
	path := writeConfigFile(t, minimalConfig(t, `export:
  chunk_size: 0
`))

	_, err := loadConfigFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "无效的导出块大小")
}

func TestLoadConfigRejectsNegativeChunkSize(t *testing.T) {
	path := writeConfigFile(t, minimalConfig(t, `export:
  chunk_size: -5
`))

	_, err := loadConfigFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "无效的导出块大小")
}

func TestLoadConfigRejectsMissingSecret(t *testing.T) {
	path := writeConfigFile(t, `admin:
  password: "test-password"
`)

	_, err := loadConfigFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT密钥不能为空")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
