package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "repolens", configBaseName)
	assert.Equal(t, "repolens.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "lens", lensFlagName)
	assert.Equal(t, "budget", budgetFlagName)
	assert.Equal(t, "strategy", strategyFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "include", includeFlagName)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "pack.lens", lensConfigKey)
	assert.Equal(t, "pack.strategy", strategyConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "hybrid", defaultStrategy)
	assert.Equal(t, 5*1024*1024, defaultMaxFileSize)
	assert.Equal(t, "REPOLENS", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseSlogLevel("debug", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("info", slog.LevelError))
	assert.Equal(t, slog.LevelWarn, parseSlogLevel("warning", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, parseSlogLevel("error", slog.LevelInfo))
	assert.Equal(t, slog.Level(-4), parseSlogLevel("-4", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseSlogLevel("bogus", slog.LevelInfo))
}
