package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repolens.dev/pkg/repolens/internal/adapter"
	m "repolens.dev/pkg/repolens/internal/model"
)

// resetPackFlags restores the flag globals and viper keys a test
// mutated.
func resetPackFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		packSortByFlag = ""
		packSortOrderFlag = ""
		packTruncateModeFlag = ""
		packTruncateFlag = 0
		packTUIFlag = false
		packOutputFlag = ""

		viper.Set(lensConfigKey, "")
		viper.Set(budgetConfigKey, "")
		viper.Set(strategyConfigKey, defaultStrategy)
		viper.Set(streamConfigKey, defaultStream)
		viper.Set(metaConfigKey, defaultMeta)
		viper.Set(minPriorityConfigKey, defaultMinPriority)
		viper.Set(maxFileSizeConfigKey, defaultMaxFileSize)
	})
}

func TestBuildPackOptions(t *testing.T) {
	t.Run("defaults build cleanly", func(t *testing.T) {
		resetPackFlags(t)

		viper.Set(strategyConfigKey, defaultStrategy)

		opts, err := buildPackOptions(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, m.StrategyHybrid, opts.Strategy)
		assert.Zero(t, opts.Budget)
		assert.Nil(t, opts.Store)
	})

	t.Run("parses budget suffixes", func(t *testing.T) {
		resetPackFlags(t)

		viper.Set(strategyConfigKey, defaultStrategy)
		viper.Set(budgetConfigKey, "100k")

		opts, err := buildPackOptions(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 100_000, opts.Budget)
	})

	t.Run("rejects invalid strategy", func(t *testing.T) {
		resetPackFlags(t)

		viper.Set(strategyConfigKey, "vanish")

		_, err := buildPackOptions(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("rejects invalid sort key and order", func(t *testing.T) {
		resetPackFlags(t)

		viper.Set(strategyConfigKey, defaultStrategy)
		packSortByFlag = "size"

		_, err := buildPackOptions(t.TempDir())
		assert.Error(t, err)

		packSortByFlag = ""
		packSortOrderFlag = "sideways"

		_, err = buildPackOptions(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("rejects invalid truncate mode", func(t *testing.T) {
		resetPackFlags(t)

		viper.Set(strategyConfigKey, defaultStrategy)
		packTruncateModeFlag = "chop"

		_, err := buildPackOptions(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("malformed repo config is fatal", func(t *testing.T) {
		resetPackFlags(t)

		viper.Set(strategyConfigKey, defaultStrategy)

		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, adapter.RepoConfigFileName), []byte("{oops"), 0o600))

		_, err := buildPackOptions(root)
		assert.Error(t, err)
	})

	t.Run("loads the priority store when present", func(t *testing.T) {
		resetPackFlags(t)

		viper.Set(strategyConfigKey, defaultStrategy)

		root := t.TempDir()
		store := "version: 1\nfiles:\n  a.py:\n    utility: 0.5\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, adapter.PriorityStoreFileName), []byte(store), 0o600))

		opts, err := buildPackOptions(root)
		require.NoError(t, err)
		assert.Len(t, opts.Store, 1)
	})
}

func TestBuildPackUI(t *testing.T) {
	t.Run("tui requires an output file", func(t *testing.T) {
		resetPackFlags(t)

		packTUIFlag = true
		packOutputFlag = ""

		_, err := buildPackUI(os.Stderr)
		assert.Error(t, err)
	})

	t.Run("simple ui by default", func(t *testing.T) {
		resetPackFlags(t)

		ui, err := buildPackUI(os.Stderr)
		require.NoError(t, err)
		assert.NotNil(t, ui)
	})
}
