package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repolens.dev/pkg/repolens/internal/adapter"
	"repolens.dev/pkg/repolens/internal/controller"
	"repolens.dev/pkg/repolens/internal/domain"
	m "repolens.dev/pkg/repolens/internal/model"
)

var (
	packLensFlag         string
	packBudgetFlag       string
	packStrategyFlag     string
	packSortByFlag       string
	packSortOrderFlag    string
	packTruncateModeFlag string
	packTruncateFlag     int
	packStreamFlag       bool
	packMetaFlag         bool
	packTUIFlag          bool
	packOutputFlag       string
	packMinPriorityFlag  int
	packMaxFileSizeFlag  int64
)

const packLongDescription = `Serialize the repository at the given root (default: current directory)
into the Plus/Minus framing format on stdout.

Selection, ordering, truncation and priorities come from the repository
config (.repolens_config.json), the active lens and command-line
overrides, in that order of increasing precedence. With --budget the
output is fitted to a token budget under the chosen strategy.`

// packCmd represents the pack command.
var packCmd = newPackCmd()

func newPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack [root]",
		Short: "Serialize a repository into one framed text artifact",
		Long:  packLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogger("", viper.GetBool(logVerboseKey))

			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}

			info, err := os.Stat(absRoot)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("root %q is not a directory", root)
			}

			opts, err := buildPackOptions(absRoot)
			if err != nil {
				return err
			}

			sink, closeSink, err := openSink(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeSink()

			ui, err := buildPackUI(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := ui.Start(); err != nil {
				return err
			}
			defer ui.Close()

			emitter := domain.NewEmitter(fsAdapter, ui)

			result, err := emitter.Run(cmd.Context(), m.Path(absRoot), opts, sink)
			if err != nil {
				return err
			}

			ui.Note(fmt.Sprintf("%d files emitted", result.EmittedCount))

			return nil
		},
	}

	configurePackFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(packCmd)
}

func configurePackFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&packLensFlag, lensFlagName, "l", viper.GetString(lensConfigKey), "active lens (architecture, debug, security, onboarding, minimal, or custom)")
	bindFlagToConfig(cmd.Flags().Lookup(lensFlagName), lensConfigKey)

	cmd.Flags().StringVarP(&packBudgetFlag, budgetFlagName, "b", viper.GetString(budgetConfigKey), "token budget (e.g. 100000, 100k, 2M; empty disables)")
	bindFlagToConfig(cmd.Flags().Lookup(budgetFlagName), budgetConfigKey)

	cmd.Flags().StringVar(&packStrategyFlag, strategyFlagName, viper.GetString(strategyConfigKey), "budget strategy: drop, truncate or hybrid")
	bindFlagToConfig(cmd.Flags().Lookup(strategyFlagName), strategyConfigKey)

	cmd.Flags().StringVar(&packSortByFlag, sortByFlagName, "", "sort key: name, mtime or ctime (overrides lens)")
	cmd.Flags().StringVar(&packSortOrderFlag, sortOrderFlagName, "", "sort order: asc or desc (overrides lens)")
	cmd.Flags().StringVar(&packTruncateModeFlag, truncateModeFlagName, "", "truncation mode: none, simple, smart or structure (overrides lens)")
	cmd.Flags().IntVar(&packTruncateFlag, truncateFlagName, 0, "line limit for simple/smart truncation (-1 forces no limit)")

	cmd.Flags().BoolVar(&packStreamFlag, streamFlagName, viper.GetBool(streamConfigKey), "stream in traversal order for low time-to-first-byte")
	bindFlagToConfig(cmd.Flags().Lookup(streamFlagName), streamConfigKey)

	cmd.Flags().BoolVar(&packMetaFlag, metaFlagName, viper.GetBool(metaConfigKey), "prepend the synthetic "+domain.MetaFileName+" record")
	bindFlagToConfig(cmd.Flags().Lookup(metaFlagName), metaConfigKey)

	cmd.Flags().StringVarP(&packOutputFlag, outputFlagName, "o", "", "write the artifact to a file instead of stdout")
	cmd.Flags().BoolVar(&packTUIFlag, tuiFlagName, false, "interactive progress display (requires --output)")

	cmd.Flags().IntVar(&packMinPriorityFlag, minPriorityFlagName, viper.GetInt(minPriorityConfigKey), "drop files whose resolved priority is below this floor")
	bindFlagToConfig(cmd.Flags().Lookup(minPriorityFlagName), minPriorityConfigKey)

	cmd.Flags().Int64Var(&packMaxFileSizeFlag, maxFileSizeFlagName, viper.GetInt64(maxFileSizeConfigKey), "skip files larger than this many bytes")
	bindFlagToConfig(cmd.Flags().Lookup(maxFileSizeFlagName), maxFileSizeConfigKey)
}

// buildPackOptions assembles core options from the viper-bound flags,
// the repository config and the priority store. Bound values are read
// through viper at run time (not from the flag variables) so config
// and env defaults feed in; see the teacher pattern in root flags.
// Configuration errors are fatal here, before any output is produced.
func buildPackOptions(absRoot string) (m.Options, error) {
	config, warnings, err := adapter.LoadRepoConfig(m.Path(filepath.Join(absRoot, adapter.RepoConfigFileName)))
	if err != nil {
		return m.Options{}, err
	}

	store := adapter.LoadPriorityStore(m.Path(filepath.Join(absRoot, adapter.PriorityStoreFileName)))

	budget := 0

	if budgetValue := viper.GetString(budgetConfigKey); budgetValue != "" {
		budget, err = domain.ParseTokenBudget(budgetValue)
		if err != nil {
			return m.Options{}, err
		}
	}

	strategyValue := viper.GetString(strategyConfigKey)

	strategy := m.BudgetStrategy(strategyValue)
	if !m.ValidBudgetStrategy(strategy) {
		return m.Options{}, fmt.Errorf("invalid strategy %q (expected drop, truncate or hybrid)", strategyValue)
	}

	if packSortByFlag != "" {
		switch m.SortKey(packSortByFlag) {
		case m.SortByName, m.SortByMtime, m.SortByCtime:
		default:
			return m.Options{}, fmt.Errorf("invalid sort key %q (expected name, mtime or ctime)", packSortByFlag)
		}
	}

	if packSortOrderFlag != "" {
		switch m.SortOrder(packSortOrderFlag) {
		case m.SortAsc, m.SortDesc:
		default:
			return m.Options{}, fmt.Errorf("invalid sort order %q (expected asc or desc)", packSortOrderFlag)
		}
	}

	mode := m.TruncateMode(packTruncateModeFlag)
	if mode != "" && !m.ValidTruncateMode(mode) {
		return m.Options{}, fmt.Errorf("invalid truncate mode %q (expected none, simple, smart or structure)", packTruncateModeFlag)
	}

	return m.Options{
		Lens:           viper.GetString(lensConfigKey),
		Include:        viper.GetStringSlice(includeConfigKey),
		Exclude:        viper.GetStringSlice(excludeConfigKey),
		Budget:         budget,
		Strategy:       strategy,
		SortBy:         m.SortKey(packSortByFlag),
		SortOrder:      m.SortOrder(packSortOrderFlag),
		TruncateMode:   mode,
		TruncateLines:  packTruncateFlag,
		Streaming:      viper.GetBool(streamConfigKey),
		EmitMeta:       viper.GetBool(metaConfigKey),
		MinPriority:    viper.GetInt(minPriorityConfigKey),
		MaxFileBytes:   viper.GetInt64(maxFileSizeConfigKey),
		Store:          store,
		Config:         config,
		ConfigWarnings: warnings,
	}, nil
}

// openSink resolves the main output destination. With --output the
// artifact goes to a file; otherwise it streams to stdout.
func openSink(stdout io.Writer) (io.Writer, func(), error) {
	if packOutputFlag == "" {
		return stdout, func() {}, nil
	}

	// #nosec G304 - user-chosen output path
	f, err := os.Create(packOutputFlag)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

// buildPackUI picks the diagnostic channel implementation.
func buildPackUI(stderr io.Writer) (controller.UI, error) {
	if !packTUIFlag {
		return controller.NewSimpleUI(stderr), nil
	}

	if packOutputFlag == "" {
		return nil, fmt.Errorf("--%s requires --%s so the artifact does not share the terminal", tuiFlagName, outputFlagName)
	}

	return controller.NewTUI(stderr), nil
}
