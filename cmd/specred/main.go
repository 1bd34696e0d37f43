package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/specred/internal/adapters/fits"
	"github.com/bft-labs/specred/internal/adapters/fs"
	"github.com/bft-labs/specred/internal/cliconfig"
	"github.com/bft-labs/specred/internal/ppssum"
	"github.com/bft-labs/specred/internal/rank"
	"github.com/bft-labs/specred/internal/reduce"
	"github.com/bft-labs/specred/internal/watch"
)

const longHelp = `
Reduce XMM-Newton EPIC exposures into calibrated, compact spectra records.

For each exposure, specred decodes the sparse response matrix, folds in the
effective area, converts counts to differential flux, harmonizes the
quiescent background units of the MOS and PN families, joins per-observation
D-factors and sky coordinates, and commits one record atomically.
`

var exampleUsage = strings.TrimSpace(`
  specred reduce --data-root /data/xmm --metadata dfacs.csv --obs-id 0123456789 --prefix mos1S001
  specred exposures --data-root /data/xmm --obs-id 0123456789
  specred rank --data-root /data/xmm
  specred watch --data-root /data/xmm --metadata dfacs.csv
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "specred",
		Short:   "Reduce XMM-Newton EPIC exposures into calibrated spectra records",
		Long:    strings.TrimSpace(longHelp),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.specred/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			cmd.Root().PersistentFlags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cliconfig.ApplyFileConfig(&cfg, fc, changed)
			}
			cliconfig.ApplyEnvConfig(&cfg, changed)

			if err := cfg.Validate(); err != nil {
				return err
			}
			return cliconfig.SetLogLevel(cfg.LogLevel)
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.specred/config.toml)")
	root.PersistentFlags().StringVar(&cfg.DataRoot, "data-root", cfg.DataRoot, "directory holding one folder per observation id")
	root.PersistentFlags().StringVar(&cfg.MetadataCSV, "metadata", cfg.MetadataCSV, "path to the per-observation metadata CSV")
	root.PersistentFlags().StringVar(&cfg.RankDir, "rank-dir", cfg.RankDir, "output directory for rank results (defaults to <data-root>/Blank_Sky)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newReduceCmd(&cfg),
		newExposuresCmd(&cfg),
		newRankCmd(&cfg),
		newWatchCmd(&cfg),
	)

	if err := root.Execute(); err != nil {
		logger := cliconfig.Logger()
		logger.Error().Err(err).Msg("specred")
		os.Exit(1)
	}
}

func newPipeline(cfg *cliconfig.Config) (*reduce.Pipeline, *fs.RecordStore, error) {
	if cfg.MetadataCSV == "" {
		return nil, nil, fmt.Errorf("metadata is required")
	}
	meta, err := fs.NewCSVMetadataSource(cfg.MetadataCSV)
	if err != nil {
		return nil, nil, err
	}
	store := fs.NewRecordStore(cfg.DataRoot)
	pipe := reduce.NewPipeline(fits.NewCalibrationSource(), meta, store, cliconfig.Logger())
	return pipe, store, nil
}

func newReduceCmd(cfg *cliconfig.Config) *cobra.Command {
	var obsID, prefix string

	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Reduce one detector exposure into a calibrated record",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, _, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			_, err = pipe.Reduce(cmd.Context(), cfg.DataRoot, obsID, prefix)
			return err
		},
	}
	cmd.Flags().StringVar(&obsID, "obs-id", "", "observation identifier")
	cmd.Flags().StringVar(&prefix, "prefix", "", "detector+exposure prefix (e.g. mos1S001, pnS003)")
	_ = cmd.MarkFlagRequired("obs-id")
	_ = cmd.MarkFlagRequired("prefix")
	return cmd
}

func newExposuresCmd(cfg *cliconfig.Config) *cobra.Command {
	var obsID string

	cmd := &cobra.Command{
		Use:   "exposures",
		Short: "Extract the eligible science exposures from the PPS summary report",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := cliconfig.Logger()

			path, err := ppssum.FindSummary(cfg.DataRoot, obsID)
			if err != nil {
				return err
			}
			lists, err := ppssum.ExtractFile(path)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			obsDir := filepath.Join(cfg.DataRoot, obsID)
			if err := writeList(filepath.Join(obsDir, rank.MOSListName), lists.MOS); err != nil {
				return err
			}
			if err := writeList(filepath.Join(obsDir, rank.PNListName), lists.PN); err != nil {
				return err
			}
			log.Info().
				Str("obs_id", obsID).
				Int("mos", len(lists.MOS)).
				Int("pn", len(lists.PN)).
				Msg("exposure lists written")
			return nil
		},
	}
	cmd.Flags().StringVar(&obsID, "obs-id", "", "observation identifier")
	_ = cmd.MarkFlagRequired("obs-id")
	return cmd
}

func newRankCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Rank reduced exposures by exposure time and report missing ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := cliconfig.Logger()

			store := fs.NewRecordStore(cfg.DataRoot)
			ranked, missing, err := rank.NewScanner(cfg.DataRoot, store, log).Scan(cmd.Context())
			if err != nil {
				return err
			}
			if err := rank.WriteResults(cfg.RankDir, ranked, missing); err != nil {
				return err
			}
			log.Info().
				Int("ranked", len(ranked)).
				Int("missing", len(missing)).
				Str("dir", cfg.RankDir).
				Msg("rank results written")
			return nil
		},
	}
}

func newWatchCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the data root and reduce exposures as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, store, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := watch.New(cfg.DataRoot, pipe, store, cliconfig.Logger())
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

// writeList replaces an exposure-list file with one entry per line. An empty
// list removes nothing and writes nothing: absence means no exposures for
// that detector.
func writeList(path string, entries []string) error {
	if len(entries) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
