package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wgong95/trim-video/internal/batch"
	"github.com/wgong95/trim-video/internal/config"
	"github.com/wgong95/trim-video/internal/logging"
	"github.com/wgong95/trim-video/pkg/util"
)

var (
	cfgFile    string
	verbose    bool
	preview    bool
	noCache    bool
	threshold  float64
	minSilence float64
	cutAt      string
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trimvideo",
	Short: "trimvideo - cut dead air out of screen recordings",
	Long: "Batch tool that locates silent passages in video files with ffmpeg's\n" +
		"silencedetect filter and losslessly trims or splits them without re-encoding.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("threshold") {
			cfg.Detect.NoiseDb = threshold
		}
		if cmd.Flags().Changed("min-silence") {
			cfg.Detect.MinSilence = minSilence
		}
		if noCache {
			cfg.Cache.Enabled = false
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./trimvideo.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&preview, "preview", false, "detect and plan only, write nothing")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "ignore and do not write detection sidecars")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", -40, "silence threshold in dB")
	rootCmd.PersistentFlags().Float64Var(&minSilence, "min-silence", 2.0, "minimum silence duration in seconds")

	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(cutCmd)
}

var trimCmd = &cobra.Command{
	Use:   "trim [path]",
	Short: "Truncate each file at the start of its last silence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0], batch.Options{Mode: batch.ModeTrim, Preview: preview})
	},
}

var splitCmd = &cobra.Command{
	Use:   "split [path]",
	Short: "Split each file into segments at every silence gap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0], batch.Options{Mode: batch.ModeSplit, Preview: preview})
	},
}

var cutCmd = &cobra.Command{
	Use:   "cut [path]",
	Short: "Truncate each file at an explicit timestamp",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := util.ParseSeconds(cutAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		if at <= 0 {
			return fmt.Errorf("--at: cut point must be positive")
		}
		return run(cmd, args[0], batch.Options{Mode: batch.ModeCut, CutAt: at, Preview: preview})
	},
}

func init() {
	cutCmd.Flags().StringVar(&cutAt, "at", "", "cut timestamp (seconds, MM:SS or HH:MM:SS)")
	_ = cutCmd.MarkFlagRequired("at")
}

func run(cmd *cobra.Command, path string, opts batch.Options) error {
	cfg := config.FromContext(cmd.Context())

	runner, err := batch.New(log.Logger, cfg)
	if err != nil {
		return err
	}

	return runner.Run(cmd.Context(), path, opts)
}
