//go:build linux

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanelpoder/xcapture-go/config"
	"github.com/tanelpoder/xcapture-go/internal/control"
)

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "xcapture",
		Short: "Always-on Linux thread-state sampler",
		Long: `xcapture samples every thread's kernel-visible state on a fixed
interval using BPF task iterators, correlates syscall and block-I/O
completions back to the samples that observed them in flight, and writes
everything to hourly-rotated CSV files.

* GitHub: https://github.com/tanelpoder/xcapture-go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// --passive-only turns off both trackers unless the user
			// explicitly asked for one of them too (in which case
			// config.Validate will reject the contradiction).
			if cfg.PassiveOnly && !cmd.Flags().Changed("track-syscalls") && !cmd.Flags().Changed("track-iorq") {
				cfg.TrackSyscalls = false
				cfg.TrackIORQ = false
			}
			return run(cmd.Context(), cfg)
		},
	}

	root.Flags().DurationVarP(&cfg.Interval, "interval", "i", cfg.Interval, "sampling interval (e.g. 1s, 500ms)")
	root.Flags().IntVar(&cfg.MaxTicks, "max-ticks", cfg.MaxTicks, "stop after this many ticks (0 = run until signaled)")
	root.Flags().BoolVar(&cfg.ShowAll, "all", cfg.ShowAll, "also report interruptibly sleeping threads with no pending AIO/io_uring work or socket activity")
	root.Flags().IntVar(&cfg.FilterTgid, "pid", cfg.FilterTgid, "restrict sampling to one process's threads (0 = all processes)")
	root.Flags().Uint32Var(&cfg.DaemonPortThreshold, "daemon-port-threshold", cfg.DaemonPortThreshold,
		"local TCP ports above this are treated as ephemeral client sockets, not daemons")
	root.Flags().BoolVar(&cfg.KernelStacks, "kernel-stacks", cfg.KernelStacks, "capture kernel stack traces")
	root.Flags().BoolVar(&cfg.UserStacks, "user-stacks", cfg.UserStacks, "capture user stack traces")
	root.Flags().BoolVar(&cfg.PassiveOnly, "passive-only", cfg.PassiveOnly, "run the sampler only; do not attach the syscall or block-I/O trackers")
	root.Flags().BoolVar(&cfg.TrackSyscalls, "track-syscalls", cfg.TrackSyscalls, "attach the syscall entry/exit tracker")
	root.Flags().BoolVar(&cfg.TrackIORQ, "track-iorq", cfg.TrackIORQ, "attach the block-I/O request tracker")
	root.Flags().StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "directory for hourly-rotated CSV output files")
	root.Flags().StringVarP(&cfg.Columns, "columns", "c", cfg.Columns, "column preset (narrow, normal, wide, all) or a comma-separated column list, honored in --human mode")
	root.Flags().StringVar(&cfg.Append, "append-columns", cfg.Append, "extra columns to add to --columns, honored in --human mode")
	root.Flags().BoolVar(&cfg.Human, "human", cfg.Human, "also print a selectable tabular row per sample to stdout")
	root.Flags().BoolVar(&cfg.PinMaps, "pin-maps", cfg.PinMaps, "pin the shared BPF maps under --pin-dir for external inspection")
	root.Flags().StringVar(&cfg.PinDir, "pin-dir", cfg.PinDir, "directory under /sys/fs/bpf to pin maps in, when --pin-maps is set")
	root.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log tick overruns and per-tick record counts")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	if cfg.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctl, err := control.New(cfg)
	if err != nil {
		return err
	}
	return ctl.Run(ctx)
}
