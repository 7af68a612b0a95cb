// ════════════════════════════════════════════════════════════════════════════════════════════════
// ringbench - SPSC Ring Queue Verification Harness
// ────────────────────────────────────────────────────────────────────────────────────────────────
//
// Description:
//   Pushes a deterministic stream of fixed-size samples from a pinned producer
//   thread to a pinned consumer thread through one queue, then checks that
//   every item arrived once, in order, byte-identical.
//
// Phases:
//   - Config: flags, RINGBENCH_* environment, optional config file
//   - Runs: one queue per run, producer and consumer on their own cores
//   - Report: JSON per run on stdout, optional sqlite history and /metrics
//
// Exit status is non-zero if any run fails verification.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ringqueue/constants"
	"ringqueue/control"
	"ringqueue/debug"
	"ringqueue/report"
	"ringqueue/stats"
	"ringqueue/utils"
)

// errVerify marks a run whose stream did not survive the queue intact.
var errVerify = errors.New("verification failed")

// interrupted is set once by the signal handler and never cleared.
var interrupted atomic.Bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the ringbench command with its own viper instance.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "ringbench",
		Short: "Verify and time the SPSC ring queue across two pinned threads",
		Long: `ringbench runs the reference producer/consumer scenario: a producer
enqueues a numbered stream of samples, a consumer drains it, and both sides
hash what they saw. A run passes when every item arrives exactly once, in
order, with matching digests.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			defer setupSignalHandling()()
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	f.Int("capacity", constants.DefaultCapacity, "queue capacity in items")
	f.Int("items", constants.DefaultItems, "items pushed per run")
	f.Int("runs", constants.DefaultRuns, "number of runs")
	f.String("alloc", "heap", "backing allocator: heap or mmap")
	f.Int("producer-core", constants.ProducerCore, "CPU for the producer thread (-1 disables pinning)")
	f.Int("consumer-core", constants.ConsumerCore, "CPU for the consumer thread (-1 disables pinning)")
	f.Duration("stall", constants.StallTimeout, "abort a run after this long without consumer progress")
	f.Duration("cooldown", constants.Cooldown, "clear the hot flag after this much producer silence")
	f.String("metrics", "", "serve prometheus metrics on this address")
	f.String("db", "", "record reports in this sqlite file")
	f.Lookup("metrics").NoOptDefVal = constants.MetricsAddr
	f.Lookup("db").NoOptDefVal = constants.ReportDB

	for _, name := range boundFlags {
		if err := v.BindPFlag(name, f.Lookup(name)); err != nil {
			panic("ringbench: binding flag " + name + ": " + err.Error())
		}
	}
	return cmd
}

// boundFlags are the flags mirrored into viper, and through it into
// RINGBENCH_* variables and the config file.
var boundFlags = []string{
	"capacity", "items", "runs", "alloc", "producer-core", "consumer-core",
	"stall", "cooldown", "metrics", "db",
}

// initConfig wires environment overrides and the optional config file.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", cfgFile, err)
	}
	debug.DropMessage("CONFIG", v.ConfigFileUsed())
	return nil
}

// setupSignalHandling turns SIGINT/SIGTERM into the global stop flag. The
// returned function detaches the handler.
func setupSignalHandling() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	detach := make(chan struct{})

	go func() {
		select {
		case <-sigChan:
			interrupted.Store(true)
			debug.DropMessage("SIGNAL", "interrupt received, stopping current run")
			control.Shutdown()
		case <-detach:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(detach)
	}
}

// run executes cfg.Runs scenarios and reports each one.
func run(ctx context.Context, cfg benchConfig, out io.Writer) error {
	var pair stats.Pair

	if cfg.MetricsAddr != "" {
		// Occupancy comes from the counters, never from a queue that may be
		// disposed mid-scrape.
		reg := prometheus.NewRegistry()
		reg.MustRegister(stats.NewCollector("ringbench", nil, &pair, func() int {
			return int(pair.Snapshot().InFlight())
		}))
		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer shutdownMetrics(srv)
	}

	var store *report.Store
	if cfg.DB != "" {
		s, err := report.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	failed := 0
	for i := 0; i < cfg.Runs && !interrupted.Load(); i++ {
		rep := runScenario(cfg, &pair)
		control.ShutdownWG.Wait()

		body, err := report.Encode(&rep)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if _, err := out.Write(append(body, '\n')); err != nil {
			return err
		}
		if store != nil {
			if _, err := store.Record(ctx, &rep); err != nil {
				debug.DropError("REPORT", err)
			}
		}

		status := "ok"
		if !rep.OK {
			status = "FAILED"
			failed++
		}
		debug.DropMessage("RUN "+utils.Itoa(i+1), status+", "+
			utils.Itoa(rep.Received)+" items in "+time.Duration(rep.DurationNs).String()+", "+
			utils.Utoa(uint64(rep.ItemsPerSecond()))+" items/s")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs: %w", failed, cfg.Runs, errVerify)
	}
	return nil
}
