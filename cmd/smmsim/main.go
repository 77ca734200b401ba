// Command smmsim is the minimal CLI wrapper over the simulation core (spec
// §6.4): `simulate` runs a workload to completion; `benchmark` is an
// out-of-scope analytics stub.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ja7ad/smmsim/internal/config"
	"github.com/ja7ad/smmsim/pkg/eventlog"
	"github.com/ja7ad/smmsim/pkg/model"
	"github.com/ja7ad/smmsim/pkg/sim"
	"github.com/ja7ad/smmsim/pkg/state"
)

func main() {
	root := &cobra.Command{
		Use:   "smmsim",
		Short: "Offline discrete-event simulator for a periodic integrity-checking scheduler",
		Long: `smmsim drives a configurable schedule of integrity-check windows across one
or more CPUs against a timestamped JSON workload, and emits a full event log
suitable for post-run analytics (response times, throughput, utilization).

* Modeled after EPA-RIMM's periodic SMI-based integrity checker.`,
	}

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newBenchmarkCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type simulateOpts struct {
	sqllog      string
	interactive bool
	validate    bool
	verbose     bool
	configPath  string
}

func newSimulateCmd() *cobra.Command {
	var o simulateOpts

	cmd := &cobra.Command{
		Use:   "simulate <workload>",
		Short: "Run a workload JSON stream through the scheduler simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(o, args[0])
		},
	}

	cmd.Flags().StringVar(&o.sqllog, "sqllog", "", "path to a SQLite event log (out of scope for this core; accepted for CLI compatibility, logs a warning under --verbose and is otherwise ignored)")
	cmd.Flags().BoolVar(&o.interactive, "interactive", false, "line-oriented reads and warn-and-skip schema handling, instead of fatal-on-violation")
	cmd.Flags().BoolVar(&o.validate, "validate", true, "validate every workload action against the action schema")
	cmd.Flags().BoolVar(&o.verbose, "verbose", false, "emit diagnostic logs to stderr")
	cmd.Flags().StringVar(&o.configPath, "config", "", "optional YAML file overriding the factory parameter defaults (spec §6.1)")

	return cmd
}

func newBenchmarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "benchmark <db>",
		Short: "Analytics over a prior run's log (out of scope for this core)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(os.Stdout, "benchmark: analytics/reporting is out of scope for the simulation core; see spec §1")
			return nil
		},
	}
}

func runSimulate(o simulateOpts, workloadPath string) error {
	diag := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !o.verbose {
		diag = diag.Level(zerolog.Disabled)
	}

	if o.sqllog != "" {
		diag.Warn().Str("path", o.sqllog).Msg("--sqllog is out of scope for the simulation core; the SQLite log writer is an external collaborator (spec §1) and this flag has no effect")
	}

	f, err := os.Open(workloadPath)
	if err != nil {
		return fmt.Errorf("simulate: opening workload: %w", err)
	}
	defer f.Close()

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	sink := eventlog.NewZerologSink(os.Stdout)

	s, err := sim.New(f, sink, sim.Config{
		Interactive:    o.interactive,
		ValidateSchema: o.validate,
	})
	if err != nil {
		return fmt.Errorf("simulate: building simulator: %w", err)
	}

	if o.configPath != "" {
		if err := applyConfig(s.State(), cfg); err != nil {
			return err
		}
	}

	diag.Info().
		Int64("taskgran", cfg.TaskGran).
		Int64("binsize", cfg.BinSize).
		Int("cpus", cfg.CPUs).
		Str("binpacker", cfg.BinPacker).
		Msg("starting simulation")

	if err := s.Run(); err != nil {
		diag.Error().Err(err).Msg("simulation aborted")
		return err
	}

	diag.Info().
		Uint64("final_time_us", s.State().Time()).
		Str("final_time", model.Microseconds(s.State().Time()).Humanized()).
		Msg("simulation complete")
	return nil
}

// applyConfig seeds the simulator's state with the loaded parameter set
// before the workload stream starts dispatching — any t=0 changevars action
// in the workload itself still applies afterward, layering on top.
func applyConfig(st *state.SchedulerState, cfg config.Config) error {
	vars := []struct{ key, val string }{
		{"taskgran", strconv.FormatInt(cfg.TaskGran, 10)},
		{"smmpersecond", strconv.FormatInt(cfg.SMMPerSecond, 10)},
		{"smmoverhead", strconv.FormatInt(cfg.SMMOverhead, 10)},
		{"binsize", strconv.FormatInt(cfg.BinSize, 10)},
		{"cpus", strconv.Itoa(cfg.CPUs)},
		{"binpacker", cfg.BinPacker},
		{"checksplitter", cfg.CheckSplitter},
		{"rantask", cfg.RanTask},
		{"randseed", strconv.FormatInt(cfg.RandSeed, 10)},
	}
	for _, v := range vars {
		if err := st.UpdateVar(v.key, v.val); err != nil {
			return fmt.Errorf("config: applying %s: %w", v.key, err)
		}
	}
	return nil
}
