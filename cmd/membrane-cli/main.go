// membrane-cli is the developer-facing counterpart to membrane-sim:
// a cobra command tree for running scenarios, listing presets, and
// benchmarking the evolve loop across repeated seeds.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sanketsaagar/membrane-sim/pkg/membrane"
	"github.com/sanketsaagar/membrane-sim/pkg/scenario"
	"github.com/sanketsaagar/membrane-sim/pkg/telemetry"
)

const cliName = "membrane-cli"

var (
	seed     int64
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   cliName,
	Short: "Developer CLI for the membrane evolution engine",
	Long: `membrane-cli drives the built-in scenario presets: run one to
completion, list what's registered, or benchmark the evolve loop
across a range of seeds.`,
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List registered scenario presets",
	Run: func(cmd *cobra.Command, args []string) {
		names := scenario.Names()
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Run one scenario preset to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := cmd.Flags().GetStringToInt("param")
		if err != nil {
			return err
		}
		logger := newLogger()
		res, err := scenario.Build(args[0], seed, params, logger)
		if err != nil {
			return err
		}
		ctx := context.Background()
		for _, mname := range membraneNames(res.Membranes) {
			m := res.Membranes[mname]
			status, err := m.Start(ctx)
			if err != nil {
				return fmt.Errorf("membrane %q: %w", mname, err)
			}
			if status == membrane.StatusPaused && res.OnPause != nil {
				res.OnPause(res)
				if status, err = m.Start(ctx); err != nil {
					return fmt.Errorf("membrane %q: %w", mname, err)
				}
			}
			stats := m.Stats()
			fmt.Printf("%-8s status=%-8s ticks=%d created=%d removed=%d\n",
				mname, status, stats.Ticks, stats.Created, stats.Removed)
		}
		if res.Stats != nil {
			delivered, pending, received := res.Stats.Snapshot()
			fmt.Printf("send/receive: delivered=%d pending=%d received=%d\n", delivered, pending, received)
		}
		return nil
	},
}

var benchCmd = &cobra.Command{
	Use:   "bench [scenario] [runs]",
	Short: "Run a scenario across a range of seeds and report timing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := parsePositiveInt(args[1])
		if err != nil {
			return err
		}
		logger := telemetry.NoopLogger{}
		start := time.Now()
		var totalTicks uint64
		for i := 0; i < runs; i++ {
			res, err := scenario.Build(args[0], seed+int64(i), nil, logger)
			if err != nil {
				return err
			}
			for _, m := range res.Membranes {
				status, err := m.Start(context.Background())
				if err != nil {
					return err
				}
				if status == membrane.StatusPaused && res.OnPause != nil {
					res.OnPause(res)
					if _, err := m.Start(context.Background()); err != nil {
						return err
					}
				}
				totalTicks += m.Stats().Ticks
			}
		}
		elapsed := time.Since(start)
		fmt.Printf("runs=%d total_ticks=%d elapsed=%v\n", runs, totalTicks, elapsed)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "Random seed")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: info, error")

	runCmd.Flags().StringToInt("param", nil, "Scenario parameter, key=value (repeatable)")

	rootCmd.AddCommand(scenariosCmd, runCmd, benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cliName, err)
		os.Exit(1)
	}
}

func newLogger() telemetry.Logger {
	level := telemetry.LevelInfo
	if logLevel == "error" {
		level = telemetry.LevelError
	}
	return telemetry.NewStdLogger(level)
}

func membraneNames(m map[string]*membrane.Membrane) []string {
	out := make([]string, 0, len(m))
	for mname := range m {
		out = append(out, mname)
	}
	sort.Strings(out)
	return out
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive: %q", s)
	}
	return n, nil
}
