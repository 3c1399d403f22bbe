package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/fastpass-sim/sim"
	"github.com/inference-sim/fastpass-sim/sim/trace"
)

var (
	// CLI flags for a single run
	arrivalRate      float64 // Total arrival rate λ
	fastpassFraction float64 // Probability an arrival is a FastPass customer
	serviceRate      float64 // Service rate μ
	horizon          float64 // Simulated time to run to
	warmup           float64 // Departures at or before this time are not counted
	seed             int64   // Seed for the arrival, service and class streams
	policy           string  // Dispatch policy
	maxEvents        int64   // Event cap; 0 = unlimited
	traceLevel       string  // Dispatch trace level
	logLevel         string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fastpass-sim",
	Short: "Discrete-event simulator for a single-server FastPass priority queue",
}

// setLogLevel applies the --log flag.
func setLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", level)
	}
	logrus.SetLevel(lvl)
}

// runConfig builds a Config from the run flags.
func runConfig() sim.Config {
	cfg := sim.NewConfig(arrivalRate, fastpassFraction)
	cfg.ServiceRate = serviceRate
	cfg.Horizon = horizon
	cfg.Warmup = warmup
	cfg.Seed = seed
	cfg.Policy = policy
	cfg.MaxEvents = maxEvents
	cfg.TraceLevel = trace.TraceLevel(traceLevel)
	return cfg
}

// runAndReport simulates cfg and writes metrics, the analytic prediction and,
// when tracing is enabled, a dispatch summary to w.
func runAndReport(cfg sim.Config, w io.Writer) error {
	s, err := sim.NewSimulator(cfg, sim.Sources{})
	if err != nil {
		return err
	}
	s.Run()
	s.Metrics.Print(w)

	pred := sim.Predict(cfg)
	fmt.Fprintln(w, "=== Analytic Prediction ===")
	fmt.Fprintf(w, "priority             : %s\n", sim.FormatAvg(pred.Priority, pred.PriorityOK))
	fmt.Fprintf(w, "regular              : %s\n", sim.FormatAvg(pred.Regular, pred.RegularOK))
	baseline, ok := sim.MM1Residence(cfg.ArrivalRate, cfg.ServiceRate)
	fmt.Fprintf(w, "M/M/1 (no FastPass)  : %s\n", sim.FormatAvg(baseline, ok))

	if s.Trace != nil {
		summary := trace.Summarize(s.Trace)
		fmt.Fprintln(w, "=== Dispatch Trace Summary ===")
		fmt.Fprintf(w, "Total Dispatches     : %d\n", summary.TotalDispatches)
		for _, class := range sim.Classes {
			fmt.Fprintf(w, "  %-19s: %d\n", class, summary.ByClass[class.String()])
		}
		fmt.Fprintf(w, "Priority Over Regular: %d\n", summary.PriorityOverRegular)
		fmt.Fprintf(w, "Longest Regular Wait : %d dispatches\n", summary.LongestRegularWait)
		fmt.Fprintf(w, "Priority Inversions  : %d\n", summary.RegularWhilePriorityWaiting)
	}
	return nil
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one FastPass simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		cfg := runConfig()
		logrus.Infof("Starting simulation with λ=%g, f=%g, μ=%g, horizon=%g, warmup=%g, seed=%d",
			cfg.ArrivalRate, cfg.FastpassFraction, cfg.ServiceRate, cfg.Horizon, cfg.Warmup, cfg.Seed)

		startTime := time.Now()
		if err := runAndReport(cfg, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %s.", time.Since(startTime))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 0.5, "Total arrival rate λ")
	runCmd.Flags().Float64Var(&fastpassFraction, "fastpass-fraction", 0.5, "Probability an arrival is a FastPass customer, in [0, 1]")
	runCmd.Flags().Float64Var(&serviceRate, "service-rate", sim.DefaultServiceRate, "Service rate μ")
	runCmd.Flags().Float64Var(&horizon, "horizon", sim.DefaultHorizon, "Simulated time to run to")
	runCmd.Flags().Float64Var(&warmup, "warmup", sim.DefaultWarmup, "Departures at or before this time are not counted")
	runCmd.Flags().Int64Var(&seed, "seed", sim.DefaultSeed, "Seed for the arrival, service and class streams")
	runCmd.Flags().StringVar(&policy, "policy", sim.PolicyPriority, "Dispatch policy (priority, fcfs)")
	runCmd.Flags().Int64Var(&maxEvents, "max-events", 0, "Stop after this many events (0 = unlimited)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Dispatch trace level (none, dispatch)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
